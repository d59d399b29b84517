package dom

import (
	"errors"
	"slices"
	"testing"
)

func testPage(t *testing.T) *Document {
	t.Helper()
	doc, err := ParsePage([]byte(`
viewport: {width: 800, height: 600}
body: {height: 1600}
elements:
  - tag: div
    id: outer
    class: card
    rect: [100, 100, 200, 200]
    children:
      - {tag: button, class: btn primary, rect: [120, 120, 80, 40]}
  - {tag: input, rect: [100, 400, 200, 30]}
  - {tag: div, class: counter, data: {target: "10"}, rect: [0, 900, 100, 40]}
  - {tag: div, class: badge, fixed: true, rect: [700, 10, 50, 50]}
  - {tag: canvas, id: overlay, fixed: true, rect: [0, 0, 800, 600], style: {pointer-events: none}}
`))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestSelectors(t *testing.T) {
	doc := testPage(t)
	cases := []struct {
		sel  string
		want int
	}{
		{".card", 1},
		{".btn", 1},
		{"button.btn.primary", 1},
		{".btn, .card", 2},
		{"#outer", 1},
		{".counter[data-target]", 1},
		{"div", 3},
		{"input, textarea", 1},
		{"body", 1},
		{".missing", 0},
	}
	for _, c := range cases {
		t.Run(c.sel, func(t *testing.T) {
			if got := len(doc.QueryAll(c.sel)); got != c.want {
				t.Errorf("QueryAll(%q) = %d, want %d", c.sel, got, c.want)
			}
		})
	}
}

func TestCompileRejectsBadSelectors(t *testing.T) {
	for _, sel := range []string{"", ".a,,.b", ".", "div > p", "[data-x"} {
		if _, err := Compile(sel); !errors.Is(err, ErrBadSelector) {
			t.Errorf("Compile(%q) err = %v, want ErrBadSelector", sel, err)
		}
	}
}

func TestElementAtHonoursScrollAndFixed(t *testing.T) {
	doc := testPage(t)

	if got := doc.ElementAt(130, 130); !got.HasClass("btn") {
		t.Fatalf("ElementAt(130,130) = %s, want the button", got)
	}
	doc.ScrollTo(50)
	if got := doc.ElementAt(130, 130); got.ID != "outer" {
		t.Fatalf("after scroll ElementAt(130,130) = %s, want #outer", got)
	}
	if got := doc.ElementAt(720, 20); !got.HasClass("badge") {
		t.Fatalf("fixed element not hit after scroll, got %s", got)
	}
}

func TestScrollClamps(t *testing.T) {
	doc := testPage(t)
	var fired int
	doc.AddEventListener(Scroll, func(*Event) { fired++ })

	doc.ScrollTo(-10)
	if doc.ScrollY() != 0 || fired != 0 {
		t.Fatalf("scroll to -10: y=%v fired=%d", doc.ScrollY(), fired)
	}
	doc.ScrollTo(5000)
	if doc.ScrollY() != 1000 {
		t.Fatalf("scroll clamped to %v, want 1000", doc.ScrollY())
	}
	if fired != 1 {
		t.Fatalf("scroll fired %d times, want 1", fired)
	}
}

func TestHoverEnterLeave(t *testing.T) {
	doc := testPage(t)
	card := doc.GetElementByID("outer")
	btn := doc.Query(".btn")

	var log []string
	card.AddEventListener(PointerEnter, func(*Event) { log = append(log, "enter card") })
	card.AddEventListener(PointerLeave, func(*Event) { log = append(log, "leave card") })
	btn.AddEventListener(PointerEnter, func(*Event) { log = append(log, "enter btn") })
	btn.AddEventListener(PointerLeave, func(*Event) { log = append(log, "leave btn") })

	doc.MovePointer(110, 110)
	doc.MovePointer(130, 130)
	doc.MovePointer(150, 250)
	doc.MovePointer(600, 500)

	want := []string{"enter card", "enter btn", "leave btn", "leave card"}
	if !slices.Equal(log, want) {
		t.Errorf("got %v, want %v", log, want)
	}
}

func TestClickBubblesAndStops(t *testing.T) {
	doc := testPage(t)
	card := doc.GetElementByID("outer")
	btn := doc.Query(".btn")

	var order []string
	btn.AddEventListener(Click, func(*Event) { order = append(order, "btn") })
	card.AddEventListener(Click, func(*Event) { order = append(order, "card") })
	doc.AddEventListener(Click, func(*Event) { order = append(order, "doc") })

	doc.ClickAt(130, 130)
	if !slices.Equal(order, []string{"btn", "card", "doc"}) {
		t.Fatalf("bubble order %v", order)
	}

	order = nil
	card.AddEventListener(Click, func(e *Event) { e.StopPropagation() })
	doc.ClickAt(130, 130)
	if !slices.Equal(order, []string{"btn", "card"}) {
		t.Fatalf("after stop %v", order)
	}
}

func TestListenerRemoval(t *testing.T) {
	doc := testPage(t)
	before := doc.ListenerCount()

	var hits int
	remove := doc.AddEventListener(Resize, func(*Event) { hits++ })
	removeBtn := doc.Query(".btn").AddEventListener(Click, func(*Event) {})
	if doc.ListenerCount() != before+2 {
		t.Fatalf("count = %d, want %d", doc.ListenerCount(), before+2)
	}

	doc.Resize(1000, 700)
	remove()
	remove()
	removeBtn()
	doc.Resize(900, 700)

	if hits != 1 {
		t.Errorf("resize handled %d times, want 1", hits)
	}
	if doc.ListenerCount() != before {
		t.Errorf("count = %d after removal, want %d", doc.ListenerCount(), before)
	}
}

func TestFocusAndTyping(t *testing.T) {
	doc := testPage(t)
	input := doc.Query("input")

	var events []EventType
	for _, typ := range []EventType{Focus, Blur, Input} {
		input.AddEventListener(typ, func(e *Event) { events = append(events, e.Type) })
	}

	doc.ClickAt(150, 410)
	doc.TypeText("hé")
	doc.Backspace()
	doc.ClickAt(5, 5)

	if input.Value != "h" {
		t.Errorf("value = %q, want %q", input.Value, "h")
	}
	want := []EventType{Focus, Input, Input, Blur}
	if !slices.Equal(events, want) {
		t.Errorf("events %v, want %v", events, want)
	}
	if doc.Focused() != nil {
		t.Error("focus should be cleared")
	}
}

func TestRemoveClearsHover(t *testing.T) {
	doc := testPage(t)
	card := doc.GetElementByID("outer")
	doc.MovePointer(130, 130)

	var left bool
	card.AddEventListener(PointerLeave, func(*Event) { left = true })
	card.Remove()
	doc.MovePointer(131, 131)

	if left {
		t.Error("removed element should not receive pointerleave")
	}
	if doc.GetElementByID("outer") != nil {
		t.Error("removed element still reachable")
	}
}

func TestDefaultPageLoads(t *testing.T) {
	doc, err := LoadPage("")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"mouse-trail-canvas", "particle-canvas", "userMenuBtn", "dropdownMenu"} {
		if doc.GetElementByID(id) == nil {
			t.Errorf("default page missing #%s", id)
		}
	}
	for _, sel := range []string{".scroll-progress", ".back-to-top", ".counter[data-target]", ".typing-effect", "audio", "textarea"} {
		if doc.Query(sel) == nil {
			t.Errorf("default page missing %s", sel)
		}
	}
}

func TestParsePageErrors(t *testing.T) {
	cases := map[string]string{
		"no_viewport": "elements: []",
		"bad_rect":    "viewport: {width: 10, height: 10}\nelements:\n  - {tag: div, rect: [1, 2]}",
		"no_tag":      "viewport: {width: 10, height: 10}\nelements:\n  - {rect: [1, 2, 3, 4]}",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePage([]byte(body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
