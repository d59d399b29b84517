package page

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iburimskiy/songfx/internal/dom"
)

const testPage = `
viewport: {width: 800, height: 600}
body: {height: 1200}
elements:
  - {tag: button, class: btn, text: Go, rect: [100, 100, 80, 30]}
  - tag: div
    class: message
    rect: [300, 100, 200, 40]
    children:
      - {tag: button, class: message-close, rect: [470, 105, 20, 20]}
  - {tag: ul, class: nav-menu, rect: [0, 200, 100, 100]}
  - {tag: button, class: nav-toggle, rect: [0, 160, 30, 30]}
  - tag: div
    class: user-dropdown
    rect: [600, 0, 200, 40]
    children:
      - {tag: button, id: userMenuBtn, rect: [700, 5, 90, 30]}
      - {tag: div, id: dropdownMenu, rect: [600, 40, 200, 100]}
  - tag: div
    class: field
    rect: [100, 400, 400, 200]
    children:
      - {tag: textarea, rect: [110, 410, 380, 100]}
      - {tag: span, class: char-counter, text: 0/500, rect: [110, 520, 80, 20]}
  - {tag: img, data: {src: cover.png}, rect: [600, 400, 100, 100]}
  - {tag: img, attrs: {src: eager.png}, rect: [600, 520, 100, 50]}
`

func setup(t *testing.T) (*dom.Document, *Interactions) {
	t.Helper()
	doc, err := dom.ParsePage([]byte(testPage))
	if err != nil {
		t.Fatal(err)
	}
	in := New(zerolog.Nop())
	in.Attach(doc)
	return doc, in
}

func TestRippleLifetime(t *testing.T) {
	doc, in := setup(t)
	doc.ClickAt(110, 115)

	btn := doc.Query(".btn")
	r := btn.Query("." + RippleClass)
	if r == nil {
		t.Fatal("no ripple after click")
	}
	if r.Style("left") != "10px" || r.Style("top") != "15px" {
		t.Errorf("ripple at %s,%s want 10px,15px", r.Style("left"), r.Style("top"))
	}

	in.Advance(599 * time.Millisecond)
	if len(in.Ripples()) != 1 || btn.Query("."+RippleClass) == nil {
		t.Fatal("ripple removed early")
	}
	in.Advance(time.Millisecond)
	if len(in.Ripples()) != 0 || btn.Query("."+RippleClass) != nil {
		t.Fatal("ripple still present after 600ms")
	}
}

func TestRippleDoesNotStealClicks(t *testing.T) {
	doc, _ := setup(t)
	doc.ClickAt(110, 115)
	if got := doc.ElementAt(110, 115); got != doc.Query(".btn") {
		t.Fatalf("element under pointer is %v, want the button", got)
	}
}

func TestMessageClose(t *testing.T) {
	doc, _ := setup(t)
	reached := false
	doc.AddEventListener(dom.Click, func(*dom.Event) { reached = true })

	doc.ClickAt(475, 110)
	if doc.Query(".message") != nil {
		t.Fatal("message not removed")
	}
	if !reached {
		t.Error("click stopped bubbling after the message was removed")
	}
}

func TestNavToggle(t *testing.T) {
	doc, _ := setup(t)
	doc.ClickAt(10, 170)
	if !doc.Query(".nav-menu").HasClass(ActiveClass) || !doc.Query(".nav-toggle").HasClass(ActiveClass) {
		t.Fatal("nav not opened")
	}
	doc.ClickAt(10, 170)
	if doc.Query(".nav-menu").HasClass(ActiveClass) {
		t.Fatal("nav not closed on second click")
	}
}

func TestUserDropdown(t *testing.T) {
	doc, _ := setup(t)
	menu := doc.GetElementByID("dropdownMenu")

	doc.ClickAt(710, 10)
	if !menu.HasClass(ActiveClass) {
		t.Fatal("menu button did not open the dropdown")
	}
	doc.ClickAt(650, 80)
	if !menu.HasClass(ActiveClass) {
		t.Fatal("click inside the menu closed it")
	}
	doc.ClickAt(400, 300)
	if menu.HasClass(ActiveClass) {
		t.Fatal("outside click left the menu open")
	}
}

func TestFocusAndCharCounter(t *testing.T) {
	doc, _ := setup(t)
	field := doc.Query(".field")
	counter := doc.Query(".char-counter")

	doc.ClickAt(200, 450)
	if !field.HasClass(FocusedClass) {
		t.Fatal("focus did not mark the parent")
	}
	doc.TypeText("héllo")
	if counter.Text != "5/500" {
		t.Errorf("counter = %q, want 5/500", counter.Text)
	}
	doc.Backspace()
	if counter.Text != "4/500" {
		t.Errorf("counter after backspace = %q, want 4/500", counter.Text)
	}

	doc.ClickAt(10, 10)
	if field.HasClass(FocusedClass) {
		t.Fatal("blur did not clear the parent")
	}
}

func TestLoadImages(t *testing.T) {
	doc, _ := setup(t)
	imgs := doc.QueryAll("img")
	doc.Load()
	if src, _ := imgs[0].Attr("src"); src != "cover.png" || !imgs[0].HasClass(LoadedClass) {
		t.Errorf("lazy image src=%q loaded=%v", src, imgs[0].HasClass(LoadedClass))
	}
	if imgs[1].HasClass(LoadedClass) {
		t.Error("eager image marked loaded")
	}
}

func TestDetach(t *testing.T) {
	doc, in := setup(t)
	doc.ClickAt(110, 115)
	in.Detach()
	if n := doc.ListenerCount(); n != 0 {
		t.Fatalf("%d listeners left after Detach", n)
	}
	if doc.Query("."+RippleClass) != nil {
		t.Fatal("ripple left after Detach")
	}
	doc.ClickAt(10, 170)
	if doc.Query(".nav-menu").HasClass(ActiveClass) {
		t.Fatal("detached toggle still works")
	}
}
