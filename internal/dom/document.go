package dom

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Document is the page the effects run against. It owns the element tree,
// the viewport, the scroll offset, pointer hover state and input focus.
// It is not safe for concurrent use; everything runs on the UI thread.
type Document struct {
	Body *Element

	viewW, viewH float64
	scrollY      float64
	pointerX     float64
	pointerY     float64
	hovered      []*Element
	focused      *Element
	events       listenerSet
}

// New returns an empty document with a body as tall as the viewport.
func New(viewW, viewH float64) *Document {
	d := &Document{viewW: viewW, viewH: viewH}
	d.Body = d.CreateElement("body")
	d.Body.Bounds = Rect{W: viewW, H: viewH}
	return d
}

func (d *Document) CreateElement(tag string) *Element {
	return &Element{Tag: strings.ToLower(tag), doc: d}
}

func (d *Document) Viewport() (w, h float64) { return d.viewW, d.viewH }

func (d *Document) ScrollY() float64 { return d.scrollY }

func (d *Document) Pointer() (x, y float64) { return d.pointerX, d.pointerY }

func (d *Document) Focused() *Element { return d.focused }

// MaxScroll is how far the body can scroll; zero when the body fits.
func (d *Document) MaxScroll() float64 {
	return max(0, d.Body.Bounds.H-d.viewH)
}

// ViewportRect maps el's bounds into viewport coordinates.
func (d *Document) ViewportRect(el *Element) Rect {
	if el.isFixed() {
		return el.Bounds
	}
	return el.Bounds.Offset(0, -d.scrollY)
}

// AddEventListener registers a document-level handler. Bubbling events reach
// it after every element on the target's path.
func (d *Document) AddEventListener(t EventType, fn Handler) func() {
	return d.events.add(t, fn)
}

// ListenerCount counts handlers on the document and every attached element.
func (d *Document) ListenerCount() int {
	n := d.events.count()
	d.Body.walk(func(el *Element) { n += el.events.count() })
	return n
}

func (d *Document) GetElementByID(id string) *Element {
	var found *Element
	d.Body.walk(func(el *Element) {
		if found == nil && el.ID == id {
			found = el
		}
	})
	return found
}

// QueryAll returns every element, body included, matching sel in document
// order.
func (d *Document) QueryAll(sel string) []*Element {
	s := MustCompile(sel)
	var out []*Element
	d.Body.walk(func(el *Element) {
		if s.Match(el) {
			out = append(out, el)
		}
	})
	return out
}

func (d *Document) Query(sel string) *Element {
	if found := d.QueryAll(sel); len(found) > 0 {
		return found[0]
	}
	return nil
}

// ElementAt returns the topmost element under the viewport point, which is
// the last match in document order. Body is returned when nothing else is
// hit. Elements styled pointer-events: none or display: none are skipped.
func (d *Document) ElementAt(x, y float64) *Element {
	hit := d.Body
	d.Body.walk(func(el *Element) {
		if el == d.Body || el.Style("pointer-events") == "none" || el.Style("display") == "none" {
			return
		}
		if d.ViewportRect(el).Contains(x, y) {
			hit = el
		}
	})
	return hit
}

// Dispatch delivers ev to its target and, for bubbling events, to each
// ancestor and then the document, until a handler stops propagation.
func (d *Document) Dispatch(ev *Event) {
	if ev.Target == nil {
		d.events.dispatch(ev)
		return
	}
	if !ev.Type.bubbles() {
		ev.Target.events.dispatch(ev)
		return
	}
	// The path is fixed before delivery so handlers that detach nodes
	// do not cut bubbling short.
	var path []*Element
	for el := ev.Target; el != nil; el = el.parent {
		path = append(path, el)
	}
	for _, el := range path {
		el.events.dispatch(ev)
		if ev.stopped {
			return
		}
	}
	d.events.dispatch(ev)
}

// MovePointer fires leave and enter for the hover chain changes, then a
// pointermove at the new target.
func (d *Document) MovePointer(x, y float64) {
	d.pointerX, d.pointerY = x, y
	target := d.updateHover()
	d.Dispatch(&Event{Type: PointerMove, X: x, Y: y, Target: target})
}

// ClickAt moves focus to an input under the point (or clears it) and
// dispatches a click there.
func (d *Document) ClickAt(x, y float64) {
	target := d.ElementAt(x, y)
	if target.isEditable() {
		d.Focus(target)
	} else {
		d.Focus(nil)
	}
	d.Dispatch(&Event{Type: Click, X: x, Y: y, Target: target})
}

func (d *Document) Focus(el *Element) {
	if d.focused == el {
		return
	}
	if old := d.focused; old != nil {
		d.focused = nil
		d.Dispatch(&Event{Type: Blur, Target: old})
	}
	d.focused = el
	if el != nil {
		d.Dispatch(&Event{Type: Focus, Target: el})
	}
}

// TypeText appends s to the focused input and fires input.
func (d *Document) TypeText(s string) {
	el := d.focused
	if el == nil || s == "" {
		return
	}
	el.Value += s
	d.Dispatch(&Event{Type: Input, Target: el})
}

// Backspace drops the last rune of the focused input.
func (d *Document) Backspace() {
	el := d.focused
	if el == nil || el.Value == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(el.Value)
	el.Value = el.Value[:len(el.Value)-size]
	d.Dispatch(&Event{Type: Input, Target: el})
}

// ScrollTo clamps y into [0, MaxScroll] and fires scroll when the offset
// changes.
func (d *Document) ScrollTo(y float64) {
	y = min(max(y, 0), d.MaxScroll())
	if y == d.scrollY {
		return
	}
	d.scrollY = y
	d.Dispatch(&Event{Type: Scroll})
	d.updateHover()
}

func (d *Document) ScrollBy(dy float64) { d.ScrollTo(d.scrollY + dy) }

func (d *Document) Resize(w, h float64) {
	if w == d.viewW && h == d.viewH {
		return
	}
	d.viewW, d.viewH = w, h
	d.Body.Bounds.W = w
	d.Body.Bounds.H = max(d.Body.Bounds.H, h)
	d.scrollY = min(d.scrollY, d.MaxScroll())
	d.Dispatch(&Event{Type: Resize})
}

func (d *Document) Load() { d.Dispatch(&Event{Type: Load}) }

// updateHover recomputes the chain of elements under the pointer, fires
// pointerleave innermost first and pointerenter outermost first, and returns
// the new target.
func (d *Document) updateHover() *Element {
	target := d.ElementAt(d.pointerX, d.pointerY)
	var chain []*Element
	for el := target; el != nil; el = el.parent {
		chain = append(chain, el)
	}

	old := d.hovered
	d.hovered = chain
	for _, el := range old {
		if !slices.Contains(chain, el) {
			d.Dispatch(&Event{Type: PointerLeave, X: d.pointerX, Y: d.pointerY, Target: el})
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if !slices.Contains(old, chain[i]) {
			d.Dispatch(&Event{Type: PointerEnter, X: d.pointerX, Y: d.pointerY, Target: chain[i]})
		}
	}
	return target
}

func (d *Document) forget(removed *Element) {
	d.hovered = slices.DeleteFunc(d.hovered, removed.Contains)
	if d.focused != nil && removed.Contains(d.focused) {
		d.focused = nil
	}
}
