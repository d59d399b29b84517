package dom

import (
	"slices"
	"strings"
)

type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Intersect returns the overlap of r and o, or the zero Rect when they do
// not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Element is a node of the page. Bounds are in document coordinates, or in
// viewport coordinates when the element (or an ancestor) is Fixed.
type Element struct {
	ID     string
	Tag    string
	Text   string
	Value  string
	Bounds Rect
	Fixed  bool

	data     map[string]string
	attrs    map[string]string
	style    map[string]string
	classes  []string
	parent   *Element
	children []*Element
	doc      *Document
	events   listenerSet
}

func (el *Element) OwnerDocument() *Document { return el.doc }

func (el *Element) Parent() *Element { return el.parent }

func (el *Element) Children() []*Element { return slices.Clone(el.children) }

func (el *Element) HasClass(c string) bool { return slices.Contains(el.classes, c) }

func (el *Element) Classes() []string { return slices.Clone(el.classes) }

func (el *Element) AddClass(c string) {
	if c == "" || el.HasClass(c) {
		return
	}
	el.classes = append(el.classes, c)
}

func (el *Element) RemoveClass(c string) {
	el.classes = slices.DeleteFunc(el.classes, func(s string) bool { return s == c })
}

// ToggleClass flips c and reports whether it is now present.
func (el *Element) ToggleClass(c string) bool {
	if el.HasClass(c) {
		el.RemoveClass(c)
		return false
	}
	el.AddClass(c)
	return true
}

// Dataset returns the data-* attribute key (without the "data-" prefix).
func (el *Element) Dataset(key string) (string, bool) {
	v, ok := el.data[key]
	return v, ok
}

func (el *Element) SetDataset(key, value string) {
	if el.data == nil {
		el.data = make(map[string]string)
	}
	el.data[key] = value
}

func (el *Element) Attr(key string) (string, bool) {
	v, ok := el.attrs[key]
	return v, ok
}

func (el *Element) SetAttr(key, value string) {
	if el.attrs == nil {
		el.attrs = make(map[string]string)
	}
	el.attrs[key] = value
}

func (el *Element) Style(prop string) string { return el.style[prop] }

// SetStyle sets an inline style property. An empty value clears it.
func (el *Element) SetStyle(prop, value string) {
	if value == "" {
		delete(el.style, prop)
		return
	}
	if el.style == nil {
		el.style = make(map[string]string)
	}
	el.style[prop] = value
}

func (el *Element) AppendChild(c *Element) {
	if c.parent != nil {
		c.Remove()
	}
	c.parent = el
	c.walk(func(n *Element) { n.doc = el.doc })
	el.children = append(el.children, c)
}

// Remove detaches el from its parent. Hover and focus state pointing into
// the removed subtree is dropped without firing events.
func (el *Element) Remove() {
	if el.parent == nil {
		return
	}
	p := el.parent
	p.children = slices.DeleteFunc(p.children, func(c *Element) bool { return c == el })
	el.parent = nil
	if el.doc != nil {
		el.doc.forget(el)
	}
}

func (el *Element) Contains(o *Element) bool {
	for n := o; n != nil; n = n.parent {
		if n == el {
			return true
		}
	}
	return false
}

// Closest returns el or its nearest ancestor matching sel.
func (el *Element) Closest(sel string) *Element {
	s := MustCompile(sel)
	for n := el; n != nil; n = n.parent {
		if s.Match(n) {
			return n
		}
	}
	return nil
}

// QueryAll returns the descendants of el matching sel in document order.
func (el *Element) QueryAll(sel string) []*Element {
	s := MustCompile(sel)
	var out []*Element
	el.walk(func(n *Element) {
		if n != el && s.Match(n) {
			out = append(out, n)
		}
	})
	return out
}

func (el *Element) Query(sel string) *Element {
	if found := el.QueryAll(sel); len(found) > 0 {
		return found[0]
	}
	return nil
}

// AddEventListener registers fn and returns its remover.
func (el *Element) AddEventListener(t EventType, fn Handler) func() {
	return el.events.add(t, fn)
}

func (el *Element) isFixed() bool {
	for n := el; n != nil; n = n.parent {
		if n.Fixed {
			return true
		}
	}
	return false
}

func (el *Element) walk(fn func(*Element)) {
	fn(el)
	for _, c := range el.children {
		c.walk(fn)
	}
}

func (el *Element) isEditable() bool {
	return el.Tag == "input" || el.Tag == "textarea"
}

func (el *Element) String() string {
	var b strings.Builder
	b.WriteString(el.Tag)
	if el.ID != "" {
		b.WriteString("#" + el.ID)
	}
	for _, c := range el.classes {
		b.WriteString("." + c)
	}
	return b.String()
}
