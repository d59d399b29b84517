package anim

import "github.com/iburimskiy/songfx/internal/dom"

const VisibleClass = "visible"

// Observer marks elements visible once enough of them has scrolled into the
// viewport. The root is the viewport grown (or, for a negative margin,
// shrunk) at the bottom by bottomMargin.
type Observer struct {
	threshold    float64
	bottomMargin float64
	entries      []*observed
}

type observed struct {
	el        *dom.Element
	fired     bool
	onVisible []func()
}

func NewObserver(threshold, bottomMargin float64) *Observer {
	return &Observer{threshold: threshold, bottomMargin: bottomMargin}
}

// Observe watches el. The callbacks run the first time el becomes visible.
// Observing the same element again adds callbacks to the existing entry.
func (o *Observer) Observe(el *dom.Element, onVisible ...func()) {
	for _, e := range o.entries {
		if e.el == el {
			e.onVisible = append(e.onVisible, onVisible...)
			return
		}
	}
	o.entries = append(o.entries, &observed{el: el, onVisible: onVisible})
}

// Check re-evaluates every observed element against the current scroll
// position. Adding the class again is a no-op, so elements stay observed.
func (o *Observer) Check(doc *dom.Document) {
	for _, e := range o.entries {
		if !o.intersecting(doc, e.el) {
			continue
		}
		e.el.AddClass(VisibleClass)
		if e.fired {
			continue
		}
		e.fired = true
		for _, fn := range e.onVisible {
			fn()
		}
	}
}

func (o *Observer) intersecting(doc *dom.Document, el *dom.Element) bool {
	ratio := IntersectionRatio(doc, el, o.bottomMargin)
	return ratio > 0 && ratio >= o.threshold
}

// IntersectionRatio is the share of el's area inside the observer root.
func IntersectionRatio(doc *dom.Document, el *dom.Element, bottomMargin float64) float64 {
	vw, vh := doc.Viewport()
	root := dom.Rect{W: vw, H: vh + bottomMargin}
	r := doc.ViewportRect(el)
	if r.Area() == 0 {
		if root.Contains(r.X, r.Y) {
			return 1
		}
		return 0
	}
	return r.Intersect(root).Area() / r.Area()
}
