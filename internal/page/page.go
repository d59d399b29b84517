// Package page wires the small click, focus and input behaviours of the
// page: ripples, dismissible messages, the nav menu, the user dropdown,
// focused form fields, the textarea character counter and lazy images.
package page

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/iburimskiy/songfx/internal/config"
	"github.com/iburimskiy/songfx/internal/dom"
)

const (
	RippleTargets = ".btn, .nav-link, .card"
	RippleClass   = "ripple-effect"
	ActiveClass   = "active"
	FocusedClass  = "focused"
	LoadedClass   = "loaded"
)

// Ripple is a live click ripple.
type Ripple struct {
	El  *dom.Element
	Age time.Duration
}

// Progress runs from 0 when the ripple appears to 1 when it is removed.
func (r Ripple) Progress() float64 {
	return min(1, float64(r.Age)/float64(config.RippleLifetime))
}

type Interactions struct {
	log zerolog.Logger

	doc     *dom.Document
	ripples []Ripple
	detach  []func()
}

func New(log zerolog.Logger) *Interactions {
	return &Interactions{log: log.With().Str("component", "page").Logger()}
}

func (in *Interactions) on(el *dom.Element, t dom.EventType, fn dom.Handler) {
	in.detach = append(in.detach, el.AddEventListener(t, fn))
}

func (in *Interactions) Attach(doc *dom.Document) {
	in.Detach()
	in.doc = doc

	for _, el := range doc.QueryAll(RippleTargets) {
		in.on(el, dom.Click, func(ev *dom.Event) { in.ripple(el, ev) })
	}
	for _, el := range doc.QueryAll(".message-close") {
		in.on(el, dom.Click, func(*dom.Event) {
			if msg := el.Closest(".message"); msg != nil {
				msg.Remove()
			}
		})
	}

	if toggle := doc.Query(".nav-toggle"); toggle != nil {
		in.on(toggle, dom.Click, func(*dom.Event) {
			if menu := doc.Query(".nav-menu"); menu != nil {
				menu.ToggleClass(ActiveClass)
			}
			toggle.ToggleClass(ActiveClass)
		})
	}
	if btn := doc.GetElementByID("userMenuBtn"); btn != nil {
		in.on(btn, dom.Click, func(ev *dom.Event) {
			ev.StopPropagation()
			if menu := doc.GetElementByID("dropdownMenu"); menu != nil {
				menu.ToggleClass(ActiveClass)
			}
		})
	}
	if menu := doc.GetElementByID("dropdownMenu"); menu != nil {
		in.on(menu, dom.Click, func(ev *dom.Event) { ev.StopPropagation() })
	}
	in.detach = append(in.detach, doc.AddEventListener(dom.Click, in.closeDropdown))

	for _, el := range doc.QueryAll("input, textarea") {
		in.on(el, dom.Focus, func(*dom.Event) {
			if p := el.Parent(); p != nil {
				p.AddClass(FocusedClass)
			}
		})
		in.on(el, dom.Blur, func(*dom.Event) {
			if p := el.Parent(); p != nil {
				p.RemoveClass(FocusedClass)
			}
		})
		if el.Tag == "textarea" {
			in.on(el, dom.Input, func(*dom.Event) { updateCharCounter(el) })
		}
	}

	in.detach = append(in.detach, doc.AddEventListener(dom.Load, func(*dom.Event) { loadImages(doc) }))
	in.log.Debug().Int("listeners", len(in.detach)).Msg("interactions attached")
}

func (in *Interactions) Detach() {
	for _, rm := range in.detach {
		rm()
	}
	in.detach = nil
	for _, r := range in.ripples {
		r.El.Remove()
	}
	in.ripples = nil
}

// Advance ages the ripples and removes the expired ones.
func (in *Interactions) Advance(dt time.Duration) {
	live := in.ripples[:0]
	for _, r := range in.ripples {
		r.Age += dt
		if r.Age >= config.RippleLifetime {
			r.El.Remove()
			continue
		}
		live = append(live, r)
	}
	clear(in.ripples[len(live):])
	in.ripples = live
}

func (in *Interactions) Ripples() []Ripple { return in.ripples }

// ripple adds a ripple child to host, positioned at the click point.
func (in *Interactions) ripple(host *dom.Element, ev *dom.Event) {
	vr := in.doc.ViewportRect(host)
	ox, oy := ev.X-vr.X, ev.Y-vr.Y
	r := in.doc.CreateElement("div")
	r.AddClass(RippleClass)
	r.SetStyle("left", fmt.Sprintf("%gpx", ox))
	r.SetStyle("top", fmt.Sprintf("%gpx", oy))
	r.SetStyle("pointer-events", "none")
	r.Bounds = dom.Rect{X: host.Bounds.X + ox, Y: host.Bounds.Y + oy}
	host.AppendChild(r)
	in.ripples = append(in.ripples, Ripple{El: r})
}

// closeDropdown closes the user menu on any click outside it.
func (in *Interactions) closeDropdown(ev *dom.Event) {
	dd := in.doc.Query(".user-dropdown")
	if dd == nil || (ev.Target != nil && ev.Target.Closest(".user-dropdown") != nil) {
		return
	}
	dd.RemoveClass(ActiveClass)
	if menu := in.doc.GetElementByID("dropdownMenu"); menu != nil {
		menu.RemoveClass(ActiveClass)
	}
}

func updateCharCounter(el *dom.Element) {
	p := el.Parent()
	if p == nil {
		return
	}
	if counter := p.Query(".char-counter"); counter != nil {
		counter.Text = fmt.Sprintf("%d/%d", utf8.RuneCountInString(el.Value), config.CharLimit)
	}
}

// loadImages swaps every deferred image source in.
func loadImages(doc *dom.Document) {
	for _, img := range doc.QueryAll("img[data-src]") {
		src, _ := img.Dataset("src")
		img.SetAttr("src", src)
		img.AddClass(LoadedClass)
	}
}
