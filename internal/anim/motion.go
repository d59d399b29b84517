package anim

import (
	"fmt"
	"math"
	"time"

	"github.com/iburimskiy/songfx/internal/dom"
)

const (
	glowProp         = "text-shadow"
	GlowStyle        = "0 0 20px #FF0844, 0 0 40px #FF0844, 0 0 60px #FF0844"
	ReducedMotion    = "reduced-motion"
	floatPeriod      = 3 * time.Second
	floatAmplitudePx = 6
)

// TextGlow lights every element up for duration once per period.
type TextGlow struct {
	els      []*dom.Element
	period   time.Duration
	duration time.Duration
	elapsed  time.Duration
	litFor   time.Duration
}

func NewTextGlow(els []*dom.Element, period, duration time.Duration) *TextGlow {
	return &TextGlow{els: els, period: period, duration: duration}
}

func (g *TextGlow) Advance(dt time.Duration) {
	if g.litFor > 0 {
		g.litFor -= dt
		if g.litFor <= 0 {
			g.set("none")
		}
	}
	if g.period <= 0 {
		return
	}
	g.elapsed += dt
	for g.elapsed >= g.period {
		g.elapsed -= g.period
		g.set(GlowStyle)
		g.litFor = g.duration
	}
}

func (g *TextGlow) set(v string) {
	for _, el := range g.els {
		el.SetStyle(glowProp, v)
	}
}

func Glowing(el *dom.Element) bool { return el.Style(glowProp) == GlowStyle }

// Floaters staggers a gentle bob across elements, delay apart.
type Floaters struct {
	delays  map[*dom.Element]time.Duration
	elapsed time.Duration
}

func NewFloaters(els []*dom.Element, delay time.Duration) *Floaters {
	f := &Floaters{delays: make(map[*dom.Element]time.Duration, len(els))}
	for i, el := range els {
		d := time.Duration(i) * delay
		f.delays[el] = d
		el.SetStyle("animation-delay", fmt.Sprintf("%gs", d.Seconds()))
	}
	return f
}

func (f *Floaters) Advance(dt time.Duration) { f.elapsed += dt }

// Offset is the vertical displacement of el right now. Elements that are not
// floating, or whose delay has not passed yet, sit still.
func (f *Floaters) Offset(el *dom.Element) float64 {
	d, ok := f.delays[el]
	if !ok || f.elapsed < d {
		return 0
	}
	phase := float64(f.elapsed-d) / float64(floatPeriod)
	return -floatAmplitudePx * math.Sin(2*math.Pi*phase)
}

// ApplyReducedMotion tags the body when the device has little memory or the
// user asked for less motion. deviceMemoryGB of 0 means unknown.
func ApplyReducedMotion(body *dom.Element, deviceMemoryGB, lowMemoryGB float64, prefersReduced bool) bool {
	if (deviceMemoryGB > 0 && deviceMemoryGB < lowMemoryGB) || prefersReduced {
		body.AddClass(ReducedMotion)
		return true
	}
	return false
}
