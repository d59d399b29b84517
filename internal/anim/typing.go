package anim

import (
	"time"

	"github.com/iburimskiy/songfx/internal/dom"
)

const (
	caretStyle = "2px solid #FF0844"
	caretProp  = "border-right"
)

// Typewriter empties an element and types its text back one rune per
// interval behind a caret. One interval after the last rune the caret goes.
type Typewriter struct {
	el       *dom.Element
	text     []rune
	shown    int
	interval time.Duration
	elapsed  time.Duration
	running  bool
	done     bool
}

func NewTypewriter(el *dom.Element, interval time.Duration) *Typewriter {
	tw := &Typewriter{
		el:       el,
		text:     []rune(el.Text),
		interval: interval,
	}
	el.Text = ""
	el.SetStyle(caretProp, caretStyle)
	return tw
}

// Start types the first rune right away.
func (tw *Typewriter) Start() {
	if tw.running || tw.done {
		return
	}
	tw.running = true
	tw.step()
}

func (tw *Typewriter) Advance(dt time.Duration) {
	if !tw.running {
		return
	}
	tw.elapsed += dt
	for tw.running && tw.elapsed >= tw.interval {
		tw.elapsed -= tw.interval
		tw.step()
	}
}

func (tw *Typewriter) step() {
	if tw.shown < len(tw.text) {
		tw.shown++
		tw.el.Text = string(tw.text[:tw.shown])
		return
	}
	tw.el.SetStyle(caretProp, "none")
	tw.running = false
	tw.done = true
}

func (tw *Typewriter) Done() bool { return tw.done }

// Caret reports whether the caret is still showing.
func (tw *Typewriter) Caret() bool { return tw.el.Style(caretProp) == caretStyle }
