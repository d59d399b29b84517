package anim

import (
	"math"
	"strconv"
	"time"

	"github.com/iburimskiy/songfx/internal/dom"
)

// Counter counts an element's text up from 0 to target, one step per frame.
// The step is sized so the count takes duration at one frame per interval.
type Counter struct {
	el      *dom.Element
	target  int
	step    float64
	current float64
	running bool
	done    bool
}

func NewCounter(el *dom.Element, target int, duration, interval time.Duration) *Counter {
	return &Counter{
		el:     el,
		target: target,
		step:   float64(target) / (float64(duration) / float64(interval)),
	}
}

// Start begins counting. Starting a running or finished counter does
// nothing.
func (c *Counter) Start() {
	if c.running || c.done {
		return
	}
	c.running = true
	c.Advance()
}

// Advance moves one step and reports whether the counter is still running.
// The last step writes the exact target rather than the accumulated value.
func (c *Counter) Advance() bool {
	if !c.running {
		return false
	}
	c.current += c.step
	if c.current < float64(c.target) {
		c.el.Text = strconv.Itoa(int(math.Floor(c.current)))
		return true
	}
	c.el.Text = strconv.Itoa(c.target)
	c.running = false
	c.done = true
	return false
}

func (c *Counter) Done() bool { return c.done }

func (c *Counter) Target() int { return c.target }
