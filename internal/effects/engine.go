package effects

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/iburimskiy/songfx/internal/config"
	"github.com/iburimskiy/songfx/internal/dom"
)

const (
	TrailCanvasID    = "mouse-trail-canvas"
	ParticleCanvasID = "particle-canvas"

	// HoverTargets are the elements that shed sparks while hovered.
	HoverTargets = ".btn, .nav-link, .card"
)

var (
	ErrNoLayers = errors.New("effects: page has neither trail nor particle canvas")
	ErrRunning  = errors.New("effects: engine already running")
)

// Engine owns the cursor trail and the particle field. Frames are driven
// from outside, either by Tick from the game loop or by Run in headless
// mode, and the engine only advances between Start and Stop.
type Engine struct {
	cfg config.EffectsSettings
	rng *rand.Rand
	log zerolog.Logger

	width, height float64
	pointerX      float64
	pointerY      float64
	hasPointer    bool

	trail       *ring[TrailPoint]
	particles   []Particle
	spare       []Particle
	connections []Connection

	trailLayer    bool
	particleLayer bool

	ctx     context.Context
	running bool
	detach  []func()
	frames  uint64
}

func New(cfg config.EffectsSettings, rng *rand.Rand, log zerolog.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(cfg.Seed, uint64(time.Now().UnixNano())))
	}
	return &Engine{
		cfg:   cfg,
		rng:   rng,
		log:   log.With().Str("component", "effects").Logger(),
		trail: newRing[TrailPoint](cfg.TrailCapacity),
	}
}

// Start attaches the engine to doc and lets frames run until ctx is
// cancelled or Stop is called.
func (e *Engine) Start(ctx context.Context, doc *dom.Document) error {
	if e.running {
		return ErrRunning
	}
	e.trailLayer = doc.GetElementByID(TrailCanvasID) != nil
	e.particleLayer = doc.GetElementByID(ParticleCanvasID) != nil
	if !e.trailLayer && !e.particleLayer {
		return ErrNoLayers
	}

	e.Resize(doc.Viewport())
	e.detach = append(e.detach,
		doc.AddEventListener(dom.PointerMove, func(ev *dom.Event) {
			e.MovePointer(ev.X, ev.Y)
		}),
		doc.AddEventListener(dom.Click, func(ev *dom.Event) {
			e.Burst(ev.X, ev.Y)
		}),
		doc.AddEventListener(dom.Resize, func(*dom.Event) {
			e.Resize(doc.Viewport())
		}),
	)
	targets := doc.QueryAll(HoverTargets)
	for _, el := range targets {
		e.detach = append(e.detach,
			el.AddEventListener(dom.PointerEnter, func(*dom.Event) {
				e.HoverEnter(doc.ViewportRect(el))
			}),
			el.AddEventListener(dom.PointerLeave, func(*dom.Event) {
				e.HoverLeave()
			}),
		)
	}

	e.ctx = ctx
	e.running = true
	e.log.Debug().
		Bool("trail", e.trailLayer).
		Bool("particles", e.particleLayer).
		Int("hover_targets", len(targets)).
		Msg("engine started")
	return nil
}

// Stop removes every listener Start registered. It is safe to call twice.
func (e *Engine) Stop() {
	if !e.running {
		return
	}
	for _, remove := range e.detach {
		remove()
	}
	e.detach = nil
	e.running = false
	e.log.Debug().Uint64("frames", e.frames).Msg("engine stopped")
}

func (e *Engine) Running() bool { return e.running }

// Tick runs one frame if the engine is running and its context is live.
func (e *Engine) Tick() bool {
	if !e.running {
		return false
	}
	if e.ctx.Err() != nil {
		e.Stop()
		return false
	}
	e.Frame()
	return true
}

// Run drives frames from a clock until ctx is cancelled, the clock closes or
// the engine stops.
func (e *Engine) Run(ctx context.Context, clock <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			e.Stop()
			return ctx.Err()
		case _, ok := <-clock:
			if !ok {
				return nil
			}
			if !e.Tick() {
				return nil
			}
		}
	}
}

// Frame advances trail, particles and connections by one step, in that
// order.
func (e *Engine) Frame() {
	e.updateTrail()
	e.updateParticles()
	e.updateConnections()
	e.frames++
}

func (e *Engine) Resize(w, h float64) {
	e.width, e.height = w, h
}

// MovePointer records the pointer and drops a trail point there.
func (e *Engine) MovePointer(x, y float64) {
	e.pointerX, e.pointerY = x, y
	e.hasPointer = true
	e.AddTrailPoint(x, y)
}

func (e *Engine) AddTrailPoint(x, y float64) {
	e.trail.Push(TrailPoint{
		X:     x,
		Y:     y,
		Life:  1,
		Size:  e.rng.Float64()*8 + 4,
		Color: colorful.Hsl(math.Mod(e.rng.Float64()*60+340, 360), 1, e.rng.Float64()*0.3+0.5),
	})
}

// Burst sprays particles from (x, y). Bursts are not counted against the
// ambient cap and leave only when their life runs out.
func (e *Engine) Burst(x, y float64) {
	for range e.cfg.BurstCount {
		e.particles = append(e.particles, Particle{
			X:       x,
			Y:       y,
			VX:      (e.rng.Float64() - 0.5) * 10,
			VY:      (e.rng.Float64() - 0.5) * 10,
			Size:    e.rng.Float64()*6 + 2,
			Life:    e.rng.Float64()*30 + 20,
			MaxLife: e.rng.Float64()*30 + 20,
			Color:   Accent,
			Alpha:   1,
			Tag:     TagBurst,
		})
	}
}

// HoverEnter scatters sparks across r (viewport coordinates).
func (e *Engine) HoverEnter(r dom.Rect) {
	cx, cy := r.Center()
	for range e.cfg.HoverCount {
		e.particles = append(e.particles, Particle{
			X:       cx + (e.rng.Float64()-0.5)*r.W,
			Y:       cy + (e.rng.Float64()-0.5)*r.H,
			VX:      (e.rng.Float64() - 0.5) * 4,
			VY:      (e.rng.Float64() - 0.5) * 4,
			Size:    e.rng.Float64()*3 + 1,
			Life:    e.rng.Float64()*20 + 10,
			MaxLife: e.rng.Float64()*20 + 10,
			Color:   Accent,
			Alpha:   1,
			Tag:     TagHover,
		})
	}
}

// HoverLeave drops every hover spark whatever its remaining life.
func (e *Engine) HoverLeave() {
	e.particles = slices.DeleteFunc(e.particles, func(p Particle) bool { return p.Tag == TagHover })
}

func (e *Engine) updateTrail() {
	decay := e.cfg.TrailDecay
	e.trail.Retain(func(p *TrailPoint) bool {
		p.Life -= decay
		return p.Life > 0
	})
}

func (e *Engine) updateParticles() {
	if e.count(TagAmbient) < e.cfg.MaxParticles {
		e.particles = append(e.particles, e.newAmbient())
	}

	radius, strength := e.cfg.RepelRadius, e.cfg.RepelStrength
	next := e.spare[:0]
	for _, p := range e.particles {
		p.X += p.VX
		p.Y += p.VY
		p.Life--

		if p.X < 0 || p.X > e.width {
			p.VX = -p.VX
		}
		if p.Y < 0 || p.Y > e.height {
			p.VY = -p.VY
		}

		if e.hasPointer {
			dx, dy := p.X-e.pointerX, p.Y-e.pointerY
			d := math.Hypot(dx, dy)
			if d > 0 && d < radius {
				force := (radius - d) / radius
				p.VX += dx / d * force * strength
				p.VY += dy / d * force * strength
			}
		}

		if p.Life > 0 {
			next = append(next, p)
		}
	}
	e.spare = e.particles[:0]
	e.particles = next
}

func (e *Engine) newAmbient() Particle {
	c := Accent
	if e.rng.Float64() > 0.5 {
		c = White
	}
	return Particle{
		X:       e.rng.Float64() * e.width,
		Y:       e.rng.Float64() * e.height,
		VX:      (e.rng.Float64() - 0.5) * 2,
		VY:      (e.rng.Float64() - 0.5) * 2,
		Size:    e.rng.Float64()*3 + 1,
		Life:    e.rng.Float64()*100 + 50,
		MaxLife: e.rng.Float64()*100 + 50,
		Color:   c,
		Alpha:   e.rng.Float64()*0.8 + 0.2,
		Tag:     TagAmbient,
	}
}

// updateConnections pairs every two particles closer than the link
// distance. It is quadratic, which is fine for the few dozen particles the
// cap allows.
func (e *Engine) updateConnections() {
	limit := e.cfg.LinkDistance
	e.connections = e.connections[:0]
	for i := 0; i < len(e.particles); i++ {
		for j := i + 1; j < len(e.particles); j++ {
			p1, p2 := &e.particles[i], &e.particles[j]
			d := distance(p1.X, p1.Y, p2.X, p2.Y)
			if d < limit {
				e.connections = append(e.connections, Connection{
					A:        i,
					B:        j,
					Distance: d,
					Alpha:    (limit - d) / limit,
				})
			}
		}
	}
}

func (e *Engine) count(tag Tag) int {
	n := 0
	for i := range e.particles {
		if e.particles[i].Tag == tag {
			n++
		}
	}
	return n
}

// Trail returns a copy of the trail, oldest first.
func (e *Engine) Trail() []TrailPoint { return e.trail.Slice() }

// Particles returns the live particle slice. It is valid until the next
// frame and must not be modified.
func (e *Engine) Particles() []Particle { return e.particles }

// Connections indexes into Particles() and shares its lifetime.
func (e *Engine) Connections() []Connection { return e.connections }

func (e *Engine) Pointer() (x, y float64) { return e.pointerX, e.pointerY }

func (e *Engine) HasTrailLayer() bool { return e.trailLayer }

func (e *Engine) HasParticleLayer() bool { return e.particleLayer }

type Stats struct {
	Frames      uint64
	Trail       int
	Ambient     int
	Burst       int
	Hover       int
	Connections int
}

func (e *Engine) Stats() Stats {
	return Stats{
		Frames:      e.frames,
		Trail:       e.trail.Len(),
		Ambient:     e.count(TagAmbient),
		Burst:       e.count(TagBurst),
		Hover:       e.count(TagHover),
		Connections: len(e.connections),
	}
}
