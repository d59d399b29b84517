package effects

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	Accent = colorful.Color{R: 1, G: 8.0 / 255, B: 68.0 / 255} // #FF0844
	White  = colorful.Color{R: 1, G: 1, B: 1}
)

type Tag uint8

const (
	TagAmbient Tag = iota
	TagBurst
	TagHover
)

func (t Tag) String() string {
	switch t {
	case TagBurst:
		return "burst"
	case TagHover:
		return "hover"
	}
	return "ambient"
}

// TrailPoint is one dot of the cursor trail. Life runs from 1 down to 0.
type TrailPoint struct {
	X, Y  float64
	Life  float64
	Size  float64
	Color colorful.Color
}

func (p TrailPoint) Radius() float64 { return p.Size * p.Life }

// Particle life and max life are counted in frames.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Size    float64
	Life    float64
	MaxLife float64
	Color   colorful.Color
	Alpha   float64
	Tag     Tag
}

// Opacity fades the particle with its remaining life.
func (p Particle) Opacity() float64 {
	if p.MaxLife <= 0 {
		return 0
	}
	return p.Alpha * clamp01(p.Life/p.MaxLife)
}

// Glow is the blur radius used when drawing the particle.
func (p Particle) Glow() float64 {
	if p.Tag == TagBurst {
		return 15
	}
	return 5
}

// Connection links Particles()[A] and Particles()[B] for the current frame.
type Connection struct {
	A, B     int
	Distance float64
	Alpha    float64
}

func distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
