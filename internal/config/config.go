package config

import "time"

const (
	WindowWidth  = 1024
	WindowHeight = 640

	VisualRingSize  = 8192
	SmoothingFactor = 0.6
	LevelBands      = 16

	// Trail
	TrailCapacity = 20
	TrailDecay    = 0.02

	// Particle field
	MaxParticles  = 50
	BurstCount    = 15
	HoverCount    = 5
	RepelRadius   = 100
	RepelStrength = 0.5
	LinkDistance  = 120

	// Scroll effects
	VisibleThreshold = 0.1
	BottomMargin     = -50
	BackToTopOffset  = 300
	CounterDuration  = 2000 * time.Millisecond
	CounterStep      = 16 * time.Millisecond
	TypingInterval   = 100 * time.Millisecond
	GlowPeriod       = 3000 * time.Millisecond
	GlowDuration     = 1000 * time.Millisecond
	FloatingDelay    = 500 * time.Millisecond
	RippleLifetime   = 600 * time.Millisecond
	CharLimit        = 500

	// Audio
	SampleRate       = 44100
	SpeakerBuffer    = 50 * time.Millisecond
	TimeUpdatePeriod = 250 * time.Millisecond

	// Reduced motion kicks in below this much device memory.
	LowMemoryGB = 4

	TPS = 60
)
