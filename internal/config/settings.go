package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the on-disk configuration. Every field falls back to the
// package constants when the YAML leaves it out.
type Settings struct {
	Window  WindowSettings  `yaml:"window"`
	Effects EffectsSettings `yaml:"effects"`
	Scroll  ScrollSettings  `yaml:"scroll"`
	Audio   AudioSettings   `yaml:"audio"`
	Motion  MotionSettings  `yaml:"motion"`
	Log     LogSettings     `yaml:"log"`
	Page    string          `yaml:"page"`
}

type WindowSettings struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type EffectsSettings struct {
	TrailCapacity int     `yaml:"trail_capacity"`
	TrailDecay    float64 `yaml:"trail_decay"`
	MaxParticles  int     `yaml:"max_particles"`
	BurstCount    int     `yaml:"burst_count"`
	HoverCount    int     `yaml:"hover_count"`
	RepelRadius   float64 `yaml:"repel_radius"`
	RepelStrength float64 `yaml:"repel_strength"`
	LinkDistance  float64 `yaml:"link_distance"`
	Seed          uint64  `yaml:"seed"`
}

type ScrollSettings struct {
	Threshold       float64       `yaml:"threshold"`
	BottomMargin    float64       `yaml:"bottom_margin"`
	BackToTopOffset float64       `yaml:"back_to_top_offset"`
	CounterDuration time.Duration `yaml:"counter_duration"`
	CounterStep     time.Duration `yaml:"counter_step"`
	TypingInterval  time.Duration `yaml:"typing_interval"`
	GlowPeriod      time.Duration `yaml:"glow_period"`
	GlowDuration    time.Duration `yaml:"glow_duration"`
}

type AudioSettings struct {
	SampleRate int           `yaml:"sample_rate"`
	Buffer     time.Duration `yaml:"buffer"`
	RingSize   int           `yaml:"ring_size"`
}

type MotionSettings struct {
	// DeviceMemoryGB of 0 means unknown.
	DeviceMemoryGB       float64 `yaml:"device_memory_gb"`
	PrefersReducedMotion bool    `yaml:"prefers_reduced_motion"`
}

type LogSettings struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Width:  WindowWidth,
			Height: WindowHeight,
			Title:  "songfx - Space: Play/Pause, O: Open track, Esc/Q: Quit",
		},
		Effects: EffectsSettings{
			TrailCapacity: TrailCapacity,
			TrailDecay:    TrailDecay,
			MaxParticles:  MaxParticles,
			BurstCount:    BurstCount,
			HoverCount:    HoverCount,
			RepelRadius:   RepelRadius,
			RepelStrength: RepelStrength,
			LinkDistance:  LinkDistance,
		},
		Scroll: ScrollSettings{
			Threshold:       VisibleThreshold,
			BottomMargin:    BottomMargin,
			BackToTopOffset: BackToTopOffset,
			CounterDuration: CounterDuration,
			CounterStep:     CounterStep,
			TypingInterval:  TypingInterval,
			GlowPeriod:      GlowPeriod,
			GlowDuration:    GlowDuration,
		},
		Audio: AudioSettings{
			SampleRate: SampleRate,
			Buffer:     SpeakerBuffer,
			RingSize:   VisualRingSize,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) Validate() error {
	switch {
	case s.Window.Width <= 0 || s.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height)
	case s.Effects.TrailCapacity <= 0:
		return errors.New("effects.trail_capacity must be positive")
	case s.Effects.TrailDecay <= 0:
		return errors.New("effects.trail_decay must be positive")
	case s.Effects.MaxParticles < 0:
		return errors.New("effects.max_particles must not be negative")
	case s.Effects.BurstCount < 0 || s.Effects.HoverCount < 0:
		return errors.New("effects.burst_count and hover_count must not be negative")
	case s.Effects.RepelRadius < 0:
		return errors.New("effects.repel_radius must not be negative")
	case s.Effects.LinkDistance <= 0:
		return errors.New("effects.link_distance must be positive")
	case s.Scroll.CounterStep <= 0 || s.Scroll.CounterDuration < s.Scroll.CounterStep:
		return errors.New("scroll.counter_step must be positive and not exceed counter_duration")
	case s.Scroll.TypingInterval <= 0:
		return errors.New("scroll.typing_interval must be positive")
	case s.Scroll.GlowPeriod <= 0:
		return errors.New("scroll.glow_period must be positive")
	case s.Scroll.GlowDuration < 0:
		return errors.New("scroll.glow_duration must not be negative")
	case s.Audio.SampleRate <= 0:
		return errors.New("audio.sample_rate must be positive")
	case s.Audio.RingSize <= 0:
		return errors.New("audio.ring_size must be positive")
	}
	return nil
}
