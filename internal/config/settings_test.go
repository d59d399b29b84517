package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if s != Default() {
		t.Errorf("got %+v, want defaults", s)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "songfx.yaml", `
effects:
  max_particles: 80
scroll:
  counter_duration: 1s
log:
  level: debug
`)
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Effects.MaxParticles != 80 {
		t.Errorf("max_particles = %d, want 80", s.Effects.MaxParticles)
	}
	if s.Scroll.CounterDuration != time.Second {
		t.Errorf("counter_duration = %v, want 1s", s.Scroll.CounterDuration)
	}
	if s.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", s.Log.Level)
	}
	if s.Effects.TrailCapacity != TrailCapacity {
		t.Errorf("trail_capacity = %d, want default %d", s.Effects.TrailCapacity, TrailCapacity)
	}
	if s.Effects.LinkDistance != LinkDistance {
		t.Errorf("link_distance = %v, want default %v", s.Effects.LinkDistance, LinkDistance)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"zero_trail", "effects:\n  trail_capacity: 0\n", "trail_capacity"},
		{"bad_window", "window:\n  width: -1\n", "window size"},
		{"step_too_long", "scroll:\n  counter_step: 5s\n", "counter_step"},
		{"zero_glow_period", "scroll:\n  glow_period: 0s\n", "glow_period"},
		{"negative_glow", "scroll:\n  glow_duration: -1s\n", "glow_duration"},
		{"zero_link", "effects:\n  link_distance: 0\n", "link_distance"},
		{"negative_repel", "effects:\n  repel_radius: -5\n", "repel_radius"},
		{"negative_burst", "effects:\n  burst_count: -1\n", "burst_count"},
		{"garbage", "effects: [1, 2", "unmarshal"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "songfx.yaml", c.body)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "page.yaml", "a: 1\n")
	other := writeFile(t, dir, "other.yaml", "b: 1\n")

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(other, []byte("b: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("a: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	want, _ := filepath.Abs(path)
	select {
	case got := <-w.Events:
		if got != want {
			t.Errorf("event for %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event within 2s")
	}
}
