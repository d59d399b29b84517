package player

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iburimskiy/songfx/internal/dom"
	"github.com/iburimskiy/songfx/internal/media"
)

// fakeElement is an in-memory media element with an optional play veto.
type fakeElement struct {
	cur, dur, vol float64
	muted, paused bool
	rejectPlay    bool
	handlers      map[media.Event][]func()
}

func newFake(dur float64) *fakeElement {
	return &fakeElement{dur: dur, vol: 1, paused: true, handlers: map[media.Event][]func(){}}
}

func (f *fakeElement) fire(ev media.Event) {
	for _, fn := range f.handlers[ev] {
		fn()
	}
}

func (f *fakeElement) Play() error {
	if f.rejectPlay {
		return errors.New("autoplay blocked")
	}
	f.paused = false
	f.fire(media.Play)
	return nil
}

func (f *fakeElement) Pause() {
	f.paused = true
	f.fire(media.Pause)
}

func (f *fakeElement) CurrentTime() float64 { return f.cur }

func (f *fakeElement) SetCurrentTime(s float64) {
	f.cur = s
	f.fire(media.TimeUpdate)
}

func (f *fakeElement) Duration() float64 { return f.dur }
func (f *fakeElement) Volume() float64   { return f.vol }

func (f *fakeElement) SetVolume(v float64) {
	f.vol = v
	f.fire(media.VolumeChange)
}

func (f *fakeElement) Muted() bool { return f.muted }

func (f *fakeElement) SetMuted(m bool) {
	f.muted = m
	f.fire(media.VolumeChange)
}

func (f *fakeElement) Paused() bool { return f.paused }

func (f *fakeElement) On(ev media.Event, fn func()) func() {
	f.handlers[ev] = append(f.handlers[ev], fn)
	i := len(f.handlers[ev]) - 1
	return func() { f.handlers[ev][i] = func() {} }
}

func (f *fakeElement) Levels(n int) []float64 { return make([]float64, n) }

var box = dom.Rect{X: 100, Y: 500, W: 600, H: 48}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{math.NaN(), "0:00"},
		{-3, "0:00"},
		{0, "0:00"},
		{5, "0:05"},
		{65, "1:05"},
		{59.99, "0:59"},
		{3600, "60:00"},
	}
	for _, c := range cases {
		if got := FormatTime(c.in); got != c.want {
			t.Errorf("FormatTime(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSeekHalfway(t *testing.T) {
	el := newFake(200)
	w := New(el, box, zerolog.Nop())
	w.Seek(0.5)
	if el.cur != 100 {
		t.Fatalf("current time = %v, want 100", el.cur)
	}
	if w.ProgressPercent() != 50 || w.CurrentText() != "1:40" || w.TotalText() != "3:20" {
		t.Errorf("projection %v %q / %q", w.ProgressPercent(), w.CurrentText(), w.TotalText())
	}
}

func TestSeekAtProgressBar(t *testing.T) {
	el := newFake(200)
	w := New(el, box, zerolog.Nop())
	bar := w.Layout().Progress
	w.HandleClick(bar.X+bar.W/4, bar.Y+1)
	if math.Abs(el.cur-50) > 1e-9 {
		t.Fatalf("current time = %v, want 50", el.cur)
	}
}

func TestSeekWithoutDuration(t *testing.T) {
	for _, d := range []float64{math.NaN(), 0, math.Inf(1)} {
		el := newFake(d)
		el.cur = 3
		w := New(el, box, zerolog.Nop())
		w.Seek(0.5)
		if el.cur != 3 {
			t.Errorf("duration %v: seek moved time to %v", d, el.cur)
		}
		if w.TotalText() != "0:00" {
			t.Errorf("duration %v: total %q", d, w.TotalText())
		}
	}
}

func TestMuteIcon(t *testing.T) {
	el := newFake(10)
	w := New(el, box, zerolog.Nop())
	if w.MuteIcon() {
		t.Fatal("mute icon at full volume")
	}
	w.SetVolume(0)
	if !w.MuteIcon() {
		t.Fatal("volume 0 should show the mute icon")
	}
	w.SetVolume(0.3)
	if w.MuteIcon() || w.Slider() != 0.3 {
		t.Fatalf("restored volume: mute=%v slider=%v", w.MuteIcon(), w.Slider())
	}
	w.ToggleMute()
	if !w.MuteIcon() || !el.muted {
		t.Fatal("toggle mute did not mute")
	}
	w.ToggleMute()
	if w.MuteIcon() {
		t.Fatal("unmute kept the mute icon")
	}
}

func TestSliderSnapsToSteps(t *testing.T) {
	el := newFake(10)
	w := New(el, box, zerolog.Nop())
	s := w.Layout().Slider
	w.HandleClick(s.X+s.W*0.42, s.Y+1)
	if math.Abs(el.vol-0.4) > 1e-9 {
		t.Fatalf("volume = %v, want 0.4", el.vol)
	}
}

func TestPlayPauseFollowsEvents(t *testing.T) {
	el := newFake(10)
	w := New(el, box, zerolog.Nop())
	w.TogglePlayPause()
	if !w.Playing() {
		t.Fatal("not playing after play event")
	}
	el.cur = 10
	el.paused = true
	el.fire(media.Ended)
	if w.Playing() {
		t.Fatal("still playing after ended")
	}
}

func TestRejectedPlayKeepsPausedIcon(t *testing.T) {
	el := newFake(10)
	el.rejectPlay = true
	w := New(el, box, zerolog.Nop())
	play := w.Layout().Play
	if !w.HandleClick(play.X+1, play.Y+1) {
		t.Fatal("click inside widget not consumed")
	}
	if w.Playing() {
		t.Fatal("rejected play shows the playing icon")
	}
}

func TestClickOutsideAndClose(t *testing.T) {
	el := newFake(10)
	w := New(el, box, zerolog.Nop())
	if w.HandleClick(0, 0) {
		t.Fatal("click outside consumed")
	}
	w.Close()
	_ = el.Play()
	if w.Playing() {
		t.Fatal("closed widget still follows events")
	}
}

func TestLayoutFitsBounds(t *testing.T) {
	w := New(newFake(1), box, zerolog.Nop())
	l := w.Layout()
	for name, r := range map[string]dom.Rect{"play": l.Play, "progress": l.Progress, "time": l.Time, "mute": l.Mute, "slider": l.Slider} {
		if r.X < box.X || r.X+r.W > box.X+box.W+1e-9 || r.W <= 0 {
			t.Errorf("%s %+v outside %+v", name, r, box)
		}
	}
	if l.Progress.X+l.Progress.W > l.Time.X {
		t.Error("progress overlaps time")
	}
}
