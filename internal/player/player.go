package player

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/iburimskiy/songfx/internal/dom"
	"github.com/iburimskiy/songfx/internal/media"
)

const (
	buttonSize  = 32
	gap         = 12
	timeWidth   = 88
	sliderWidth = 96
	sliderStep  = 0.1
)

// Widget is a set of custom controls over a media.Element. It never owns
// playback state: every field below is refreshed from element events.
type Widget struct {
	el     media.Element
	bounds dom.Rect
	log    zerolog.Logger
	remove []func()

	playing  bool
	mute     bool
	slider   float64
	duration float64
	progress float64
	current  string
	total    string
}

// Layout holds the hit rectangles of the widget controls.
type Layout struct {
	Play     dom.Rect
	Progress dom.Rect
	Time     dom.Rect
	Mute     dom.Rect
	Slider   dom.Rect
}

func New(el media.Element, bounds dom.Rect, log zerolog.Logger) *Widget {
	w := &Widget{
		el:     el,
		bounds: bounds,
		log:    log.With().Str("component", "player").Logger(),
	}
	w.remove = []func(){
		el.On(media.LoadedMetadata, w.onLoadedMetadata),
		el.On(media.TimeUpdate, w.onTimeUpdate),
		el.On(media.Play, func() { w.playing = true }),
		el.On(media.Pause, func() { w.playing = false }),
		el.On(media.Ended, func() { w.playing = false }),
		el.On(media.VolumeChange, w.onVolumeChange),
	}
	w.playing = !el.Paused()
	w.onLoadedMetadata()
	w.onTimeUpdate()
	w.onVolumeChange()
	return w
}

func (w *Widget) onLoadedMetadata() {
	w.duration = w.el.Duration()
	w.total = FormatTime(w.duration)
}

func (w *Widget) onTimeUpdate() {
	cur := w.el.CurrentTime()
	if w.duration > 0 && !math.IsInf(w.duration, 0) {
		w.progress = max(0, min(cur/w.duration*100, 100))
	}
	w.current = FormatTime(cur)
}

func (w *Widget) onVolumeChange() {
	w.slider = w.el.Volume()
	w.mute = w.el.Muted() || w.slider == 0
}

// TogglePlayPause asks the element to play or pause. A rejected play is
// only logged; the icon follows the element's events.
func (w *Widget) TogglePlayPause() {
	if !w.playing {
		if err := w.el.Play(); err != nil {
			w.log.Debug().Err(err).Msg("play rejected")
		}
		return
	}
	w.el.Pause()
}

// Seek moves playback to fraction of the duration. Tracks without a usable
// duration ignore it.
func (w *Widget) Seek(fraction float64) {
	d := w.el.Duration()
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return
	}
	w.el.SetCurrentTime(max(0, min(fraction, 1)) * d)
}

// SeekAt seeks to the horizontal position x on the progress bar.
func (w *Widget) SeekAt(x float64) {
	bar := w.Layout().Progress
	if bar.W <= 0 {
		return
	}
	w.Seek((x - bar.X) / bar.W)
}

func (w *Widget) SetVolume(v float64) {
	w.el.SetVolume(max(0, min(v, 1)))
}

// SlideTo sets the volume from position x on the slider, snapped to steps
// of 0.1.
func (w *Widget) SlideTo(x float64) {
	s := w.Layout().Slider
	if s.W <= 0 {
		return
	}
	v := math.Round((x-s.X)/s.W/sliderStep) * sliderStep
	w.SetVolume(v)
}

func (w *Widget) ToggleMute() {
	w.el.SetMuted(!w.el.Muted())
}

// HandleClick routes a click in document coordinates to the control under
// it and reports whether the widget consumed it.
func (w *Widget) HandleClick(x, y float64) bool {
	if !w.bounds.Contains(x, y) {
		return false
	}
	l := w.Layout()
	switch {
	case l.Play.Contains(x, y):
		w.TogglePlayPause()
	case l.Progress.Contains(x, y):
		w.SeekAt(x)
	case l.Mute.Contains(x, y):
		w.ToggleMute()
	case l.Slider.Contains(x, y):
		w.SlideTo(x)
	}
	return true
}

func (w *Widget) Bounds() dom.Rect { return w.bounds }

func (w *Widget) SetBounds(r dom.Rect) { w.bounds = r }

// Layout places the controls left to right: play, progress, time, mute,
// volume slider.
func (w *Widget) Layout() Layout {
	b := w.bounds
	cy := b.Y + (b.H-buttonSize)/2
	var l Layout
	l.Play = dom.Rect{X: b.X, Y: cy, W: buttonSize, H: buttonSize}
	l.Slider = dom.Rect{X: b.X + b.W - sliderWidth, Y: cy, W: sliderWidth, H: buttonSize}
	l.Mute = dom.Rect{X: l.Slider.X - gap - buttonSize, Y: cy, W: buttonSize, H: buttonSize}
	l.Time = dom.Rect{X: l.Mute.X - gap - timeWidth, Y: cy, W: timeWidth, H: buttonSize}
	left := l.Play.X + buttonSize + gap
	l.Progress = dom.Rect{X: left, Y: cy, W: max(0, l.Time.X-gap-left), H: buttonSize}
	return l
}

func (w *Widget) Playing() bool { return w.playing }

// MuteIcon reports whether the muted icon is shown.
func (w *Widget) MuteIcon() bool { return w.mute }

func (w *Widget) ProgressPercent() float64 { return w.progress }

func (w *Widget) CurrentText() string { return w.current }

func (w *Widget) TotalText() string { return w.total }

func (w *Widget) Slider() float64 { return w.slider }

// Element is the media element the widget controls.
func (w *Widget) Element() media.Element { return w.el }

func (w *Widget) Close() {
	for _, rm := range w.remove {
		rm()
	}
	w.remove = nil
}

// FormatTime renders seconds as m:ss.
func FormatTime(sec float64) string {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		return "0:00"
	}
	s := int(sec)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
