package media

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog"

	"github.com/iburimskiy/songfx/internal/config"
)

var (
	ErrNotLoaded         = errors.New("media: no track loaded")
	ErrUnsupportedFormat = errors.New("media: unsupported file type")
)

// Track is an Element that plays a decoded stream through an Output.
// Every method except the output callback runs on the UI goroutine.
type Track struct {
	emitter

	out Output
	cfg config.AudioSettings
	log zerolog.Logger

	src    beep.StreamSeeker
	closer io.Closer
	format beep.Format
	tap    *visualTap
	ctrl   *beep.Ctrl
	vol    *effects.Volume
	queued bool // chain is in the output mixer
	inited bool

	paused bool
	volume float64
	muted  bool
	levels []float64

	gen   atomic.Uint64
	ended atomic.Bool
	since time.Duration
}

func NewTrack(out Output, cfg config.AudioSettings, log zerolog.Logger) *Track {
	return &Track{
		out:    out,
		cfg:    cfg,
		log:    log.With().Str("component", "media").Logger(),
		paused: true,
		volume: 1,
	}
}

// Open decodes the file at path by its extension and loads it.
func (t *Track) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("media: open: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("media: decode %s: %w", path, err)
	}

	if err := t.Load(streamer, format); err != nil {
		_ = streamer.Close()
		return err
	}
	t.log.Info().Str("path", path).Dur("duration", format.SampleRate.D(streamer.Len())).Msg("track loaded")
	return nil
}

// Load replaces the current stream. If s is also an io.Closer the track
// closes it when it is replaced or closed.
func (t *Track) Load(s beep.StreamSeeker, format beep.Format) error {
	if !t.inited {
		sr := beep.SampleRate(t.cfg.SampleRate)
		if err := t.out.Init(sr, sr.N(t.cfg.Buffer)); err != nil {
			return fmt.Errorf("media: init output: %w", err)
		}
		t.inited = true
	}
	t.unload()

	t.src = s
	t.format = format
	if c, ok := s.(io.Closer); ok {
		t.closer = c
	}
	t.tap = newVisualTap(s, t.cfg.RingSize)
	t.paused = true
	t.since = 0
	t.emit(LoadedMetadata)
	t.emit(TimeUpdate)
	return nil
}

func (t *Track) Loaded() bool { return t.src != nil }

func (t *Track) Play() error {
	if t.src == nil {
		return ErrNotLoaded
	}
	if !t.paused {
		return nil
	}
	// A chain that drained before Poll saw it is no longer in the mixer.
	if t.ended.Swap(false) {
		t.queued = false
	}
	if t.src.Position() >= t.src.Len() {
		t.seek(0)
	}
	if !t.queued {
		t.enqueue()
	}
	t.out.Lock()
	t.ctrl.Paused = false
	t.out.Unlock()

	t.paused = false
	t.since = 0
	t.emit(Play)
	return nil
}

// enqueue builds the playback chain and hands it to the output. The end
// callback only counts for the chain it was built with.
func (t *Track) enqueue() {
	t.ctrl = &beep.Ctrl{Streamer: t.tap, Paused: true}
	t.vol = &effects.Volume{Streamer: t.ctrl, Base: 2}
	t.applyVolume()

	var s beep.Streamer = t.vol
	if out := beep.SampleRate(t.cfg.SampleRate); out != t.format.SampleRate {
		s = beep.Resample(4, t.format.SampleRate, out, s)
	}
	g := t.gen.Add(1)
	t.ended.Store(false)
	t.out.Play(beep.Seq(s, beep.Callback(func() {
		if t.gen.Load() == g {
			t.ended.Store(true)
		}
	})))
	t.queued = true
}

func (t *Track) Pause() {
	if t.src == nil || t.paused {
		return
	}
	t.out.Lock()
	t.ctrl.Paused = true
	t.out.Unlock()
	t.paused = true
	t.emit(Pause)
}

func (t *Track) Paused() bool { return t.paused }

func (t *Track) CurrentTime() float64 {
	if t.src == nil {
		return 0
	}
	t.out.Lock()
	pos := t.src.Position()
	t.out.Unlock()
	return t.format.SampleRate.D(pos).Seconds()
}

func (t *Track) Duration() float64 {
	if t.src == nil {
		return math.NaN()
	}
	return t.format.SampleRate.D(t.src.Len()).Seconds()
}

func (t *Track) SetCurrentTime(sec float64) {
	if t.src == nil || math.IsNaN(sec) {
		return
	}
	pos := t.format.SampleRate.N(time.Duration(sec * float64(time.Second)))
	t.seek(max(0, min(pos, t.src.Len()-1)))
	t.emit(TimeUpdate)
}

func (t *Track) seek(pos int) {
	t.out.Lock()
	err := t.src.Seek(pos)
	t.out.Unlock()
	if err != nil {
		t.log.Warn().Err(err).Int("position", pos).Msg("seek failed")
	}
}

func (t *Track) Volume() float64 { return t.volume }

func (t *Track) SetVolume(v float64) {
	v = max(0, min(v, 1))
	if v == t.volume {
		return
	}
	t.volume = v
	t.syncVolume()
	t.emit(VolumeChange)
}

func (t *Track) Muted() bool { return t.muted }

func (t *Track) SetMuted(m bool) {
	if m == t.muted {
		return
	}
	t.muted = m
	t.syncVolume()
	t.emit(VolumeChange)
}

func (t *Track) syncVolume() {
	if t.vol == nil {
		return
	}
	t.out.Lock()
	t.applyVolume()
	t.out.Unlock()
}

// applyVolume maps the linear 0..1 volume onto the base 2 gain of
// effects.Volume. Callers hold the output lock.
func (t *Track) applyVolume() {
	t.vol.Silent = t.muted || t.volume == 0
	if !t.vol.Silent {
		t.vol.Volume = math.Log2(t.volume)
	}
}

func (t *Track) On(ev Event, fn func()) func() { return t.on(ev, fn) }

// Poll turns output progress into events. It must be called once per frame
// with the frame length.
func (t *Track) Poll(dt time.Duration) {
	if t.src == nil || t.paused {
		return
	}
	if t.ended.Swap(false) {
		t.paused = true
		t.queued = false
		t.emit(TimeUpdate)
		t.emit(Pause)
		t.emit(Ended)
		return
	}
	t.since += dt
	if t.since >= config.TimeUpdatePeriod {
		t.since -= config.TimeUpdatePeriod
		t.emit(TimeUpdate)
	}
}

// Levels returns n loudness bands of the most recent audio, smoothed over
// calls. Paused tracks decay towards silence.
func (t *Track) Levels(n int) []float64 {
	if len(t.levels) != n {
		t.levels = make([]float64, n)
	}
	var raw []float64
	if t.tap != nil && !t.paused {
		raw = bandLevels(t.tap.snapshot(n*256), n)
	}
	out := make([]float64, n)
	for i := range t.levels {
		v := 0.0
		if raw != nil {
			v = raw[i]
		}
		t.levels[i] = t.levels[i]*config.SmoothingFactor + v*(1-config.SmoothingFactor)
		out[i] = max(0, min(t.levels[i], 1))
	}
	return out
}

// Listeners reports how many event handlers are registered.
func (t *Track) Listeners() int { return t.count() }

func (t *Track) unload() {
	if t.src == nil {
		return
	}
	t.gen.Add(1)
	if t.ctrl != nil {
		t.out.Lock()
		t.ctrl.Streamer = nil
		t.out.Unlock()
	}
	if t.closer != nil {
		if err := t.closer.Close(); err != nil {
			t.log.Warn().Err(err).Msg("close stream")
		}
	}
	t.src, t.closer, t.tap, t.ctrl, t.vol = nil, nil, nil, nil, nil
	t.queued = false
	t.ended.Store(false)
}

// Close stops playback and releases the stream.
func (t *Track) Close() error {
	wasPlaying := t.src != nil && !t.paused
	t.unload()
	t.paused = true
	if wasPlaying {
		t.emit(Pause)
	}
	return nil
}
