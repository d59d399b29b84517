// Package scene ties a page document to the effects engine, the scroll
// effects, the page interactions and one audio player per audio element.
// It holds no rendering code so that it can run headless.
package scene

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/iburimskiy/songfx/internal/anim"
	"github.com/iburimskiy/songfx/internal/config"
	"github.com/iburimskiy/songfx/internal/dom"
	"github.com/iburimskiy/songfx/internal/effects"
	"github.com/iburimskiy/songfx/internal/media"
	"github.com/iburimskiy/songfx/internal/page"
	"github.com/iburimskiy/songfx/internal/player"
)

var ErrNoPlayer = errors.New("scene: page has no audio element")

// Player pairs an audio element of the page with its track and widget.
type Player struct {
	El     *dom.Element
	Track  *media.Track
	Widget *player.Widget
}

type Scene struct {
	cfg  config.Settings
	out  media.Output
	log  zerolog.Logger
	base zerolog.Logger

	doc     *dom.Document
	baseDir string
	engine  *effects.Engine
	fx      *anim.Effects
	ui      *page.Interactions
	players []*Player
	reduced bool

	ctx    context.Context
	reload chan *dom.Document
	drag   *player.Widget
	seek   bool
	detach []func()
}

func New(cfg config.Settings, out media.Output, rng *rand.Rand, log zerolog.Logger) *Scene {
	return &Scene{
		cfg:    cfg,
		out:    out,
		log:    log.With().Str("component", "scene").Logger(),
		base:   log,
		engine: effects.New(cfg.Effects, rng, log),
		fx:     anim.New(cfg.Scroll, log),
		ui:     page.New(log),
		reload: make(chan *dom.Document, 1),
	}
}

// Attach builds every effect on doc and fires the page load event. Audio
// sources are resolved relative to baseDir.
func (s *Scene) Attach(ctx context.Context, doc *dom.Document, baseDir string) error {
	s.ctx = ctx
	s.doc = doc
	s.baseDir = baseDir

	switch err := s.engine.Start(ctx, doc); {
	case errors.Is(err, effects.ErrNoLayers):
		s.log.Warn().Msg("no effect canvases on page, trail and particles disabled")
	case err != nil:
		return fmt.Errorf("scene: %w", err)
	}
	s.fx.Attach(doc)
	s.ui.Attach(doc)

	for _, el := range doc.QueryAll("audio") {
		s.addPlayer(el)
	}
	s.reduced = anim.ApplyReducedMotion(doc.Body, s.cfg.Motion.DeviceMemoryGB, config.LowMemoryGB, s.cfg.Motion.PrefersReducedMotion)
	doc.Load()

	s.log.Info().
		Int("players", len(s.players)).
		Bool("reduced_motion", s.reduced).
		Int("listeners", doc.ListenerCount()).
		Msg("page attached")
	return nil
}

func (s *Scene) addPlayer(el *dom.Element) {
	// The custom controls replace the native element.
	el.SetStyle("display", "none")
	tr := media.NewTrack(s.out, s.cfg.Audio, s.base)
	p := &Player{
		El:     el,
		Track:  tr,
		Widget: player.New(tr, s.doc.ViewportRect(el), s.base),
	}
	s.players = append(s.players, p)

	s.detach = append(s.detach, s.doc.AddEventListener(dom.Load, func(*dom.Event) {
		src, ok := el.Dataset("src")
		if !ok {
			src, ok = el.Attr("src")
		}
		if !ok || src == "" {
			return
		}
		if !filepath.IsAbs(src) {
			src = filepath.Join(s.baseDir, src)
		}
		if err := tr.Open(src); err != nil {
			s.log.Warn().Err(err).Str("src", src).Msg("audio source unavailable")
		}
	}))
}

// Detach tears down everything Attach built.
func (s *Scene) Detach() {
	s.engine.Stop()
	s.fx.Detach()
	s.ui.Detach()
	for _, rm := range s.detach {
		rm()
	}
	s.detach = nil
	for _, p := range s.players {
		p.Widget.Close()
		_ = p.Track.Close()
	}
	if len(s.players) > 0 {
		s.out.Clear()
	}
	s.players = nil
	s.drag = nil
}

// Reload swaps the document for doc, keeping the viewport size and scroll
// position where the new page allows it.
func (s *Scene) Reload(doc *dom.Document) error {
	w, h := s.doc.Viewport()
	y := s.doc.ScrollY()
	s.Detach()
	doc.Resize(w, h)
	doc.ScrollTo(y)
	if err := s.Attach(s.ctx, doc, s.baseDir); err != nil {
		return err
	}
	s.log.Info().Msg("page reloaded")
	return nil
}

// RequestReload queues doc for the next Step. Only the newest request is
// kept. It is safe to call from any goroutine.
func (s *Scene) RequestReload(doc *dom.Document) {
	for {
		select {
		case s.reload <- doc:
			return
		default:
		}
		select {
		case <-s.reload:
		default:
		}
	}
}

// Step advances the whole scene by one frame of length dt.
func (s *Scene) Step(dt time.Duration) {
	select {
	case doc := <-s.reload:
		if err := s.Reload(doc); err != nil {
			s.log.Error().Err(err).Msg("reload failed")
		}
	default:
	}

	s.engine.Tick()
	s.fx.Advance(dt)
	s.ui.Advance(dt)
	for _, p := range s.players {
		p.Track.Poll(dt)
	}
	s.layoutPlayers()
}

func (s *Scene) layoutPlayers() {
	for _, p := range s.players {
		p.Widget.SetBounds(s.doc.ViewportRect(p.El))
	}
}

// Run steps the scene from clock until ctx ends, the clock closes or
// frames steps have run. frames <= 0 means no limit.
func (s *Scene) Run(ctx context.Context, clock <-chan time.Time, frames int) error {
	dt := time.Second / config.TPS
	for n := 0; frames <= 0 || n < frames; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-clock:
			if !ok {
				return nil
			}
			s.Step(dt)
		}
	}
	return nil
}

func (s *Scene) MovePointer(x, y float64) {
	s.doc.MovePointer(x, y)
}

// Click delivers a click at a viewport point to the page and to any player
// widget under it.
func (s *Scene) Click(x, y float64) {
	s.layoutPlayers()
	s.doc.ClickAt(x, y)
	for _, p := range s.players {
		if p.Widget.HandleClick(x, y) {
			break
		}
	}
}

// Press starts a drag when (x, y) is on a player's volume slider or
// progress bar.
func (s *Scene) Press(x, y float64) bool {
	s.layoutPlayers()
	for _, p := range s.players {
		l := p.Widget.Layout()
		switch {
		case l.Slider.Contains(x, y):
			s.drag, s.seek = p.Widget, false
		case l.Progress.Contains(x, y):
			s.drag, s.seek = p.Widget, true
		default:
			continue
		}
		return true
	}
	return false
}

func (s *Scene) DragTo(x float64) {
	switch {
	case s.drag == nil:
	case s.seek:
		s.drag.SeekAt(x)
	default:
		s.drag.SlideTo(x)
	}
}

func (s *Scene) Release() { s.drag = nil }

func (s *Scene) ScrollBy(dy float64) { s.doc.ScrollBy(dy) }

func (s *Scene) TypeText(text string) { s.doc.TypeText(text) }

func (s *Scene) Backspace() { s.doc.Backspace() }

func (s *Scene) Resize(w, h float64) {
	s.doc.Resize(w, h)
	s.layoutPlayers()
}

// TogglePlay plays or pauses the first player.
func (s *Scene) TogglePlay() error {
	if len(s.players) == 0 {
		return ErrNoPlayer
	}
	s.players[0].Widget.TogglePlayPause()
	return nil
}

// Open loads path into the first player.
func (s *Scene) Open(path string) error {
	if len(s.players) == 0 {
		return ErrNoPlayer
	}
	return s.players[0].Track.Open(path)
}

func (s *Scene) Doc() *dom.Document { return s.doc }

func (s *Scene) Engine() *effects.Engine { return s.engine }

func (s *Scene) Effects() *anim.Effects { return s.fx }

func (s *Scene) Interactions() *page.Interactions { return s.ui }

func (s *Scene) Players() []*Player { return s.players }

func (s *Scene) ReducedMotion() bool { return s.reduced }
