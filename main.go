package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iburimskiy/songfx/internal/config"
	"github.com/iburimskiy/songfx/internal/dom"
	"github.com/iburimskiy/songfx/internal/game"
	"github.com/iburimskiy/songfx/internal/logging"
	"github.com/iburimskiy/songfx/internal/media"
	"github.com/iburimskiy/songfx/internal/scene"
)

func main() {
	configPath := flag.String("config", "songfx.yaml", "Path to the YAML config file (optional)")
	pagePath := flag.String("page", "", "Page description to render (default: built-in demo page)")
	trackPath := flag.String("track", "", "Audio file to load into the first player")
	headless := flag.Bool("headless", false, "Run the scene without a window and log stats")
	frames := flag.Int("frames", 0, "Stop after this many frames in headless mode (0 = until interrupted)")
	watch := flag.Bool("watch", false, "Reload the page file when it changes")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *pagePath != "" {
		cfg.Page = *pagePath
	}

	log, closer, err := logging.New(cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg, *trackPath, *headless, *frames, *watch, log); err != nil {
		log.Error().Err(err).Msg("exiting")
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg config.Settings, track string, headless bool, frames int, watch bool, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := dom.LoadPage(cfg.Page)
	if err != nil {
		return err
	}
	doc.Resize(float64(cfg.Window.Width), float64(cfg.Window.Height))

	var rng *rand.Rand
	if cfg.Effects.Seed != 0 {
		rng = rand.New(rand.NewPCG(cfg.Effects.Seed, cfg.Effects.Seed))
	}
	baseDir := "."
	if cfg.Page != "" {
		baseDir = filepath.Dir(cfg.Page)
	}

	sc := scene.New(cfg, media.NewSpeaker(), rng, log)
	if err := sc.Attach(ctx, doc, baseDir); err != nil {
		return err
	}
	defer sc.Detach()
	if track != "" {
		if err := sc.Open(track); err != nil {
			log.Warn().Err(err).Str("track", track).Msg("could not open track")
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	switch {
	case watch && cfg.Page != "":
		g.Go(func() error { return watchPage(gctx, cfg.Page, sc, log) })
	case watch:
		log.Warn().Msg("-watch needs -page, the built-in page cannot change")
	}

	if headless {
		g.Go(func() error {
			defer cancel()
			return runHeadless(gctx, sc, frames, log)
		})
		return ignoreCanceled(g.Wait())
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(config.TPS)

	err = ebiten.RunGame(game.New(gctx, cfg, sc, log))
	cancel()
	if werr := ignoreCanceled(g.Wait()); werr != nil {
		return werr
	}
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// runHeadless steps the scene on a ticker and logs stats once a second.
func runHeadless(ctx context.Context, sc *scene.Scene, frames int, log zerolog.Logger) error {
	ticker := time.NewTicker(time.Second / config.TPS)
	defer ticker.Stop()

	for done := 0; frames <= 0 || done < frames; done += config.TPS {
		chunk := config.TPS
		if frames > 0 {
			chunk = min(chunk, frames-done)
		}
		if err := sc.Run(ctx, ticker.C, chunk); err != nil {
			return err
		}
		logStats(log, sc)
	}
	return nil
}

func logStats(log zerolog.Logger, sc *scene.Scene) {
	st := sc.Engine().Stats()
	log.Info().
		Uint64("frames", st.Frames).
		Int("trail", st.Trail).
		Int("ambient", st.Ambient).
		Int("burst", st.Burst).
		Int("hover", st.Hover).
		Int("connections", st.Connections).
		Float64("scroll", sc.Doc().ScrollY()).
		Msg("stats")
}

// watchPage reloads the page file on every change until ctx ends.
func watchPage(ctx context.Context, path string, sc *scene.Scene, log zerolog.Logger) error {
	w, err := config.NewWatcher(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Close()
	log.Info().Str("page", path).Msg("watching page for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Events:
			if !ok {
				return nil
			}
			doc, err := dom.LoadPage(path)
			if err != nil {
				log.Warn().Err(err).Msg("page reload skipped")
				continue
			}
			sc.RequestReload(doc)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
