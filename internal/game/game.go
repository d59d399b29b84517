package game

import (
	"context"
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog"

	"github.com/iburimskiy/songfx/internal/config"
	"github.com/iburimskiy/songfx/internal/scene"
)

const (
	wheelStep       = 40
	colorShiftSpeed = 0.002
)

// Game renders a scene with ebiten and feeds it mouse and keyboard input.
type Game struct {
	ctx context.Context
	sc  *scene.Scene
	log zerolog.Logger

	width, height int
	trailLayer    *ebiten.Image
	particleLayer *ebiten.Image

	// input edge detection
	prevX      int
	prevY      int
	dragging   bool
	inputChars []rune

	// viz
	time       float64
	colorPhase float64

	lastErr error
}

func New(ctx context.Context, cfg config.Settings, sc *scene.Scene, log zerolog.Logger) *Game {
	return &Game{
		ctx:    ctx,
		sc:     sc,
		log:    log.With().Str("component", "game").Logger(),
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
		prevX:  -1,
		prevY:  -1,
	}
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	// Pointer
	mouseX, mouseY := ebiten.CursorPosition()
	if mouseX != g.prevX || mouseY != g.prevY {
		g.prevX, g.prevY = mouseX, mouseY
		g.sc.MovePointer(float64(mouseX), float64(mouseY))
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := float64(mouseX), float64(mouseY)
		g.dragging = g.sc.Press(x, y)
		g.sc.Click(x, y)
	}
	if g.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.sc.DragTo(float64(mouseX))
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
		g.sc.Release()
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.sc.ScrollBy(-dy * wheelStep)
	}

	// Keyboard: a focused field takes typed text, otherwise keys are
	// shortcuts.
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.sc.Doc().Focused() != nil {
		g.inputChars = ebiten.AppendInputChars(g.inputChars[:0])
		if len(g.inputChars) > 0 {
			g.sc.TypeText(string(g.inputChars))
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) || repeating(ebiten.KeyBackspace) {
			g.sc.Backspace()
		}
	} else {
		if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
			g.report(g.sc.TogglePlay())
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyO) {
			g.report(g.openTrackDialog())
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
			return ebiten.Termination
		}
	}

	g.sc.Step(time.Second / config.TPS)
	g.time += 1.0 / config.TPS
	g.colorPhase += colorShiftSpeed
	return nil
}

// repeating reports key repeat after the key has been held for a while.
func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d > 30 && d%4 == 0
}

func (g *Game) report(err error) {
	if err == nil {
		return
	}
	g.lastErr = err
	g.log.Warn().Err(err).Msg("command failed")
}

func (g *Game) openTrackDialog() error {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	if err := g.sc.Open(filename); err != nil {
		return err
	}
	g.lastErr = nil
	return g.sc.TogglePlay()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		return g.width, g.height
	}
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.sc.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return g.width, g.height
}
