package game

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/iburimskiy/songfx/internal/anim"
	"github.com/iburimskiy/songfx/internal/config"
	"github.com/iburimskiy/songfx/internal/dom"
	"github.com/iburimskiy/songfx/internal/effects"
	"github.com/iburimskiy/songfx/internal/page"
	"github.com/iburimskiy/songfx/internal/player"
)

// Debug font metrics.
const (
	charW = 6
	lineH = 16
)

var (
	accent      = withAlpha(effects.Accent, 1)
	panelColor  = color.RGBA{R: 25, G: 30, B: 40, A: 200}
	borderColor = color.RGBA{R: 70, G: 80, B: 100, A: 255}
	buttonColor = color.RGBA{R: 100, G: 120, B: 160, A: 255}
	hoverColor  = color.RGBA{R: 80, G: 100, B: 140, A: 255}
	fieldColor  = color.RGBA{R: 15, G: 18, B: 26, A: 230}

	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

func (g *Game) Draw(screen *ebiten.Image) {
	// Clear background with gradient
	g.drawBackground(screen)

	g.drawElements(screen)
	g.drawRipples(screen)
	g.drawPlayers(screen)
	g.drawLayers(screen)

	// Draw help
	status := "Space: play/pause | O: open file | wheel: scroll | Esc/Q: quit"
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, g.height-lineH-4)
}

func (g *Game) drawBackground(screen *ebiten.Image) {
	w := float32(g.width)
	for y := 0; y < g.height; y++ {
		ratio := float64(y) / float64(g.height)
		r := uint8(10 + 10*math.Sin(g.time*0.5+ratio*math.Pi))
		g_val := uint8(10 + 8*math.Cos(g.time*0.3+ratio*math.Pi))
		b := uint8(18 + 14*math.Sin(g.time*0.7+ratio*math.Pi))
		vector.DrawFilledRect(screen, 0, float32(y), w, 1, color.RGBA{R: r, G: g_val, B: b, A: 255}, false)
	}
}

// hidden reports whether el is not rendered at all in the current state.
func hidden(el *dom.Element) bool {
	switch {
	case el.Style("display") == "none", el.Tag == "canvas", el.Tag == "audio":
		return true
	case el.HasClass(page.RippleClass):
		return true
	case el.HasClass("nav-menu"), el.ID == "dropdownMenu":
		return !el.HasClass(page.ActiveClass)
	case el.HasClass("back-to-top"):
		return !el.HasClass(anim.VisibleClass)
	}
	return false
}

func (g *Game) drawElements(screen *ebiten.Image) {
	doc := g.sc.Doc()
	hovered := doc.ElementAt(doc.Pointer())
	var walk func(el *dom.Element, alpha float64)
	walk = func(el *dom.Element, alpha float64) {
		if hidden(el) {
			return
		}
		if fades(el) && !el.HasClass(anim.VisibleClass) {
			alpha *= 0.2
		}
		g.drawElement(screen, el, alpha, el == hovered)
		for _, c := range el.Children() {
			walk(c, alpha)
		}
	}
	for _, c := range doc.Body.Children() {
		walk(c, 1)
	}
}

var fadeSel = dom.MustCompile(anim.FadeTargets)

func fades(el *dom.Element) bool { return fadeSel.Match(el) }

func (g *Game) drawElement(screen *ebiten.Image, el *dom.Element, alpha float64, hovered bool) {
	doc := g.sc.Doc()
	r := doc.ViewportRect(el)
	if !g.sc.ReducedMotion() {
		r = r.Offset(0, g.sc.Effects().Floaters().Offset(el))
	}
	if r.Y > float64(g.height) || r.Y+r.H < 0 {
		return
	}
	x, y, w, h := float32(r.X), float32(r.Y), float32(r.W), float32(r.H)

	switch {
	case el.HasClass("scroll-progress"):
		vector.DrawFilledRect(screen, x, y, w, h, accent, false)
		return
	case el.HasClass("btn"), el.Tag == "button":
		bg := buttonColor
		if hovered {
			bg = hoverColor
		}
		vector.DrawFilledRect(screen, x, y, w, h, fade(bg, alpha), false)
		vector.StrokeRect(screen, x, y, w, h, 2, fade(borderColor, alpha), false)
	case el.Tag == "input", el.Tag == "textarea":
		border := color.Color(borderColor)
		if p := el.Parent(); p != nil && p.HasClass(page.FocusedClass) {
			border = accent
		}
		vector.DrawFilledRect(screen, x, y, w, h, fade(fieldColor, alpha), false)
		vector.StrokeRect(screen, x, y, w, h, 1, fade(border, alpha), false)
		text := el.Value
		if text == "" {
			text, _ = el.Attr("placeholder")
		}
		ebitenutil.DebugPrintAt(screen, text, int(x)+6, int(y)+4)
		return
	case el.Tag == "img":
		vector.DrawFilledRect(screen, x, y, w, h, fade(colornames.Darkslategray, alpha), false)
		label := "loading"
		if el.HasClass(page.LoadedClass) {
			label, _ = el.Attr("src")
		}
		ebitenutil.DebugPrintAt(screen, label, int(x)+6, int(y+h/2)-lineH/2)
		return
	case el.HasClass("card"), el.HasClass("feature-card"), el.HasClass("message"), el.HasClass("player-box"),
		el.HasClass("nav-menu"), el.ID == "dropdownMenu", el.Tag == "nav":
		vector.DrawFilledRect(screen, x, y, w, h, fade(panelColor, alpha), false)
		vector.StrokeRect(screen, x, y, w, h, 1, fade(borderColor, alpha), false)
	}

	if el.Text == "" {
		return
	}
	tx, ty := int(x)+4, int(y+h/2)-lineH/2
	tw := float32(len([]rune(el.Text)) * charW)
	if anim.Glowing(el) {
		for i := 3; i >= 1; i-- {
			pad := float32(i * 4)
			vector.DrawFilledRect(screen, float32(tx)-pad, float32(ty)-pad, tw+2*pad, lineH+2*pad, fade(accent, 0.12*alpha), false)
		}
	}
	ebitenutil.DebugPrintAt(screen, el.Text, tx, ty)
	if caret := el.Style("border-right"); caret != "" && caret != "none" {
		cx := float32(tx) + tw + 2
		vector.StrokeLine(screen, cx, float32(ty), cx, float32(ty+lineH), 2, accent, false)
	}
}

func (g *Game) drawRipples(screen *ebiten.Image) {
	doc := g.sc.Doc()
	for _, rp := range g.sc.Interactions().Ripples() {
		host := rp.El.Parent()
		if host == nil {
			continue
		}
		c := doc.ViewportRect(rp.El)
		t := rp.Progress()
		radius := t * max(host.Bounds.W, host.Bounds.H)
		vector.DrawFilledCircle(screen, float32(c.X), float32(c.Y), float32(radius), fade(colornames.White, 0.5*(1-t)), true)
	}
}

// drawLayers paints the trail and particle canvases into offscreen images
// and composites them over the page.
func (g *Game) drawLayers(screen *ebiten.Image) {
	eng := g.sc.Engine()
	if eng.HasTrailLayer() {
		g.trailLayer = g.layer(g.trailLayer)
		for _, p := range eng.Trail() {
			vector.DrawFilledCircle(g.trailLayer, float32(p.X), float32(p.Y), float32(p.Radius()), withAlpha(p.Color, p.Life), true)
		}
		screen.DrawImage(g.trailLayer, nil)
	}
	if eng.HasParticleLayer() {
		g.particleLayer = g.layer(g.particleLayer)
		ps := eng.Particles()
		for _, c := range eng.Connections() {
			a, b := ps[c.A], ps[c.B]
			vector.StrokeLine(g.particleLayer, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, fade(accent, c.Alpha*0.3), true)
		}
		for _, p := range ps {
			op := p.Opacity()
			x, y := float32(p.X), float32(p.Y)
			vector.DrawFilledCircle(g.particleLayer, x, y, float32(p.Size+p.Glow()/3), withAlpha(p.Color, op*0.25), true)
			vector.DrawFilledCircle(g.particleLayer, x, y, float32(p.Size), withAlpha(p.Color, op), true)
		}
		screen.DrawImage(g.particleLayer, nil)
	}
}

// layer returns img cleared, or a new image when the window size changed.
func (g *Game) layer(img *ebiten.Image) *ebiten.Image {
	if img != nil {
		if b := img.Bounds(); b.Dx() == g.width && b.Dy() == g.height {
			img.Clear()
			return img
		}
		img.Deallocate()
	}
	return ebiten.NewImage(g.width, g.height)
}

func (g *Game) drawPlayers(screen *ebiten.Image) {
	for _, p := range g.sc.Players() {
		r := p.Widget.Bounds()
		if r.Y > float64(g.height) || r.Y+r.H < 0 {
			continue
		}
		g.drawPlayer(screen, p.Widget)
	}
}

func (g *Game) drawPlayer(screen *ebiten.Image, w *player.Widget) {
	b := w.Bounds()
	l := w.Layout()
	vector.DrawFilledRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), panelColor, false)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 1, borderColor, false)

	// Play / pause
	cx, cy := l.Play.Center()
	vector.DrawFilledCircle(screen, float32(cx), float32(cy), float32(l.Play.W/2), accent, true)
	if w.Playing() {
		vector.DrawFilledRect(screen, float32(cx-6), float32(cy-7), 4, 14, colornames.White, false)
		vector.DrawFilledRect(screen, float32(cx+2), float32(cy-7), 4, 14, colornames.White, false)
	} else {
		fillTriangle(screen, cx-4, cy-7, cx-4, cy+7, cx+7, cy, colornames.White)
	}

	g.drawProgress(screen, w, l.Progress)

	ebitenutil.DebugPrintAt(screen, w.CurrentText()+" / "+w.TotalText(), int(l.Time.X), int(l.Time.Y+l.Time.H/2)-lineH/2)

	// Volume icon
	mx, my := l.Mute.Center()
	vector.DrawFilledRect(screen, float32(mx-8), float32(my-4), 5, 8, colornames.White, false)
	fillTriangle(screen, mx-3, my-4, mx-3, my+4, mx+3, my-9, colornames.White)
	fillTriangle(screen, mx-3, my+4, mx+3, my+9, mx+3, my-9, colornames.White)
	if w.MuteIcon() {
		vector.StrokeLine(screen, float32(mx+5), float32(my-5), float32(mx+11), float32(my+5), 2, accent, true)
		vector.StrokeLine(screen, float32(mx+5), float32(my+5), float32(mx+11), float32(my-5), 2, accent, true)
	} else {
		vector.StrokeCircle(screen, float32(mx+4), float32(my), 6, 1.5, colornames.White, true)
	}

	// Slider
	s := l.Slider
	sy := float32(s.Y + s.H/2)
	vector.StrokeLine(screen, float32(s.X), sy, float32(s.X+s.W), sy, 3, borderColor, false)
	knob := float32(s.X + s.W*w.Slider())
	vector.StrokeLine(screen, float32(s.X), sy, knob, sy, 3, accent, false)
	vector.DrawFilledCircle(screen, knob, sy, 6, colornames.White, true)
}

// drawProgress draws the seek bar with the level meter behind its fill.
func (g *Game) drawProgress(screen *ebiten.Image, w *player.Widget, bar dom.Rect) {
	x, y, bw, bh := float32(bar.X), float32(bar.Y+bar.H/2-6), float32(bar.W), float32(12)
	vector.DrawFilledRect(screen, x, y, bw, bh, color.RGBA{R: 15, G: 18, B: 26, A: 255}, false)

	levels := w.Element().Levels(config.LevelBands)
	segmentWidth := bw / float32(len(levels))
	for i, lv := range levels {
		if lv <= 0.01 {
			continue
		}
		hue := (g.colorPhase + float64(i)/float64(len(levels))*0.5) * 360
		r, g_val, b := hsvToRgb(hue, 0.8, 0.9)
		segmentHeight := float32(lv) * float32(bar.H)
		vector.DrawFilledRect(screen, x+float32(i)*segmentWidth, float32(bar.Y+bar.H)-segmentHeight, segmentWidth-1, segmentHeight,
			color.RGBA{R: r, G: g_val, B: b, A: uint8(60 + 120*lv)}, false)
	}

	progress := float32(w.ProgressPercent() / 100)
	vector.DrawFilledRect(screen, x, y, bw*progress, bh, accent, false)
	vector.StrokeRect(screen, x, y, bw, bh, 1, borderColor, false)
	vector.DrawFilledCircle(screen, x+bw*progress, y+bh/2, 7, colornames.White, true)
}

func fillTriangle(dst *ebiten.Image, x0, y0, x1, y1, x2, y2 float64, clr color.Color) {
	var path vector.Path
	path.MoveTo(float32(x0), float32(y0))
	path.LineTo(float32(x1), float32(y1))
	path.LineTo(float32(x2), float32(y2))
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	r, g, b, a := clr.RGBA()
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = float32(r) / 0xffff
		vs[i].ColorG = float32(g) / 0xffff
		vs[i].ColorB = float32(b) / 0xffff
		vs[i].ColorA = float32(a) / 0xffff
	}
	dst.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}
