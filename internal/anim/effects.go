package anim

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iburimskiy/songfx/internal/config"
	"github.com/iburimskiy/songfx/internal/dom"
)

const (
	FadeTargets   = ".scroll-fade-in, .card, .feature-card"
	smoothing     = 0.2
	scrollSnapEps = 0.5
)

// Effects bundles the scroll driven page effects for one document.
type Effects struct {
	cfg config.ScrollSettings
	log zerolog.Logger

	doc       *dom.Document
	observer  *Observer
	counters  []*Counter
	typers    []*Typewriter
	glow      *TextGlow
	floaters  *Floaters
	progress  *dom.Element
	backToTop *dom.Element
	scrolling bool
	detach    []func()
}

func New(cfg config.ScrollSettings, log zerolog.Logger) *Effects {
	return &Effects{
		cfg: cfg,
		log: log.With().Str("component", "anim").Logger(),
	}
}

// Attach sets every effect up on doc. Missing optional elements switch the
// matching effect off and are logged.
func (fx *Effects) Attach(doc *dom.Document) {
	fx.Detach()
	fx.doc = doc
	fx.observer = NewObserver(fx.cfg.Threshold, fx.cfg.BottomMargin)
	fx.counters, fx.typers = nil, nil

	for _, el := range doc.QueryAll(FadeTargets) {
		fx.observer.Observe(el)
	}
	for _, el := range doc.QueryAll(".counter") {
		raw, _ := el.Dataset("target")
		target, err := strconv.Atoi(raw)
		if err != nil {
			fx.log.Warn().Str("element", el.String()).Str("target", raw).Msg("counter has no numeric data-target, skipping")
			continue
		}
		c := NewCounter(el, target, fx.cfg.CounterDuration, fx.cfg.CounterStep)
		fx.counters = append(fx.counters, c)
		fx.observer.Observe(el, c.Start)
	}
	for _, el := range doc.QueryAll(".typing-effect") {
		tw := NewTypewriter(el, fx.cfg.TypingInterval)
		fx.typers = append(fx.typers, tw)
		fx.observer.Observe(el, tw.Start)
	}
	fx.floaters = NewFloaters(doc.QueryAll(".floating"), config.FloatingDelay)
	fx.glow = NewTextGlow(doc.QueryAll(".text-glow"), fx.cfg.GlowPeriod, fx.cfg.GlowDuration)

	fx.progress = doc.Query(".scroll-progress")
	if fx.progress == nil {
		fx.log.Warn().Msg("no .scroll-progress element, scroll progress disabled")
	}
	fx.backToTop = doc.Query(".back-to-top")
	if fx.backToTop == nil {
		fx.log.Warn().Msg("no .back-to-top element, back-to-top disabled")
	} else {
		fx.detach = append(fx.detach, fx.backToTop.AddEventListener(dom.Click, func(*dom.Event) {
			fx.scrolling = true
		}))
	}

	onScroll := func(*dom.Event) { fx.refresh() }
	fx.detach = append(fx.detach,
		doc.AddEventListener(dom.Scroll, onScroll),
		doc.AddEventListener(dom.Resize, onScroll),
	)
	fx.refresh()
}

func (fx *Effects) Detach() {
	for _, remove := range fx.detach {
		remove()
	}
	fx.detach = nil
	fx.scrolling = false
}

// Advance steps every time based effect by one frame of length dt.
func (fx *Effects) Advance(dt time.Duration) {
	if fx.doc == nil {
		return
	}
	for _, c := range fx.counters {
		c.Advance()
	}
	for _, tw := range fx.typers {
		tw.Advance(dt)
	}
	fx.glow.Advance(dt)
	fx.floaters.Advance(dt)
	if fx.scrolling {
		fx.stepScrollToTop()
	}
}

func (fx *Effects) refresh() {
	fx.observer.Check(fx.doc)
	vw, vh := fx.doc.Viewport()
	y := fx.doc.ScrollY()
	if fx.progress != nil {
		pct := ScrollPercent(y, fx.doc.Body.Bounds.H, vh)
		fx.progress.Bounds.W = vw * pct / 100
		fx.progress.SetStyle("width", fmt.Sprintf("%.2f%%", pct))
	}
	if fx.backToTop != nil {
		if y > fx.cfg.BackToTopOffset {
			fx.backToTop.AddClass(VisibleClass)
		} else {
			fx.backToTop.RemoveClass(VisibleClass)
		}
	}
}

// stepScrollToTop eases the scroll offset towards zero.
func (fx *Effects) stepScrollToTop() {
	y := fx.doc.ScrollY() * (1 - smoothing)
	if y < scrollSnapEps {
		y = 0
		fx.scrolling = false
	}
	fx.doc.ScrollTo(y)
}

func (fx *Effects) Floaters() *Floaters { return fx.floaters }

func (fx *Effects) Counters() []*Counter { return fx.counters }

func (fx *Effects) Typers() []*Typewriter { return fx.typers }

// ScrollPercent is how far down the page the viewport is, 0 to 100. A page
// that does not scroll reports 0.
func ScrollPercent(scrollY, bodyHeight, viewHeight float64) float64 {
	docHeight := bodyHeight - viewHeight
	if docHeight <= 0 {
		return 0
	}
	return scrollY / docHeight * 100
}
