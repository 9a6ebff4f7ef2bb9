package loop

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/olivier-w/codecam/internal/frame"
	"github.com/olivier-w/codecam/internal/palette"
	"github.com/olivier-w/codecam/internal/style"
)

type fakeScheduler struct {
	pending []func(time.Time)
}

func (s *fakeScheduler) Schedule(fn func(time.Time)) {
	s.pending = append(s.pending, fn)
}

// fire runs every tick scheduled so far, like one display refresh.
func (s *fakeScheduler) fire(now time.Time) int {
	due := s.pending
	s.pending = nil
	for _, fn := range due {
		fn(now)
	}
	return len(due)
}

type fakeSource struct {
	img   image.Image
	calls int
}

func (s *fakeSource) Frame(fn func(image.Image)) bool {
	s.calls++
	if s.img == nil {
		return false
	}
	fn(s.img)
	return true
}

func whiteSource() *fakeSource {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &fakeSource{img: img}
}

type canvas struct {
	clears int
	draws  []string
}

func (c *canvas) Clear(color.NRGBA) { c.clears++ }

func (c *canvas) SetFill(palette.Color) {}

func (c *canvas) FillText(text string, x, y int) { c.draws = append(c.draws, text) }

func newTestLoop(t *testing.T, src *fakeSource, cfg Config) (*Loop, *fakeScheduler, *canvas) {
	t.Helper()
	cache, err := palette.Build(style.Colors())
	if err != nil {
		t.Fatalf("palette.Build: %v", err)
	}
	sched := &fakeScheduler{}
	cv := &canvas{}
	var fs frame.Source
	if src != nil {
		fs = src
	}
	return New(fs, cv, sched, style.NewTable(cache), cfg), sched, cv
}

func TestStartWithoutSource(t *testing.T) {
	l, sched, _ := newTestLoop(t, nil, Config{Cols: 2, Rows: 2})
	if err := l.Start(); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
	if l.Running() || len(sched.pending) != 0 {
		t.Fatal("expected loop to stay idle")
	}
}

func TestTickPaintsAndReschedules(t *testing.T) {
	l, sched, cv := newTestLoop(t, whiteSource(), Config{Style: style.Binary, Cols: 4, Rows: 3})
	if err := l.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !l.Running() || len(sched.pending) != 1 {
		t.Fatalf("expected running with one tick scheduled, got %d", len(sched.pending))
	}

	sched.fire(time.UnixMilli(0))
	if cv.clears != 1 || len(cv.draws) != 12 {
		t.Fatalf("expected 1 clear and 12 glyphs, got %d and %d", cv.clears, len(cv.draws))
	}
	if len(sched.pending) != 1 {
		t.Fatalf("expected next tick scheduled, got %d", len(sched.pending))
	}
	if l.Frames() != 1 {
		t.Fatalf("expected 1 frame, got %d", l.Frames())
	}
}

func TestStartIsIdempotent(t *testing.T) {
	l, sched, _ := newTestLoop(t, whiteSource(), Config{Cols: 1, Rows: 1})
	_ = l.Start()
	_ = l.Start()
	if len(sched.pending) != 1 {
		t.Fatalf("expected one scheduled tick, got %d", len(sched.pending))
	}
}

func TestStopSuppressesScheduledTick(t *testing.T) {
	l, sched, cv := newTestLoop(t, whiteSource(), Config{Cols: 4, Rows: 3})
	_ = l.Start()
	sched.fire(time.UnixMilli(0))
	before := len(cv.draws)

	l.Stop()
	if n := sched.fire(time.UnixMilli(16)); n != 1 {
		t.Fatalf("expected the straggler tick to fire, got %d", n)
	}
	if len(cv.draws) != before || cv.clears != 1 {
		t.Fatalf("expected no drawing after Stop, got %d new glyphs", len(cv.draws)-before)
	}
	if len(sched.pending) != 0 {
		t.Fatal("expected no tick rescheduled after Stop")
	}
}

func TestStopBeforeFirstTick(t *testing.T) {
	l, sched, cv := newTestLoop(t, whiteSource(), Config{Cols: 4, Rows: 3})
	_ = l.Start()
	l.Stop()
	sched.fire(time.UnixMilli(0))
	if cv.clears != 0 || len(cv.draws) != 0 {
		t.Fatal("expected no drawing")
	}
}

func TestRestartAfterStop(t *testing.T) {
	l, sched, cv := newTestLoop(t, whiteSource(), Config{Cols: 2, Rows: 1})
	_ = l.Start()
	l.Stop()
	sched.fire(time.UnixMilli(0))
	if err := l.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sched.fire(time.UnixMilli(16))
	if len(cv.draws) != 2 {
		t.Fatalf("expected 2 glyphs after restart, got %d", len(cv.draws))
	}
}

func TestResizeTakesEffectNextTick(t *testing.T) {
	l, sched, cv := newTestLoop(t, whiteSource(), Config{Style: style.Binary, Cols: 4, Rows: 3})
	_ = l.Start()
	sched.fire(time.UnixMilli(0))

	l.Update(func(c Config) Config {
		c.Cols, c.Rows = 2, 2
		return c
	})
	cv.draws = nil
	sched.fire(time.UnixMilli(16))
	if len(cv.draws) != 4 {
		t.Fatalf("expected 4 glyphs after resize, got %d", len(cv.draws))
	}
	if !l.Running() {
		t.Fatal("expected loop to keep running")
	}
}

func TestStyleSwitchTakesEffectNextTick(t *testing.T) {
	l, sched, cv := newTestLoop(t, whiteSource(), Config{Style: style.Binary, Cols: 3, Rows: 1})
	_ = l.Start()
	sched.fire(time.UnixMilli(0))
	for _, g := range cv.draws {
		if g != "0" && g != "1" {
			t.Fatalf("unexpected binary glyph %q", g)
		}
	}

	l.Update(func(c Config) Config {
		c.Style = style.Source
		return c
	})
	cv.draws = nil
	sched.fire(time.UnixMilli(16))
	if len(cv.draws) == 0 || cv.draws[0] != "if" {
		t.Fatalf("expected source tokens after switch, got %v", cv.draws)
	}
}

func TestZeroGridIsNoOp(t *testing.T) {
	l, sched, cv := newTestLoop(t, whiteSource(), Config{Cols: 0, Rows: 0})
	_ = l.Start()
	sched.fire(time.UnixMilli(0))
	if len(cv.draws) != 0 {
		t.Fatalf("expected no glyphs, got %d", len(cv.draws))
	}
	if len(sched.pending) != 1 {
		t.Fatal("expected the loop to keep ticking")
	}
}

func TestRenderWithoutFrame(t *testing.T) {
	l, _, cv := newTestLoop(t, &fakeSource{}, Config{Cols: 2, Rows: 2})
	if l.Render(cv, time.UnixMilli(0)) {
		t.Fatal("expected Render to report no frame")
	}
	if cv.clears != 1 || len(cv.draws) != 0 {
		t.Fatalf("expected a cleared, empty canvas; got %d clears %d draws", cv.clears, len(cv.draws))
	}
	if l.Misses() != 0 || l.Frames() != 0 {
		t.Fatalf("expected Render to leave stats alone, got %d frames %d misses", l.Frames(), l.Misses())
	}
}

func TestRenderDoesNotCountFrames(t *testing.T) {
	l, sched, cv := newTestLoop(t, whiteSource(), Config{Cols: 2, Rows: 1})
	_ = l.Start()
	sched.fire(time.UnixMilli(0))
	if !l.Render(&canvas{}, time.UnixMilli(5)) {
		t.Fatal("expected Render to find a frame")
	}
	if l.Frames() != 1 {
		t.Fatalf("expected only the tick counted, got %d frames", l.Frames())
	}
	if len(cv.draws) != 2 {
		t.Fatalf("expected the capture to leave the live canvas alone, got %d glyphs", len(cv.draws))
	}
}

func TestTickCountsMisses(t *testing.T) {
	src := &fakeSource{}
	l, sched, _ := newTestLoop(t, src, Config{Cols: 2, Rows: 2})
	_ = l.Start()
	sched.fire(time.UnixMilli(0))
	sched.fire(time.UnixMilli(16))
	if l.Misses() != 2 || l.Frames() != 0 {
		t.Fatalf("expected 2 misses and no frames, got %d and %d", l.Misses(), l.Frames())
	}
	if len(sched.pending) != 1 {
		t.Fatal("expected the loop to keep ticking without frames")
	}
}

func TestRestartBeforeStragglerKeepsOneChain(t *testing.T) {
	l, sched, cv := newTestLoop(t, whiteSource(), Config{Cols: 2, Rows: 1})
	_ = l.Start()
	sched.fire(time.UnixMilli(0))

	// The tick scheduled above is still pending when the loop restarts.
	l.Stop()
	if err := l.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(sched.pending) != 2 {
		t.Fatalf("expected the straggler and the new tick pending, got %d", len(sched.pending))
	}

	cv.clears, cv.draws = 0, nil
	sched.fire(time.UnixMilli(16))
	if cv.clears != 1 || len(cv.draws) != 2 {
		t.Fatalf("expected one paint per refresh, got %d clears %d glyphs", cv.clears, len(cv.draws))
	}
	if len(sched.pending) != 1 {
		t.Fatalf("expected a single tick chain, got %d pending", len(sched.pending))
	}

	cv.clears, cv.draws = 0, nil
	sched.fire(time.UnixMilli(32))
	if cv.clears != 1 || len(cv.draws) != 2 || len(sched.pending) != 1 {
		t.Fatalf("expected one chain on the next refresh, got %d clears %d glyphs %d pending", cv.clears, len(cv.draws), len(sched.pending))
	}
}

func TestUpdateReturnsNewConfig(t *testing.T) {
	l, _, _ := newTestLoop(t, whiteSource(), Config{Style: style.Binary})
	got := l.Update(func(c Config) Config {
		c.Timer = 3 * time.Second
		return c
	})
	if got.Timer != 3*time.Second || l.Config().Timer != 3*time.Second {
		t.Fatalf("unexpected config %+v", l.Config())
	}
}
