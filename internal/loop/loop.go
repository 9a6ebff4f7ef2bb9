// Package loop drives the downsample-and-paint cycle once per display
// refresh.
package loop

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/olivier-w/codecam/internal/frame"
	"github.com/olivier-w/codecam/internal/style"
)

// Background is the color every frame is cleared to before painting.
var Background = color.NRGBA{R: 0x0d, G: 0x0d, B: 0x0d, A: 0xff}

// ErrNoSource is returned by Start when the loop has no frame source.
var ErrNoSource = errors.New("loop: no frame source")

// Config is the state a tick reads. It is never mutated in place; Update
// swaps in a new value that the next tick picks up.
type Config struct {
	Style style.ID
	Cols  int
	Rows  int
	Timer time.Duration // capture delay, not read by the renderers
}

// Canvas is a surface that can also be cleared.
type Canvas interface {
	style.Surface
	Clear(bg color.NRGBA)
}

// Scheduler runs fn once, at the next display refresh.
type Scheduler interface {
	Schedule(fn func(now time.Time))
}

// Loop repaints a canvas from a frame source at the scheduler's cadence.
// Ticks run one at a time on the scheduler's goroutine.
type Loop struct {
	source  frame.Source
	canvas  Canvas
	sched   Scheduler
	styles  style.Table
	sampler *frame.Sampler

	cfg     atomic.Pointer[Config]
	running atomic.Bool
	gen     atomic.Uint64 // bumped by Start; ticks of older runs retire
	frames  atomic.Uint64
	misses  atomic.Uint64
}

// New returns an idle loop.
func New(src frame.Source, canvas Canvas, sched Scheduler, styles style.Table, cfg Config) *Loop {
	l := &Loop{
		source:  src,
		canvas:  canvas,
		sched:   sched,
		styles:  styles,
		sampler: frame.NewSampler(nil),
	}
	l.cfg.Store(&cfg)
	return l
}

// Start moves the loop to Running and schedules the first tick.
func (l *Loop) Start() error {
	if l.source == nil {
		return ErrNoSource
	}
	if !l.running.CompareAndSwap(false, true) {
		return nil
	}
	gen := l.gen.Add(1)
	cfg := l.Config()
	slog.Debug("loop: started", "style", cfg.Style, "cols", cfg.Cols, "rows", cfg.Rows)
	l.schedule(gen)
	return nil
}

// Stop moves the loop to Idle. A tick already scheduled still fires but
// draws nothing.
func (l *Loop) Stop() {
	if l.running.CompareAndSwap(true, false) {
		slog.Debug("loop: stopped", "frames", l.frames.Load())
	}
}

// Running reports whether the loop is Running.
func (l *Loop) Running() bool { return l.running.Load() }

// Config returns the current configuration.
func (l *Loop) Config() Config { return *l.cfg.Load() }

// Update replaces the configuration with fn's result. The change is seen
// by the next tick.
func (l *Loop) Update(fn func(Config) Config) Config {
	for {
		old := l.cfg.Load()
		next := fn(*old)
		if l.cfg.CompareAndSwap(old, &next) {
			return next
		}
	}
}

// Frames returns the number of frames painted by ticks.
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Misses returns the number of ticks that found no frame to paint.
func (l *Loop) Misses() uint64 { return l.misses.Load() }

func (l *Loop) schedule(gen uint64) {
	l.sched.Schedule(func(now time.Time) { l.tick(gen, now) })
}

// tick draws only for the run that scheduled it. A tick left over from
// before a Stop/Start pair sees a newer generation and ends its chain.
func (l *Loop) tick(gen uint64, now time.Time) {
	if !l.running.Load() || l.gen.Load() != gen {
		return
	}
	if l.Render(l.canvas, now) {
		l.frames.Add(1)
	} else {
		l.misses.Add(1)
	}
	l.schedule(gen)
}

// Render paints the current frame onto c using the current configuration.
// It reports whether a frame was available. Render does not count towards
// Frames or Misses, so one-off captures leave the live stats alone.
func (l *Loop) Render(c Canvas, now time.Time) bool {
	cfg := l.Config()
	c.Clear(Background)

	var buf frame.Buffer
	ok := l.source != nil && l.source.Frame(func(img image.Image) {
		buf = l.sampler.Sample(img, cfg.Cols, cfg.Rows)
	})
	if !ok {
		return false
	}

	l.styles.Lookup(cfg.Style).Paint(buf, now, c)
	return true
}
