package video

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/olivier-w/codecam/internal/frame"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PatternInput selects the synthetic test pattern instead of a camera.
const PatternInput = "test"

// Source is a live supply of frames.
type Source interface {
	frame.Source
	// Size returns the native frame size in pixels.
	Size() (width, height int)
	// Ready is closed once Frame can succeed.
	Ready() <-chan struct{}
	Close() error
}

// Open picks a source for input: the test pattern, a still image, or
// anything ffmpeg can decode (camera device, video file, stream URL).
func Open(ctx context.Context, opts Options) (Source, error) {
	switch classify(opts.Input, runtime.GOOS) {
	case kindPattern:
		opts = opts.withDefaults()
		return NewPattern(opts.Width/4, opts.Height/4, time.Now), nil
	case kindUnsupported:
		return nil, fmt.Errorf("%w %q (want an image, a video file, a device or a URL)", ErrUnsupportedInput, filepath.Ext(opts.Input))
	case kindImage:
		s, err := OpenStill(opts.Input)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		c, err := OpenCamera(ctx, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

var closedReady = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Still serves one decoded image forever.
type Still struct {
	img image.Image
}

// OpenStill decodes a png, jpeg, gif, bmp, tiff or webp file.
func OpenStill(path string) (*Still, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return NewStill(img), nil
}

// NewStill wraps an already decoded image.
func NewStill(img image.Image) *Still { return &Still{img: img} }

func (s *Still) Frame(fn func(image.Image)) bool {
	if s.img == nil {
		return false
	}
	fn(s.img)
	return true
}

func (s *Still) Size() (int, int) {
	if s.img == nil {
		return 0, 0
	}
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *Still) Ready() <-chan struct{} { return closedReady }

func (s *Still) Close() error { return nil }

// Pattern is a synthetic moving light blob over a soft gradient, for
// running without a camera.
type Pattern struct {
	now func() time.Time

	mu  sync.Mutex
	img *image.RGBA
}

// NewPattern returns a w×h pattern animated by the now clock.
func NewPattern(w, h int, now func() time.Time) *Pattern {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Pattern{now: now, img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (p *Pattern) Frame(fn func(image.Image)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draw(p.now())
	fn(p.img)
	return true
}

func (p *Pattern) draw(t time.Time) {
	w, h := p.img.Rect.Dx(), p.img.Rect.Dy()
	phase := float64(t.UnixMilli()%8000) / 8000 * 2 * math.Pi
	cx := float64(w) * (0.5 + 0.3*math.Cos(phase))
	cy := float64(h) * (0.5 + 0.3*math.Sin(2*phase))
	radius := float64(min(w, h)) * 0.35

	for y := range h {
		row := p.img.Pix[y*p.img.Stride:]
		for x := range w {
			dx, dy := float64(x)-cx, float64(y)-cy
			d := math.Sqrt(dx*dx+dy*dy) / radius
			v := 0.15 * float64(x) / float64(w)
			if d < 1 {
				v += 1 - d*d
			}
			c := uint8(math.Min(1, v) * 255)
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = c, c, c, 0xff
		}
	}
}

func (p *Pattern) Size() (int, int) { return p.img.Rect.Dx(), p.img.Rect.Dy() }

func (p *Pattern) Ready() <-chan struct{} { return closedReady }

func (p *Pattern) Close() error { return nil }
