package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// Ideal capture geometry, matching what browsers ask webcams for.
const (
	defaultWidth  = 1280
	defaultHeight = 720
	defaultFPS    = 30
)

// ErrNoDefaultCamera is returned when the platform has no default device name.
var ErrNoDefaultCamera = errors.New("no default camera on this platform; pass a device name")

// Options configures a Camera.
type Options struct {
	Input  string // device, file or URL; "" selects the default camera
	Format string // ffmpeg input format; "" picks one for devices
	Width  int    // decoded frame width in pixels
	Height int    // decoded frame height in pixels
	FPS    int
}

// DefaultOptions returns the default camera at 1280×720, 30 fps.
func DefaultOptions() Options {
	return Options{Width: defaultWidth, Height: defaultHeight, FPS: defaultFPS}
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = defaultWidth, defaultHeight
	}
	if o.FPS <= 0 {
		o.FPS = defaultFPS
	}
	return o
}

// Camera manages an ffmpeg subprocess that decodes a camera, file or stream
// to raw RGBA frames. Only the latest frame is kept: a frame nobody painted
// is dropped when the next one arrives.
type Camera struct {
	opts   Options
	width  int
	height int

	cmd    *exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc

	mu     sync.RWMutex
	front  *image.RGBA // latest complete frame, nil until the first one
	err    error
	closed bool

	seen   atomic.Bool
	frames atomic.Uint64
	drops  atomic.Uint64

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
}

// OpenCamera starts decoding. The first frame arrives asynchronously; wait on
// Ready before relying on Frame.
func OpenCamera(ctx context.Context, opts Options) (*Camera, error) {
	opts = opts.withDefaults()

	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found")
	}

	w, h := opts.Width, opts.Height
	k := classify(opts.Input, runtime.GOOS)
	if k == kindVideo && !IsURL(opts.Input) {
		// Keep the file's aspect ratio inside the requested box.
		if p, err := ProbeMedia(ctx, opts.Input); err == nil {
			if !p.HasVideo {
				return nil, fmt.Errorf("no video stream in %s", opts.Input)
			}
			w, h = fitWithin(p.Width, p.Height, opts.Width, opts.Height)
			opts.FPS = frameRate(p.FPS, opts.FPS)
		} else {
			slog.Warn("video: probe failed, using requested size", "input", opts.Input, "error", err)
		}
	}

	args, err := ffmpegArgs(opts, k, runtime.GOOS, w, h)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	cmd.Stdin = nil

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("starting ffmpeg video decode: %w", err)
	}

	c := &Camera{
		opts:   opts,
		width:  w,
		height: h,
		cmd:    cmd,
		stdout: stdout,
		cancel: cancel,
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	slog.Info("video: decoding started", "input", opts.Input, "width", w, "height", h, "fps", opts.FPS)
	go c.readLoop()
	return c, nil
}

// ffmpegArgs builds the decode command line for a w×h RGBA output.
func ffmpegArgs(opts Options, k kind, goos string, w, h int) ([]string, error) {
	args := []string{"-v", "quiet"}

	switch k {
	case kindCamera:
		format, input := opts.Format, opts.Input
		switch goos {
		case "linux":
			if format == "" {
				format = "v4l2"
			}
			if input == "" {
				input = "/dev/video0"
			}
		case "darwin":
			if format == "" {
				format = "avfoundation"
			}
			if input == "" {
				input = "0"
			}
		case "windows":
			if format == "" {
				format = "dshow"
			}
			if input == "" {
				return nil, ErrNoDefaultCamera
			}
		default:
			if input == "" {
				return nil, ErrNoDefaultCamera
			}
		}
		if format != "" {
			args = append(args, "-f", format)
		}
		args = append(args,
			"-framerate", strconv.Itoa(opts.FPS),
			"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
			"-i", input,
		)
	case kindVideo:
		if opts.Format != "" {
			args = append(args, "-f", opts.Format)
		}
		if !IsURL(opts.Input) {
			// Play files in real time, forever.
			args = append(args, "-re", "-stream_loop", "-1")
		}
		args = append(args, "-i", opts.Input)
	case kindUnsupported:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, opts.Input)
	default:
		return nil, fmt.Errorf("input %q is not decoded by ffmpeg", opts.Input)
	}

	args = append(args,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-vf", fmt.Sprintf("scale=%d:%d,fps=%d", w, h, opts.FPS),
		"-an", // no audio
		"pipe:1",
	)
	return args, nil
}

// readLoop reads whole frames into a back buffer and swaps it to the front.
func (c *Camera) readLoop() {
	defer close(c.done)

	back := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	for {
		if _, err := io.ReadFull(c.stdout, back.Pix); err != nil {
			c.finish(err)
			return
		}

		c.mu.Lock()
		if c.front != nil && !c.seen.Load() {
			c.drops.Add(1)
		}
		if c.front == nil {
			c.front, back = back, image.NewRGBA(back.Rect)
		} else {
			c.front, back = back, c.front
		}
		c.seen.Store(false)
		c.mu.Unlock()

		c.frames.Add(1)
		c.readyOnce.Do(func() { close(c.ready) })
	}
}

func (c *Camera) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = fmt.Errorf("video stream ended: %w", err)
	}
	c.err = err
	slog.Error("video: decode stopped", "input", c.opts.Input, "frames", c.frames.Load(), "error", err)
}

// Frame calls fn with the latest frame. The frame cannot be swapped out
// while fn runs.
func (c *Camera) Frame(fn func(image.Image)) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.front == nil {
		return false
	}
	c.seen.Store(true)
	fn(c.front)
	return true
}

// Size returns the decoded frame size.
func (c *Camera) Size() (int, int) { return c.width, c.height }

// Ready is closed once the first frame has been decoded.
func (c *Camera) Ready() <-chan struct{} { return c.ready }

// Done is closed when decoding stops.
func (c *Camera) Done() <-chan struct{} { return c.done }

// Err returns why decoding stopped, if it did.
func (c *Camera) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Stats returns decoded and dropped frame counts.
func (c *Camera) Stats() (frames, drops uint64) {
	return c.frames.Load(), c.drops.Load()
}

// Close stops ffmpeg and waits for the reader to exit.
func (c *Camera) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	<-c.done
	if c.cmd != nil {
		c.cmd.Wait()
	}
	frames, drops := c.Stats()
	slog.Info("video: decoding stopped", "input", c.opts.Input, "frames", frames, "drops", drops)
	return nil
}
