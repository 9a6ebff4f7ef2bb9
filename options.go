package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/olivier-w/codecam/internal/capture"
	"github.com/olivier-w/codecam/internal/style"
	"github.com/olivier-w/codecam/internal/video"
)

// flags holds raw command-line values before validation.
type flags struct {
	style   string
	timer   int
	fps     int
	size    string
	format  string
	mute    bool
	logPath string
	dir     string

	// snap only
	cols int
	rows int
	out  string
}

// options is the validated form of flags.
type options struct {
	Style   style.ID
	Delay   capture.Delay
	FPS     int
	Video   video.Options
	Mute    bool
	LogPath string
	Dir     string

	Cols int
	Rows int
	Out  string
}

func (f flags) resolve(input string) (options, error) {
	id, err := style.Parse(f.style)
	if err != nil {
		return options{}, err
	}
	delay, err := capture.ParseDelay(f.timer)
	if err != nil {
		return options{}, err
	}
	if f.fps < 1 || f.fps > 240 {
		return options{}, fmt.Errorf("fps must be between 1 and 240, got %d", f.fps)
	}
	if f.cols < 0 || f.rows < 0 {
		return options{}, fmt.Errorf("cols and rows must not be negative")
	}

	v := video.DefaultOptions()
	v.Input = input
	v.Format = f.format
	if f.size != "" {
		w, h, err := parseSize(f.size)
		if err != nil {
			return options{}, err
		}
		v.Width, v.Height = w, h
	}

	return options{
		Style:   id,
		Delay:   delay,
		FPS:     f.fps,
		Video:   v,
		Mute:    f.mute,
		LogPath: f.logPath,
		Dir:     f.dir,
		Cols:    f.cols,
		Rows:    f.rows,
		Out:     f.out,
	}, nil
}

// parseSize parses "WxH".
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: want WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("size %q: bad width", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("size %q: bad height", s)
	}
	return w, h, nil
}

// setupLogging routes slog to path, or discards it. The TUI owns the
// terminal, so logs never go to stderr.
func setupLogging(path string) (io.Closer, error) {
	if path == "" {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return f, nil
}
