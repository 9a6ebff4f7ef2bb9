package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olivier-w/codecam/internal/video"
)

const firstFrameTimeout = 15 * time.Second

// openSource opens the input and logs what was picked.
func openSource(ctx context.Context, opts video.Options) (video.Source, error) {
	src, err := video.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", describeInput(opts.Input), err)
	}
	w, h := src.Size()
	slog.Info("main: source opened", "input", opts.Input, "width", w, "height", h)
	return src, nil
}

// waitForFrame blocks until src has a frame, the source gives up, or the
// timeout passes.
func waitForFrame(ctx context.Context, src video.Source, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var done <-chan struct{}
	f, ok := src.(interface {
		Done() <-chan struct{}
		Err() error
	})
	if ok {
		done = f.Done()
	}

	select {
	case <-src.Ready():
		return nil
	case <-done:
		if err := f.Err(); err != nil {
			return fmt.Errorf("video source stopped: %w", err)
		}
		return errors.New("video source stopped before the first frame")
	case <-ctx.Done():
		return fmt.Errorf("waiting for the first frame: %w", ctx.Err())
	}
}

func describeInput(input string) string {
	if input == "" {
		return "default camera"
	}
	return input
}
