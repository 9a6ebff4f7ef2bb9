package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/olivier-w/codecam/internal/capture"
	"github.com/olivier-w/codecam/internal/frame"
	"github.com/olivier-w/codecam/internal/loop"
	"github.com/olivier-w/codecam/internal/palette"
	"github.com/olivier-w/codecam/internal/style"
	"github.com/olivier-w/codecam/internal/surface"
	"github.com/olivier-w/codecam/internal/video"
)

// maxSnapRows bounds the height when only --cols is given.
const maxSnapRows = 1000

// runSnap renders a single frame of the input to a PNG and prints its path.
func runSnap(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	logs, err := setupLogging(opts.LogPath)
	if err != nil {
		return err
	}
	defer logs.Close()

	src, err := openSource(ctx, opts.Video)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := waitForFrame(ctx, src, firstFrameTimeout); err != nil {
		return err
	}
	if err := countdown(ctx, opts.Delay, stderr); err != nil {
		return err
	}

	path, err := snapshot(src, opts, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, path)
	return nil
}

// snapshot paints one frame of src onto a raster and writes it out.
func snapshot(src video.Source, opts options, now time.Time) (string, error) {
	cols, rows := snapGrid(src, opts.Cols, opts.Rows)
	if cols == 0 || rows == 0 {
		return "", fmt.Errorf("empty mosaic for a %s source", describeSize(src))
	}

	r, err := surface.NewRasterGrid(cols, rows)
	if err != nil {
		return "", err
	}
	defer r.Close()

	table := style.NewTable(palette.MustBuild(style.Colors()))
	l := loop.New(src, r, nil, table, loop.Config{Style: opts.Style, Cols: cols, Rows: rows})
	if !l.Render(r, now) {
		return "", fmt.Errorf("no frame available")
	}

	if opts.Out != "" {
		if err := capture.WritePNG(opts.Out, r.Image()); err != nil {
			return "", err
		}
		return opts.Out, nil
	}
	return capture.Save(opts.Dir, r.Image(), opts.Style.String(), now)
}

// snapGrid honours explicit cols and rows, fitting the missing one to the
// source aspect ratio.
func snapGrid(src video.Source, cols, rows int) (int, int) {
	w, h := src.Size()
	switch {
	case cols > 0 && rows > 0:
		return cols, rows
	case cols > 0:
		return frame.FitGrid(cols, maxSnapRows, w, h)
	case rows > 0:
		return frame.FitGrid(maxSnapRows, rows, w, h)
	}
	return 0, 0
}

func countdown(ctx context.Context, d capture.Delay, w io.Writer) error {
	var c capture.Countdown
	c.Start(d)
	for c.Active() {
		fmt.Fprintf(w, "capturing in %d...\n", c.Remaining())
		select {
		case <-time.After(time.Second):
			c.Tick()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func describeSize(src video.Source) string {
	w, h := src.Size()
	return fmt.Sprintf("%dx%d", w, h)
}
