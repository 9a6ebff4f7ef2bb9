package main

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/codecam/internal/shutter"
	"github.com/olivier-w/codecam/internal/ui"
)

// runLive opens the source and runs the TUI until the user quits.
func runLive(ctx context.Context, opts options) error {
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

	sh := openShutter(opts.Mute)
	defer sh.Close()

	model := ui.New(ui.Options{
		Source:  src,
		Shutter: sh,
		Style:   opts.Style,
		Delay:   opts.Delay,
		FPS:     opts.FPS,
		Dir:     opts.Dir,
	})

	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	if m, ok := final.(ui.Model); ok {
		slog.Info("main: exiting", "frames", m.Loop().Frames(), "misses", m.Loop().Misses())
	}
	return nil
}

// openShutter returns nil, a silent shutter, when muted or when no audio
// device is available.
func openShutter(mute bool) *shutter.Shutter {
	if mute {
		return nil
	}
	s, err := shutter.New()
	if err != nil {
		slog.Warn("main: shutter muted", "error", err)
		return nil
	}
	return s
}
