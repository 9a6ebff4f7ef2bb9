package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/codecam/internal/video"
)

type frameMsg time.Time
type countdownMsg struct{}
type sourceReadyMsg struct{}
type sourceFailedMsg struct{ err error }
type captureSavedMsg struct {
	path string
	err  error
}

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func countdownCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownMsg{}
	})
}

// failer is implemented by sources that can stop on their own.
type failer interface {
	Done() <-chan struct{}
	Err() error
}

func waitReady(src video.Source) tea.Cmd {
	return func() tea.Msg {
		f, ok := src.(failer)
		if !ok {
			<-src.Ready()
			return sourceReadyMsg{}
		}
		select {
		case <-src.Ready():
			return sourceReadyMsg{}
		case <-f.Done():
			return sourceFailedMsg{err: f.Err()}
		}
	}
}

func watchSource(src video.Source) tea.Cmd {
	f, ok := src.(failer)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		<-f.Done()
		return sourceFailedMsg{err: f.Err()}
	}
}
