package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/olivier-w/codecam/internal/style"
)

type keyMap struct {
	Binary  key.Binding
	Regex   key.Binding
	Source  key.Binding
	Cycle   key.Binding
	Timer   key.Binding
	Capture key.Binding
	Pause   key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Binary:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "binary")),
		Regex:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "regex")),
		Source:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "source")),
		Cycle:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "style")),
		Timer:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "timer")),
		Capture: key.NewBinding(key.WithKeys(" ", "c"), key.WithHelp("space", "capture")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cycle, k.Timer, k.Capture, k.Pause, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Binary, k.Regex, k.Source, k.Cycle},
		{k.Timer, k.Capture, k.Pause, k.Quit},
	}
}

// styleFor returns the style a direct-select binding names.
func (k keyMap) styleFor(msg interface{ String() string }) (style.ID, bool) {
	switch msg.String() {
	case "1":
		return style.Binary, true
	case "2":
		return style.Regex, true
	case "3":
		return style.Source, true
	}
	return 0, false
}
