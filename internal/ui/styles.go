package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#A00000", Dark: "#F92672"})

	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E6DB74"))
)

// styleAccent is the primary color of each glyph style, used for its label.
var styleAccent = map[string]lipgloss.Style{
	"binary": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E22E")),
	"regex":  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F92672")),
	"source": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#66D9EF")),
}
