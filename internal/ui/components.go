package ui

import (
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/codecam/internal/loop"
)

// flashVisible is the level below which the flash is no longer drawn.
const flashVisible = 0.15

// flash is the white-out shown when a capture is taken. Its level decays
// to zero along a critically damped spring.
type flash struct {
	spring harmonica.Spring
	level  float64
	vel    float64
}

func newFlash(fps int) flash {
	return flash{spring: harmonica.NewSpring(harmonica.FPS(fps), 9.0, 1.0)}
}

func (f *flash) fire() {
	f.level = 1
	f.vel = 0
}

func (f *flash) step() {
	if f.level == 0 {
		return
	}
	f.level, f.vel = f.spring.Update(f.level, f.vel, 0)
	if f.level < 0.01 {
		f.level, f.vel = 0, 0
	}
}

func (f flash) active() bool { return f.level > 0 }

func (f flash) visible() bool { return f.level >= flashVisible }

var (
	flashBase  = colorful.Color{R: float64(loop.Background.R) / 255, G: float64(loop.Background.G) / 255, B: float64(loop.Background.B) / 255}
	flashWhite = colorful.Color{R: 1, G: 1, B: 1}
)

// renderFlash paints a cols×rows block whose shade follows the flash level.
func renderFlash(level float64, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	if level > 1 {
		level = 1
	}
	shade := flashBase.BlendRgb(flashWhite, level).Hex()
	line := lipgloss.NewStyle().Background(lipgloss.Color(shade)).Render(strings.Repeat(" ", cols))
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// indent prefixes every line of s with n spaces.
func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}

func windowTitle(styleName string, paused bool) string {
	if paused {
		return "⏸ codecam - " + styleName
	}
	return "● codecam - " + styleName
}
