package surface

import (
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/codecam/internal/frame"
	"github.com/olivier-w/codecam/internal/palette"
)

type cell struct {
	ch  rune
	fg  rgb
	set bool
}

// Terminal is a grid of terminal cells, one per glyph cell. Multi-character
// glyphs spill into the cells to their right; a later glyph overwrites.
// Translucent fills are blended against the clear color.
type Terminal struct {
	cols, rows int
	cells      []cell
	bg         colorful.Color
	fg         rgb
	mode       colorMode
	sb         strings.Builder // reusable builder to reduce allocations
}

// NewTerminal returns a cols×rows terminal surface using the color
// capabilities of the current terminal.
func NewTerminal(cols, rows int) *Terminal {
	t := &Terminal{mode: detectColorMode()}
	t.Resize(cols, rows)
	return t
}

// Resize changes the grid size and blanks every cell.
func (t *Terminal) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	t.cols, t.rows = cols, rows
	if cap(t.cells) >= cols*rows {
		t.cells = t.cells[:cols*rows]
	} else {
		t.cells = make([]cell, cols*rows)
	}
	clear(t.cells)
}

// Size returns the grid size in cells.
func (t *Terminal) Size() (cols, rows int) { return t.cols, t.rows }

// Bounds returns the pixel rectangle the grid stands for.
func (t *Terminal) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.cols*frame.CellWidth, t.rows*frame.CellHeight)
}

// Clear blanks every cell and makes bg the blend base for later fills.
func (t *Terminal) Clear(bg color.NRGBA) {
	t.bg = colorful.Color{R: float64(bg.R) / 255, G: float64(bg.G) / 255, B: float64(bg.B) / 255}
	clear(t.cells)
}

// SetFill sets the color of subsequent glyphs.
func (t *Terminal) SetFill(c palette.Color) {
	fg := colorful.Color{R: float64(c.RGBA.R) / 255, G: float64(c.RGBA.G) / 255, B: float64(c.RGBA.B) / 255}
	r, g, b := t.bg.BlendRgb(fg, c.Alpha()).RGB255()
	t.fg = rgb{r, g, b}
}

// FillText writes text starting at the cell that contains pixel (x, y).
func (t *Terminal) FillText(text string, x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/frame.CellWidth, y/frame.CellHeight
	if row >= t.rows {
		return
	}
	base := row * t.cols
	for _, ch := range text {
		if col >= t.cols {
			return
		}
		t.cells[base+col] = cell{ch: ch, fg: t.fg, set: true}
		col++
	}
}

// Glyphs returns how many cells currently hold a character.
func (t *Terminal) Glyphs() int {
	n := 0
	for _, c := range t.cells {
		if c.set {
			n++
		}
	}
	return n
}

// Plain returns the grid without color escapes.
func (t *Terminal) Plain() string {
	return t.render(newANSIState(colorOff))
}

// View renders the grid with color escapes suited to the terminal.
func (t *Terminal) View() string {
	return t.render(newANSIState(t.mode))
}

func (t *Terminal) render(state ansiState) string {
	t.sb.Reset()
	// Worst case ~20 bytes per cell for color escapes, plus newlines.
	t.sb.Grow(t.cols * t.rows * 24)

	for row := 0; row < t.rows; row++ {
		line := t.cells[row*t.cols : (row+1)*t.cols]
		for _, c := range line {
			if !c.set {
				t.sb.WriteByte(' ')
				continue
			}
			state.set(&t.sb, c.fg)
			t.sb.WriteRune(c.ch)
		}
		state.reset(&t.sb)
		if row < t.rows-1 {
			t.sb.WriteByte('\n')
		}
	}
	return t.sb.String()
}
