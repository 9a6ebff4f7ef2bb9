// Package style paints downsampled frames as glyph mosaics.
//
// Each style owns a glyph set, a color rule and a brightness threshold. All
// styles share the same contract: cells are visited row-major, cells at or
// below the threshold are left untouched, the rest get one glyph drawn at
// (x*CellWidth, y*CellHeight) with a top-aligned baseline.
package style

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/olivier-w/codecam/internal/frame"
	"github.com/olivier-w/codecam/internal/palette"
)

// ID identifies a style.
type ID uint8

const (
	Binary ID = iota
	Regex
	Source
)

// ErrUnknown is returned by Parse for names that are not a style.
var ErrUnknown = errors.New("unknown style")

// IDs lists every style in display order.
var IDs = []ID{Binary, Regex, Source}

func (id ID) String() string {
	switch id {
	case Binary:
		return "binary"
	case Regex:
		return "regex"
	case Source:
		return "source"
	default:
		return fmt.Sprintf("style(%d)", uint8(id))
	}
}

// Next cycles to the following style.
func (id ID) Next() ID {
	return IDs[(int(id)+1)%len(IDs)]
}

// Parse resolves a style name, case-insensitively.
func Parse(name string) (ID, error) {
	for _, id := range IDs {
		if strings.EqualFold(strings.TrimSpace(name), id.String()) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w %q (want binary, regex or source)", ErrUnknown, name)
}

// Surface is the drawing target of a Renderer.
type Surface interface {
	// SetFill makes c the color of subsequent FillText calls.
	SetFill(c palette.Color)
	// FillText draws text with its top-left corner at pixel (x, y).
	FillText(text string, x, y int)
}

// Renderer paints one style. Paint runs to completion synchronously.
type Renderer interface {
	ID() ID
	Paint(buf frame.Buffer, now time.Time, dst Surface)
}

// Base colors.
const (
	BinaryColor = "#a6e22e"
	RegexColor  = "#f92672"
	SourceColor = "#66d9ef"
)

// SourceSecondary is the palette for dim cells of the Source style.
var SourceSecondary = []string{"#a6e22e", "#f92672", "#e6db74", "#ae81ff"}

// Colors returns every color any style paints with, primaries first.
func Colors() []string {
	out := []string{BinaryColor, RegexColor, SourceColor}
	return append(out, SourceSecondary...)
}

// Table maps each style to its renderer.
type Table map[ID]Renderer

// NewTable builds the renderers of every style around one color cache.
func NewTable(cache *palette.Cache) Table {
	return Table{
		Binary: NewBinary(cache),
		Regex:  NewRegex(cache),
		Source: NewSource(cache),
	}
}

// Lookup returns the renderer for id, falling back to Binary.
func (t Table) Lookup(id ID) Renderer {
	if r, ok := t[id]; ok {
		return r
	}
	return t[Binary]
}

// glyph is a token and the number of cells the scan cursor skips after
// drawing it.
type glyph struct {
	text string
	skip int
}

func newGlyphs(tokens []string, factor float64) []glyph {
	out := make([]glyph, len(tokens))
	for i, tok := range tokens {
		out[i] = glyph{text: tok, skip: skipFor(tok, factor)}
	}
	return out
}

// skipFor approximates the cells a token covers without measuring the font.
func skipFor(tok string, factor float64) int {
	n := int(math.Ceil(float64(runewidth.StringWidth(tok)) * factor))
	if n < 1 {
		return 1
	}
	return n
}

// timeStep is floor(now / period) in milliseconds.
func timeStep(now time.Time, period int64) int64 {
	ms := now.UnixMilli()
	q := ms / period
	if ms%period != 0 && ms < 0 {
		q--
	}
	return q
}

// tokenIndex spreads tokens across the grid and drifts them over time.
func tokenIndex(x, y int, offset int64, n int) int {
	i := (int64(x)*7 + int64(y)*13 + offset) % int64(n)
	if i < 0 {
		i += int64(n)
	}
	return int(i)
}
