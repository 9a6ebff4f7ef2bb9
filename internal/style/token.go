package style

import (
	"time"

	"github.com/olivier-w/codecam/internal/frame"
	"github.com/olivier-w/codecam/internal/palette"
)

var regexTokens = []string{
	`/\d+/`, `/\w+/`, `/.*?/`, `/[a-z]/`, `/\s*/`,
	`/^$/`, `/\b/`, `/[0-9]/`, `/\S+/`, `/[A-Z]/`,
	`/.+/`, `/\D/`, `/\W/`, `/[^a]/`, `/a|b/`,
}

var sourceTokens = []string{
	"if", "else", "const", "let", "var", "function",
	"return", "for", "while", "=>", "{}", "[]", "()",
	"===", "!==", "&&", "||", "++", "--", "+=",
	"class", "new", "this", "async", "await", "try",
	"catch", "throw", "import", "export", "void",
	"int", "char", "bool", "float", "double", "nullptr",
}

// tokenRenderer draws multi-character tokens, skipping the scan cursor
// ahead after each draw so neighbouring tokens do not overlap.
type tokenRenderer struct {
	id        ID
	cache     *palette.Cache
	glyphs    []glyph
	threshold float64
	gain      float64
	period    int64
	color     func(b float64, idx int) string
}

// NewRegex returns the Regex renderer: pattern-syntax tokens in one color.
func NewRegex(cache *palette.Cache) Renderer {
	return &tokenRenderer{
		id:        Regex,
		cache:     cache,
		glyphs:    newGlyphs(regexTokens, 0.6),
		threshold: 0.08,
		gain:      1.3,
		period:    200,
		color:     func(float64, int) string { return RegexColor },
	}
}

// NewSource returns the Source renderer: language keywords, bright cells in
// the primary color and dim cells in a per-token secondary color.
func NewSource(cache *palette.Cache) Renderer {
	return &tokenRenderer{
		id:        Source,
		cache:     cache,
		glyphs:    newGlyphs(sourceTokens, 0.5),
		threshold: 0.1,
		gain:      1.4,
		period:    500,
		color: func(b float64, idx int) string {
			if b > 0.5 {
				return SourceColor
			}
			return SourceSecondary[idx%len(SourceSecondary)]
		},
	}
}

func (r *tokenRenderer) ID() ID { return r.id }

func (r *tokenRenderer) Paint(buf frame.Buffer, now time.Time, dst Surface) {
	if !buf.Valid() {
		return
	}
	offset := timeStep(now, r.period)
	n := len(r.glyphs)

	for y := 0; y < buf.Rows; y++ {
		x := 0
		for x < buf.Cols {
			b := buf.Brightness(x, y)
			if b <= r.threshold {
				x++
				continue
			}

			idx := tokenIndex(x, y, offset, n)
			g := r.glyphs[idx]
			dst.SetFill(r.cache.Get(r.color(b, idx), min(1, b*r.gain)))
			dst.FillText(g.text, x*frame.CellWidth, y*frame.CellHeight)

			x = min(x+g.skip, buf.Cols)
		}
	}
}
