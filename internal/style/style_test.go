package style

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/olivier-w/codecam/internal/frame"
	"github.com/olivier-w/codecam/internal/palette"
)

type draw struct {
	text string
	x, y int
	fill palette.Color
}

type recorder struct {
	fill  palette.Color
	fills int
	draws []draw
}

func (r *recorder) SetFill(c palette.Color) {
	r.fill = c
	r.fills++
}

func (r *recorder) FillText(text string, x, y int) {
	r.draws = append(r.draws, draw{text: text, x: x, y: y, fill: r.fill})
}

func testCache(t *testing.T) *palette.Cache {
	t.Helper()
	c, err := palette.Build(Colors())
	if err != nil {
		t.Fatalf("palette.Build: %v", err)
	}
	return c
}

// uniform returns a cols×rows buffer where every cell has gray level v.
func uniform(cols, rows int, v uint8) frame.Buffer {
	pix := make([]byte, cols*rows*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 255
	}
	return frame.Buffer{Pix: pix, Cols: cols, Rows: rows}
}

func setCell(buf frame.Buffer, x, y int, v uint8) {
	i := (y*buf.Cols + x) * 4
	buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = v, v, v
}

func at(ms int64) time.Time { return time.UnixMilli(ms) }

func TestParseAndString(t *testing.T) {
	for _, id := range IDs {
		got, err := Parse(id.String())
		if err != nil || got != id {
			t.Fatalf("Parse(%q) = %v, %v", id.String(), got, err)
		}
	}
	if got, err := Parse(" Regex "); err != nil || got != Regex {
		t.Fatalf("expected case-insensitive parse, got %v, %v", got, err)
	}
	if _, err := Parse("matrix"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
}

func TestNextCycles(t *testing.T) {
	if Binary.Next() != Regex || Regex.Next() != Source || Source.Next() != Binary {
		t.Fatal("unexpected style cycle")
	}
}

func TestTableLookup(t *testing.T) {
	table := NewTable(testCache(t))
	for _, id := range IDs {
		if got := table.Lookup(id).ID(); got != id {
			t.Fatalf("Lookup(%v) returned %v", id, got)
		}
	}
	if got := table.Lookup(ID(42)).ID(); got != Binary {
		t.Fatalf("expected Binary fallback, got %v", got)
	}
}

func TestColorsAreAllCached(t *testing.T) {
	cache := testCache(t)
	for _, hex := range Colors() {
		for a := 1; a <= palette.Steps; a++ {
			if got := cache.Get(hex, float64(a)/palette.Steps); got.Step != a {
				t.Fatalf("color %s step %d missed the cache", hex, a)
			}
		}
	}
}

func TestRenderersIgnoreDegenerateBuffers(t *testing.T) {
	table := NewTable(testCache(t))
	bufs := []frame.Buffer{
		{},
		{Pix: make([]byte, 16), Cols: 0, Rows: 4},
		{Pix: make([]byte, 16), Cols: 4, Rows: 0},
		{Pix: []byte{255, 255, 255, 255, 255, 255, 255}, Cols: 2, Rows: 1},
	}
	for _, id := range IDs {
		for i, buf := range bufs {
			rec := &recorder{}
			table.Lookup(id).Paint(buf, at(0), rec)
			if len(rec.draws) != 0 || rec.fills != 0 {
				t.Fatalf("%v: buffer %d: expected no-op, got %d draws %d fills", id, i, len(rec.draws), rec.fills)
			}
		}
	}
}

func TestBinaryDarkFrameDrawsNothing(t *testing.T) {
	rec := &recorder{}
	NewBinary(testCache(t)).Paint(uniform(8, 5, 0), at(0), rec)
	if len(rec.draws) != 0 {
		t.Fatalf("expected no glyphs, got %d", len(rec.draws))
	}
}

func TestBinaryBrightFrameDrawsEveryCell(t *testing.T) {
	const cols, rows = 6, 4
	r := NewBinary(testCache(t))
	rec := &recorder{}
	r.Paint(uniform(cols, rows, 255), at(0), rec)

	if len(rec.draws) != cols*rows {
		t.Fatalf("expected %d glyphs, got %d", cols*rows, len(rec.draws))
	}
	for i, d := range rec.draws {
		x, y := i%cols, i/cols
		if d.x != x*frame.CellWidth || d.y != y*frame.CellHeight {
			t.Fatalf("draw %d at (%d,%d), want (%d,%d)", i, d.x, d.y, x*frame.CellWidth, y*frame.CellHeight)
		}
		if d.text != "0" && d.text != "1" {
			t.Fatalf("unexpected glyph %q", d.text)
		}
		if want := binaryGlyphs[(x+y)%2]; d.text != want {
			t.Fatalf("cell (%d,%d): glyph %q, want %q", x, y, d.text, want)
		}
	}
}

func TestBinaryShimmerPeriod(t *testing.T) {
	r := NewBinary(testCache(t))
	buf := uniform(5, 3, 255)
	const base = 1_000_000

	paint := func(ms int64) []string {
		rec := &recorder{}
		r.Paint(buf, at(ms), rec)
		out := make([]string, len(rec.draws))
		for i, d := range rec.draws {
			out[i] = d.text
		}
		return out
	}

	p0, p99, p100 := paint(base), paint(base+99), paint(base+100)
	for i := range p0 {
		if p0[i] != p99[i] {
			t.Fatalf("cell %d changed within one shimmer step: %q vs %q", i, p0[i], p99[i])
		}
		if p0[i] == p100[i] {
			t.Fatalf("cell %d did not shimmer at the next step", i)
		}
	}
}

func TestBinarySetsFillOnlyOnStepChange(t *testing.T) {
	r := NewBinary(testCache(t))

	rec := &recorder{}
	r.Paint(uniform(10, 10, 200), at(0), rec)
	if rec.fills != 1 {
		t.Fatalf("uniform frame: expected 1 fill change, got %d", rec.fills)
	}

	buf := uniform(4, 1, 0)
	setCell(buf, 0, 0, 100)
	setCell(buf, 1, 0, 100)
	setCell(buf, 2, 0, 255)
	setCell(buf, 3, 0, 101) // same step as 100
	rec = &recorder{}
	r.Paint(buf, at(0), rec)
	if rec.fills != 3 {
		t.Fatalf("expected 3 fill changes, got %d", rec.fills)
	}
	if len(rec.draws) != 4 || rec.draws[2].fill.Step != palette.Steps {
		t.Fatalf("expected the white cell painted at full opacity, got %+v", rec.draws)
	}
	if rec.draws[3].fill.Step != rec.draws[0].fill.Step {
		t.Fatalf("expected the last cell to reuse step %d, got %d", rec.draws[0].fill.Step, rec.draws[3].fill.Step)
	}
}

func TestBinaryEndToEnd(t *testing.T) {
	cache := testCache(t)
	buf := frame.Buffer{
		Pix:  []byte{255, 255, 255, 255, 0, 0, 0, 255},
		Cols: 2,
		Rows: 1,
	}
	rec := &recorder{}
	NewBinary(cache).Paint(buf, at(0), rec)

	if len(rec.draws) != 1 {
		t.Fatalf("expected exactly one glyph, got %d", len(rec.draws))
	}
	d := rec.draws[0]
	if d.x != 0 || d.y != 0 {
		t.Fatalf("expected glyph at (0,0), got (%d,%d)", d.x, d.y)
	}
	if d.fill.Step != 20 {
		t.Fatalf("expected opacity step 20, got %d", d.fill.Step)
	}
	if want := cache.Get(BinaryColor, 1); d.fill != want {
		t.Fatalf("expected cached color %+v, got %+v", want, d.fill)
	}
}

func TestSkipFor(t *testing.T) {
	tests := []struct {
		tok    string
		factor float64
		want   int
	}{
		{`/\d+/`, 0.6, 3},
		{`/^$/`, 0.6, 3},
		{`/\b/`, 0.6, 3},
		{"if", 0.5, 1},
		{"===", 0.5, 2},
		{"nullptr", 0.5, 4},
		{"function", 0.5, 4},
		{"", 0.5, 1},
	}
	for _, tt := range tests {
		if got := skipFor(tt.tok, tt.factor); got != tt.want {
			t.Fatalf("skipFor(%q, %v) = %d, want %d", tt.tok, tt.factor, got, tt.want)
		}
	}
}

func TestTokenCursorAdvance(t *testing.T) {
	cache := testCache(t)
	tests := []struct {
		r      Renderer
		factor float64
	}{
		{NewRegex(cache), 0.6},
		{NewSource(cache), 0.5},
	}
	for _, tt := range tests {
		const cols = 40
		rec := &recorder{}
		tt.r.Paint(uniform(cols, 1, 255), at(0), rec)
		if len(rec.draws) == 0 {
			t.Fatalf("%v: expected glyphs on a bright row", tt.r.ID())
		}
		x := 0
		for i, d := range rec.draws {
			if d.x != x*frame.CellWidth {
				t.Fatalf("%v: draw %d at cell %d, want %d", tt.r.ID(), i, d.x/frame.CellWidth, x)
			}
			if d.x/frame.CellWidth >= cols {
				t.Fatalf("%v: draw past the last column", tt.r.ID())
			}
			x += int(math.Ceil(float64(len(d.text)) * tt.factor))
		}
		if x < cols {
			t.Fatalf("%v: scan stopped at %d before reaching %d", tt.r.ID(), x, cols)
		}
	}
}

func TestTokenSkipsDarkCellsOneAtATime(t *testing.T) {
	cache := testCache(t)
	for _, r := range []Renderer{NewRegex(cache), NewSource(cache)} {
		buf := uniform(10, 1, 0)
		setCell(buf, 3, 0, 255)
		rec := &recorder{}
		r.Paint(buf, at(0), rec)
		if len(rec.draws) != 1 || rec.draws[0].x != 3*frame.CellWidth {
			t.Fatalf("%v: expected one glyph at cell 3, got %+v", r.ID(), rec.draws)
		}
	}
}

func TestRegexGlyphChoice(t *testing.T) {
	rec := &recorder{}
	buf := uniform(1, 3, 255)
	NewRegex(testCache(t)).Paint(buf, at(400), rec)
	// offset = 400/200 = 2
	for y, d := range rec.draws {
		want := regexTokens[(y*13+2)%len(regexTokens)]
		if d.text != want {
			t.Fatalf("row %d: glyph %q, want %q", y, d.text, want)
		}
		if d.fill.Hex != RegexColor {
			t.Fatalf("row %d: color %s, want %s", y, d.fill.Hex, RegexColor)
		}
	}
}

func TestSourceColorRule(t *testing.T) {
	cache := testCache(t)
	r := NewSource(cache)

	rec := &recorder{}
	r.Paint(uniform(1, 1, 255), at(0), rec)
	if len(rec.draws) != 1 || rec.draws[0].fill.Hex != SourceColor {
		t.Fatalf("bright cell: expected primary color, got %+v", rec.draws)
	}

	for y := range 6 {
		rec = &recorder{}
		buf := uniform(1, y+1, 0)
		setCell(buf, 0, y, 100)
		r.Paint(buf, at(0), rec)
		if len(rec.draws) != 1 {
			t.Fatalf("row %d: expected one glyph, got %d", y, len(rec.draws))
		}
		idx := (y * 13) % len(sourceTokens)
		want := SourceSecondary[idx%len(SourceSecondary)]
		d := rec.draws[0]
		if d.text != sourceTokens[idx] || d.fill.Hex != want {
			t.Fatalf("row %d: got %q in %s, want %q in %s", y, d.text, d.fill.Hex, sourceTokens[idx], want)
		}
		b := frame.Luminance(100, 100, 100)
		if d.fill.Step != palette.Step(b*1.4) {
			t.Fatalf("row %d: step %d, want %d", y, d.fill.Step, palette.Step(b*1.4))
		}
	}
}

func TestThresholds(t *testing.T) {
	cache := testCache(t)
	tests := []struct {
		r     Renderer
		below uint8
		above uint8
	}{
		{NewBinary(cache), 12, 14}, // 0.047 / 0.055
		{NewRegex(cache), 20, 21},  // 0.078 / 0.082
		{NewSource(cache), 25, 26}, // 0.098 / 0.102
	}
	for _, tt := range tests {
		rec := &recorder{}
		tt.r.Paint(uniform(1, 1, tt.below), at(0), rec)
		if len(rec.draws) != 0 {
			t.Fatalf("%v: gray %d should be below threshold", tt.r.ID(), tt.below)
		}
		tt.r.Paint(uniform(1, 1, tt.above), at(0), rec)
		if len(rec.draws) != 1 {
			t.Fatalf("%v: gray %d should be above threshold", tt.r.ID(), tt.above)
		}
	}
}

func TestTimeStepFloors(t *testing.T) {
	tests := []struct {
		ms, period, want int64
	}{
		{0, 100, 0},
		{99, 100, 0},
		{100, 100, 1},
		{-1, 100, -1},
		{-100, 100, -1},
		{-101, 100, -2},
	}
	for _, tt := range tests {
		if got := timeStep(at(tt.ms), tt.period); got != tt.want {
			t.Fatalf("timeStep(%d, %d) = %d, want %d", tt.ms, tt.period, got, tt.want)
		}
	}
}
