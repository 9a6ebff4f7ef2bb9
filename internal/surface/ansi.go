package surface

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// colorMode describes how colors are rendered.
type colorMode uint8

const (
	colorOff     colorMode = iota // NO_COLOR or dumb terminal
	colorANSI16                   // basic 16-color
	colorANSI256                  // 256-color
	colorTrue                     // 24-bit truecolor
)

var (
	detectOnce sync.Once
	termColor  colorMode
	seqCache   sync.Map
)

// detectColorMode checks terminal capabilities once.
func detectColorMode() colorMode {
	detectOnce.Do(func() {
		termColor = colorModeFromEnv(os.LookupEnv)
	})
	return termColor
}

func colorModeFromEnv(lookup func(string) (string, bool)) colorMode {
	if _, ok := lookup("NO_COLOR"); ok {
		return colorOff
	}
	term, _ := lookup("TERM")
	ct, _ := lookup("COLORTERM")
	term = strings.ToLower(term)
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "truecolor"), strings.Contains(ct, "24bit"):
		return colorTrue
	case strings.Contains(term, "256color"):
		return colorANSI256
	case term == "dumb":
		return colorOff
	case term == "" && runtime.GOOS == "windows":
		return colorANSI16
	case term == "":
		return colorOff
	default:
		return colorANSI16
	}
}

type rgb struct{ R, G, B uint8 }

func (c rgb) key() uint32 { return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B) }

const ansiReset = "\x1b[0m"

// fgColorSeq returns the foreground escape for c, memoized per mode.
func fgColorSeq(mode colorMode, c rgb) string {
	key := uint32(mode)<<24 | c.key()
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	var seq string
	switch mode {
	case colorTrue:
		seq = fmt.Sprintf("\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B)
	case colorANSI256:
		ri := int(c.R) * 5 / 255
		gi := int(c.G) * 5 / 255
		bi := int(c.B) * 5 / 255
		seq = fmt.Sprintf("\x1b[38;5;%dm", 16+36*ri+6*gi+bi)
	case colorANSI16:
		best := ansi16Nearest(c)
		if best < 8 {
			seq = fmt.Sprintf("\x1b[%dm", 30+best)
		} else {
			seq = fmt.Sprintf("\x1b[%dm", 90+best-8)
		}
	}

	seqCache.Store(key, seq)
	return seq
}

func ansi16Nearest(c rgb) int {
	best := 0
	bestDist := 1<<31 - 1
	for i, p := range ansi16Palette {
		dr := int(c.R) - int(p.R)
		dg := int(c.G) - int(p.G)
		db := int(c.B) - int(p.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

var ansi16Palette = [16]rgb{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}

// ansiState suppresses escapes for runs of the same color.
type ansiState struct {
	mode    colorMode
	current uint32
}

func newANSIState(mode colorMode) ansiState {
	return ansiState{mode: mode, current: ^uint32(0)}
}

func (s *ansiState) set(sb *strings.Builder, c rgb) {
	if s.mode == colorOff {
		return
	}
	if k := c.key(); k != s.current {
		sb.WriteString(fgColorSeq(s.mode, c))
		s.current = k
	}
}

func (s *ansiState) reset(sb *strings.Builder) {
	if s.mode == colorOff || s.current == ^uint32(0) {
		return
	}
	sb.WriteString(ansiReset)
	s.current = ^uint32(0)
}
