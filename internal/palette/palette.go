// Package palette precomputes translucent colors for the small, fixed set of
// base colors the glyph styles paint with.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Steps is the number of quantized opacity levels kept per base color.
const Steps = 20

// ErrBadHex is returned by Build when a base color cannot be parsed.
var ErrBadHex = errors.New("palette: invalid hex color")

// Color is a ready-to-use translucent color.
type Color struct {
	Hex  string      // normalized base color, "#rrggbb"
	Step int         // quantized opacity step, 0 when computed directly
	RGBA color.NRGBA // non-premultiplied color for raster surfaces
	CSS  string      // "rgba(r, g, b, a)"
}

func (c Color) String() string { return c.CSS }

// Alpha returns the opacity in [0,1].
func (c Color) Alpha() float64 { return float64(c.RGBA.A) / 255 }

type key struct {
	hex  string
	step int
}

// Cache maps (base color, opacity step) to a precomputed Color.
// It is never mutated after Build and may be shared between goroutines.
type Cache struct {
	entries map[key]Color
	colors  []string
}

// Build precomputes Steps entries for every base color.
func Build(colors []string) (*Cache, error) {
	c := &Cache{entries: make(map[key]Color, len(colors)*Steps)}
	for _, hex := range colors {
		norm := normalize(hex)
		base, err := Parse(norm)
		if err != nil {
			return nil, err
		}
		if _, seen := c.entries[key{norm, 1}]; seen {
			continue
		}
		r, g, b := base.R, base.G, base.B
		for a := 1; a <= Steps; a++ {
			alpha := float64(a) / Steps
			c.entries[key{norm, a}] = Color{
				Hex:  norm,
				Step: a,
				RGBA: color.NRGBA{R: r, G: g, B: b, A: alphaByte(alpha)},
				CSS:  fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(alpha, 'f', 2, 64)),
			}
		}
		c.colors = append(c.colors, norm)
	}
	return c, nil
}

// MustBuild is like Build but panics on a malformed color. Intended for
// color tables fixed at compile time.
func MustBuild(colors []string) *Cache {
	c, err := Build(colors)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of precomputed entries.
func (c *Cache) Len() int { return len(c.entries) }

// Colors returns the base colors in build order.
func (c *Cache) Colors() []string {
	out := make([]string, len(c.colors))
	copy(out, c.colors)
	return out
}

// Step quantizes alpha to an opacity step in [1, Steps].
func Step(alpha float64) int {
	s := int(math.Round(clamp01(alpha) * Steps))
	if s < 1 {
		return 1
	}
	if s > Steps {
		return Steps
	}
	return s
}

// Get returns the cached color nearest to alpha. Colors outside the
// precomputed set are computed directly from hex and the unquantized alpha.
func (c *Cache) Get(hex string, alpha float64) Color {
	if c != nil {
		if col, ok := c.entries[key{normalize(hex), Step(alpha)}]; ok {
			return col
		}
	}
	return Direct(hex, alpha)
}

// Direct formats hex at alpha without consulting a cache. An unparsable hex
// falls back to black.
func Direct(hex string, alpha float64) Color {
	alpha = clamp01(alpha)
	norm := normalize(hex)
	var r, g, b uint8
	if base, err := Parse(norm); err == nil {
		r, g, b = base.R, base.G, base.B
	}
	return Color{
		Hex:  norm,
		RGBA: color.NRGBA{R: r, G: g, B: b, A: alphaByte(alpha)},
		CSS:  fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64)),
	}
}

// Parse converts "#rrggbb" to an opaque color.
func Parse(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(normalize(hex))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w %q", ErrBadHex, hex)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func normalize(hex string) string {
	hex = strings.ToLower(strings.TrimSpace(hex))
	if hex != "" && !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	return hex
}

func alphaByte(alpha float64) uint8 {
	return uint8(math.Round(clamp01(alpha) * 255))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
