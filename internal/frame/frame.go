// Package frame turns full-size video frames into the small RGBA grids the
// glyph styles read from.
package frame

import "image"

// Glyph cell size in output pixels.
const (
	CellWidth  = 7
	CellHeight = 10
)

// Buffer is a downsampled frame: RGBA samples, row-major, origin top-left.
// len(Pix) is always Cols*Rows*4 for buffers produced by a Sampler.
type Buffer struct {
	Pix  []byte
	Cols int
	Rows int
}

// Valid reports whether the buffer has at least one cell and enough bytes
// to address every cell.
func (b Buffer) Valid() bool {
	return b.Cols > 0 && b.Rows > 0 && len(b.Pix) >= b.Cols*b.Rows*4
}

// Brightness returns the luminance of cell (x, y).
func (b Buffer) Brightness(x, y int) float64 {
	i := (y*b.Cols + x) * 4
	return Luminance(b.Pix[i], b.Pix[i+1], b.Pix[i+2])
}

// Source supplies the most recent video frame.
type Source interface {
	// Frame calls fn with the latest frame and reports whether one was
	// available. The image must not be retained after fn returns.
	Frame(fn func(image.Image)) bool
}

// Luminance computes perceived brightness (ITU-R BT.601) normalized to [0,1].
func Luminance(r, g, b uint8) float64 {
	// Integer weights keep white at exactly 1.0.
	return float64(299*int(r)+587*int(g)+114*int(b)) / (1000 * 255)
}
