package frame

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Sampler resamples frames into cols×rows grids, mirrored horizontally.
type Sampler struct {
	interp draw.Interpolator
}

// NewSampler returns a Sampler using interp, or ApproxBiLinear when nil.
func NewSampler(interp draw.Interpolator) *Sampler {
	if interp == nil {
		interp = draw.ApproxBiLinear
	}
	return &Sampler{interp: interp}
}

// Sample draws the whole of src into a fresh cols×rows raster so that the
// left edge of src lands on the right edge of the grid. The full-resolution
// source is only touched by the scaler; callers inspect the small grid.
func (s *Sampler) Sample(src image.Image, cols, rows int) Buffer {
	if src == nil || cols <= 0 || rows <= 0 {
		return Buffer{}
	}
	sb := src.Bounds()
	if sb.Empty() {
		return Buffer{}
	}

	dst := image.NewRGBA(image.Rect(0, 0, cols, rows))
	sx := float64(cols) / float64(sb.Dx())
	sy := float64(rows) / float64(sb.Dy())

	// dstX = cols - (srcX-minX)*sx, dstY = (srcY-minY)*sy
	m := f64.Aff3{
		-sx, 0, float64(cols) + float64(sb.Min.X)*sx,
		0, sy, -float64(sb.Min.Y) * sy,
	}
	s.interp.Transform(dst, m, src, sb, draw.Src, nil)

	return Buffer{Pix: dst.Pix, Cols: cols, Rows: rows}
}
