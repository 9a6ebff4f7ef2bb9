package surface

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/olivier-w/codecam/internal/frame"
	"github.com/olivier-w/codecam/internal/palette"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	monoOnce sync.Once
	monoFont *opentype.Font
	monoErr  error
)

func loadMono() (*opentype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = opentype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

// Raster paints glyphs onto an RGBA image with a monospace face sized to
// the cell height.
type Raster struct {
	img    *image.RGBA
	face   font.Face
	ascent int
	src    *image.Uniform
	drawer font.Drawer
}

// NewRaster returns a width×height pixel surface.
func NewRaster(width, height int) (*Raster, error) {
	f, err := loadMono()
	if err != nil {
		return nil, fmt.Errorf("parsing monospace font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    frame.CellHeight,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}

	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	r := &Raster{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		face:   face,
		ascent: face.Metrics().Ascent.Ceil(),
		src:    image.NewUniform(color.NRGBA{A: 0xff}),
	}
	r.drawer = font.Drawer{Dst: r.img, Src: r.src, Face: face}
	return r, nil
}

// NewRasterGrid returns a surface covering cols×rows glyph cells.
func NewRasterGrid(cols, rows int) (*Raster, error) {
	return NewRaster(cols*frame.CellWidth, rows*frame.CellHeight)
}

// Image returns the backing image. It is mutated by later draws.
func (r *Raster) Image() *image.RGBA { return r.img }

// Bounds returns the pixel rectangle of the surface.
func (r *Raster) Bounds() image.Rectangle { return r.img.Bounds() }

// Clear fills the whole surface with bg.
func (r *Raster) Clear(bg color.NRGBA) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

// SetFill sets the color of subsequent glyphs.
func (r *Raster) SetFill(c palette.Color) {
	r.src.C = c.RGBA
}

// FillText draws text with its top edge at y.
func (r *Raster) FillText(text string, x, y int) {
	r.drawer.Dot = fixed.P(x, y+r.ascent)
	r.drawer.DrawString(text)
}

// Close releases the font face.
func (r *Raster) Close() error {
	return r.face.Close()
}
