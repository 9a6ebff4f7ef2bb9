package style

import (
	"time"

	"github.com/olivier-w/codecam/internal/frame"
	"github.com/olivier-w/codecam/internal/palette"
)

const (
	binaryThreshold = 0.05
	binaryGain      = 1.5
	binaryPeriod    = 100 // ms per shimmer step
)

var binaryGlyphs = [2]string{"0", "1"}

type binaryRenderer struct {
	cache *palette.Cache
}

// NewBinary returns the Binary renderer: a diagonal shimmer of 0s and 1s.
func NewBinary(cache *palette.Cache) Renderer {
	return &binaryRenderer{cache: cache}
}

func (r *binaryRenderer) ID() ID { return Binary }

func (r *binaryRenderer) Paint(buf frame.Buffer, now time.Time, dst Surface) {
	if !buf.Valid() {
		return
	}
	offset := timeStep(now, binaryPeriod)

	// Reissue the fill only when the quantized opacity moves.
	lastStep := -1

	for y := 0; y < buf.Rows; y++ {
		for x := 0; x < buf.Cols; x++ {
			b := buf.Brightness(x, y)
			if b <= binaryThreshold {
				continue
			}

			alpha := min(1, b*binaryGain)
			if step := palette.Step(alpha); step != lastStep {
				dst.SetFill(r.cache.Get(BinaryColor, alpha))
				lastStep = step
			}

			g := binaryGlyphs[(int64(x+y)+offset)&1]
			dst.FillText(g, x*frame.CellWidth, y*frame.CellHeight)
		}
	}
}
