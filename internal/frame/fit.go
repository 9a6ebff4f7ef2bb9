package frame

// FitGrid computes the largest grid that fits in availCols×availRows cells
// while keeping the srcW:srcH aspect ratio of the video, given that each
// cell covers CellWidth×CellHeight output pixels.
//
// Returns (0, 0) when any input is non-positive.
func FitGrid(availCols, availRows, srcW, srcH int) (cols, rows int) {
	if availCols <= 0 || availRows <= 0 || srcW <= 0 || srcH <= 0 {
		return 0, 0
	}

	aspectSrc := float64(srcW) / float64(srcH)
	width := float64(availCols * CellWidth)
	height := width / aspectSrc
	if maxH := float64(availRows * CellHeight); height > maxH {
		height = maxH
		width = height * aspectSrc
	}

	cols = int(width) / CellWidth
	rows = int(height) / CellHeight
	if cols > availCols {
		cols = availCols
	}
	if rows > availRows {
		rows = availRows
	}
	return cols, rows
}
