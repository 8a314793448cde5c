package decoder

import (
	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

// Normalize redraws every cell of the gridSize x gridSize partition as solid
// black or white. Pixels outside the partition keep their value. It reports
// false for a degenerate grid.
func Normalize(r *raster.Raster, gridSize int, cfg Config) (*raster.Raster, bool) {
	layout, ok := newCellLayout(r, gridSize)
	if !ok {
		return nil, false
	}

	out := raster.CanvasFrom(r)
	for row := range gridSize {
		for col := range gridSize {
			cell := layout.cell(row, col)
			v := raster.White
			if isDarkCell(r, cell, cfg.DarkLevel, cfg.NormalizeRatio) {
				v = raster.Black
			}
			out.Fill(cell, v)
		}
	}
	return out.Raster(), true
}
