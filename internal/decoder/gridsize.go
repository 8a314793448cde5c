package decoder

import (
	"fmt"

	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

// EstimateGridSize counts colour runs along row and returns runs-1. Every
// change in intensity between neighbours starts a run, and the first pixel
// opens one. The trailing run is the quiet zone the crop keeps on the right.
//
// The estimate is only as good as that single row: noise on it shifts the
// count. r must be taller than row; a shorter raster is a caller bug and
// panics.
func EstimateGridSize(r *raster.Raster, row int) int {
	if row < 0 || r.Height() <= row {
		panic(fmt.Sprintf("decoder: grid estimation needs height > %d, got %d", row, r.Height()))
	}

	runs := 1
	prev := r.At(0, row)
	for x := 1; x < r.Width(); x++ {
		v := r.At(x, row)
		if v != prev {
			runs++
		}
		prev = v
	}
	return runs - 1
}
