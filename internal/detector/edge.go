package detector

import (
	"math"

	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

// DetectEdges returns the Sobel gradient magnitude of r. The 1-pixel border
// is left at zero, so border pixels are never edges.
func DetectEdges(r *raster.Raster) *raster.Raster {
	w, h := r.Width(), r.Height()
	out := raster.NewCanvas(w, h)
	if w < 3 || h < 3 {
		return out.Raster()
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			out.Set(x, y, sobelMagnitude(r, x, y))
		}
	}
	return out.Raster()
}

func sobelMagnitude(r *raster.Raster, x, y int) uint8 {
	p := func(dx, dy int) int { return int(r.At(x+dx, y+dy)) }

	gx := -p(-1, -1) + p(1, -1) -
		2*p(-1, 0) + 2*p(1, 0) -
		p(-1, 1) + p(1, 1)
	gy := -p(-1, -1) - 2*p(0, -1) - p(1, -1) +
		p(-1, 1) + 2*p(0, 1) + p(1, 1)

	mag := math.Round(math.Sqrt(float64(gx*gx + gy*gy)))
	if mag > 255 {
		return 255
	}
	return uint8(mag)
}
