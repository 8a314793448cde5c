package preprocess

import (
	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

// binomial5x5 is the outer product of [1 4 6 4 1]; its weights sum to 256.
var binomial5x5 = [25]float64{
	1, 4, 6, 4, 1,
	4, 16, 24, 16, 4,
	6, 24, 36, 24, 6,
	4, 16, 24, 16, 4,
	1, 4, 6, 4, 1,
}

// blurBorder is the band on every side the kernel does not reach; it comes
// out black.
const blurBorder = 2

// Blur smooths r with a 5x5 binomial kernel. Pixels within two of the edge
// are set to black, so a raster too small for the kernel is all black.
// Weighted sums are rounded to the nearest intensity rather than truncated.
func Blur(r *raster.Raster) *raster.Raster {
	w, h := r.Width(), r.Height()
	out := raster.NewCanvas(w, h)
	if w <= 2*blurBorder || h <= 2*blurBorder {
		return out.Raster()
	}

	blurred := imaging.Convolve5x5(r.ToGray(), binomial5x5, &imaging.ConvolveOptions{Normalize: true})
	for y := blurBorder; y < h-blurBorder; y++ {
		row := blurred.Pix[y*blurred.Stride:]
		for x := blurBorder; x < w-blurBorder; x++ {
			out.Set(x, y, row[x*4])
		}
	}
	return out.Raster()
}
