package preprocess

import (
	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

// BinarizeFixed maps pixels darker than threshold to black and the rest to
// white.
func BinarizeFixed(r *raster.Raster, threshold uint8) *raster.Raster {
	w, h := r.Width(), r.Height()
	out := raster.NewCanvas(w, h)
	for y := range h {
		for x := range w {
			if r.At(x, y) >= threshold {
				out.Set(x, y, raster.White)
			}
		}
	}
	return out.Raster()
}

// BinarizeAdaptive compares each pixel with the integer mean of the
// block x block window around it, clipped to the raster. A pixel is white
// when it is brighter than mean-c.
func BinarizeAdaptive(r *raster.Raster, block, c int) *raster.Raster {
	w, h := r.Width(), r.Height()
	sums := integral(r)
	half := block / 2

	out := raster.NewCanvas(w, h)
	for y := range h {
		y0, y1 := max(0, y-half), min(h-1, y+half)
		for x := range w {
			x0, x1 := max(0, x-half), min(w-1, x+half)
			count := (x1 - x0 + 1) * (y1 - y0 + 1)
			sum := sums.rect(x0, y0, x1, y1)
			mean := int(sum / int64(count))
			if int(r.At(x, y)) > mean-c {
				out.Set(x, y, raster.White)
			}
		}
	}
	return out.Raster()
}

// summedArea is a (w+1)x(h+1) integral image.
type summedArea struct {
	stride int
	sum    []int64
}

func integral(r *raster.Raster) summedArea {
	w, h := r.Width(), r.Height()
	s := summedArea{stride: w + 1, sum: make([]int64, (w+1)*(h+1))}
	for y := range h {
		var row int64
		for x := range w {
			row += int64(r.At(x, y))
			s.sum[(y+1)*s.stride+x+1] = s.sum[y*s.stride+x+1] + row
		}
	}
	return s
}

// rect returns the sum over the inclusive window [x0,x1]x[y0,y1].
func (s summedArea) rect(x0, y0, x1, y1 int) int64 {
	a := s.sum[y0*s.stride+x0]
	b := s.sum[y0*s.stride+x1+1]
	c := s.sum[(y1+1)*s.stride+x0]
	d := s.sum[(y1+1)*s.stride+x1+1]
	return d - b - c + a
}
