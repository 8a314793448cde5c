package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

func TestBinarizeFixed(t *testing.T) {
	r := raster.FromPixels(4, 1, []uint8{0, 127, 128, 255})
	assert.Equal(t, []uint8{0, 0, 255, 255}, BinarizeFixed(r, 128).Pixels())
}

func TestBinarizeAdaptiveUniform(t *testing.T) {
	// Every pixel equals its mean, which is above mean-C.
	out := BinarizeAdaptive(raster.Filled(20, 20, 90), 15, 10)
	for _, v := range out.Pixels() {
		assert.Equal(t, raster.White, v)
	}
}

func TestBinarizeAdaptiveDarkSpot(t *testing.T) {
	c := raster.CanvasFrom(raster.Filled(30, 30, 200))
	c.Fill(raster.Box(10, 10, 3, 3), 20)
	out := BinarizeAdaptive(c.Raster(), 15, 10)

	assert.Equal(t, raster.Black, out.At(11, 11))
	assert.Equal(t, raster.White, out.At(0, 0))
	assert.Equal(t, raster.White, out.At(20, 20))
}

func TestBinarizeAdaptiveHollowsLargeDarkArea(t *testing.T) {
	c := raster.CanvasFrom(raster.Filled(60, 60, 255))
	c.Fill(raster.Box(10, 10, 40, 40), 0)
	out := BinarizeAdaptive(c.Raster(), 15, 10)

	assert.Equal(t, raster.Black, out.At(11, 30), "near the boundary stays dark")
	assert.Equal(t, raster.White, out.At(30, 30), "interior matches its own mean")
}

func TestBinarizeAdaptiveMatchesNaiveMean(t *testing.T) {
	pix := make([]uint8, 13*11)
	for i := range pix {
		pix[i] = uint8((i * 37) % 251)
	}
	r := raster.FromPixels(13, 11, pix)
	out := BinarizeAdaptive(r, 5, 3)

	for y := range 11 {
		for x := range 13 {
			sum, n := 0, 0
			for yy := max(0, y-2); yy <= min(10, y+2); yy++ {
				for xx := max(0, x-2); xx <= min(12, x+2); xx++ {
					sum += int(r.At(xx, yy))
					n++
				}
			}
			want := raster.Black
			if int(r.At(x, y)) > sum/n-3 {
				want = raster.White
			}
			assert.Equal(t, want, out.At(x, y), "(%d,%d)", x, y)
		}
	}
}
