package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

func TestBlurUniformInteriorUnchanged(t *testing.T) {
	out := Blur(raster.Filled(10, 10, 120))
	for y := 2; y < 8; y++ {
		for x := 2; x < 8; x++ {
			assert.Equal(t, uint8(120), out.At(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestBlurSpreadsImpulse(t *testing.T) {
	c := raster.CanvasFrom(raster.Filled(9, 9, 0))
	c.Set(4, 4, 255)
	out := Blur(c.Raster())

	// Centre weight is 36/256 of the impulse.
	assert.InDelta(t, 255*36.0/256, float64(out.At(4, 4)), 1)
	assert.InDelta(t, 255*24.0/256, float64(out.At(5, 4)), 1)
	assert.InDelta(t, 255*1.0/256, float64(out.At(6, 6)), 1)
	assert.Equal(t, uint8(0), out.At(7, 4))
}

func TestBlurBlackensBorder(t *testing.T) {
	out := Blur(raster.Filled(8, 8, raster.White))

	for i := range 8 {
		for _, d := range []int{0, 1, 6, 7} {
			assert.Equal(t, raster.Black, out.At(i, d), "row %d", d)
			assert.Equal(t, raster.Black, out.At(d, i), "column %d", d)
		}
	}
	assert.Equal(t, raster.White, out.At(2, 2), "interior reads the untouched input")
	assert.Equal(t, raster.White, out.At(5, 5))
}

func TestBlurRoundsWeightedSum(t *testing.T) {
	// Centre 1, rest 0: the sum is 36/256 = 0.14, which rounds to 0. A
	// centre of 4 gives 0.5625 and rounds up to 1.
	c := raster.CanvasFrom(raster.Filled(5, 5, 0))
	c.Set(2, 2, 4)
	assert.Equal(t, uint8(1), Blur(c.Raster()).At(2, 2))
}

func TestBlurTinyRaster(t *testing.T) {
	out := Blur(raster.Filled(4, 4, 9))
	assert.Equal(t, raster.Filled(4, 4, raster.Black).Pixels(), out.Pixels())
}
