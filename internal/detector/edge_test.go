package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

func TestDetectEdgesUniformIsZero(t *testing.T) {
	edges := DetectEdges(raster.Filled(8, 8, raster.White))
	for _, v := range edges.Pixels() {
		require.Equal(t, uint8(0), v)
	}
}

func TestDetectEdgesBorderStaysZero(t *testing.T) {
	c := raster.CanvasFrom(raster.Filled(6, 6, raster.White))
	c.Fill(raster.Box(0, 0, 3, 6), raster.Black)
	edges := DetectEdges(c.Raster())

	for i := range 6 {
		assert.Equal(t, uint8(0), edges.At(i, 0))
		assert.Equal(t, uint8(0), edges.At(i, 5))
		assert.Equal(t, uint8(0), edges.At(0, i))
		assert.Equal(t, uint8(0), edges.At(5, i))
	}
	// Columns either side of the step saturate.
	assert.Equal(t, uint8(255), edges.At(2, 2))
	assert.Equal(t, uint8(255), edges.At(3, 2))
	assert.Equal(t, uint8(0), edges.At(1, 2))
	assert.Equal(t, uint8(0), edges.At(4, 2))
}

func TestDetectEdgesRoundsMagnitude(t *testing.T) {
	// Single step of 10 across a vertical boundary: gx = 4*10 = 40, gy = 0.
	c := raster.CanvasFrom(raster.Filled(5, 5, 100))
	c.Fill(raster.Box(3, 0, 2, 5), 110)
	edges := DetectEdges(c.Raster())
	assert.Equal(t, uint8(40), edges.At(2, 2))

	// Diagonal corner: gx = 2, gy = 2 gives sqrt(8) = 2.83, rounded to 3.
	d := raster.CanvasFrom(raster.Filled(3, 3, 0))
	d.Set(2, 2, 2)
	assert.Equal(t, uint8(3), DetectEdges(d.Raster()).At(1, 1))
}

func TestDetectEdgesTinyRaster(t *testing.T) {
	edges := DetectEdges(raster.Filled(2, 1, raster.White))
	assert.Equal(t, 2, edges.Width())
	assert.Equal(t, 1, edges.Height())
}
