package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

func TestModuleGridRows(t *testing.T) {
	g := GridFromRows([][]bool{
		{true, false},
		{false, true},
	})
	assert.Equal(t, 2, g.Size())
	assert.True(t, g.Dark(0, 0))
	assert.False(t, g.Dark(0, 1))
	assert.Equal(t, "#.\n.#\n", g.String())

	assert.Panics(t, func() { GridFromRows([][]bool{{true}, {true, false}}) })
}

func TestAnalyzeCells(t *testing.T) {
	c := raster.CanvasFrom(raster.Filled(6, 6, raster.White))
	c.Fill(raster.Box(0, 0, 3, 3), raster.Black)
	c.Fill(raster.Box(3, 3, 2, 2), raster.Black) // 4 of 9 pixels: light
	r := c.Raster()

	g, ok := Analyze(r, 2, DefaultConfig())
	require.True(t, ok)
	assert.Equal(t, "#.\n..\n", g.String())
}

func TestAnalyzeDegenerate(t *testing.T) {
	r := raster.Filled(4, 4, raster.White)
	_, ok := Analyze(r, 0, DefaultConfig())
	assert.False(t, ok)
	_, ok = Analyze(r, 5, DefaultConfig())
	assert.False(t, ok)
}

func TestNormalizeAndAnalyzeThresholdsDiffer(t *testing.T) {
	// 4 of 7 pixels dark: above 7/2 but not above 7/1.75.
	c := raster.CanvasFrom(raster.Filled(7, 1, raster.White))
	c.Fill(raster.Box(0, 0, 4, 1), raster.Black)
	r := c.Raster()

	normalized, ok := Normalize(r, 1, DefaultConfig())
	require.True(t, ok)
	assert.Equal(t, raster.Filled(7, 1, raster.White).Pixels(), normalized.Pixels())

	g, ok := Analyze(r, 1, DefaultConfig())
	require.True(t, ok)
	assert.True(t, g.Dark(0, 0))
}

func TestNormalizeRedrawsCells(t *testing.T) {
	c := raster.CanvasFrom(raster.Filled(4, 4, raster.White))
	c.Fill(raster.Box(0, 0, 2, 2), 30)
	c.Set(1, 1, 200) // 3 of 4 dark: still a dark cell
	c.Set(3, 3, 10)  // 1 of 4 dark: still a light cell
	r := c.Raster()

	normalized, ok := Normalize(r, 2, DefaultConfig())
	require.True(t, ok)
	assert.Equal(t, []uint8{
		0, 0, 255, 255,
		0, 0, 255, 255,
		255, 255, 255, 255,
		255, 255, 255, 255,
	}, normalized.Pixels())
	assert.Equal(t, uint8(200), r.At(1, 1), "input is not modified")
}

func TestNormalizeKeepsRemainderPixels(t *testing.T) {
	c := raster.CanvasFrom(raster.Filled(5, 5, 90))
	r := c.Raster()

	normalized, ok := Normalize(r, 2, DefaultConfig())
	require.True(t, ok)
	assert.Equal(t, raster.Black, normalized.At(0, 0))
	assert.Equal(t, raster.Black, normalized.At(3, 3))
	assert.Equal(t, uint8(90), normalized.At(4, 0))
	assert.Equal(t, uint8(90), normalized.At(0, 4))
}

func TestAnalyzedPayloadReadsColumns(t *testing.T) {
	// 4x4 cells of 2x2 pixels; only the interior cell at row 1, column 2 is dark.
	c := raster.CanvasFrom(raster.Filled(8, 8, raster.White))
	c.Fill(raster.Box(4, 2, 2, 2), raster.Black)

	g, ok := Analyze(c.Raster(), 4, DefaultConfig())
	require.True(t, ok)
	assert.True(t, g.Dark(1, 2))
	assert.False(t, g.Dark(2, 1))
	assert.Equal(t, "00"+"10", ExtractPayload(g))
}
