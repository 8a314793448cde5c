package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolModulesFinderRing(t *testing.T) {
	cfg := DefaultSymbolConfig()
	n := cfg.Modules
	grid := SymbolModules(cfg)
	require.Len(t, grid, n*n)

	for i := range n {
		assert.True(t, grid[i*n], "left column row %d", i)
		assert.True(t, grid[(n-1)*n+i], "bottom row column %d", i)
		assert.Equal(t, i%2 == 0, grid[i], "top row column %d", i)
		assert.Equal(t, (n-1-i)%2 == 0, grid[i*n+n-1], "right column row %d", i)
	}
	assert.True(t, grid[n-1], "top-right corner is dark for odd sizes")
}

func TestSymbolModulesData(t *testing.T) {
	cfg := DefaultSymbolConfig()
	cfg.Modules = 5
	cfg.Data = "101000011"
	grid := SymbolModules(cfg)

	var got []bool
	for col := 1; col < 4; col++ {
		for row := 1; row < 4; row++ {
			got = append(got, grid[row*5+col])
		}
	}
	assert.Equal(t, []bool{true, false, true, false, false, false, false, true, true}, got)

	// The first data bits run down the leftmost interior column.
	assert.True(t, grid[1*5+1])
	assert.False(t, grid[1*5+2], "second bit is below the first, not beside it")
	assert.True(t, grid[3*5+1])
}

func TestRenderSymbol(t *testing.T) {
	cfg := DefaultSymbolConfig()
	img := RenderSymbol(cfg)

	side := cfg.Modules*cfg.ModuleSize + 2*cfg.Margin
	assert.Equal(t, side, img.Bounds().Dx())
	assert.Equal(t, cfg.Light, img.GrayAt(0, 0).Y)

	o := cfg.Origin()
	assert.Equal(t, cfg.Dark, img.GrayAt(o.X, o.Y).Y, "top-left module")
	assert.Equal(t, cfg.Light, img.GrayAt(o.X+cfg.ModuleSize, o.Y).Y, "second top module")
}

func TestRenderSymbolNoiseIsDeterministic(t *testing.T) {
	cfg := DefaultSymbolConfig()
	cfg.Noise = 0.01
	a := RenderSymbol(cfg)
	b := RenderSymbol(cfg)
	assert.Equal(t, a.Pix, b.Pix)
	assert.False(t, CompareImages(a, RenderSymbol(DefaultSymbolConfig()), 0))
}

func TestChunkBits(t *testing.T) {
	assert.Equal(t, "0000000001"+"0000000010", ChunkBits(1, 2))
	assert.Equal(t, "1111111111", ChunkBits(1023))
	assert.Equal(t, "0102", NumericString(1, 2))
	assert.Equal(t, "999", NumericString(999))
}

func TestSampleFixturesFitCapacity(t *testing.T) {
	for _, f := range SampleFixtures() {
		assert.LessOrEqual(t, len(f.Symbol.Data), f.Symbol.DataCapacity(), f.Name)
		assert.Equal(t, 1, f.Symbol.Modules%2, "%s uses an odd grid", f.Name)
	}
}
