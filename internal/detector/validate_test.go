package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MeKo-Tech/matrixscan/internal/raster"
	"github.com/MeKo-Tech/matrixscan/internal/testutil"
)

func TestHasSymbolAspectBoundaries(t *testing.T) {
	tests := []struct {
		name string
		box  raster.BoundingBox
		want bool
	}{
		{"1.2", raster.Box(0, 0, 120, 100), true},
		{"1.21", raster.Box(0, 0, 121, 100), false},
		{"0.8", raster.Box(0, 0, 80, 100), true},
		{"0.79", raster.Box(0, 0, 79, 100), false},
		{"square", raster.Box(0, 0, 64, 64), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasSymbolAspect(tt.box, DefaultConfig()))
		})
	}
}

func TestIsSymbolMinimumSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSymbolSize = 200
	cfg.FinderInset = 5

	sym := testutil.DefaultSymbolConfig()
	r := raster.FromImage(testutil.RenderSymbol(sym))

	assert.False(t, IsSymbol(r, symbolBox(sym), cfg))
	assert.True(t, IsSymbol(r, symbolBox(sym), DefaultConfig()))
}

func TestIsSymbolAspectShortCircuits(t *testing.T) {
	// A box far outside the raster would panic in the finder check if the
	// aspect test did not stop first.
	r := raster.Filled(20, 20, raster.White)
	assert.False(t, IsSymbol(r, raster.Box(500, 500, 300, 100), DefaultConfig()))
}
