package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand/v2"
	"strings"

	"github.com/disintegration/imaging"
)

// SymbolConfig describes a synthetic matrix symbol drawn on a white page.
type SymbolConfig struct {
	Modules    int     // Grid size including the finder ring; odd sizes keep the top-right corner dark
	ModuleSize int     // Pixels per module edge
	Margin     int     // White border around the symbol
	Data       string  // Interior bits column by column, each top to bottom, '1' = dark; missing bits are light
	Dark       uint8   // Intensity of dark modules
	Light      uint8   // Intensity of light modules and the page
	Noise      float64 // Fraction of page pixels flipped to the opposite tone
	Seed       uint64  // Noise seed
	Rotation   float64 // Counter-clockwise rotation in degrees
}

// DefaultSymbolConfig returns an 11x11 symbol with 10-pixel modules.
func DefaultSymbolConfig() SymbolConfig {
	return SymbolConfig{
		Modules:    11,
		ModuleSize: 10,
		Margin:     30,
		Dark:       0,
		Light:      255,
		Seed:       1,
	}
}

// DataCapacity returns the number of interior data modules.
func (c SymbolConfig) DataCapacity() int {
	n := c.Modules - 2
	return n * n
}

// Origin returns the top-left pixel of the symbol on the page.
func (c SymbolConfig) Origin() image.Point {
	return image.Pt(c.Margin, c.Margin)
}

// SymbolModules lays out the full module grid row-major, true = dark. Data
// bits fill the interior in the order the decoder reads them back. The left
// column and bottom row are solid; the top row alternates starting dark at
// the left and the right column alternates starting dark at the bottom.
func SymbolModules(c SymbolConfig) []bool {
	n := c.Modules
	grid := make([]bool, n*n)
	for row := range n {
		for col := range n {
			var dark bool
			switch {
			case col == 0 || row == n-1:
				dark = true
			case row == 0:
				dark = col%2 == 0
			case col == n-1:
				dark = (n-1-row)%2 == 0
			default:
				i := (col-1)*(n-2) + (row - 1)
				dark = i < len(c.Data) && c.Data[i] == '1'
			}
			grid[row*n+col] = dark
		}
	}
	return grid
}

// RenderSymbol draws the symbol described by c.
func RenderSymbol(c SymbolConfig) *image.Gray {
	side := c.Modules*c.ModuleSize + 2*c.Margin
	img := image.NewGray(image.Rect(0, 0, side, side))
	for i := range img.Pix {
		img.Pix[i] = c.Light
	}

	grid := SymbolModules(c)
	o := c.Origin()
	for row := range c.Modules {
		for col := range c.Modules {
			if !grid[row*c.Modules+col] {
				continue
			}
			for y := range c.ModuleSize {
				for x := range c.ModuleSize {
					img.SetGray(o.X+col*c.ModuleSize+x, o.Y+row*c.ModuleSize+y, color.Gray{Y: c.Dark})
				}
			}
		}
	}

	if c.Noise > 0 {
		addNoise(img, c)
	}
	if c.Rotation != 0 {
		rotated := imaging.Rotate(img, c.Rotation, color.Gray{Y: c.Light})
		out := image.NewGray(rotated.Bounds())
		draw.Draw(out, out.Bounds(), rotated, rotated.Bounds().Min, draw.Src)
		return out
	}
	return img
}

// addNoise flips a fraction of the pixels to the opposite tone.
func addNoise(img *image.Gray, c SymbolConfig) {
	rng := rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // G404: deterministic test noise
	for i, v := range img.Pix {
		if rng.Float64() >= c.Noise {
			continue
		}
		if v == c.Dark {
			img.Pix[i] = c.Light
		} else {
			img.Pix[i] = c.Dark
		}
	}
}

// ChunkBits encodes each value as a 10-bit big-endian group.
func ChunkBits(values ...int) string {
	var b strings.Builder
	for _, v := range values {
		fmt.Fprintf(&b, "%010b", v&0x3ff)
	}
	return b.String()
}

// NumericString formats values the way the payload decoder does: every
// 10-bit group as at least two digits.
func NumericString(values ...int) string {
	var b strings.Builder
	for _, v := range values {
		fmt.Fprintf(&b, "%02d", v&0x3ff)
	}
	return b.String()
}
