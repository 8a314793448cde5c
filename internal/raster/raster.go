// Package raster holds the 8-bit intensity buffers and integer geometry the
// locate and decode stages pass between each other.
//
// A Raster is immutable once built. Stages that produce new pixels write into
// a Canvas and freeze it with Canvas.Raster, so no stage ever holds a
// writable alias to a buffer another stage reads.
package raster

import (
	"fmt"
	"image"
	"image/color"
)

const (
	// Black is the darkest intensity value.
	Black uint8 = 0
	// White is the brightest intensity value.
	White uint8 = 255
)

// Raster is a dense row-major grid of 8-bit intensities (0 = black, 255 = white).
type Raster struct {
	width  int
	height int
	pix    []uint8
}

// FromPixels builds a raster from a copy of pix. It panics when pix does not
// hold exactly width*height values or a dimension is not positive.
func FromPixels(width, height int, pix []uint8) *Raster {
	mustDims(width, height)
	if len(pix) != width*height {
		panic(fmt.Sprintf("raster: %d pixels for %dx%d", len(pix), width, height))
	}
	buf := make([]uint8, len(pix))
	copy(buf, pix)
	return &Raster{width: width, height: height, pix: buf}
}

// Filled returns a width x height raster where every pixel is v.
func Filled(width, height int, v uint8) *Raster {
	c := NewCanvas(width, height)
	if v != 0 {
		for i := range c.pix {
			c.pix[i] = v
		}
	}
	return c.Raster()
}

// FromImage converts any image to intensities using the color.Gray model.
// The result is anchored at (0,0) regardless of img.Bounds().Min.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	c := NewCanvas(b.Dx(), b.Dy())
	if g, ok := img.(*image.Gray); ok {
		for y := range c.height {
			off := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(c.pix[y*c.width:(y+1)*c.width], g.Pix[off:off+c.width])
		}
		return c.Raster()
	}
	for y := range c.height {
		for x := range c.width {
			gc, _ := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			c.pix[y*c.width+x] = gc.Y
		}
	}
	return c.Raster()
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.height }

// Bounds returns the box covering the whole raster.
func (r *Raster) Bounds() BoundingBox {
	return BoundingBox{X: 0, Y: 0, Width: r.width, Height: r.height}
}

// At returns the intensity at (x, y). Coordinates outside the raster panic.
func (r *Raster) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		panic(fmt.Sprintf("raster: (%d,%d) outside %dx%d", x, y, r.width, r.height))
	}
	return r.pix[y*r.width+x]
}

// Pixels returns a copy of the row-major pixel buffer.
func (r *Raster) Pixels() []uint8 {
	out := make([]uint8, len(r.pix))
	copy(out, r.pix)
	return out
}

// Crop copies the pixels under box into a new raster. The box is clipped to
// the raster; an empty intersection panics.
func (r *Raster) Crop(box BoundingBox) *Raster {
	clipped, ok := box.Intersect(r.Bounds())
	if !ok {
		panic(fmt.Sprintf("raster: crop %v outside %dx%d", box, r.width, r.height))
	}
	c := NewCanvas(clipped.Width, clipped.Height)
	for y := range clipped.Height {
		src := (clipped.Y+y)*r.width + clipped.X
		copy(c.pix[y*clipped.Width:(y+1)*clipped.Width], r.pix[src:src+clipped.Width])
	}
	return c.Raster()
}

// SampleLine returns the intensities on the straight line from a to b,
// both endpoints included, using max(|dx|,|dy|) steps.
func (r *Raster) SampleLine(a, b Point) []uint8 {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := max(absInt(dx), absInt(dy))
	out := make([]uint8, 0, steps+1)
	if steps == 0 {
		return append(out, r.At(a.X, a.Y))
	}
	for i := 0; i <= steps; i++ {
		x := a.X + roundDiv(i*dx, steps)
		y := a.Y + roundDiv(i*dy, steps)
		out = append(out, r.At(x, y))
	}
	return out
}

// ToGray returns the raster as a standard library grayscale image.
func (r *Raster) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.pix)
	return img
}

// Canvas is a writable pixel buffer. Call Raster to freeze it; the canvas
// must not be written afterwards.
type Canvas struct {
	width  int
	height int
	pix    []uint8
}

// NewCanvas allocates a black width x height canvas.
func NewCanvas(width, height int) *Canvas {
	mustDims(width, height)
	return &Canvas{width: width, height: height, pix: make([]uint8, width*height)}
}

// CanvasFrom starts a canvas from a copy of src.
func CanvasFrom(src *Raster) *Canvas {
	return &Canvas{width: src.width, height: src.height, pix: src.Pixels()}
}

// Width returns the canvas width.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height.
func (c *Canvas) Height() int { return c.height }

// Set writes v at (x, y).
func (c *Canvas) Set(x, y int, v uint8) {
	c.pix[y*c.width+x] = v
}

// Fill paints every pixel of box (clipped to the canvas) with v.
func (c *Canvas) Fill(box BoundingBox, v uint8) {
	clipped, ok := box.Intersect(BoundingBox{Width: c.width, Height: c.height})
	if !ok {
		return
	}
	for y := clipped.Y; y < clipped.Bottom(); y++ {
		row := c.pix[y*c.width+clipped.X : y*c.width+clipped.Right()]
		for i := range row {
			row[i] = v
		}
	}
}

// Raster freezes the canvas into an immutable raster.
func (c *Canvas) Raster() *Raster {
	r := &Raster{width: c.width, height: c.height, pix: c.pix}
	c.pix = nil
	return r
}

func mustDims(width, height int) {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("raster: invalid dimensions %dx%d", width, height))
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// roundDiv divides n by d (d > 0) rounding half away from zero.
func roundDiv(n, d int) int {
	if n >= 0 {
		return (2*n + d) / (2 * d)
	}
	return -((-2*n + d) / (2 * d))
}
