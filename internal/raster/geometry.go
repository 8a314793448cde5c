package raster

import (
	"fmt"
	"image"
)

// Point is an integer pixel coordinate.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// BoundingBox is an axis-aligned pixel rectangle. X/Y are inclusive, the box
// covers X..X+Width-1 and Y..Y+Height-1.
type BoundingBox struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Box is shorthand for a BoundingBox literal.
func Box(x, y, w, h int) BoundingBox {
	return BoundingBox{X: x, Y: y, Width: w, Height: h}
}

// Right returns the exclusive right edge.
func (b BoundingBox) Right() int { return b.X + b.Width }

// Bottom returns the exclusive bottom edge.
func (b BoundingBox) Bottom() int { return b.Y + b.Height }

// Area returns Width*Height.
func (b BoundingBox) Area() int { return b.Width * b.Height }

// AspectRatio returns Width/Height.
func (b BoundingBox) AspectRatio() float64 {
	return float64(b.Width) / float64(b.Height)
}

// Contains reports whether inner lies completely inside b. Shared edges count
// as contained.
func (b BoundingBox) Contains(inner BoundingBox) bool {
	return b.X <= inner.X && b.Y <= inner.Y &&
		b.Right() >= inner.Right() && b.Bottom() >= inner.Bottom()
}

// Intersect returns the overlap of b and o and whether it is non-empty.
func (b BoundingBox) Intersect(o BoundingBox) (BoundingBox, bool) {
	x0, y0 := max(b.X, o.X), max(b.Y, o.Y)
	x1, y1 := min(b.Right(), o.Right()), min(b.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return BoundingBox{}, false
	}
	return BoundingBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// Rect converts the box to an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.Right(), b.Bottom())
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", b.X, b.Y, b.Width, b.Height)
}

// Contour is a 4-connected set of pixels in the order flood fill reached them.
// The bounding box is tracked while points are added.
type Contour struct {
	points     []Point
	minX, minY int
	maxX, maxY int
}

// NewContour returns an empty contour with room for n points.
func NewContour(n int) *Contour {
	return &Contour{points: make([]Point, 0, n)}
}

// Add appends a point.
func (c *Contour) Add(p Point) {
	if len(c.points) == 0 {
		c.minX, c.maxX = p.X, p.X
		c.minY, c.maxY = p.Y, p.Y
	} else {
		c.minX = min(c.minX, p.X)
		c.maxX = max(c.maxX, p.X)
		c.minY = min(c.minY, p.Y)
		c.maxY = max(c.maxY, p.Y)
	}
	c.points = append(c.points, p)
}

// Len returns the number of points.
func (c *Contour) Len() int { return len(c.points) }

// Points returns a copy of the points in discovery order.
func (c *Contour) Points() []Point {
	return append([]Point(nil), c.points...)
}

// BoundingBox returns the smallest box covering every point. An empty
// contour has a zero box.
func (c *Contour) BoundingBox() BoundingBox {
	if len(c.points) == 0 {
		return BoundingBox{}
	}
	return BoundingBox{
		X:      c.minX,
		Y:      c.minY,
		Width:  c.maxX - c.minX + 1,
		Height: c.maxY - c.minY + 1,
	}
}
