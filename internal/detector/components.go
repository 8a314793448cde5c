package detector

import (
	"log/slog"

	"github.com/MeKo-Tech/matrixscan/internal/mempool"
	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

// ExtractContours labels the 4-connected components of edge pixels (value > 0)
// in edges. Seeds are taken scanning x outer, y inner. Components whose
// bounding-box area is <= minArea are dropped.
func ExtractContours(edges *raster.Raster, minArea int) []*raster.Contour {
	w, h := edges.Width(), edges.Height()
	visited := mempool.GetBool(w * h)
	defer mempool.PutBool(visited)
	stack := mempool.GetInts(64)
	defer func() { mempool.PutInts(stack) }()

	var contours []*raster.Contour
	discarded := 0
	for x := range w {
		for y := range h {
			idx := y*w + x
			if visited[idx] || edges.At(x, y) == 0 {
				continue
			}
			var c *raster.Contour
			c, stack = floodFill(edges, visited, stack, x, y)
			if c.BoundingBox().Area() <= minArea {
				discarded++
				continue
			}
			contours = append(contours, c)
		}
	}

	slog.Debug("contours extracted", "count", len(contours), "discarded", discarded)
	return contours
}

// floodFill grows one component from (sx, sy) using stack as a LIFO work
// list of pixel indices. The (possibly grown) stack is handed back for reuse.
func floodFill(edges *raster.Raster, visited []bool, stack []int, sx, sy int) (*raster.Contour, []int) {
	w, h := edges.Width(), edges.Height()
	c := raster.NewContour(16)

	stack = append(stack[:0], sy*w+sx)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := idx%w, idx/w
		if visited[idx] || edges.At(x, y) == 0 {
			continue
		}
		visited[idx] = true
		c.Add(raster.Pt(x, y))

		if x > 0 {
			stack = append(stack, idx-1)
		}
		if x < w-1 {
			stack = append(stack, idx+1)
		}
		if y > 0 {
			stack = append(stack, idx-w)
		}
		if y < h-1 {
			stack = append(stack, idx+w)
		}
	}
	return c, stack
}
