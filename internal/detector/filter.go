package detector

import "github.com/MeKo-Tech/matrixscan/internal/raster"

// FilterBySize keeps the contours whose bounding box lies within the
// configured width and height bounds, inclusive.
func FilterBySize(contours []*raster.Contour, cfg Config) []*raster.Contour {
	out := make([]*raster.Contour, 0, len(contours))
	for _, c := range contours {
		b := c.BoundingBox()
		if b.Width < cfg.MinWidth || b.Width > cfg.MaxWidth {
			continue
		}
		if b.Height < cfg.MinHeight || b.Height > cfg.MaxHeight {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FilterContained drops every contour whose bounding box is contained by the
// box of another element of the list. Elements are compared by position, so
// two contours with equal boxes remove each other.
func FilterContained(contours []*raster.Contour) []*raster.Contour {
	boxes := make([]raster.BoundingBox, len(contours))
	for i, c := range contours {
		boxes[i] = c.BoundingBox()
	}

	out := make([]*raster.Contour, 0, len(contours))
	for i, c := range contours {
		contained := false
		for j := range boxes {
			if i != j && boxes[j].Contains(boxes[i]) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, c)
		}
	}
	return out
}
