package detector

import "github.com/MeKo-Tech/matrixscan/internal/raster"

// HasFinderPattern checks the symbol border inside box on the original
// raster: solid dark left and bottom edges, alternating top and right edges.
// All four sample lines are inset by cfg.FinderInset.
func HasFinderPattern(r *raster.Raster, box raster.BoundingBox, cfg Config) bool {
	in := cfg.FinderInset
	left, top := box.X+in, box.Y+in
	right, bottom := box.Right()-in, box.Bottom()-in

	// Lines may touch the exclusive edge of a box flush with the raster.
	right = min(right, r.Width()-1)
	bottom = min(bottom, r.Height()-1)
	if left > right || top > bottom {
		return false
	}

	dark := cfg.DarkThreshold
	return isSolidLine(r.SampleLine(raster.Pt(left, top), raster.Pt(left, bottom)), dark) &&
		isSolidLine(r.SampleLine(raster.Pt(left, bottom), raster.Pt(right, bottom)), dark) &&
		isBrokenLine(r.SampleLine(raster.Pt(left, top), raster.Pt(right, top)), dark) &&
		isBrokenLine(r.SampleLine(raster.Pt(right, top), raster.Pt(right, bottom)), dark)
}

func isSolidLine(samples []uint8, dark uint8) bool {
	for _, v := range samples {
		if v > dark {
			return false
		}
	}
	return true
}

func isBrokenLine(samples []uint8, dark uint8) bool {
	var sawDark, sawLight bool
	for _, v := range samples {
		if v > dark {
			sawLight = true
		} else {
			sawDark = true
		}
		if sawDark && sawLight {
			return true
		}
	}
	return false
}
