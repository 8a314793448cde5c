package detector

import "github.com/MeKo-Tech/matrixscan/internal/raster"

// hasSymbolAspect reports whether width/height lies in the configured range.
func hasSymbolAspect(box raster.BoundingBox, cfg Config) bool {
	ar := box.AspectRatio()
	return ar >= cfg.MinAspectRatio && ar <= cfg.MaxAspectRatio
}

// IsSymbol runs the candidate checks in order, stopping at the first failure:
// aspect ratio, minimum size, then the finder pattern against original.
func IsSymbol(original *raster.Raster, box raster.BoundingBox, cfg Config) bool {
	if !hasSymbolAspect(box, cfg) {
		return false
	}
	if box.Width < cfg.MinSymbolSize || box.Height < cfg.MinSymbolSize {
		return false
	}
	return HasFinderPattern(original, box, cfg)
}
