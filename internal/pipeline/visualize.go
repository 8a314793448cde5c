package pipeline

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/matrixscan/internal/utils"
)

// RenderOverlay returns an RGBA copy of img with the located symbol region
// outlined. Region coordinates are relative to the working image, so img must
// be the input after FitImage. Results without a region yield a plain copy.
func RenderOverlay(img image.Image, res *Result, boxColor color.Color) *image.RGBA {
	if img == nil {
		return nil
	}
	if res == nil || res.Region == nil {
		return utils.ToRGBA(img)
	}
	return utils.DrawBoxes(img, []image.Rectangle{res.Region.Rect()}, boxColor, 2)
}
