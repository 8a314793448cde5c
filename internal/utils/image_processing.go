package utils

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ImageConstraints bounds the input dimensions the pipeline accepts.
type ImageConstraints struct {
	MaxWidth  int
	MaxHeight int
	MinWidth  int
	MinHeight int
}

// DefaultImageConstraints returns the default input constraints.
func DefaultImageConstraints() ImageConstraints {
	return ImageConstraints{
		MaxWidth:  4096,
		MaxHeight: 4096,
		MinWidth:  16,
		MinHeight: 16,
	}
}

// ValidateImageConstraints rejects images below the minimum size. Oversized
// images are accepted; FitImage scales them down.
func ValidateImageConstraints(img image.Image, constraints ImageConstraints) error {
	if img == nil {
		return &ImageProcessingError{Operation: "validate", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	if b.Dx() < constraints.MinWidth || b.Dy() < constraints.MinHeight {
		return &ImageProcessingError{
			Operation: "validate",
			Err: fmt.Errorf("image too small: %dx%d < %dx%d",
				b.Dx(), b.Dy(), constraints.MinWidth, constraints.MinHeight),
		}
	}
	return nil
}

// FitImage scales img down to fit within the maximum dimensions, keeping the
// aspect ratio. Images that already fit are returned unchanged. Nearest
// neighbour sampling keeps module edges hard.
func FitImage(img image.Image, constraints ImageConstraints) image.Image {
	b := img.Bounds()
	if constraints.MaxWidth <= 0 || constraints.MaxHeight <= 0 {
		return img
	}
	if b.Dx() <= constraints.MaxWidth && b.Dy() <= constraints.MaxHeight {
		return img
	}
	return imaging.Fit(img, constraints.MaxWidth, constraints.MaxHeight, imaging.NearestNeighbor)
}
