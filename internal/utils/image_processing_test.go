package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageProcessingErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := &ImageProcessingError{Operation: "save", Err: base}
	assert.Equal(t, "image processing error in save: boom", err.Error())
	assert.ErrorIs(t, err, base)
}

func TestValidateImageConstraints(t *testing.T) {
	c := DefaultImageConstraints()

	require.NoError(t, ValidateImageConstraints(grayImage(16, 16, 0), c))
	assert.Error(t, ValidateImageConstraints(grayImage(15, 100, 0), c))
	assert.Error(t, ValidateImageConstraints(nil, c))
	assert.NoError(t, ValidateImageConstraints(grayImage(5000, 20, 0), c), "oversized images are scaled, not rejected")
}

func TestFitImage(t *testing.T) {
	c := ImageConstraints{MaxWidth: 100, MaxHeight: 100}

	small := grayImage(80, 40, 0)
	assert.Same(t, small, FitImage(small, c))

	fitted := FitImage(grayImage(400, 200, 0), c)
	assert.Equal(t, 100, fitted.Bounds().Dx())
	assert.Equal(t, 50, fitted.Bounds().Dy())

	unbounded := grayImage(400, 200, 0)
	assert.Same(t, unbounded, FitImage(unbounded, ImageConstraints{}))
}
