package utils

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawRect(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{R: 255, A: 255}
	DrawRect(dst, image.Rect(2, 2, 8, 8), red, 1)

	assert.Equal(t, red, dst.RGBAAt(2, 2))
	assert.Equal(t, red, dst.RGBAAt(7, 5))
	assert.Equal(t, red, dst.RGBAAt(5, 7))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(5, 5))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(1, 1))
}

func TestDrawRectClipsToBounds(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 5, 5))
	green := color.RGBA{G: 255, A: 255}
	assert.NotPanics(t, func() { DrawRect(dst, image.Rect(-3, -3, 20, 20), green, 2) })
	assert.Equal(t, green, dst.RGBAAt(0, 0))
	assert.Equal(t, green, dst.RGBAAt(1, 1))

	DrawRect(dst, image.Rect(10, 10, 20, 20), green, 1)
}

func TestDrawBoxesKeepsSource(t *testing.T) {
	src := grayImage(12, 12, 255)
	out := DrawBoxes(src, []image.Rectangle{image.Rect(1, 1, 6, 6)}, color.RGBA{B: 255, A: 255}, 1)

	assert.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(1, 1))
	assert.Equal(t, uint8(255), src.GrayAt(1, 1).Y)
}

func TestToRGBAOffsetsSubImage(t *testing.T) {
	g := grayImage(10, 10, 255)
	g.SetGray(5, 5, color.Gray{Y: 0})
	sub := g.SubImage(image.Rect(5, 5, 10, 10))

	rgba := ToRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 5, 5), rgba.Bounds())
	assert.Equal(t, color.RGBA{A: 255}, rgba.RGBAAt(0, 0))
}

func TestSaveImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, SaveImage(path, grayImage(4, 4, 128)))

	img, meta, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, 4, img.Bounds().Dx())

	assert.Error(t, SaveImage(filepath.Join(t.TempDir(), "out.unknown"), grayImage(4, 4, 0)))
}
