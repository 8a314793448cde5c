package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SaveImage saves an image as PNG to the specified path.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	dir := filepath.Dir(path)
	require.NoError(t, EnsureDir(dir), "Failed to create directory %s", dir)

	file, err := os.Create(path) //nolint:gosec // G304: Test file creation with controlled path
	require.NoError(t, err, "Failed to create file %s", path)
	defer func() {
		require.NoError(t, file.Close())
	}()

	require.NoError(t, png.Encode(file, img), "Failed to encode PNG image")
}

// LoadImage loads an image from the specified path.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	img, err := LoadImageFile(path)
	require.NoError(t, err)
	return img
}

// LoadImageFile loads an image from the specified path (non-testing version).
func LoadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // G304: Opening user-provided image file is expected
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// CreateTestImage creates a uniform image with the specified dimensions and color.
func CreateTestImage(width, height int, background color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)
	return img
}

// EncodePNG renders img to PNG bytes.
func EncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf pngBuffer
	require.NoError(t, png.Encode(&buf, img))
	return buf
}

type pngBuffer []byte

func (b *pngBuffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

// CompareImages reports whether the mean per-pixel gray difference of two
// same-sized images is within tolerance (0..1).
func CompareImages(img1, img2 image.Image, tolerance float64) bool {
	b1, b2 := img1.Bounds(), img2.Bounds()
	if b1.Dx() != b2.Dx() || b1.Dy() != b2.Dy() {
		return false
	}

	var total float64
	for y := range b1.Dy() {
		for x := range b1.Dx() {
			g1 := color.GrayModel.Convert(img1.At(b1.Min.X+x, b1.Min.Y+y)).(color.Gray).Y
			g2 := color.GrayModel.Convert(img2.At(b2.Min.X+x, b2.Min.Y+y)).(color.Gray).Y
			total += math.Abs(float64(g1) - float64(g2))
		}
	}
	avg := total / float64(b1.Dx()*b1.Dy())
	return avg/255 <= tolerance
}

// GenerateTestImages writes a small set of synthetic symbols and their
// fixtures under testdata.
func GenerateTestImages(t *testing.T) {
	t.Helper()

	dir := GetTestImageDir(t, "symbols")
	require.NoError(t, EnsureDir(dir))

	for _, f := range SampleFixtures() {
		img := RenderSymbol(f.Symbol)
		SaveImage(t, img, filepath.Join(GetTestDataDir(t), f.InputFile))
		SaveFixture(t, f)
	}
}
