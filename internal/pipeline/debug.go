package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/MeKo-Tech/matrixscan/internal/raster"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
)

var candidateColor = color.RGBA{R: 255, A: 255}

// DirSink writes intermediate rasters of one extraction as numbered PNG
// files into a directory. Write failures are logged and otherwise ignored.
type DirSink struct {
	dir string

	mu    sync.Mutex
	seq   int
	files []string
}

// NewDirSink returns a sink writing into dir. The directory is created on
// first write.
func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

// Dir returns the output directory.
func (s *DirSink) Dir() string { return s.dir }

// Files returns the paths written so far, in order.
func (s *DirSink) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.files...)
}

// SaveRaster writes r as <seq>_<name>.png.
func (s *DirSink) SaveRaster(name string, r *raster.Raster) {
	s.write(name, r.ToGray())
}

// SaveBoxes writes src with every box outlined.
func (s *DirSink) SaveBoxes(name string, src *raster.Raster, boxes []raster.BoundingBox) {
	rects := make([]image.Rectangle, len(boxes))
	for i, b := range boxes {
		rects[i] = b.Rect()
	}
	s.write(name, utils.DrawBoxes(src.ToGray(), rects, candidateColor, 1))
}

func (s *DirSink) write(name string, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		slog.Warn("failed to create debug directory", "dir", s.dir, "error", err)
		return
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%02d_%s.png", s.seq, name))
	s.seq++
	if err := utils.SaveImage(path, img); err != nil {
		slog.Warn("failed to write debug image", "path", path, "error", err)
		return
	}
	s.files = append(s.files, path)
}
