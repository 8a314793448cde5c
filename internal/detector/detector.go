package detector

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

// ErrNoRegionFound is returned when no candidate passes validation.
var ErrNoRegionFound = errors.New("no symbol region found")

// Region is a validated symbol location together with the raster it was
// found in.
type Region struct {
	Box    raster.BoundingBox
	Raster *raster.Raster
}

// DebugSink receives intermediate artifacts of the locate stage.
type DebugSink interface {
	SaveRaster(name string, r *raster.Raster)
	SaveBoxes(name string, src *raster.Raster, boxes []raster.BoundingBox)
}

// Locator finds a symbol region in a binarized raster.
type Locator struct {
	config Config
	debug  DebugSink
}

// Option customizes a Locator.
type Option func(*Locator)

// WithDebugSink routes the gradient raster and filtered boxes to sink.
func WithDebugSink(sink DebugSink) Option {
	return func(l *Locator) { l.debug = sink }
}

// NewLocator creates a locator with the given configuration.
func NewLocator(config Config, opts ...Option) (*Locator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid locator config: %w", err)
	}
	l := &Locator{config: config}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Config returns the locator configuration.
func (l *Locator) Config() Config { return l.config }

// Locate returns the first candidate, in discovery order, that passes the
// aspect, size and finder checks. The finder check reads r itself, not the
// gradient raster.
func (l *Locator) Locate(r *raster.Raster) (*Region, error) {
	edges := DetectEdges(r)
	if l.debug != nil {
		l.debug.SaveRaster("edges", edges)
	}

	contours := ExtractContours(edges, l.config.MinContourArea)
	sized := FilterBySize(contours, l.config)
	candidates := FilterContained(sized)

	slog.Debug("locate candidates",
		"contours", len(contours),
		"after_size", len(sized),
		"after_containment", len(candidates))

	if l.debug != nil {
		boxes := make([]raster.BoundingBox, len(candidates))
		for i, c := range candidates {
			boxes[i] = c.BoundingBox()
		}
		l.debug.SaveBoxes("boxes", r, boxes)
	}

	for _, c := range candidates {
		box := c.BoundingBox()
		if IsSymbol(r, box, l.config) {
			slog.Debug("symbol located", "box", box.String())
			return &Region{Box: box, Raster: r}, nil
		}
	}
	return nil, ErrNoRegionFound
}
