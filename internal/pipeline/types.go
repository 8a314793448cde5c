package pipeline

import (
	"github.com/MeKo-Tech/matrixscan/internal/raster"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
)

// Outcome classifies how an extraction ended.
type Outcome string

const (
	OutcomeFound         Outcome = "found"
	OutcomeNoRegion      Outcome = "no_region"
	OutcomeDecodeFailure Outcome = "decode_failure"
	OutcomeImageError    Outcome = "image_error"
)

// Result is the per-image extraction output.
type Result struct {
	Path     string              `json:"path,omitempty" yaml:"path,omitempty"`
	Outcome  Outcome             `json:"outcome" yaml:"outcome"`
	Value    string              `json:"value" yaml:"value"`
	Region   *raster.BoundingBox `json:"region,omitempty" yaml:"region,omitempty"`
	GridSize int                 `json:"grid_size,omitempty" yaml:"grid_size,omitempty"`
	Bits     string              `json:"bits,omitempty" yaml:"bits,omitempty"`
	Image    utils.ImageMetadata `json:"image" yaml:"image"`
	Error    string              `json:"error,omitempty" yaml:"error,omitempty"`

	Processing struct {
		PreprocessNs int64 `json:"preprocess_ns" yaml:"preprocess_ns"`
		LocateNs     int64 `json:"locate_ns" yaml:"locate_ns"`
		DecodeNs     int64 `json:"decode_ns" yaml:"decode_ns"`
		TotalNs      int64 `json:"total_ns" yaml:"total_ns"`
	} `json:"processing" yaml:"processing"`

	Err error `json:"-" yaml:"-"`
}

// Found reports whether a value was decoded.
func (r *Result) Found() bool { return r != nil && r.Outcome == OutcomeFound }
