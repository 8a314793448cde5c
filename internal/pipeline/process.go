package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/matrixscan/internal/common"
	"github.com/MeKo-Tech/matrixscan/internal/decoder"
	"github.com/MeKo-Tech/matrixscan/internal/detector"
	"github.com/MeKo-Tech/matrixscan/internal/preprocess"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
)

// Extractor runs the full locate-and-decode chain on single images. It is
// safe for concurrent use; per-image state lives on the stack of each call.
type Extractor struct {
	cfg      Config
	profiler Profiler
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config { return e.cfg }

// Profiler exposes the cumulative stage timings.
func (e *Extractor) Profiler() *Profiler { return &e.profiler }

// ExtractFile loads path and extracts its symbol value.
func (e *Extractor) ExtractFile(ctx context.Context, path string) *Result {
	img, meta, err := utils.LoadImage(path)
	if err != nil {
		return ErrorResult(path, err)
	}
	return e.ExtractLoaded(ctx, img, meta)
}

// ExtractLoaded extracts the symbol value from an image loaded by the caller.
// meta.Path names the result and the debug directory.
func (e *Extractor) ExtractLoaded(ctx context.Context, img image.Image, meta utils.ImageMetadata) *Result {
	res := e.extract(ctx, img, debugName(meta.Path))
	res.Path = meta.Path
	res.Image = meta
	return res
}

// ExtractBytes decodes data as an image and extracts its symbol value.
func (e *Extractor) ExtractBytes(ctx context.Context, name string, data []byte) *Result {
	img, meta, err := utils.DecodeImage(data)
	if err != nil {
		return ErrorResult(name, err)
	}
	meta.Path = name
	return e.ExtractLoaded(ctx, img, meta)
}

// ExtractImage extracts the symbol value from an already decoded image.
func (e *Extractor) ExtractImage(ctx context.Context, img image.Image) *Result {
	res := e.extract(ctx, img, "image")
	if img != nil {
		b := img.Bounds()
		res.Image.Width, res.Image.Height = b.Dx(), b.Dy()
	}
	return res
}

func (e *Extractor) extract(ctx context.Context, img image.Image, name string) *Result {
	total := common.NewNamedTimer("total")
	res := &Result{}
	defer func() {
		res.Processing.TotalNs = total.Stop().Nanoseconds()
		e.profiler.Record(res)
		extractionsTotal.WithLabelValues(string(res.Outcome)).Inc()
		slog.Debug("extraction finished",
			"name", name, "outcome", string(res.Outcome),
			"value", res.Value, "duration", total.Duration())
	}()

	if err := utils.ValidateImageConstraints(img, e.cfg.Constraints); err != nil {
		res.fail(OutcomeImageError, err)
		return res
	}
	img = utils.FitImage(img, e.cfg.Constraints)

	var sink *DirSink
	if e.cfg.DebugDir != "" {
		sink = NewDirSink(filepath.Join(e.cfg.DebugDir, name))
	}
	pre, loc, dec, err := e.stages(sink)
	if err != nil {
		res.fail(OutcomeImageError, err)
		return res
	}

	if err := ctx.Err(); err != nil {
		res.fail(OutcomeImageError, err)
		return res
	}
	t := common.NewNamedTimer("preprocess")
	binary := pre.Apply(img)
	res.Processing.PreprocessNs = observeStage(t)

	if err := ctx.Err(); err != nil {
		res.fail(OutcomeImageError, err)
		return res
	}
	t = common.NewNamedTimer("locate")
	region, err := loc.Locate(binary)
	res.Processing.LocateNs = observeStage(t)
	if err != nil {
		res.fail(OutcomeNoRegion, err)
		return res
	}
	box := region.Box
	res.Region = &box

	if err := ctx.Err(); err != nil {
		res.fail(OutcomeImageError, err)
		return res
	}
	t = common.NewNamedTimer("decode")
	decoded, err := dec.Decode(region)
	res.Processing.DecodeNs = observeStage(t)
	if err != nil {
		res.fail(OutcomeDecodeFailure, err)
		return res
	}

	res.Outcome = OutcomeFound
	res.Value = decoded.Value
	res.GridSize = decoded.GridSize
	res.Bits = decoded.Bits
	return res
}

// stages builds the per-call stage objects. They are cheap and carry the
// debug sink of the current image.
func (e *Extractor) stages(sink *DirSink) (*preprocess.Preprocessor, *detector.Locator, *decoder.Decoder, error) {
	var (
		preSink preprocess.DebugSink
		locOpts []detector.Option
		decOpts []decoder.Option
	)
	if sink != nil {
		preSink = sink
		locOpts = append(locOpts, detector.WithDebugSink(sink))
		decOpts = append(decOpts, decoder.WithDebugSink(sink))
	}
	pre, err := preprocess.New(e.cfg.Preprocess, preSink)
	if err != nil {
		return nil, nil, nil, err
	}
	loc, err := detector.NewLocator(e.cfg.Locator, locOpts...)
	if err != nil {
		return nil, nil, nil, err
	}
	dec, err := decoder.NewDecoder(e.cfg.Decoder, decOpts...)
	if err != nil {
		return nil, nil, nil, err
	}
	return pre, loc, dec, nil
}

func observeStage(t *common.Timer) int64 {
	d := t.Stop()
	stageDuration.WithLabelValues(t.Name()).Observe(d.Seconds())
	return d.Nanoseconds()
}

func (r *Result) fail(outcome Outcome, err error) {
	r.Outcome = outcome
	r.Err = err
	r.Error = err.Error()
}

// ErrorResult reports an input that could not be read as an image.
func ErrorResult(path string, err error) *Result {
	res := &Result{Path: path}
	res.fail(OutcomeImageError, err)
	extractionsTotal.WithLabelValues(string(OutcomeImageError)).Inc()
	return res
}

// IsNotFound reports whether err means the image was readable but held no
// decodable symbol.
func IsNotFound(err error) bool {
	return errors.Is(err, detector.ErrNoRegionFound) || errors.Is(err, decoder.ErrDecodeFailure)
}

func debugName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fmt.Sprintf("image-%d", time.Now().UnixNano())
	}
	return name
}
