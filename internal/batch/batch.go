package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
)

// ErrNoImages is returned when discovery finds nothing to process.
var ErrNoImages = errors.New("no image files found")

// Extractor is the part of pipeline.Extractor a batch run uses.
type Extractor interface {
	ExtractLoaded(ctx context.Context, img image.Image, meta utils.ImageMetadata) *pipeline.Result
	ExtractBytes(ctx context.Context, name string, data []byte) *pipeline.Result
	Config() pipeline.Config
}

// Item is an in-memory image, such as an upload.
type Item struct {
	Name string
	Data []byte
}

// ProcessBatch discovers images under args and extracts every symbol.
func ProcessBatch(ctx context.Context, ex Extractor, args []string, cfg Config) (*Result, error) {
	files, err := DiscoverImageFiles(args, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	return ProcessFiles(ctx, ex, files, cfg)
}

// ProcessFiles extracts symbols from files with at most cfg.Workers images in
// flight. Results keep the order of files. Without ContinueOnError the first
// unreadable image cancels the remaining work and its error is returned
// together with the partial result.
func ProcessFiles(ctx context.Context, ex Extractor, files []string, cfg Config) (*Result, error) {
	return run(ctx, files, cfg, func(ctx context.Context, i int) *pipeline.Result {
		return processFile(ctx, ex, files[i], cfg)
	})
}

// ProcessItems is ProcessFiles for images already held in memory. Overlays
// are not written for items.
func ProcessItems(ctx context.Context, ex Extractor, items []Item, cfg Config) (*Result, error) {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return run(ctx, names, cfg, func(ctx context.Context, i int) *pipeline.Result {
		return ex.ExtractBytes(ctx, items[i].Name, items[i].Data)
	})
}

// run calls extract for every index of names on the worker pool.
func run(
	ctx context.Context,
	names []string,
	cfg Config,
	extract func(ctx context.Context, i int) *pipeline.Result,
) (*Result, error) {
	progress := cfg.Progress
	if progress == nil {
		progress = NoOpProgressCallback{}
	}
	workers := min(cfg.workers(), max(len(names), 1))

	results := make([]*pipeline.Result, len(names))
	var done atomic.Int64

	progress.OnStart(len(names))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := extract(gctx, i)
			results[i] = res

			n := int(done.Add(1))
			progress.OnProgress(n, len(names))
			if res.Outcome == pipeline.OutcomeImageError {
				progress.OnError(name, res.Err)
				if !cfg.ContinueOnError {
					return fmt.Errorf("%s: %w", name, res.Err)
				}
			}
			return nil
		})
	}
	err := g.Wait()
	progress.OnComplete()

	out := &Result{
		Results:  compact(results),
		Duration: time.Since(start),
		Workers:  workers,
	}
	slog.Info("batch finished",
		"images", len(names), "processed", len(out.Results),
		"found", out.Summary().Found, "duration", out.Duration)

	if err != nil {
		return out, err
	}
	return out, ctx.Err()
}

func processFile(ctx context.Context, ex Extractor, path string, cfg Config) *pipeline.Result {
	img, meta, err := utils.LoadImage(path)
	if err != nil {
		slog.Warn("failed to load image", "file", path, "error", err)
		return pipeline.ErrorResult(path, err)
	}
	res := ex.ExtractLoaded(ctx, img, meta)

	if cfg.OverlayDir != "" && res.Outcome != pipeline.OutcomeImageError {
		working := utils.FitImage(img, ex.Config().Constraints)
		if err := saveOverlay(cfg, path, pipeline.RenderOverlay(working, res, cfg.OverlayColor)); err != nil {
			slog.Warn("failed to write overlay", "file", path, "error", err)
		}
	}
	return res
}

func saveOverlay(cfg Config, path string, ov *image.RGBA) error {
	if ov == nil {
		return nil
	}
	if err := os.MkdirAll(cfg.OverlayDir, 0o750); err != nil {
		return err
	}
	return utils.SaveImage(OverlayPath(cfg.OverlayDir, path), ov)
}

// compact drops entries of work that never ran after a cancellation.
func compact(results []*pipeline.Result) []*pipeline.Result {
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// OverlayPath returns where the overlay of path is written in dir.
func OverlayPath(dir, path string) string {
	base := filepath.Base(path)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+"_overlay.png")
}
