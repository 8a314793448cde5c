// Package benchmark measures stage and end-to-end extraction timings outside
// of go test, so numbers can be compared across machines and settings.
package benchmark

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/matrixscan/internal/common"
	"github.com/MeKo-Tech/matrixscan/internal/decoder"
	"github.com/MeKo-Tech/matrixscan/internal/detector"
	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
	"github.com/MeKo-Tech/matrixscan/internal/preprocess"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"gonum.org/v1/gonum/stat"
)

// BenchmarkResult holds the result of a benchmark run.
type BenchmarkResult struct {
	Name         string
	Duration     time.Duration
	MemoryBefore common.MemoryStats
	MemoryAfter  common.MemoryStats
	Iterations   int
	Samples      []time.Duration // per-iteration durations
	Error        error
}

// Average returns the mean duration of one iteration.
func (br BenchmarkResult) Average() time.Duration {
	if br.Iterations <= 0 {
		return 0
	}
	return br.Duration / time.Duration(br.Iterations)
}

// StdDev returns the sample standard deviation of the iteration durations.
func (br BenchmarkResult) StdDev() time.Duration {
	if len(br.Samples) < 2 {
		return 0
	}
	xs := make([]float64, len(br.Samples))
	for i, d := range br.Samples {
		xs[i] = float64(d)
	}
	_, std := stat.MeanStdDev(xs, nil)
	return time.Duration(std)
}

// String returns a formatted string representation of the benchmark result.
func (br BenchmarkResult) String() string {
	if br.Error != nil {
		return fmt.Sprintf("%s: ERROR - %v", br.Name, br.Error)
	}

	memDiff := int64(br.MemoryAfter.TotalAllocBytes) - int64(br.MemoryBefore.TotalAllocBytes) //nolint:gosec // G115: display only
	return fmt.Sprintf("%s: %d iterations, avg: %v, total: %v, stddev: %v, alloc: +%d KB",
		br.Name, br.Iterations, br.Average(), br.Duration, br.StdDev(), memDiff/1024)
}

// Benchmark represents a benchmark function.
type Benchmark struct {
	Name string
	Func func() error
}

// BenchmarkSuite manages multiple benchmarks.
type BenchmarkSuite struct {
	benchmarks []Benchmark
	results    []BenchmarkResult
	mu         sync.Mutex
}

// NewBenchmarkSuite creates a new benchmark suite.
func NewBenchmarkSuite() *BenchmarkSuite {
	return &BenchmarkSuite{
		benchmarks: make([]Benchmark, 0),
		results:    make([]BenchmarkResult, 0),
	}
}

// Add adds a benchmark to the suite.
func (bs *BenchmarkSuite) Add(name string, fn func() error) {
	bs.benchmarks = append(bs.benchmarks, Benchmark{
		Name: name,
		Func: fn,
	})
}

// Run runs a single benchmark with the specified number of iterations.
func (bs *BenchmarkSuite) Run(name string, iterations int) BenchmarkResult {
	for _, b := range bs.benchmarks {
		if b.Name == name {
			return bs.runBenchmark(b, iterations)
		}
	}
	return BenchmarkResult{
		Name:  name,
		Error: fmt.Errorf("benchmark '%s' not found", name),
	}
}

// RunAll runs all benchmarks in the suite.
func (bs *BenchmarkSuite) RunAll(iterations int) []BenchmarkResult {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.results = make([]BenchmarkResult, 0, len(bs.benchmarks))
	for _, benchmark := range bs.benchmarks {
		bs.results = append(bs.results, bs.runBenchmark(benchmark, iterations))
	}
	return bs.results
}

func (bs *BenchmarkSuite) runBenchmark(benchmark Benchmark, iterations int) BenchmarkResult {
	// Force garbage collection before measuring
	runtime.GC()
	memBefore := common.GetMemoryStats()

	timer := common.NewNamedTimer(benchmark.Name)
	samples := make([]time.Duration, 0, iterations)
	var err error
	for range iterations {
		it := common.NewTimer()
		e := benchmark.Func()
		samples = append(samples, it.Stop())
		if e != nil {
			err = e
			break
		}
	}
	duration := timer.Stop()

	return BenchmarkResult{
		Name:         benchmark.Name,
		Duration:     duration,
		MemoryBefore: memBefore,
		MemoryAfter:  common.GetMemoryStats(),
		Iterations:   iterations,
		Samples:      samples,
		Error:        err,
	}
}

// Results returns the last run results.
func (bs *BenchmarkSuite) Results() []BenchmarkResult {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.results
}

// PrintResults writes formatted benchmark results to w.
func (bs *BenchmarkSuite) PrintResults(w io.Writer) {
	_, _ = fmt.Fprintln(w, "\nBenchmark Results:")
	_, _ = fmt.Fprintln(w, "==================")
	for _, result := range bs.Results() {
		_, _ = fmt.Fprintln(w, result.String())
	}
	_, _ = fmt.Fprintln(w)
}

// StageBenchmark registers one benchmark per extraction stage and image.
type StageBenchmark struct {
	*BenchmarkSuite
	cfg pipeline.Config
}

// NewStageBenchmark creates a stage benchmark for the given pipeline settings.
func NewStageBenchmark(cfg pipeline.Config) *StageBenchmark {
	return &StageBenchmark{BenchmarkSuite: NewBenchmarkSuite(), cfg: cfg}
}

// AddImage registers preprocess, locate, decode and full pipeline benchmarks
// for img. Stages after a failing one are skipped; the error is returned so
// callers can report images the settings cannot handle.
func (sb *StageBenchmark) AddImage(name string, img image.Image) error {
	ex, err := pipeline.NewBuilder().WithConfig(sb.cfg).Build()
	if err != nil {
		return err
	}
	sb.Add("Pipeline_"+name, func() error {
		res := ex.ExtractImage(context.Background(), img)
		if res.Outcome == pipeline.OutcomeImageError {
			return res.Err
		}
		return nil
	})

	working := utils.FitImage(img, sb.cfg.Constraints)
	pre, err := preprocess.New(sb.cfg.Preprocess, nil)
	if err != nil {
		return err
	}
	sb.Add("Preprocess_"+name, func() error {
		pre.Apply(working)
		return nil
	})

	binary := pre.Apply(working)
	loc, err := detector.NewLocator(sb.cfg.Locator)
	if err != nil {
		return err
	}
	sb.Add("Locate_"+name, func() error {
		_, err := loc.Locate(binary)
		return err
	})

	region, err := loc.Locate(binary)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	dec, err := decoder.NewDecoder(sb.cfg.Decoder)
	if err != nil {
		return err
	}
	sb.Add("Decode_"+name, func() error {
		_, err := dec.Decode(region)
		return err
	})
	return nil
}

// Variant is a named binarization setting compared by MethodComparison.
type Variant struct {
	Name   string
	Method preprocess.Method
	Blur   bool
}

// DefaultVariants lists the binarization settings worth comparing.
func DefaultVariants() []Variant {
	return []Variant{
		{Name: "adaptive+blur", Method: preprocess.MethodAdaptive, Blur: true},
		{Name: "adaptive", Method: preprocess.MethodAdaptive},
		{Name: "fixed+blur", Method: preprocess.MethodFixed, Blur: true},
		{Name: "fixed", Method: preprocess.MethodFixed},
		{Name: "none", Method: preprocess.MethodNone},
	}
}

// VariantResult is the timing and outcome of one variant on one image.
type VariantResult struct {
	Variant Variant
	Result  BenchmarkResult
	Outcome pipeline.Outcome
	Value   string
}

// ComparisonResult holds all variant results of one image.
type ComparisonResult struct {
	ImagePath string
	ImageSize string
	Variants  []VariantResult
}

// String returns a one-line summary per variant.
func (r ComparisonResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", filepath.Base(r.ImagePath), r.ImageSize)
	for _, v := range r.Variants {
		fmt.Fprintf(&b, "\n    %-14s %-15s avg %v", v.Variant.Name, v.Outcome, v.Result.Average())
	}
	return b.String()
}

// MethodComparison runs the full pipeline under each binarization variant
// and records which variants decode each image and how fast.
type MethodComparison struct {
	base     pipeline.Config
	variants []Variant
	images   []string
	results  []ComparisonResult
}

// NewMethodComparison creates a comparison over variants, starting from base.
func NewMethodComparison(base pipeline.Config, variants []Variant) *MethodComparison {
	return &MethodComparison{base: base, variants: variants}
}

// AddImage adds an image file to the comparison.
func (m *MethodComparison) AddImage(path string) {
	m.images = append(m.images, path)
}

// Run benchmarks every image under every variant. Images that cannot be
// loaded are reported through the returned error after the others ran.
func (m *MethodComparison) Run(iterations int) ([]ComparisonResult, error) {
	m.results = make([]ComparisonResult, 0, len(m.images))
	var failed []string

	for _, path := range m.images {
		res, err := m.compareImage(path, iterations)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		m.results = append(m.results, res)
	}

	if len(failed) > 0 {
		return m.results, fmt.Errorf("failed images: %s", strings.Join(failed, "; "))
	}
	return m.results, nil
}

func (m *MethodComparison) compareImage(path string, iterations int) (ComparisonResult, error) {
	img, meta, err := utils.LoadImage(path)
	if err != nil {
		return ComparisonResult{}, err
	}

	out := ComparisonResult{
		ImagePath: path,
		ImageSize: fmt.Sprintf("%dx%d", meta.Width, meta.Height),
	}
	for _, v := range m.variants {
		cfg := m.base
		cfg.Preprocess.Method = v.Method
		cfg.Preprocess.Blur = v.Blur
		ex, err := pipeline.NewBuilder().WithConfig(cfg).Build()
		if err != nil {
			return out, fmt.Errorf("variant %s: %w", v.Name, err)
		}

		// Warmup, also yields the outcome
		res := ex.ExtractImage(context.Background(), img)

		suite := NewBenchmarkSuite()
		suite.Add(v.Name, func() error {
			ex.ExtractImage(context.Background(), img)
			return nil
		})
		out.Variants = append(out.Variants, VariantResult{
			Variant: v,
			Result:  suite.Run(v.Name, iterations),
			Outcome: res.Outcome,
			Value:   res.Value,
		})
	}
	return out, nil
}

// Results returns the results of the last run.
func (m *MethodComparison) Results() []ComparisonResult {
	return m.results
}

// PrintDetailedResults writes per-image results and a per-variant summary.
func (m *MethodComparison) PrintDetailedResults(w io.Writer) {
	if len(m.results) == 0 {
		_, _ = fmt.Fprintln(w, "No benchmark results available")
		return
	}

	_, _ = fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	_, _ = fmt.Fprintln(w, "Binarization Variant Benchmark Results")
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 80))

	_, _ = fmt.Fprintf(w, "System Information:\n")
	_, _ = fmt.Fprintf(w, "  GOOS: %s\n", runtime.GOOS)
	_, _ = fmt.Fprintf(w, "  GOARCH: %s\n", runtime.GOARCH)
	_, _ = fmt.Fprintf(w, "  NumCPU: %d\n", runtime.NumCPU())
	_, _ = fmt.Fprintf(w, "  Go Version: %s\n", runtime.Version())
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		_, _ = fmt.Fprintf(w, "  CPU: %s\n", infos[0].ModelName)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		_, _ = fmt.Fprintf(w, "  Memory: %d MB\n", vm.Total/(1024*1024))
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, "Individual Image Results:")
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 50))
	for _, r := range m.results {
		_, _ = fmt.Fprintf(w, "• %s\n", r.String())
	}
	_, _ = fmt.Fprintln(w)

	m.printSummary(w)
}

func (m *MethodComparison) printSummary(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Summary Statistics:")
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 25))
	for i, v := range m.variants {
		var total time.Duration
		found := 0
		for _, r := range m.results {
			vr := r.Variants[i]
			total += vr.Result.Average()
			if vr.Outcome == pipeline.OutcomeFound {
				found++
			}
		}
		_, _ = fmt.Fprintf(w, "  %-14s decoded %d/%d, mean avg %v\n",
			v.Name, found, len(m.results), total/time.Duration(len(m.results)))
	}
	_, _ = fmt.Fprintln(w)
}
