package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/matrixscan/internal/benchmark"
	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
	"github.com/MeKo-Tech/matrixscan/internal/preprocess"
	"github.com/MeKo-Tech/matrixscan/internal/testutil"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
)

func main() {
	var (
		iterations = flag.Int("iterations", 3, "Number of iterations per benchmark")
		outputFile = flag.String("output", "", "Output file for results (optional)")
		stages     = flag.Bool("stages", false, "Also time the individual stages with fixed binarization")
		verbose    = flag.Bool("verbose", false, "Verbose output")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [image ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Without images the synthetic sample symbols are rendered and used.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*iterations, *outputFile, *stages, *verbose); err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}
}

func run(iterations int, outputFile string, stages, verbose bool) error {
	fmt.Println("matrixscan Binarization Benchmark")
	fmt.Println("=================================")

	images := flag.Args()
	if len(images) == 0 {
		dir, err := os.MkdirTemp("", "matrixscan-bench-*")
		if err != nil {
			return fmt.Errorf("failed to create temp dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(dir) }()

		images, err = renderSamples(dir)
		if err != nil {
			return fmt.Errorf("failed to render sample symbols: %w", err)
		}
	}

	comparison := benchmark.NewMethodComparison(pipeline.DefaultConfig(), benchmark.DefaultVariants())
	for _, path := range images {
		comparison.AddImage(path)
		if verbose {
			fmt.Printf("Added test image: %s\n", path)
		}
	}

	fmt.Printf("Running benchmarks with %d iterations per test...\n\n", iterations)

	results, err := comparison.Run(iterations)
	if err != nil {
		log.Printf("Some images were skipped: %v", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no image could be processed")
	}

	comparison.PrintDetailedResults(os.Stdout)

	var stageResults []benchmark.BenchmarkResult
	if stages {
		stageResults = runStages(images, iterations, verbose)
	}

	if outputFile != "" {
		if err := saveResultsToFile(outputFile, results, stageResults); err != nil {
			log.Printf("Failed to save results to file: %v", err)
		} else {
			fmt.Printf("Results saved to: %s\n", outputFile)
		}
	}
	return nil
}

// renderSamples writes every sample symbol into dir and returns the paths.
func renderSamples(dir string) ([]string, error) {
	var paths []string
	for _, f := range testutil.SampleFixtures() {
		path := filepath.Join(dir, f.Name+".png")
		if err := utils.SaveImage(path, testutil.RenderSymbol(f.Symbol)); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func runStages(images []string, iterations int, verbose bool) []benchmark.BenchmarkResult {
	cfg := pipeline.NewBuilder().WithBinarization(preprocess.MethodFixed, false).Config()
	stageBench := benchmark.NewStageBenchmark(cfg)

	for _, path := range images {
		img, _, err := utils.LoadImage(path)
		if err != nil {
			log.Printf("Skipping %s: %v", path, err)
			continue
		}
		name := filepath.Base(path)
		if err := stageBench.AddImage(name, img); err != nil && verbose {
			log.Printf("Partial stages for %s: %v", name, err)
		}
	}

	results := stageBench.RunAll(iterations)
	stageBench.PrintResults(os.Stdout)
	return results
}

func saveResultsToFile(filename string, results []benchmark.ComparisonResult, stages []benchmark.BenchmarkResult) error {
	file, err := os.Create(filename) //nolint:gosec // G304: user-provided output path
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintln(file, "matrixscan Binarization Benchmark Results")
	_, _ = fmt.Fprintln(file, "=========================================")
	_, _ = fmt.Fprintln(file)

	for _, result := range results {
		_, _ = fmt.Fprintf(file, "%s\n", result.String())
	}
	for _, result := range stages {
		_, _ = fmt.Fprintf(file, "%s\n", result.String())
	}

	_, _ = fmt.Fprintln(file)
	_, _ = fmt.Fprintln(file, "CSV Format:")
	_, _ = fmt.Fprintln(file, "Image,Size,Variant,Outcome,Value,Avg_Duration_ms,Alloc_KB")

	for _, result := range results {
		for _, v := range result.Variants {
			avgMs := float64(v.Result.Average().Nanoseconds()) / 1e6
			allocKB := (v.Result.MemoryAfter.TotalAllocBytes - v.Result.MemoryBefore.TotalAllocBytes) / 1024

			_, _ = fmt.Fprintf(file, "%s,%s,%s,%s,%s,%.3f,%d\n",
				filepath.Base(result.ImagePath),
				result.ImageSize,
				v.Variant.Name,
				v.Outcome,
				v.Value,
				avgMs,
				allocKB,
			)
		}
	}

	return nil
}
