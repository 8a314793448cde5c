package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/matrixscan/internal/testutil"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
)

func main() {
	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		generateImages   = flag.Bool("images", true, "Generate synthetic symbol images")
		generateFixtures = flag.Bool("fixtures", true, "Generate test fixtures")
		outDir           = flag.String("dir", "", "testdata directory (default: <project root>/testdata)")
		verbose          = flag.Bool("v", false, "Verbose output")
		help             = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate synthetic matrix symbols and fixtures for matrixscan testing.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Generate all test data\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -fixtures=false    # Generate only images\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -dir /tmp/symbols  # Write somewhere else\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	dir := *outDir
	if dir == "" {
		root, err := testutil.GetProjectRoot()
		if err != nil {
			slog.Error("Failed to find project root", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(root, "testdata")
	}

	if *verbose {
		slog.Info("Options", "images", *generateImages, "fixtures", *generateFixtures, "dir", dir)
	}

	fixtures := testutil.SampleFixtures()

	if *generateImages {
		n, err := writeImages(dir, fixtures)
		if err != nil {
			slog.Error("Failed to generate symbol images", "error", err)
			os.Exit(1)
		}
		slog.Info("Generated symbol images", "count", n)
	}

	if *generateFixtures {
		if err := writeFixtures(filepath.Join(dir, "fixtures"), fixtures); err != nil {
			slog.Error("Failed to generate test fixtures", "error", err)
			os.Exit(1)
		}
		slog.Info("Generated test fixtures", "count", len(fixtures))
	}

	slog.Info("Test data generation completed")
}

// writeImages renders every fixture symbol to its input file below dir.
func writeImages(dir string, fixtures []testutil.SymbolFixture) (int, error) {
	for _, f := range fixtures {
		path := filepath.Join(dir, f.InputFile)
		if err := testutil.EnsureDir(filepath.Dir(path)); err != nil {
			return 0, fmt.Errorf("failed to create image directory: %w", err)
		}
		if err := utils.SaveImage(path, testutil.RenderSymbol(f.Symbol)); err != nil {
			return 0, fmt.Errorf("failed to save image for %s: %w", f.Name, err)
		}
		slog.Debug("Wrote symbol image", "name", f.Name, "path", path)
	}
	return len(fixtures), nil
}

func writeFixtures(dir string, fixtures []testutil.SymbolFixture) error {
	for _, f := range fixtures {
		if err := testutil.WriteFixture(dir, f); err != nil {
			return fmt.Errorf("failed to save fixture '%s': %w", f.Name, err)
		}
	}
	return nil
}
