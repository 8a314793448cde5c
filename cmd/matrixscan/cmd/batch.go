package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/matrixscan/internal/batch"
	"github.com/MeKo-Tech/matrixscan/internal/config"
	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
	"github.com/spf13/cobra"
)

// batchCmd represents the batch command for parallel image processing.
var batchCmd = &cobra.Command{
	Use:   "batch [files or directories...]",
	Short: "Decode matrix symbols in many images in parallel",
	Long: `Decode the matrix symbol of every image found under the given files and
directories using a pool of parallel workers. Results keep the order in
which the files were discovered.

Supported formats: PNG, JPEG, GIF, BMP, TIFF

Examples:
  matrixscan batch *.png *.tif
  matrixscan batch scans/ --recursive --workers 8
  matrixscan batch scans/ --include 'page_*' --exclude '*_thumb.*'
  matrixscan batch scans/ --format csv --output results.csv --stats`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: bindCommandFlags(pipelineFlagBindings, outputFlagBindings, batchFlagBindings),
	RunE:    runBatchCommand,
}

var batchFlagBindings = []flagBinding{
	{"batch.workers", "workers"},
	{"batch.recursive", "recursive"},
	{"batch.continue_on_error", "continue-on-error"},
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	ex, err := pipeline.NewBuilder().WithConfig(cfg.ToPipelineConfig()).Build()
	if err != nil {
		return err
	}

	bcfg, err := batchConfigFrom(cfg)
	if err != nil {
		return err
	}
	bcfg.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	bcfg.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")

	switch mode, _ := cmd.Flags().GetString("progress"); strings.ToLower(mode) {
	case "", "none":
	case "bar":
		bcfg.Progress = batch.NewConsoleProgressCallback(cmd.ErrOrStderr(), "Decoding")
	case "log":
		bcfg.Progress = batch.NewLogProgressCallback(slog.Default(), 10)
	default:
		return fmt.Errorf("invalid progress mode: %s (must be one of: none, bar, log)", mode)
	}

	res, err := batch.ProcessBatch(cmd.Context(), ex, args, bcfg)
	if errors.Is(err, batch.ErrNoImages) {
		return err
	}
	if res != nil {
		if saveErr := res.SaveResults(cmd.OutOrStdout(), cfg.Output.Format, cfg.Output.File); saveErr != nil {
			return saveErr
		}
		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			res.PrintStats(cmd.ErrOrStderr())
		}
	}
	return err
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addOutputFlags(batchCmd)
	addPipelineFlags(batchCmd)

	def := config.DefaultConfig().Batch
	batchCmd.Flags().IntP("workers", "w", def.Workers, "number of parallel workers")
	batchCmd.Flags().BoolP("recursive", "r", false, "search directories recursively")
	batchCmd.Flags().StringSlice("include", nil, "file name patterns to include (e.g. 'page_*')")
	batchCmd.Flags().StringSlice("exclude", nil, "file name patterns to exclude")
	batchCmd.Flags().Bool("continue-on-error", def.ContinueOnError, "keep going when an image cannot be read")
	batchCmd.Flags().String("progress", "none", "progress reporting: none, bar or log")
	batchCmd.Flags().Bool("stats", false, "print processing statistics to stderr")
}
