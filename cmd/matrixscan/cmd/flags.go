package cmd

import (
	"github.com/MeKo-Tech/matrixscan/internal/config"
	"github.com/spf13/cobra"
)

// addPipelineFlags registers the stage tuning flags shared by image, batch
// and serve.
func addPipelineFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()

	cmd.Flags().String("method", def.Preprocess.Method, "binarization method (adaptive, fixed, none)")
	cmd.Flags().Bool("blur", def.Preprocess.Blur, "apply a 5x5 Gaussian blur before binarization")
	cmd.Flags().Int("threshold", def.Preprocess.Threshold, "intensity cutoff for --method fixed")
	cmd.Flags().Int("block-size", def.Preprocess.BlockSize, "window size for --method adaptive (odd)")
	cmd.Flags().Int("min-size", def.Locator.MinWidth, "minimum symbol width and height in pixels")
	cmd.Flags().Int("max-size", def.Locator.MaxWidth, "maximum symbol width and height in pixels")
	cmd.Flags().Int("sample-row", def.Decoder.SampleRow, "row of the normalized symbol used to estimate the grid")
	cmd.Flags().String("debug-dir", "", "directory to write per-stage debug images")
}

var pipelineFlagBindings = []flagBinding{
	{"preprocess.method", "method"},
	{"preprocess.blur", "blur"},
	{"preprocess.threshold", "threshold"},
	{"preprocess.block_size", "block-size"},
	{"locator.min_width", "min-size"},
	{"locator.min_height", "min-size"},
	{"locator.max_width", "max-size"},
	{"locator.max_height", "max-size"},
	{"decoder.sample_row", "sample-row"},
	{"output.debug_dir", "debug-dir"},
}

// addOutputFlags registers the result output flags of image and batch.
func addOutputFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()

	cmd.Flags().StringP("format", "f", def.Output.Format, "output format (text, json, csv, yaml)")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("overlay-dir", "", "directory to write overlay images with the located region")
	cmd.Flags().String("overlay-color", def.Output.OverlayBoxColor, "overlay box color (hex)")
}

var outputFlagBindings = []flagBinding{
	{"output.format", "format"},
	{"output.file", "output"},
	{"output.overlay_dir", "overlay-dir"},
	{"output.overlay_box_color", "overlay-color"},
}

// bindCommandFlags returns a pre-run hook binding the given flag groups.
func bindCommandFlags(groups ...[]flagBinding) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		for _, g := range groups {
			if err := bindFlags(cmd.Flags(), g); err != nil {
				return err
			}
		}
		return nil
	}
}
