package cmd

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/matrixscan/internal/batch"
	"github.com/MeKo-Tech/matrixscan/internal/config"
	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
	"github.com/spf13/cobra"
)

// ErrNotDecoded is returned when at least one input produced no value.
var ErrNotDecoded = errors.New("symbol not decoded")

// imageCmd represents the image command.
var imageCmd = &cobra.Command{
	Use:   "image [files...]",
	Short: "Decode the matrix symbol in one or more images",
	Long: `Decode the matrix symbol in each given image file and print its value.

Images are processed one after another in the order given. The command exits
with an error when any image yields no value.

Supported formats: PNG, JPEG, GIF, BMP, TIFF

Examples:
  matrixscan image scan.tif
  matrixscan image a.png b.png --format json
  matrixscan image scan.png --method fixed --blur=false --debug-dir debug/`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: bindCommandFlags(pipelineFlagBindings, outputFlagBindings),
	RunE:    runImage,
}

func runImage(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

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
	bcfg.Workers = 1
	bcfg.ContinueOnError = true

	res, err := batch.ProcessFiles(cmd.Context(), ex, args, bcfg)
	if err != nil {
		return err
	}
	if err := res.SaveResults(cmd.OutOrStdout(), cfg.Output.Format, cfg.Output.File); err != nil {
		return err
	}

	if s := res.Summary(); s.Found < s.Total {
		return fmt.Errorf("%w in %d of %d image(s)", ErrNotDecoded, s.Total-s.Found, s.Total)
	}
	return nil
}

// batchConfigFrom maps the shared output settings onto a batch config.
func batchConfigFrom(cfg *config.Config) (batch.Config, error) {
	bcfg := batch.DefaultConfig()
	bcfg.Workers = cfg.Batch.Workers
	bcfg.Recursive = cfg.Batch.Recursive
	bcfg.ContinueOnError = cfg.Batch.ContinueOnError
	bcfg.OverlayDir = cfg.Output.OverlayDir
	if cfg.Output.OverlayBoxColor != "" {
		col, err := config.ParseHexColor(cfg.Output.OverlayBoxColor)
		if err != nil {
			return bcfg, err
		}
		bcfg.OverlayColor = col
	}
	return bcfg, nil
}

func init() {
	rootCmd.AddCommand(imageCmd)

	addOutputFlags(imageCmd)
	addPipelineFlags(imageCmd)
}
