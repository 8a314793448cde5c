package batch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
)

// Result holds the result of batch processing.
type Result struct {
	Results  []*pipeline.Result
	Duration time.Duration
	Workers  int
}

// Summary counts results per outcome.
type Summary struct {
	Total         int `json:"total"`
	Found         int `json:"found"`
	NoRegion      int `json:"no_region"`
	DecodeFailure int `json:"decode_failure"`
	ImageError    int `json:"image_error"`
}

// Summary counts the outcomes of all results.
func (r *Result) Summary() Summary {
	s := Summary{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Outcome {
		case pipeline.OutcomeFound:
			s.Found++
		case pipeline.OutcomeNoRegion:
			s.NoRegion++
		case pipeline.OutcomeDecodeFailure:
			s.DecodeFailure++
		case pipeline.OutcomeImageError:
			s.ImageError++
		}
	}
	return s
}

// FormatResults formats the batch processing results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return pipeline.FormatResults(format, r.Results)
}

// SaveResults writes the formatted results to outputFile, or to w when
// outputFile is empty.
func (r *Result) SaveResults(w io.Writer, format, outputFile string) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output+"\n"), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, _ = fmt.Fprintf(w, "Results written to %s\n", outputFile)
		return nil
	}
	_, err = fmt.Fprintln(w, output)
	return err
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer) {
	s := r.Summary()
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total images: %d\n", s.Total)
	_, _ = fmt.Fprintf(w, "  Decoded: %d\n", s.Found)
	_, _ = fmt.Fprintf(w, "  No symbol: %d\n", s.NoRegion)
	_, _ = fmt.Fprintf(w, "  Decode failures: %d\n", s.DecodeFailure)
	_, _ = fmt.Fprintf(w, "  Unreadable: %d\n", s.ImageError)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", r.Workers)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	if s.Total > 0 && r.Duration > 0 {
		_, _ = fmt.Fprintf(w, "  Avg per image: %v\n", (r.Duration / time.Duration(s.Total)).Round(time.Microsecond))
		_, _ = fmt.Fprintf(w, "  Throughput: %.1f images/sec\n", float64(s.Total)/r.Duration.Seconds())
	}
}
