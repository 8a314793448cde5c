package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats understood by FormatResults.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// OutputFormats lists every supported output format.
var OutputFormats = []string{FormatText, FormatJSON, FormatCSV, FormatYAML}

// FormatResults renders results in the given format.
func FormatResults(format string, results []*Result) (string, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return ToPlainText(results), nil
	case FormatJSON:
		return ToJSON(results)
	case FormatCSV:
		return ToCSV(results)
	case FormatYAML, "yml":
		return ToYAML(results)
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// ToJSON serializes results to pretty JSON. A single result is emitted as an
// object, several as an array.
func ToJSON(results []*Result) (string, error) {
	var v any = results
	if len(results) == 1 {
		v = results[0]
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToYAML serializes results to YAML with the same shape as ToJSON.
func ToYAML(results []*Result) (string, error) {
	var v any = results
	if len(results) == 1 {
		v = results[0]
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToPlainText prints one line per result. A lone result is printed as the
// bare value; several are prefixed with their path.
func ToPlainText(results []*Result) string {
	if len(results) == 1 {
		return plainLine(results[0])
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("%s: %s", r.Path, plainLine(r)))
	}
	return strings.Join(lines, "\n")
}

func plainLine(r *Result) string {
	if r.Found() {
		return r.Value
	}
	if r.Error != "" {
		return fmt.Sprintf("[%s] %s", r.Outcome, r.Error)
	}
	return fmt.Sprintf("[%s]", r.Outcome)
}

// ToCSV exports one row per result with a header.
func ToCSV(results []*Result) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"path", "outcome", "value", "x", "y", "w", "h", "grid_size", "total_ms", "error"})
	for _, r := range results {
		var x, y, bw, bh string
		if r.Region != nil {
			x, y = strconv.Itoa(r.Region.X), strconv.Itoa(r.Region.Y)
			bw, bh = strconv.Itoa(r.Region.Width), strconv.Itoa(r.Region.Height)
		}
		row := []string{
			r.Path,
			string(r.Outcome),
			r.Value,
			x, y, bw, bh,
			strconv.Itoa(r.GridSize),
			fmt.Sprintf("%.3f", float64(r.Processing.TotalNs)/1e6),
			r.Error,
		}
		_ = w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ValidateResult performs simple consistency checks.
func ValidateResult(res *Result) error {
	if res == nil {
		return errors.New("nil result")
	}
	switch res.Outcome {
	case OutcomeFound:
		if res.Region == nil {
			return errors.New("found result without region")
		}
		if res.GridSize < 2 {
			return fmt.Errorf("invalid grid size %d", res.GridSize)
		}
		if strings.Trim(res.Value, "0123456789") != "" {
			return fmt.Errorf("value %q is not numeric", res.Value)
		}
	case OutcomeNoRegion, OutcomeDecodeFailure, OutcomeImageError:
		if res.Error == "" {
			return fmt.Errorf("%s result without error", res.Outcome)
		}
	default:
		return fmt.Errorf("unknown outcome %q", res.Outcome)
	}
	if r := res.Region; r != nil {
		if r.Width <= 0 || r.Height <= 0 || r.X < 0 || r.Y < 0 {
			return fmt.Errorf("invalid region %v", *r)
		}
		if res.Image.Width > 0 && (r.Right() > res.Image.Width || r.Bottom() > res.Image.Height) {
			return fmt.Errorf("region %v exceeds image %dx%d", *r, res.Image.Width, res.Image.Height)
		}
	}
	return nil
}
