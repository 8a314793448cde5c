package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
)

const formatOverlay = "overlay"

// DecodeResponse is the default JSON body of POST /decode.
type DecodeResponse struct {
	Success bool             `json:"success"`
	Result  *pipeline.Result `json:"result"`
}

// decodeHandler locates and decodes the symbol in an uploaded image.
func (s *Server) decodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.extractor == nil {
		s.writeErrorResponse(w, "Decoder not initialized", http.StatusServiceUnavailable)
		return
	}

	img, meta, err := s.parseImageRequest(w, r)
	if err != nil {
		decodeRequestsTotal.WithLabelValues("bad_request").Inc()
		return // error already written
	}

	ctx := r.Context()
	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	res := s.extractor.ExtractLoaded(ctx, img, meta)
	decodeProcessingDuration.Observe(time.Since(start).Seconds())
	decodeRequestsTotal.WithLabelValues(string(res.Outcome)).Inc()

	s.writeDecodeResponse(w, r, img, res)
}

func (s *Server) parseImageRequest(w http.ResponseWriter, r *http.Request) (image.Image, utils.ImageMetadata, error) {
	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return nil, utils.ImageMetadata{}, err
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return nil, utils.ImageMetadata{}, err
	}
	defer func() { _ = file.Close() }()

	if header.Size > limit {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, utils.ImageMetadata{}, fmt.Errorf("upload of %d bytes exceeds limit", header.Size)
	}
	uploadSizeBytes.Observe(float64(header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return nil, utils.ImageMetadata{}, err
	}

	img, meta, err := utils.DecodeImage(data)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return nil, utils.ImageMetadata{}, err
	}
	meta.Path = header.Filename
	return img, meta, nil
}

// statusFor maps an extraction outcome onto an HTTP status. A symbol that
// was not found is still a successful request.
func statusFor(res *pipeline.Result) int {
	switch {
	case errors.Is(res.Err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case res.Outcome == pipeline.OutcomeImageError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

func (s *Server) writeDecodeResponse(w http.ResponseWriter, r *http.Request, img image.Image, res *pipeline.Result) {
	// Determine output format: default json; allow 'format' in query or form
	format := strings.ToLower(r.FormValue("format"))
	if format == "" {
		format = strings.ToLower(r.URL.Query().Get("format"))
	}
	if r.FormValue("overlay") == "1" {
		format = formatOverlay
	}

	switch format {
	case formatOverlay:
		s.handleOverlayOutput(w, r, img, res)
	case pipeline.FormatText, pipeline.FormatCSV, pipeline.FormatYAML, "yml":
		s.writeFormattedResponse(w, format, res)
	default:
		s.writeJSONResponse(w, res)
	}
}

var contentTypes = map[string]string{
	pipeline.FormatText: "text/plain; charset=utf-8",
	pipeline.FormatCSV:  "text/csv",
	pipeline.FormatYAML: "application/yaml",
	"yml":               "application/yaml",
}

func (s *Server) writeFormattedResponse(w http.ResponseWriter, format string, res *pipeline.Result) {
	out, err := pipeline.FormatResults(format, []*pipeline.Result{res})
	if err != nil {
		http.Error(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(statusFor(res))
	_, _ = w.Write([]byte(out))
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, res *pipeline.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(res))
	if err := json.NewEncoder(w).Encode(DecodeResponse{Success: res.Found(), Result: res}); err != nil {
		slog.Error("Failed to encode decode response", "error", err)
	}
}

// handleOverlayOutput renders the located region onto the working image.
func (s *Server) handleOverlayOutput(w http.ResponseWriter, r *http.Request, img image.Image, res *pipeline.Result) {
	if res.Outcome == pipeline.OutcomeImageError {
		s.writeErrorResponse(w, res.Error, statusFor(res))
		return
	}

	boxCol := parseHexColor(r.FormValue("box"))
	if boxCol == nil {
		boxCol = parseHexColor(s.overlayBoxColor)
	}
	if boxCol == nil {
		boxCol = color.RGBA{255, 0, 0, 255}
	}

	working := utils.FitImage(img, s.extractor.Config().Constraints)
	ov := pipeline.RenderOverlay(working, res, boxCol)
	if ov == nil {
		http.Error(w, "overlay failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Decode-Outcome", string(res.Outcome))
	if res.Found() {
		w.Header().Set("X-Decode-Value", res.Value)
	}
	if err := png.Encode(w, ov); err != nil {
		slog.Error("Failed to encode overlay", "error", err)
	}
}
