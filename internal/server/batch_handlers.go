package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/MeKo-Tech/matrixscan/internal/batch"
	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
)

// maxBatchItems caps the number of images in one batch request.
const maxBatchItems = 10

// BatchDecodeResponse is the JSON body of POST /decode/batch.
type BatchDecodeResponse struct {
	Success bool               `json:"success"` // every image decoded
	Results []*pipeline.Result `json:"results"`
	Summary BatchSummary       `json:"summary"`
}

// BatchSummary counts outcomes and timing of a batch request.
type BatchSummary struct {
	batch.Summary
	TotalDuration float64 `json:"total_duration_seconds"`
	AvgItemTime   float64 `json:"avg_item_time_seconds"`
}

// batchDecodeHandler decodes every image uploaded in the "images" field.
func (s *Server) batchDecodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.extractor == nil {
		s.writeErrorResponse(w, "Decoder not initialized", http.StatusServiceUnavailable)
		return
	}

	items, err := s.parseBatchRequest(w, r)
	if err != nil {
		decodeRequestsTotal.WithLabelValues("bad_request").Inc()
		return // error already written
	}
	batchSizeItems.Observe(float64(len(items)))

	ctx := r.Context()
	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	cfg := batch.DefaultConfig()
	cfg.ContinueOnError = true

	start := time.Now()
	res, err := batch.ProcessItems(ctx, s.extractor, items, cfg)
	if errors.Is(err, context.DeadlineExceeded) {
		s.writeErrorResponse(w, "Batch processing timed out", http.StatusGatewayTimeout)
		return
	}
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Batch processing failed: %v", err), http.StatusInternalServerError)
		return
	}
	decodeProcessingDuration.Observe(time.Since(start).Seconds())

	response := BatchDecodeResponse{
		Results: res.Results,
		Summary: BatchSummary{Summary: res.Summary(), TotalDuration: res.Duration.Seconds()},
	}
	for _, item := range res.Results {
		decodeRequestsTotal.WithLabelValues(string(item.Outcome)).Inc()
	}
	if n := response.Summary.Total; n > 0 {
		response.Summary.AvgItemTime = response.Summary.TotalDuration / float64(n)
	}
	response.Success = response.Summary.Found == response.Summary.Total

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode batch decode response", "error", err)
	}
}

// parseBatchRequest reads the uploaded files. Each file is held to the
// single-upload limit.
func (s *Server) parseBatchRequest(w http.ResponseWriter, r *http.Request) ([]batch.Item, error) {
	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit*maxBatchItems)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, "Batch too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return nil, err
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		s.writeErrorResponse(w, "No images provided in batch request", http.StatusBadRequest)
		return nil, errors.New("empty batch")
	}
	if len(headers) > maxBatchItems {
		s.writeErrorResponse(w, fmt.Sprintf("Batch size too large (maximum %d items)", maxBatchItems),
			http.StatusBadRequest)
		return nil, fmt.Errorf("batch of %d items", len(headers))
	}

	items := make([]batch.Item, 0, len(headers))
	for _, header := range headers {
		if header.Size > limit {
			s.writeErrorResponse(w, "File too large: "+header.Filename, http.StatusRequestEntityTooLarge)
			return nil, fmt.Errorf("upload of %d bytes exceeds limit", header.Size)
		}
		data, err := readUpload(header)
		if err != nil {
			s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
			return nil, err
		}
		uploadSizeBytes.Observe(float64(header.Size))
		items = append(items, batch.Item{Name: header.Filename, Data: data})
	}
	return items, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return io.ReadAll(file)
}
