package server

import (
	"encoding/json"
	"image/color"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/matrixscan/internal/common"
	"github.com/MeKo-Tech/matrixscan/internal/config"
	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
	"github.com/MeKo-Tech/matrixscan/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mem := common.GetMemoryStats()
	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Memory:  &mem,
	}
	if p, ok := s.extractor.(interface{ Profiler() *pipeline.Profiler }); ok {
		response.Stats = p.Profiler().Snapshot()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// writeErrorResponse writes an error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: message}); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}

// parseHexColor parses colors like "#RRGGBB", "RRGGBB" or "#RGB", returning
// nil for anything else.
func parseHexColor(s string) color.Color {
	if s == "" {
		return nil
	}
	c, err := config.ParseHexColor(s)
	if err != nil {
		return nil
	}
	return c
}
