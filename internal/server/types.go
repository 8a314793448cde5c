package server

import (
	"context"
	"image"
	"net/http"

	"github.com/MeKo-Tech/matrixscan/internal/common"
	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// extractor defines the methods needed by the server from a pipeline.
type extractor interface {
	ExtractLoaded(ctx context.Context, img image.Image, meta utils.ImageMetadata) *pipeline.Result
	ExtractBytes(ctx context.Context, name string, data []byte) *pipeline.Result
	Config() pipeline.Config
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	extractor       extractor
	corsOrigin      string
	maxUploadMB     int64
	timeoutSec      int
	overlayBoxColor string
	rateLimiter     *RateLimiter
	upgrader        websocket.Upgrader
}

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	MaxUploadMB     int64
	TimeoutSec      int
	PipelineConfig  pipeline.Config
	OverlayBoxColor string
	// RateLimit is the number of decode requests allowed per client and
	// minute. Zero disables limiting.
	RateLimit int
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string              `json:"status"`
	Version string              `json:"version,omitempty"`
	Time    string              `json:"time"`
	Memory  *common.MemoryStats `json:"memory,omitempty"`
	Stats   map[string]any      `json:"stats,omitempty"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewServer creates a new decoding server instance.
func NewServer(config Config) (*Server, error) {
	ex, err := pipeline.NewBuilder().WithConfig(config.PipelineConfig).Build()
	if err != nil {
		return nil, err
	}

	s := &Server{
		extractor:       ex,
		corsOrigin:      config.CORSOrigin,
		maxUploadMB:     config.MaxUploadMB,
		timeoutSec:      config.TimeoutSec,
		overlayBoxColor: config.OverlayBoxColor,
	}
	if config.RateLimit > 0 {
		s.rateLimiter = NewRateLimiter(config.RateLimit)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/decode", s.corsMiddleware(s.rateLimitMiddleware(s.decodeHandler)))
	mux.HandleFunc("/decode/batch", s.corsMiddleware(s.rateLimitMiddleware(s.batchDecodeHandler)))
	// The CORS wrapper hides the connection hijacker; origins are checked
	// by the upgrader instead.
	mux.HandleFunc("/ws/decode", s.rateLimitMiddleware(s.decodeWebSocketHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns a mux with all routes installed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}
