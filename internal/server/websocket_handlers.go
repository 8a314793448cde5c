package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second

	wsTypeDecode   = "decode"
	wsTypeResponse = "decode_response"
	wsTypeError    = "error"

	wsStatusProcessing = "processing"
	wsStatusCompleted  = "completed"
	wsStatusError      = "error"
)

// WebSocketDecodeRequest is a decode request sent as a JSON text message.
// Binary messages carry the raw image bytes instead.
type WebSocketDecodeRequest struct {
	Type     string `json:"type"` // "decode"
	Image    []byte `json:"image,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketDecodeResponse is sent for every request: once when work starts
// and once with the result.
type WebSocketDecodeResponse struct {
	Type      string           `json:"type"`
	Status    string           `json:"status"` // "processing", "completed", "error"
	Result    *pipeline.Result `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorType string           `json:"error_type,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
}

// checkOrigin accepts any origin when CORS is open, otherwise only the
// configured one. Clients that send no Origin header are not browsers and
// are let through.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.corsOrigin == "" || s.corsOrigin == "*" {
		return true
	}
	return origin == s.corsOrigin
}

// decodeWebSocketHandler decodes images sent over a WebSocket connection
// until the client goes away.
func (s *Server) decodeWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		s.writeErrorResponse(w, "Decoder not initialized", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(r.Context(), conn)
}

// handleWebSocketConnection reads messages until the connection fails.
func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn) {
	if s.maxUploadMB > 0 {
		// JSON requests carry the image base64-encoded.
		conn.SetReadLimit(2 * s.maxUploadMB * 1024 * 1024)
	}
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
					return
				}
			}
		}
	}()

	var seq int
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		seq++
		switch messageType {
		case websocket.BinaryMessage:
			s.processWebSocketImage(ctx, conn, "websocket-"+strconv.Itoa(seq), data)
		case websocket.TextMessage:
			s.handleWebSocketMessage(ctx, conn, data, seq)
		}
	}
}

// handleWebSocketMessage parses a JSON request and decodes its image.
func (s *Server) handleWebSocketMessage(ctx context.Context, conn WebSocketConnWriter, data []byte, seq int) {
	var req WebSocketDecodeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	switch req.Type {
	case wsTypeDecode, "":
	default:
		s.sendWebSocketError(conn, "invalid_request", "Unsupported request type: "+req.Type)
		return
	}
	if len(req.Image) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No image data provided")
		return
	}

	name := req.Filename
	if name == "" {
		name = "websocket-" + strconv.Itoa(seq)
	}
	s.processWebSocketImage(ctx, conn, name, req.Image)
}

// processWebSocketImage runs the extractor on one image and reports the
// result. The request ID is the image name.
func (s *Server) processWebSocketImage(ctx context.Context, conn WebSocketConnWriter, name string, data []byte) {
	s.sendWebSocketResponse(conn, WebSocketDecodeResponse{
		Type:      wsTypeResponse,
		Status:    wsStatusProcessing,
		RequestID: name,
	})

	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	res := s.extractor.ExtractBytes(ctx, name, data)
	decodeProcessingDuration.Observe(time.Since(start).Seconds())
	decodeRequestsTotal.WithLabelValues(string(res.Outcome)).Inc()

	response := WebSocketDecodeResponse{
		Type:      wsTypeResponse,
		Status:    wsStatusCompleted,
		Result:    res,
		RequestID: name,
	}
	switch {
	case errors.Is(res.Err, context.DeadlineExceeded):
		response.Status, response.ErrorType, response.Error = wsStatusError, "timeout", res.Error
	case res.Outcome == pipeline.OutcomeImageError:
		response.Status, response.ErrorType, response.Error = wsStatusError, string(res.Outcome), res.Error
	}
	s.sendWebSocketResponse(conn, response)
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketDecodeResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketDecodeResponse{
		Type:      wsTypeError,
		Status:    wsStatusError,
		Error:     message,
		ErrorType: errorType,
	})
}
