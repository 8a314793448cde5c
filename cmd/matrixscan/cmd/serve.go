package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/MeKo-Tech/matrixscan/internal/config"
	"github.com/MeKo-Tech/matrixscan/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the decoding API",
	Long: `Start an HTTP server that decodes matrix symbols from uploaded images.

The server provides the following endpoints:
  POST /decode        - Decode the symbol in an uploaded image (multipart field "image")
  POST /decode/batch  - Decode up to 10 images at once (multipart field "images")
  GET  /ws/decode     - WebSocket: send images, receive decode results
  GET  /health        - Health check with memory and processing statistics
  GET  /metrics       - Prometheus metrics

Examples:
  matrixscan serve
  matrixscan serve --port 8080
  matrixscan serve --host 0.0.0.0 --port 3000 --rate-limit 120`,
	Args:    cobra.NoArgs,
	PreRunE: bindCommandFlags(pipelineFlagBindings, serveFlagBindings),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}

		srv, err := server.NewServer(serverConfigFrom(cfg))
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, srv, ln, cfg.Server)
	},
}

var serveFlagBindings = []flagBinding{
	{"server.host", "host"},
	{"server.port", "port"},
	{"server.cors_origin", "cors-origin"},
	{"server.max_upload_mb", "max-upload-size"},
	{"server.timeout_sec", "timeout"},
	{"server.shutdown_timeout", "shutdown-timeout"},
	{"server.rate_limit", "rate-limit"},
	{"output.overlay_box_color", "overlay-color"},
}

func serverConfigFrom(cfg *config.Config) server.Config {
	return server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		CORSOrigin:      cfg.Server.CORSOrigin,
		MaxUploadMB:     int64(cfg.Server.MaxUploadMB),
		TimeoutSec:      cfg.Server.TimeoutSec,
		PipelineConfig:  cfg.ToPipelineConfig(),
		OverlayBoxColor: cfg.Output.OverlayBoxColor,
		RateLimit:       cfg.Server.RateLimit,
	}
}

// serve runs the HTTP server on ln until ctx is done, then shuts it down
// gracefully.
func serve(ctx context.Context, srv *server.Server, ln net.Listener, cfg config.ServerConfig) error {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting decode server", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", cfg.ShutdownTimeout))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return err
	}
	slog.Info("Graceful shutdown completed")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	def := config.DefaultConfig()
	serveCmd.Flags().StringP("host", "H", def.Server.Host, "server host")
	serveCmd.Flags().IntP("port", "p", def.Server.Port, "server port")
	serveCmd.Flags().String("cors-origin", def.Server.CORSOrigin, "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", def.Server.MaxUploadMB, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", def.Server.TimeoutSec, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", def.Server.ShutdownTimeout, "shutdown timeout in seconds")
	serveCmd.Flags().Int("rate-limit", def.Server.RateLimit, "decode requests per minute per client (0 = unlimited)")
	serveCmd.Flags().String("overlay-color", def.Output.OverlayBoxColor, "default overlay box color (hex)")
	addPipelineFlags(serveCmd)
}
