// Command mock-backend runs a deterministic chat-completions server for
// exercising the chatgpt client without network access or an API key.
//
// Configuration is read through pkg/config (CHATGPT_CONFIG, ./chatgpt.yaml,
// environment overrides). Relevant settings:
//
//	CHATGPT_MOCK_PORT - Listen port (default: 9090)
//	CHATGPT_METRICS   - Expose Prometheus metrics (default: false)
//	CHATGPT_DEBUG     - Debug categories, e.g. "mock"
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TABmk/chatgpt-wrapper/pkg/config"
	"github.com/TABmk/chatgpt-wrapper/pkg/debug"
	"github.com/TABmk/chatgpt-wrapper/pkg/mock"
	"github.com/TABmk/chatgpt-wrapper/pkg/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mock backend failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	debug.Init(cfg.Log.Debug, cfg.Log.Level)

	mux := http.NewServeMux()
	handler := mock.NewHandler()
	if cfg.Metrics.Enabled {
		handler = observability.MetricsMiddleware(handler)
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.Handler())
	}
	mux.Handle("/", handler)

	port := strconv.Itoa(cfg.Mock.Port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mock backend starting", "port", port, "metrics", cfg.Metrics.Enabled)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening on :%s: %w", port, err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("mock backend shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
