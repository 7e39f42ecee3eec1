package app

import (
	"context"
	"fmt"
	"net/http"

	"proxypool/internal/config"
	"proxypool/internal/logger"
	"proxypool/internal/metrics"
)

// httpServer wraps net/http.Server with a Run/graceful-shutdown shape:
// serve until the context is cancelled, then drain in-flight requests.
type httpServer struct {
	server *http.Server
	cfg    config.HTTPConfig
}

func newHTTPServer(cfg config.HTTPConfig, handler http.Handler) *httpServer {
	return &httpServer{
		cfg: cfg,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Serve starts the HTTP server and blocks until ctx is cancelled, then
// drains in-flight requests within cfg.ShutdownTimeout.
func (s *httpServer) Serve(ctx context.Context, version, environment string) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Log.Info("starting read API", "addr", s.server.Addr, "environment", environment, "version", version)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	metrics.Get().SetServiceInfo(version, environment)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down read API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Log.Info("read API stopped gracefully")
	return nil
}
