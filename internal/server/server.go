// Package server exposes the analysis pipeline over HTTP and streams chat
// turns over WebSocket.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Server runs the HTTP API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server listening on addr. A nil logger uses slog.Default().
func New(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until the server is shut down. It returns nil after
// Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
