package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"partydeck/internal/config"
	"partydeck/internal/game"
	"partydeck/internal/session"
)

// Server runs the loopback HTTP server the game windows talk to.
type Server struct {
	httpServer *http.Server
	logger     game.Logger
}

// New wires the handlers and builds the server. It does not start
// listening.
func New(cfg config.ServerConfig, store game.ContentStore, hub *session.Hub, manager *session.Manager, logger game.Logger) *Server {
	content := NewContentHandler(store, logger)
	sess := NewSessionHandler(store, hub, manager, logger)

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	return &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     SetupRoutes(content, sess),
			ReadTimeout: 30 * time.Second,
			// No write timeout: websocket connections stay open for the
			// lifetime of a window.
		},
		logger: logger,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run listens until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}
	s.logger.Info("server listening", "addr", s.httpServer.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	}
}
