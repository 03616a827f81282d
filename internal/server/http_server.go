// Package server constructs and starts the relay HTTP service with helpers
// that apply sensible production defaults.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Tyrowin/relaychat/internal/chat"
	"github.com/gorilla/websocket"
)

// Server owns the hub, the chat core behind it, and the HTTP listener.
type Server struct {
	cfg        *Config
	hub        *Hub
	upgrader   websocket.Upgrader
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer builds a Server from cfg. The hub is not started.
func NewServer(cfg *Config, log *slog.Logger, opts ...chat.Option) *Server {
	s := &Server{
		cfg: cfg,
		hub: NewHub(log, opts...),
		log: log,
	}
	origins := newOriginPolicy(cfg.Origins(), log)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     origins.check,
	}
	s.httpServer = CreateServer(cfg.Addr(), s.Routes())
	return s
}

// Hub returns the connection hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// CreateServer creates and configures an HTTP server with the specified address and handler.
// It sets reasonable timeout values for production use.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartHub starts the hub event loop in a separate goroutine.
// This should be called before serving traffic.
func (s *Server) StartHub() {
	go s.hub.Run()
	s.log.Info("Hub started and ready to manage WebSocket connections")
}

// ListenAndServe blocks serving HTTP until the server is shut down.
// A graceful shutdown is not reported as an error.
func (s *Server) ListenAndServe() error {
	s.log.Info("Server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting HTTP requests, then closes every websocket
// connection and waits for the pumps, each bounded by the configured timeout.
func (s *Server) Shutdown() error {
	s.log.Info("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	httpErr := s.httpServer.Shutdown(ctx)
	if httpErr != nil {
		s.log.Error("HTTP server shutdown error", "error", httpErr)
	}
	hubErr := s.hub.Shutdown(s.cfg.ShutdownTimeout)

	return errors.Join(httpErr, hubErr)
}
