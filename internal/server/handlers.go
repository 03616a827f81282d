// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, the admin participant listing, and the built-in chat page.
package server

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
)

//go:embed static/chat.html
var chatPage []byte

// WebSocketHandler handles WebSocket upgrade requests and manages client connections.
// It validates that the request uses the GET method, upgrades the HTTP connection
// to WebSocket, creates a new Client instance, and hands it to the hub.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	client := NewClient(conn, s.hub, r.RemoteAddr, r.UserAgent(), s.cfg)

	// The hub launches the pump goroutines once the client is registered.
	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		client.closeConnection()
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Relay chat server is running!")
}

// AdminUsersHandler returns the current participant snapshot as JSON.
func (s *Server) AdminUsersHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.hub.Core().Participants()); err != nil {
		s.log.Error("Error writing participant snapshot", "error", err)
	}
}

// ChatPageHandler serves a minimal browser client for the relay.
func (s *Server) ChatPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(chatPage); err != nil {
		s.log.Error("Error writing HTML response", "error", err)
	}
}
