// Package server coordinates client registration, event fan-out, and
// connection cleanup for the relay via the Hub type.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/relaychat/internal/chat"
	"github.com/Tyrowin/relaychat/internal/telemetry"
)

// Hub manages all WebSocket client connections and delivers the chat core's
// outbound events to them. It implements chat.Emitter.
type Hub struct {
	clients    map[chat.ConnectionRef]*Client
	register   chan *Client
	unregister chan *Client
	core       *chat.Core
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	log        *slog.Logger
}

// NewHub creates a Hub together with the chat core it feeds.
func NewHub(log *slog.Logger, opts ...chat.Option) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:    make(map[chat.ConnectionRef]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        log,
	}
	h.core = chat.NewCore(h, log, opts...)
	return h
}

// Core returns the chat core driven by this hub.
func (h *Hub) Core() *chat.Core {
	return h.core
}

// GetRegisterChan returns the channel used for registering new clients to the hub.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Send delivers event to one connection. Unknown connections are ignored.
func (h *Hub) Send(conn chat.ConnectionRef, event chat.Outbound) {
	payload, ok := h.encode(event)
	if !ok {
		return
	}

	h.mutex.RLock()
	client, exists := h.clients[conn]
	h.mutex.RUnlock()
	if !exists {
		return
	}

	if !h.safeSend(client, payload) {
		h.drop(client)
	}
}

// Broadcast delivers event to every open connection.
func (h *Hub) Broadcast(event chat.Outbound) {
	payload, ok := h.encode(event)
	if !ok {
		return
	}

	clients := h.getClientSnapshot()
	h.log.Debug("Broadcasting event", "type", event.Type, "clients", len(clients))

	for _, client := range clients {
		if !h.safeSend(client, payload) {
			h.drop(client)
		}
	}
}

func (h *Hub) encode(event chat.Outbound) ([]byte, bool) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("Failed to encode outbound event", "type", event.Type, "error", err)
		return nil, false
	}
	return payload, true
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Recovered from panic in safeSend", "panic", r)
		}
	}()

	// Hold the lock during the entire send operation so unregister cannot
	// close the channel underneath us.
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if _, exists := h.clients[client.id]; !exists || client.closed {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// drop closes the connection of a client whose buffer is full. The read pump
// then fails and unregisters it, which runs the regular disconnect path.
// It must not touch the core: drop runs while the core lock is held.
func (h *Hub) drop(client *Client) {
	telemetry.CountDroppedSend()
	client.dropOnce.Do(func() {
		h.log.Warn("Client send buffer full; closing connection", "conn", client.id, "addr", client.addr)
		go client.closeConnection()
	})
}

// getClientSnapshot returns a thread-safe snapshot of all current clients
func (h *Hub) getClientSnapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// Run starts the hub's main event loop, handling client registration and
// unregistration. This method should be called in a separate goroutine.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("Received nil client registration; skipping")
				continue
			}
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mutex.Lock()
	client.closed = false
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()

	telemetry.SetConnectionsOpen(clientCount)
	h.log.Info("Client registered", "conn", client.id, "addr", client.addr, "clients", clientCount)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

// handleUnregister removes the client from the fan-out set first, so the
// leave announcement only reaches the remaining connections.
func (h *Hub) handleUnregister(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client.id]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client.id)
	client.closed = true
	clientCount := len(h.clients)
	h.mutex.Unlock()

	// Close the channel after releasing the lock
	close(client.send)
	telemetry.SetConnectionsOpen(clientCount)
	h.log.Info("Client unregistered", "conn", client.id, "addr", client.addr, "clients", clientCount)

	h.core.Disconnect(client.id)
}

// shutdownClients closes all active client connections
func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections...")

	clients := h.getClientSnapshot()
	for _, client := range clients {
		client.closeConnection()
	}

	h.log.Info("Closed client connections", "count", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
