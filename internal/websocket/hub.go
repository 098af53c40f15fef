// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cartwise/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication. Training events arrive
// pre-encoded from the event bus with their own type field
// (training_progress, training_epoch, training_complete).
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// broadcastBuffer bounds the hub's inbound queue and each client's
// outbound queue.
const broadcastBuffer = 256

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewHub creates a new Hub
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger.With().Str("component", "websocket-hub").Logger(),
	}
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// client and returns ctx.Err().
//
// Each iteration checks, in priority order: shutdown, client lifecycle
// events, then broadcasts. Client state is therefore consistent before any
// message is fanned out.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case frame := <-h.broadcast:
			h.broadcastToClients(frame)
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	h.logger.Info().Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	h.logger.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

// logGracefulShutdown closes all clients and logs why the hub stopped.
// ctx.Err() is not logged as an error; cancellation is the normal path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	h.logger.Info().
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClients returns the clients in ID order (must be called with mu held).
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients queues frame on every client in ID order. A client
// whose queue is full is disconnected.
func (h *Hub) broadcastToClients(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var toRemove []*Client
	for _, client := range h.sortedClients() {
		select {
		case client.send <- frame:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSErrors.WithLabelValues("slow_client").Inc()
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
		h.logger.Warn().Int("dropped_clients", len(toRemove)).Msg("disconnected slow websocket clients")
	}
}

// closeAllClients closes every connected client in ID order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

// enqueue hands frame to the hub without blocking.
func (h *Hub) enqueue(frame []byte, kind string) {
	select {
	case h.broadcast <- frame:
	default:
		metrics.WSErrors.WithLabelValues("broadcast_full").Inc()
		h.logger.Warn().Str("message_type", kind).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastJSON wraps data in a Message of the given type and sends it
// to all connected clients.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	frame, err := MarshalMessage(Message{Type: messageType, Data: data})
	if err != nil {
		h.logger.Warn().Err(err).Str("message_type", messageType).Msg("failed to marshal broadcast message")
		return
	}
	h.enqueue(frame, messageType)
}

// BroadcastRaw sends an already encoded JSON document to all connected
// clients unchanged. It implements eventbus.WebSocketBroadcaster.
func (h *Hub) BroadcastRaw(data []byte) {
	if !json.Valid(data) {
		metrics.WSErrors.WithLabelValues("invalid_payload").Inc()
		h.logger.Warn().Int("bytes", len(data)).Msg("dropping invalid JSON broadcast")
		return
	}
	h.enqueue(data, "raw")
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
