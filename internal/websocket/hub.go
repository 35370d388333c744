// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/feedpilot/internal/logging"
	"github.com/tomtom215/feedpilot/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Outbound message types.
const (
	MessageTypeCommand = "command"
	MessageTypeOverlay = "overlay"
	MessageTypePing    = "ping"
	MessageTypePong    = "pong"
	MessageTypeError   = "error"
)

// Message is an outbound WebSocket message.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// InboundMessage is a message received from the host page. Data is decoded
// by the handler according to Type.
type InboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MessageHandler processes inbound messages. It is called on the sending
// client's read goroutine.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg InboundMessage) error
}

// Hub maintains the set of active clients, broadcasts outbound messages and
// routes inbound ones to the MessageHandler.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	direct     chan directMessage
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	handler MessageHandler

	// sticky holds the last message per sticky type, replayed to new clients.
	sticky map[string]Message
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		direct:     make(chan directMessage, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		sticky:     make(map[string]Message),
	}
}

// SetHandler installs the inbound message handler.
func (h *Hub) SetHandler(handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// client and returns ctx.Err().
//
// Selection is priority based: shutdown first, then client lifecycle
// events, then broadcasts. Client state is consistent before any message
// is delivered.
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
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		case dm := <-h.direct:
			h.sendToClient(dm)
		}
	}
}

// directMessage is a reply addressed to a single client.
type directMessage struct {
	client  *Client
	message Message
}

// String names the service for the supervisor.
func (h *Hub) String() string {
	return "websocket-hub"
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	replay := make([]Message, 0, len(h.sticky))
	for _, msg := range h.sticky {
		replay = append(replay, msg)
	}
	total := len(h.clients)
	h.mu.Unlock()

	sort.Slice(replay, func(i, j int) bool { return replay[i].Type < replay[j].Type })
	for _, msg := range replay {
		select {
		case client.send <- msg:
		default:
		}
	}

	metrics.TrackWSConnection(true)
	logging.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.TrackWSConnection(false)
		logging.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("websocket client disconnected")
	}
}

// logGracefulShutdown closes every client and logs the shutdown. The
// context error is expected here and is not logged as an error.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// sortedClients returns clients in ID order. Must be called with the lock held.
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

// broadcastToClients delivers message in client ID order. Clients whose
// send buffer is full are dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var toRemove []*Client
	for _, client := range h.sortedClients() {
		select {
		case client.send <- message:
			metrics.RecordWSMessage("out", message.Type)
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.TrackWSConnection(false)
		logging.Warn().Uint64("client_id", client.id).Msg("websocket client too slow, disconnected")
	}
}

// sendToClient delivers a reply if the client is still registered.
func (h *Hub) sendToClient(dm directMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[dm.client] {
		return
	}
	select {
	case dm.client.send <- dm.message:
		metrics.RecordWSMessage("out", dm.message.Type)
	default:
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		close(client.send)
		delete(h.clients, client)
		metrics.TrackWSConnection(false)
	}
}

// BroadcastJSON queues a message for all connected clients. It never blocks;
// a full queue drops the message.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) bool {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
		return true
	default:
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
		return false
	}
}

// BroadcastSticky broadcasts like BroadcastJSON and also keeps the message
// as the latest of its type, so clients connecting later receive it first.
func (h *Hub) BroadcastSticky(messageType string, data interface{}) bool {
	h.mu.Lock()
	h.sticky[messageType] = Message{Type: messageType, Data: data}
	h.mu.Unlock()
	return h.BroadcastJSON(messageType, data)
}

// sendTo queues a reply for one client without blocking.
func (h *Hub) sendTo(client *Client, msg Message) {
	select {
	case h.direct <- directMessage{client: client, message: msg}:
	default:
		logging.Warn().Str("message_type", msg.Type).Msg("direct channel full, dropping reply")
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// dispatch hands an inbound message to the handler.
func (h *Hub) dispatch(ctx context.Context, msg InboundMessage) error {
	h.mu.RLock()
	handler := h.handler
	h.mu.RUnlock()

	metrics.RecordWSMessage("in", msg.Type)
	if handler == nil {
		logging.Debug().Str("message_type", msg.Type).Msg("no websocket handler installed, dropping message")
		return nil
	}
	return handler.HandleMessage(ctx, msg)
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
