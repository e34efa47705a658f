package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/eventledger/internal/model"
)

// Message is a ledger change notification pushed to every connected client.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     string         `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action, id string, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// EventMessage describes a committed change to one event. Clients get the
// fields they need to refresh a month grid cell or a capacity badge without
// refetching. seq is the ledger's commit sequence number, so clients can
// order messages and spot gaps after a reconnect.
func EventMessage(action string, seq uint64, e model.Event) Message {
	return NewMessage("event", action, e.ID, map[string]any{
		"seq":                    seq,
		"date":                   e.Date,
		"startTime":              e.StartTime,
		"registeredParticipants": e.RegisteredParticipants,
		"capacity":               e.Capacity,
	})
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub with no greeting.
func (h *Hub) Register(c *Client) {
	h.Join(c, nil)
}

// Join registers c with hello as its first message. hello runs under the hub
// lock, so no broadcast can reach c ahead of it.
func (h *Hub) Join(c *Client, hello func() Message) {
	h.mu.Lock()
	if hello != nil {
		if data, err := json.Marshal(hello()); err != nil {
			h.logger.Error("marshal hello", "error", err)
		} else {
			c.send <- data
		}
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client joined", "client", c.id, "clients", n)
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients. Slow clients whose
// buffer is full miss the message rather than block the ledger.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("client buffer full, dropping message", "type", msg.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
