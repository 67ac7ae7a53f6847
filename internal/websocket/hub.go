package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message is a change notification delivered to the members of one group.
type Message struct {
	Type    string `json:"type"`
	Entity  string `json:"entity"`
	Action  string `json:"action"`
	ID      int64  `json:"id,omitempty"`
	GroupID int64  `json:"group_id"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(groupID int64, entity, action string, id int64) Message {
	return Message{
		Type:    fmt.Sprintf("%s_%s", entity, action),
		Entity:  entity,
		Action:  action,
		ID:      id,
		GroupID: groupID,
	}
}

// Hub tracks connected clients and routes each message to the clients
// subscribed to its group.
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

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
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

// Broadcast sends msg to every client subscribed to msg.GroupID.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if _, ok := c.groups[msg.GroupID]; !ok {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Debug("dropping message for slow client", "email", c.email, "type", msg.Type)
		}
	}
}

// Notify broadcasts a change of entity id in groupID.
func (h *Hub) Notify(groupID int64, entity, action string, id int64) {
	h.Broadcast(NewMessage(groupID, entity, action, id))
}

// Subscribe adds groupID to every connection of email.
func (h *Hub) Subscribe(email string, groupID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.email == email {
			c.groups[groupID] = struct{}{}
		}
	}
}

// Unsubscribe stops delivering groupID messages to the connections of email.
func (h *Hub) Unsubscribe(email string, groupID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.email == email {
			delete(c.groups, groupID)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
