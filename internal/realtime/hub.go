package realtime

import (
	"encoding/json"
	"sync"
)

// Client is a single websocket connection. The network conn itself is
// owned by the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event is the envelope for every server push.
type Event struct {
	Type      string `json:"type"`
	ProjectID string `json:"projectId,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// Hub maintains active user connections and fans events out to them.
type Hub struct {
	mu              sync.RWMutex
	userIDToClients map[string]map[Client]struct{}
}

func New() *Hub {
	return &Hub{userIDToClients: make(map[string]map[Client]struct{})}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIDToClients[userID]; !ok {
		h.userIDToClients[userID] = make(map[Client]struct{})
	}
	h.userIDToClients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIDToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIDToClients, userID)
		}
	}
}

// Connected reports whether userID has at least one open client.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userIDToClients[userID]) > 0
}

// Broadcast sends a raw message to all clients of a user.
func (h *Hub) Broadcast(userID string, message []byte) {
	h.mu.RLock()
	clients := make([]Client, 0, len(h.userIDToClients[userID]))
	for c := range h.userIDToClients[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		// failed writes are cleaned up by the handler's read loop
		c.Send(message)
	}
}

// Send encodes ev once and delivers it to every client of userID.
func (h *Hub) Send(userID string, ev Event) error {
	return h.SendMany([]string{userID}, ev)
}

// SendMany encodes ev once and delivers it to every client of each user.
func (h *Hub) SendMany(userIDs []string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	for _, uid := range userIDs {
		h.Broadcast(uid, data)
	}
	return nil
}
