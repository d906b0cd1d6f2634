package handlers

import (
	"sync"

	"chatspace/internal/models"
	"chatspace/internal/utils"
)

// messageWriter is the write side of a pushable connection. *websocket.Conn
// satisfies it.
type messageWriter interface {
	WriteJSON(v interface{}) error
}

// hubConn pairs a connection with a write mutex. The underlying websocket
// conn forbids concurrent writers, so every outbound frame goes through
// WriteJSON here.
type hubConn struct {
	mu sync.Mutex
	w  messageWriter
}

func (c *hubConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.WriteJSON(v)
}

// Hub tracks websocket connections per user and fans confirmed messages out
// to room members. It carries no authoritative state: a client that misses a
// push still converges through the history endpoint.
type Hub struct {
	mu sync.RWMutex
	// userID -> connID -> conn
	conns map[string]map[string]*hubConn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[string]*hubConn)}
}

// Register adds a connection and returns the wrapper all writes to it must
// go through.
func (h *Hub) Register(userID, connID string, w messageWriter) *hubConn {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn := &hubConn{w: w}
	if _, ok := h.conns[userID]; !ok {
		h.conns[userID] = make(map[string]*hubConn)
	}
	h.conns[userID][connID] = conn
	return conn
}

func (h *Hub) Unregister(userID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conns[userID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.conns, userID)
		}
	}
}

// PushMessage sends a confirmed message to every connection of the given
// users. The registry lock is held only to snapshot targets; writes happen
// outside it, serialized per connection. Write failures are logged and left
// for the read loop to clean up.
func (h *Hub) PushMessage(userIDs []string, msg *models.Message) {
	payload := models.WSEvent{Event: "message", Message: msg}

	h.mu.RLock()
	var targets []*hubConn
	for _, userID := range userIDs {
		for _, conn := range h.conns[userID] {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.WriteJSON(payload); err != nil {
			utils.LogError(err, "PushMessage")
		}
	}
}

// IsUserOnline reports whether the user has at least one open connection.
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns[userID]) > 0
}
