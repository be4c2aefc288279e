// Package gateway provides the WebSocket chat surface: it adapts the
// abstract chat transport to live browser connections, one per user.
package gateway

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// ConnManager tracks the active WebSocket connection per user.
type ConnManager struct {
	mu     sync.RWMutex
	active map[string]*websocket.Conn
}

// NewConnManager creates an empty connection manager.
func NewConnManager() *ConnManager {
	return &ConnManager{active: make(map[string]*websocket.Conn)}
}

// Get returns the active connection for a user, or nil.
func (m *ConnManager) Get(userID string) *websocket.Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active[userID]
}

// Register adds a connection for a user, closing any previous one.
func (m *ConnManager) Register(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.active[userID]; ok && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "connection replaced")
	}
	m.active[userID] = conn
	slog.Info("Chat connection registered", "user_id", userID)
}

// Unregister removes a connection for a user if it is still the active one.
func (m *ConnManager) Unregister(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.active[userID]; ok && current == conn {
		delete(m.active, userID)
		slog.Info("Chat connection unregistered", "user_id", userID)
	}
}

// CloseAll terminates every active connection.
func (m *ConnManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for userID, conn := range m.active {
		_ = conn.Close(websocket.StatusNormalClosure, "server shutting down")
		delete(m.active, userID)
	}
}
