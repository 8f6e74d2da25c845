package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentwire/agentwire/internal/events"
)

// Conn represents a single observer WebSocket connection.
type Conn struct {
	ID          string
	WS          *websocket.Conn
	writeMu     sync.Mutex
	ConnectedAt time.Time
}

// Send writes a frame to the WebSocket connection (thread-safe).
func (c *Conn) Send(frame Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.WS.WriteJSON(frame)
}

// ConnManager tracks all active observer connections and fans protocol
// events out to them.
type ConnManager struct {
	mu    sync.RWMutex
	conns map[string]*Conn // connID → conn
	seq   int
}

func NewConnManager() *ConnManager {
	return &ConnManager{conns: make(map[string]*Conn)}
}

// Add registers a new connection.
func (m *ConnManager) Add(conn *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[conn.ID] = conn
}

// Remove unregisters a connection.
func (m *ConnManager) Remove(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, connID)
}

// Count returns the number of connected observers.
func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Broadcast encodes a protocol event and pushes it to every observer.
func (m *ConnManager) Broadcast(ev events.Event) {
	data, err := events.Encode(ev)
	if err != nil {
		slog.Warn("broadcast encode failed", "type", ev.Type(), "error", err)
		return
	}

	m.mu.Lock()
	m.seq++
	frame := EventFrame(string(ev.Type()), m.seq, data)
	conns := make([]*Conn, 0, len(m.conns))
	for _, conn := range m.conns {
		conns = append(conns, conn)
	}
	m.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Send(frame); err != nil {
			slog.Warn("broadcast failed", "conn", conn.ID, "error", err)
		}
	}
}

// ReadFrame reads and parses a WebSocket message into a Frame.
func ReadFrame(ws *websocket.Conn) (Frame, error) {
	var frame Frame
	_, msg, err := ws.ReadMessage()
	if err != nil {
		return frame, err
	}
	err = json.Unmarshal(msg, &frame)
	return frame, err
}
