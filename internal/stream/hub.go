// Package stream broadcasts encoded ocean frames to websocket clients.
package stream

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"OceanFFT/internal/logger"
	"OceanFFT/internal/ocean"
	"OceanFFT/internal/snapshot"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 2 * time.Second

// Control is a client request to adjust the running simulation. Nil fields
// are left unchanged.
type Control struct {
	TimeScale     *float64 `json:"time_scale,omitempty"`
	WindSpeed     *float64 `json:"wind_speed,omitempty"`
	WindDirection *float64 `json:"wind_direction,omitempty"` // degrees
	Choppiness    *float64 `json:"choppiness,omitempty"`
}

// sendBuffer is how many encoded frames may queue for one client before
// newer frames are dropped for it.
const sendBuffer = 4

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the set of connected clients. Every client has its own writer
// goroutine fed by a buffered channel, so a slow client only loses frames
// and never holds up Publish.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	last    []byte
	dropped atomic.Uint64

	// OnControl, if set, receives control messages read from clients.
	OnControl func(Control)
}

// NewHub returns an empty hub that accepts any origin.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many client sends were skipped because the client's
// queue was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// ServeHTTP upgrades the request and holds the connection until the client
// goes away. The latest frame, if any, is queued immediately.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()
	defer h.remove(c)

	logger.Log.Info("Stream client connected", zap.String("remote", r.RemoteAddr))
	go writeLoop(c)

	for {
		var msg Control
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Log.Debug("Stream client read ended", zap.Error(err))
			}
			return
		}
		if h.OnControl != nil {
			h.OnControl(msg)
		}
	}
}

// Publish encodes frame once and queues it for every client as a binary
// message. It never blocks on a client.
func (h *Hub) Publish(frame *ocean.Frame) {
	data, err := snapshot.Encode(frame)
	if err != nil {
		logger.Log.Error("Failed to encode frame", zap.Uint64("frame", frame.Index), zap.Error(err))
		return
	}

	h.mu.Lock()
	h.last = data
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			if h.dropped.Add(1)%100 == 1 {
				logger.Log.Warn("Stream client too slow, dropping frames",
					zap.Uint64("frame", frame.Index),
					zap.Uint64("dropped_total", h.dropped.Load()))
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}

// remove unregisters c and stops its writer. Safe to call more than once.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// writeLoop drains c.send until it is closed. A failed write closes the
// connection, which ends the read loop in ServeHTTP and unregisters c.
func writeLoop(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			logger.Log.Warn("WebSocket write failed", zap.Error(err))
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}
