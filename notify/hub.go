// Package notify fans events out to connected admin dashboards over
// WebSocket.
package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	MaxConnections = 100

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

var ErrTooManyConnections = errors.New("too many connections")

// Event is a JSON object sent to every connected client.
type Event map[string]interface{}

// Notifier delivers events on a best-effort basis without blocking.
type Notifier interface {
	Broadcast(event Event)
}

// Hub tracks admin WebSocket connections.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	max      int
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

var _ Notifier = (*Hub)(nil)

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		max:     MaxConnections,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks are left to CORS and the reverse proxy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.Named("ws-hub"),
	}
}

// ServeWS upgrades the request and registers the connection. When the hub is
// full the connection is closed with code 1013 (try again later).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(c) {
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "Too many connections")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		conn.Close()
		return ErrTooManyConnections
	}

	go c.writePump()
	go c.readPump()
	return nil
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) >= h.max {
		return false
	}
	h.clients[c] = struct{}{}
	h.logger.Info("WebSocket connected", zap.Int("total", len(h.clients)))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("WebSocket disconnected", zap.Int("total", total))
}

// Broadcast queues event for every client. Clients whose buffer is full are
// dropped rather than waited on.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to serialize event", zap.Error(err))
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow WebSocket client")
		h.unregister(c)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Dashboards only listen; anything they send is discarded.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
