package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dtdash/src/internal/domain"
)

const (
	clientBuffer = 16
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Live reload is a development aid served to any page
	},
}

// Hub fans asset change events out to connected live-reload clients.
type Hub struct {
	logger  *slog.Logger
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan domain.AssetEvent
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// ServeWS upgrades the request and keeps the client registered until the
// connection closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, _ Param) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.logger.Warn("Live reload upgrade failed", "error", err, "remoteAddr", r.RemoteAddr)
		return
	}

	c := &client{conn: conn, send: make(chan domain.AssetEvent, clientBuffer)}
	if !h.add(c) {
		conn.Close()
		return
	}
	defer h.remove(c)

	go c.writeLoop()

	// Clients never send anything useful; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish queues ev for every client. Slow clients drop events rather than
// block the watcher.
func (h *Hub) Publish(ev domain.AssetEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			h.logger.Warn("Live reload client too slow, dropping event", "path", ev.Path)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()

	for ev := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
}
