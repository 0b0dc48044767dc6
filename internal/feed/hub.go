package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/scantag/internal/logging"
)

const (
	eventQueueSize  = 1000
	clientQueueSize = 100
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
)

// Hub fans events out to websocket clients. Publish never blocks: when the
// queue is full the event is dropped, and clients that fall behind are
// disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	events   chan Event

	mu      sync.RWMutex
	clients map[*client]struct{}

	done      chan struct{}
	closeOnce sync.Once
}

type client struct {
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
}

// NewHub creates a hub. Call Run to start delivering events.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Read-only feed on a local interface
				return true
			},
		},
		events:  make(chan Event, eventQueueSize),
		clients: make(map[*client]struct{}),
		done:    make(chan struct{}),
	}
}

// Publish queues an event for every connected client.
func (h *Hub) Publish(ev Event) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.events <- ev:
	default:
		logging.Warn("Feed queue full, dropping event", zap.String("event_type", string(ev.Type)))
	}
}

// Run delivers queued events until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case ev := <-h.events:
			h.broadcast(ev)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logging.Error("Failed to encode feed event", zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logging.Warn("Feed client too slow, disconnecting", zap.String("remote_addr", c.remoteAddr))
		h.remove(c)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "feed closed", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Feed upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	c := &client{
		conn:       conn,
		send:       make(chan []byte, clientQueueSize),
		remoteAddr: r.RemoteAddr,
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	logging.Info("Feed client connected",
		zap.String("remote_addr", c.remoteAddr),
		zap.Int("clients", count),
	)

	go h.writePump(c)
	go h.readPump(c)
}

// remove unregisters c and closes its send queue once.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	logging.Info("Feed client disconnected", zap.String("remote_addr", c.remoteAddr))
}

// readPump discards client messages and notices when the client goes away.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

// Close stops Run and disconnects every client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		clients := make([]*client, 0, len(h.clients))
		for c := range h.clients {
			clients = append(clients, c)
		}
		h.mu.Unlock()

		for _, c := range clients {
			h.remove(c)
		}
	})
}
