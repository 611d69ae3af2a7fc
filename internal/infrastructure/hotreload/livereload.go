// Package hotreload provides live reload functionality for development
// and catalog reloading when the catalog file changes on disk
package hotreload

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ReloadMessage represents a live reload message sent to browsers
type ReloadMessage struct {
	Command   string                 `json:"command"`
	Path      string                 `json:"path,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const writeWait = 5 * time.Second

// Hub keeps the connected live reload browsers and broadcasts reload
// messages to them
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mutex   sync.RWMutex
	clients map[*websocket.Conn]struct{}

	broadcast  chan ReloadMessage
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
}

// NewHub creates a new live reload hub. Run must be started before
// connections are served.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// Development only: any origin may connect
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:     logger.Named("livereload"),
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan ReloadMessage, 8),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run manages connections and message broadcasting until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("Client connected", zap.Int("clients", total))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("Client disconnected", zap.Int("clients", total))

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				_ = client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteJSON(message); err != nil {
					h.logger.Debug("Dropping client", zap.Error(err))
					client.Close()
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

// ServeHTTP upgrades the request to a websocket and keeps it registered
// until the browser goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	hello := ReloadMessage{Command: "hello", Timestamp: time.Now().UnixMilli()}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(hello); err != nil {
		conn.Close()
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("WebSocket error", zap.Error(err))
				}
				return
			}
		}
	}()
}

// TriggerReload asks every connected browser to reload
func (h *Hub) TriggerReload(path string) {
	message := ReloadMessage{
		Command:   "reload",
		Path:      path,
		Timestamp: time.Now().UnixMilli(),
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	case <-time.After(time.Second):
		h.logger.Warn("Timeout broadcasting reload message", zap.String("path", path))
	}
}

// Clients returns the number of connected browsers
func (h *Hub) Clients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
