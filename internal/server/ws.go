package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/pinchball/internal/app"
)

// stateInterval is the broadcast period, about 15 FPS.
const stateInterval = time.Second / app.StreamFPS

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateHandler broadcasts loop snapshots via WebSocket.
type StateHandler struct {
	hub     *app.Hub
	log     *zap.Logger
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	stop    chan struct{}
	once    sync.Once
}

// NewStateHandler creates a StateHandler and starts its broadcaster.
func NewStateHandler(hub *app.Hub, log *zap.Logger) *StateHandler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &StateHandler{
		hub:     hub,
		log:     log.Named("state"),
		clients: make(map[*websocket.Conn]bool),
		stop:    make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("state client connected", zap.Int("clients", n))

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *StateHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast sends the latest snapshot to all connected clients.
func (h *StateHandler) broadcast() {
	ticker := time.NewTicker(stateInterval)
	defer ticker.Stop()

	var lastTick int64 = -1
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		snap := h.hub.Latest()
		if snap.Tick == lastTick {
			continue
		}
		lastTick = snap.Tick

		msg, err := json.Marshal(snap)
		if err != nil {
			h.log.Warn("failed to encode snapshot", zap.Error(err))
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				// The reader loop in ServeHTTP removes the client.
				conn.Close()
			}
		}
		h.mu.RUnlock()
	}
}

// Close stops the broadcaster and disconnects all clients.
func (h *StateHandler) Close() {
	h.once.Do(func() {
		close(h.stop)

		h.mu.RLock()
		for conn := range h.clients {
			conn.Close()
		}
		h.mu.RUnlock()
	})
}
