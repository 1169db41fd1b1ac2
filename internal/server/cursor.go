package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/headgaze/internal/log"
)

// CursorInterval is the broadcast period of the cursor feed (~15 Hz).
const CursorInterval = 66 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// cursorMessage is one websocket update.
type cursorMessage struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Face      bool   `json:"face"`
	Signal    bool   `json:"signal"`
	Enabled   bool   `json:"enabled"`
	Mode      string `json:"mode"`
	Timestamp int64  `json:"timestamp"`
}

// CursorHandler broadcasts cursor snapshots to websocket clients.
type CursorHandler struct {
	source  StatusSource
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
	stop    chan struct{}
	once    sync.Once
}

// NewCursorHandler creates a CursorHandler and starts its broadcaster.
func NewCursorHandler(source StatusSource) *CursorHandler {
	h := &CursorHandler{
		source:  source,
		clients: make(map[*websocket.Conn]*sync.Mutex),
		stop:    make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *CursorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn(log.Fields{"error": err}, "websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()

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
func (h *CursorHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcaster.
func (h *CursorHandler) Close() {
	h.once.Do(func() { close(h.stop) })
}

// broadcast sends cursor snapshots to all connected clients.
func (h *CursorHandler) broadcast() {
	ticker := time.NewTicker(CursorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		st := h.source.Status()
		msg, err := json.Marshal(cursorMessage{
			X:         st.Cursor.X,
			Y:         st.Cursor.Y,
			Face:      st.Face,
			Signal:    st.Signal,
			Enabled:   st.Enabled,
			Mode:      string(st.Mode),
			Timestamp: time.Now().UnixMilli(),
		})
		if err != nil {
			continue
		}

		h.mu.RLock()
		for conn, wmu := range h.clients {
			wmu.Lock()
			conn.SetWriteDeadline(time.Now().Add(time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				// The read loop notices the broken connection and unregisters it.
				conn.Close()
			}
			wmu.Unlock()
		}
		h.mu.RUnlock()
	}
}
