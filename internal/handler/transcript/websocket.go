package transcript

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/andrasd/parlor/internal/export"
	chatservice "github.com/andrasd/parlor/internal/service/chat"
)

// Frame is one transcript push: the full normalized conversation after a
// mutation.
type Frame struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId"`
	Entries   []export.Entry `json:"entries"`
	Timestamp int64          `json:"timestamp"`
}

// Hub fans the normalized transcript out to every connected client. Register
// it with the engine via AddObserver; a write failure drops the connection.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// Notify implements the engine's observer contract.
func (h *Hub) Notify(sessionID string, entries []export.Entry) {
	frame := Frame{
		Type:      "transcript",
		SessionID: sessionID,
		Entries:   entries,
		Timestamp: time.Now().Unix(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(frame); err != nil {
			log.Warn().Err(err).Msg("transcript push failed, dropping connection")
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		conn.Close()
		delete(h.conns, conn)
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Handler upgrades clients onto the hub and seeds them with the current
// transcript.
type Handler struct {
	hub      *Hub
	engine   *chatservice.Service
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, engine *chatservice.Service) *Handler {
	return &Handler{
		hub:    hub,
		engine: engine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/transcript", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.hub.add(conn)
	defer h.hub.remove(conn)

	// Seed the client with the current state before any mutation arrives.
	sessionID := ""
	if current, ok := h.engine.Current(); ok {
		sessionID = current.ID
	}
	if err := conn.WriteJSON(Frame{
		Type:      "transcript",
		SessionID: sessionID,
		Entries:   h.engine.Transcript(),
		Timestamp: time.Now().Unix(),
	}); err != nil {
		return
	}

	// The feed is one-way; the read loop only watches for the close.
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("websocket read ended")
			}
			return
		}
	}
}
