package stream

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/andrasd/parlor/internal/service/chat"
	"github.com/andrasd/parlor/pkg/utils"
)

// Handler wraps the blocking send command in a Server-Sent Events envelope:
// a start event when the command is accepted, a reply event carrying the
// resulting turn, then done. The engine contract stays blocking; the stream
// is presentation only.
type Handler struct {
	engine *chatservice.Service
}

func New(engine *chatservice.Service) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/send", h.handleSend)
}

// StreamEvent is the payload of every event on the stream.
type StreamEvent struct {
	SessionID string `json:"sessionId,omitempty"`
	Role      string `json:"role,omitempty"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	message := r.URL.Query().Get("message")
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	utils.SetupSSEHeaders(w)

	sessionID := ""
	if current, ok := h.engine.Current(); ok {
		sessionID = current.ID
	}
	utils.SendSSEEvent(w, flusher, "start", StreamEvent{SessionID: sessionID})

	turn, err := h.engine.Send(r.Context(), message)
	if err != nil {
		utils.SendSSEEvent(w, flusher, "error", StreamEvent{Error: err.Error()})
		return
	}

	if current, ok := h.engine.Current(); ok {
		sessionID = current.ID
	}
	utils.SendSSEEvent(w, flusher, "reply", StreamEvent{
		SessionID: sessionID,
		Role:      string(turn.Role),
		Content:   turn.Content,
	})
	utils.SendSSEEvent(w, flusher, "done", StreamEvent{SessionID: sessionID})
}
