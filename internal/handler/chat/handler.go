package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/andrasd/parlor/internal/model/chat"
	chatservice "github.com/andrasd/parlor/internal/service/chat"
	"github.com/andrasd/parlor/pkg/utils"
)

// Handler exposes the conversation commands: send, continue, edit and the
// normalized transcript.
type Handler struct {
	engine *chatservice.Service
}

func New(engine *chatservice.Service) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/send", h.handleSend)
	r.Post("/chat/continue", h.handleContinue)
	r.Post("/chat/edit", h.handleEdit)
	r.Get("/chat/transcript", h.handleTranscript)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := h.engine.Send(r.Context(), payload.Content)
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, turn)
}

func (h *Handler) handleContinue(w http.ResponseWriter, r *http.Request) {
	turn, err := h.engine.Continue(r.Context())
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, turn)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	content, err := h.engine.EditLast()
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"content": content})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.engine.Transcript())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chatservice.ErrNoActiveSession):
		return http.StatusNotFound
	case errors.Is(err, chatservice.ErrNothingToContinue),
		errors.Is(err, chatservice.ErrNotContinuable),
		errors.Is(err, chatmodel.ErrNoMatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
