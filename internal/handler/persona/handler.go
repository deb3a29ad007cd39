package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andrasd/parlor/internal/model/persona"
	"github.com/andrasd/parlor/pkg/utils"
)

// Handler serves the personality table.
type Handler struct {
	personas persona.Store
}

func New(personas persona.Store) *Handler {
	return &Handler{personas: personas}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personalities", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}
