package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andrasd/parlor/internal/export"
	chatmodel "github.com/andrasd/parlor/internal/model/chat"
	chatservice "github.com/andrasd/parlor/internal/service/chat"
	"github.com/andrasd/parlor/internal/storage"
	"github.com/andrasd/parlor/pkg/utils"
)

// Handler exposes session lifecycle commands: create, load, save, rename,
// delete, parameter updates and export.
type Handler struct {
	engine *chatservice.Service
}

func New(engine *chatservice.Service) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreate)
	r.Get("/sessions", h.handleList)
	r.Post("/session/load", h.handleLoad)
	r.Post("/session/save", h.handleSave)
	r.Post("/session/rename", h.handleRename)
	r.Delete("/session", h.handleDelete)
	r.Put("/session/params", h.handleSetParams)
	r.Post("/session/export", h.handleExport)
	r.Get("/session/export/exists", h.handleExportExists)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Label       string `json:"label"`
		Personality string `json:"personality"`
		Temporary   bool   `json:"temporary"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := h.engine.NewSession(payload.Label, payload.Personality, payload.Temporary)
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.engine.ListSessions()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID string `json:"id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.ID == "" {
		utils.RespondError(w, http.StatusBadRequest, "id is required")
		return
	}

	session, err := h.engine.Load(payload.ID)
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Save(); err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Label        string `json:"label"`
		KeepOriginal bool   `json:"keepOriginal"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Label == "" {
		utils.RespondError(w, http.StatusBadRequest, "label is required")
		return
	}

	newID, err := h.engine.Rename(payload.Label, payload.KeepOriginal)
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"id": newID})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	clearMemory := r.URL.Query().Get("clearMemory") == "true"
	if err := h.engine.Delete(clearMemory); err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleSetParams(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Model           string `json:"model"`
		MaxOutputTokens int    `json:"maxOutputTokens"`
		Personality     string `json:"personality"`
		SystemAddendum  string `json:"systemAddendum"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.engine.SetParams(chatmodel.GenerationParams{
		Model:                payload.Model,
		MaxOutputTokens:      payload.MaxOutputTokens,
		Personality:          payload.Personality,
		SystemPromptAddendum: payload.SystemAddendum,
	})
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}

	current, _ := h.engine.Current()
	utils.RespondJSON(w, http.StatusOK, current.Params)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Path      string `json:"path"`
		Format    string `json:"format"`
		Width     int    `json:"width"`
		Overwrite bool   `json:"overwrite"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Path == "" {
		utils.RespondError(w, http.StatusBadRequest, "path is required")
		return
	}

	// An explicit format wins over the path extension and must be a known
	// kind; with no format given, the extension decides.
	var format export.Format
	if payload.Format != "" {
		parsed, err := export.ParseFormat(payload.Format)
		if err != nil {
			utils.RespondError(w, statusFor(err), err.Error())
			return
		}
		format = parsed
	}

	if err := h.engine.Export(payload.Path, format, payload.Width, payload.Overwrite); err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"path": payload.Path})
}

// handleExportExists lets the client ask for overwrite confirmation before
// issuing the export.
func (h *Handler) handleExportExists(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		utils.RespondError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"exists": h.engine.ExportExists(path)})
}

// statusFor maps engine sentinels to HTTP statuses; unknown errors are server
// faults.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chatservice.ErrNoActiveSession),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, storage.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, export.ErrDestinationExists):
		return http.StatusConflict
	case errors.Is(err, storage.ErrCorrupt):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
