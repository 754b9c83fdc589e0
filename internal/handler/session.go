package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/LahcenOub/tinmel-lms-sub000/internal/errors"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/middleware"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSession)
	r.Get("/key/{accessKey}", h.GetByAccessKey)
	r.Get("/{sessionID}", h.GetSnapshot)
	r.Post("/{sessionID}/strokes", h.AppendStroke)
	r.Delete("/{sessionID}/strokes", h.ClearStrokes)
	r.Post("/{sessionID}/messages", h.AppendMessage)
	r.Post("/{sessionID}/close", h.CloseSession)

	return r
}

// POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	participant := middleware.GetParticipant(r.Context())

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationRejected("invalid JSON body"))
		return
	}

	session, err := h.sessionService.Create(r.Context(), *participant, req.Title)
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// GET /api/sessions/key/{accessKey}
func (h *SessionHandler) GetByAccessKey(w http.ResponseWriter, r *http.Request) {
	accessKey := chi.URLParam(r, "accessKey")

	session, err := h.sessionService.GetByAccessKey(r.Context(), accessKey)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// GET /api/sessions/{sessionID}
func (h *SessionHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snap, err := h.sessionService.Snapshot(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// POST /api/sessions/{sessionID}/strokes
func (h *SessionHandler) AppendStroke(w http.ResponseWriter, r *http.Request) {
	participant := middleware.GetParticipant(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	var stroke model.Stroke
	if err := json.NewDecoder(r.Body).Decode(&stroke); err != nil {
		writeError(w, apperrors.ValidationRejected("invalid JSON body"))
		return
	}

	appended, err := h.sessionService.AppendStroke(r.Context(), *participant, sessionID, stroke)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"appended": appended})
}

// DELETE /api/sessions/{sessionID}/strokes?confirm=true
func (h *SessionHandler) ClearStrokes(w http.ResponseWriter, r *http.Request) {
	participant := middleware.GetParticipant(r.Context())
	sessionID := chi.URLParam(r, "sessionID")
	confirm := r.URL.Query().Get("confirm") == "true"

	if err := h.sessionService.ClearStrokes(r.Context(), *participant, sessionID, confirm); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/sessions/{sessionID}/messages
func (h *SessionHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	participant := middleware.GetParticipant(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationRejected("invalid JSON body"))
		return
	}

	msg, err := h.sessionService.AppendMessage(r.Context(), *participant, sessionID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	if msg == nil {
		// Empty content is dropped quietly; nothing was appended.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// POST /api/sessions/{sessionID}/close
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	participant := middleware.GetParticipant(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessionService.Close(r.Context(), *participant, sessionID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
