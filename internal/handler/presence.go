package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/LahcenOub/tinmel-lms-sub000/internal/errors"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/middleware"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/model"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/service"
)

type PresenceHandler struct {
	presenceService *service.PresenceService
}

func NewPresenceHandler(presenceService *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{
		presenceService: presenceService,
	}
}

func (h *PresenceHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/{resourceID}/heartbeat", h.Heartbeat)
	r.Get("/{resourceID}/count", h.ActiveCount)

	return r
}

// POST /api/presence/{resourceID}/heartbeat
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	participant := middleware.GetParticipant(r.Context())
	resourceID := chi.URLParam(r, "resourceID")

	var beat model.PresenceHeartbeat
	if err := json.NewDecoder(r.Body).Decode(&beat); err != nil {
		writeError(w, apperrors.ValidationRejected("invalid JSON body"))
		return
	}
	// A participant can only beat for themselves. The beat's timestamp is
	// ignored; presence uses the server clock.
	if beat.ParticipantID != "" && beat.ParticipantID != participant.ID {
		writeError(w, apperrors.Forbidden("heartbeat participant mismatch"))
		return
	}

	if err := h.presenceService.Heartbeat(r.Context(), resourceID, participant.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/presence/{resourceID}/count
func (h *PresenceHandler) ActiveCount(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")

	count, err := h.presenceService.ActiveCount(r.Context(), resourceID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"activeCount": count})
}
