package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/LahcenOub/tinmel-lms-sub000/internal/errors"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/middleware"
	"github.com/LahcenOub/tinmel-lms-sub000/internal/service"
)

// ChatHandler serves the channel message log shared by staff rooms, class
// channels and 1:1 inboxes. The channel id is whatever receiver the caller
// addresses; there is no channel registry to consult.
type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

func (h *ChatHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/{channelID}/messages", h.SendMessage)
	r.Get("/{channelID}/messages", h.ListMessages)

	return r
}

// POST /api/channels/{channelID}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	participant := middleware.GetParticipant(r.Context())
	channelID := chi.URLParam(r, "channelID")

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationRejected("invalid JSON body"))
		return
	}

	msg, messages, err := h.chatService.Send(r.Context(), *participant, channelID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  msg,
		"messages": messages,
	})
}

// GET /api/channels/{channelID}/messages?limit=&offset=
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	page := ParsePagination(r)

	messages, err := h.chatService.List(r.Context(), channelID, page.Limit, page.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	total, err := h.chatService.Count(r.Context(), channelID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": messages,
		"total":    total,
		"limit":    page.Limit,
		"offset":   page.Offset,
	})
}
