package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GustavoFrossard/P.A.T.A/internal/chat"
	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
	"github.com/GustavoFrossard/P.A.T.A/internal/middleware"
	"github.com/GustavoFrossard/P.A.T.A/internal/transport"
)

type MessageHandler struct {
	svc *chat.Service
}

func NewMessageHandler(svc *chat.Service) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func roomIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	return id, err == nil
}

// List returns one page of a room's history as {count, results}, oldest
// first. The default page is served through the cache.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	roomID, ok := roomIDParam(r)
	if !ok {
		transport.WriteError(w, http.StatusNotFound, "not_found", "room not found")
		return
	}

	limit := h.svc.PageSize()
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= h.svc.PageSize() {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	page, err := h.svc.ListRoomMessages(r.Context(), roomID, limit, offset)
	if err != nil {
		transport.DomainError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, page)
}

type createMessageRequest struct {
	Content string `json:"content"`
}

// Create is the REST send path: persist, write through the cache, push
// notify. Unlike the websocket path there is no broadcast group involved;
// connected sockets learn of the message via the push channel.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	roomID, ok := roomIDParam(r)
	if !ok {
		transport.WriteError(w, http.StatusNotFound, "not_found", "room not found")
		return
	}

	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	msg, err := h.svc.SendMessage(r.Context(), roomID, user, req.Content)
	if err != nil {
		transport.DomainError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusCreated, domain.NewMessageView(msg))
}
