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

type RoomHandler struct {
	svc *chat.Service
}

func NewRoomHandler(svc *chat.Service) *RoomHandler {
	return &RoomHandler{svc: svc}
}

// List returns the caller's rooms, read through the cache.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	rooms, err := h.svc.ListUserRooms(r.Context(), user)
	if err != nil {
		transport.DomainError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, rooms)
}

type createRoomRequest struct {
	PetID      int64 `json:"pet_id"`
	ReceiverID int64 `json:"receiver_id"`
}

// Create opens (or returns) the room for (pet, caller, receiver): 201 when
// this call created it, 200 when it already existed.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PetID == 0 || req.ReceiverID == 0 {
		transport.WriteError(w, http.StatusBadRequest, "invalid_request", "pet_id and receiver_id are required")
		return
	}

	summary, created, err := h.svc.GetOrCreateRoom(r.Context(), req.PetID, user, req.ReceiverID)
	if err != nil {
		transport.DomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	transport.WriteJSON(w, status, domain.NewRoomView(summary))
}

// ByPet opens (or returns) the caller's room with the pet's owner.
func (h *RoomHandler) ByPet(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	petID, err := strconv.ParseInt(chi.URLParam(r, "petID"), 10, 64)
	if err != nil {
		transport.WriteError(w, http.StatusNotFound, "not_found", "pet not found")
		return
	}

	summary, _, err := h.svc.RoomWithListingOwner(r.Context(), petID, user)
	if err != nil {
		transport.DomainError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, domain.NewRoomView(summary))
}
