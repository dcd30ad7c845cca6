package domain

import "time"

// Room Invariants:
// 1. Uniqueness: at most one room per (pet, unordered participant pair).
// 2. Canonical order: UserA < UserB, so both orderings of a pair resolve
//    to the same row.
// 3. Rooms are never deleted by this service.
type Room struct {
	ID        int64
	PetID     int64
	UserA     int64
	UserB     int64
	CreatedAt time.Time
}

func (r *Room) HasParticipant(userID int64) bool {
	return userID == r.UserA || userID == r.UserB
}

// CanonicalPair orders a participant pair ascending by id. The ordered pair
// is the uniqueness key for room lookup and creation.
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Listing is the pet card that originated a room. Listing CRUD is owned by
// an external subsystem; the chat core only needs existence and ownership.
type Listing struct {
	ID      int64
	Name    string
	OwnerID int64
}

// RoomSummary is a room enriched with the display fields the room-list and
// room-create responses carry.
type RoomSummary struct {
	Room
	PetName          string
	PetOwnerUsername string
	UserAUsername    string
	UserBUsername    string
}

// RoomView is the serialized form of a room as returned by the HTTP API and
// stored in the per-user room-list cache.
type RoomView struct {
	ID               int64   `json:"id"`
	Pet              int64   `json:"pet"`
	PetName          string  `json:"pet_name"`
	PetOwnerUsername *string `json:"pet_owner_username"`
	User1            int64   `json:"user1"`
	User1Username    string  `json:"user1_username"`
	User2            int64   `json:"user2"`
	User2Username    string  `json:"user2_username"`
	CreatedAt        string  `json:"created_at"`
}

func NewRoomView(s *RoomSummary) RoomView {
	v := RoomView{
		ID:            s.ID,
		Pet:           s.PetID,
		PetName:       s.PetName,
		User1:         s.UserA,
		User1Username: s.UserAUsername,
		User2:         s.UserB,
		User2Username: s.UserBUsername,
		CreatedAt:     s.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if s.PetOwnerUsername != "" {
		owner := s.PetOwnerUsername
		v.PetOwnerUsername = &owner
	}
	return v
}
