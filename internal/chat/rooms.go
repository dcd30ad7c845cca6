package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

// GetOrCreateRoom resolves or creates the single room for (listing,
// requester, counterparty). Idempotent under concurrency: the directory
// races on a unique key, never on a read-then-write.
func (s *Service) GetOrCreateRoom(ctx context.Context, petID int64, requester *domain.User, counterpartyID int64) (*domain.RoomSummary, bool, error) {
	if requester.ID == counterpartyID {
		return nil, false, domain.ErrInvalidCounterparty
	}

	if _, err := s.listings.GetByID(ctx, petID); err != nil {
		return nil, false, err
	}
	if _, err := s.users.GetByID(ctx, counterpartyID); err != nil {
		return nil, false, err
	}

	room, created, err := s.rooms.GetOrCreate(ctx, petID, requester.ID, counterpartyID)
	if err != nil {
		return nil, false, err
	}

	// Original behavior: both participants' room lists are invalidated on
	// every request, created or not.
	if err := s.cache.OnRoomCreated(ctx, room.UserA, room.UserB); err != nil {
		s.log.Warn("room list invalidation failed",
			zap.Int64("room_id", room.ID),
			zap.Error(err),
		)
	}

	summary, err := s.rooms.Summary(ctx, room.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load room summary: %w", err)
	}

	return summary, created, nil
}

// RoomWithListingOwner originates a room between the requester and the
// listing's owner, used when contact starts from a pet card.
func (s *Service) RoomWithListingOwner(ctx context.Context, petID int64, requester *domain.User) (*domain.RoomSummary, bool, error) {
	listing, err := s.listings.GetByID(ctx, petID)
	if err != nil {
		return nil, false, err
	}

	return s.GetOrCreateRoom(ctx, petID, requester, listing.OwnerID)
}

// ListUserRooms returns the caller's rooms, read through the cache.
func (s *Service) ListUserRooms(ctx context.Context, user *domain.User) ([]domain.RoomView, error) {
	if rooms, ok := s.cache.GetUserRooms(ctx, user.ID); ok {
		return rooms, nil
	}

	summaries, err := s.rooms.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	rooms := make([]domain.RoomView, 0, len(summaries))
	for _, summary := range summaries {
		rooms = append(rooms, domain.NewRoomView(summary))
	}

	if err := s.cache.SetUserRooms(ctx, user.ID, rooms); err != nil {
		s.log.Warn("room list cache populate failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	return rooms, nil
}
