package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
	"github.com/GustavoFrossard/P.A.T.A/internal/observability"
)

// SendMessage validates, persists and fans out one chat message. On any
// validation or persistence error nothing is cached, nothing is notified and
// the error is the caller's to report to the originating connection only.
func (s *Service) SendMessage(ctx context.Context, roomID int64, sender *domain.User, content string) (*domain.Message, error) {
	content, err := domain.ValidateContent(content)
	if err != nil {
		return nil, err
	}

	if sender == nil || !sender.Active {
		return nil, domain.ErrSenderInvalid
	}

	room, err := s.rooms.Resolve(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.HasParticipant(sender.ID) {
		return nil, domain.ErrNotParticipant
	}

	msg, err := s.store.Insert(ctx, roomID, sender.ID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}
	msg.SenderUsername = sender.Username

	observability.MessagesPersistedTotal.WithLabelValues(s.serviceName).Inc()

	view := domain.NewMessageView(msg)

	if err := s.cache.OnMessageAppended(ctx, roomID, view); err != nil {
		s.log.Warn("cache write-through failed",
			zap.Int64("room_id", roomID),
			zap.Int64("message_id", msg.ID),
			zap.Error(err),
		)
	}

	s.notify(roomID, view)

	return msg, nil
}
