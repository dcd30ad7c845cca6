package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

// ListRoomMessages returns one page of a room's history, oldest first. Only
// the default page is read through the cache; explicitly paginated requests
// always hit the store.
func (s *Service) ListRoomMessages(ctx context.Context, roomID int64, limit, offset int) (*domain.MessagePage, error) {
	defaultPage := limit == s.pageSize && offset == 0

	if defaultPage {
		if page, ok := s.cache.GetRoomPage(ctx, roomID); ok {
			return page, nil
		}
	}

	if _, err := s.rooms.Resolve(ctx, roomID); err != nil {
		return nil, err
	}

	messages, total, err := s.store.ListByRoom(ctx, roomID, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &domain.MessagePage{
		Count:   total,
		Results: make([]domain.MessageView, 0, len(messages)),
	}
	for _, msg := range messages {
		page.Results = append(page.Results, domain.NewMessageView(msg))
	}

	if defaultPage {
		if err := s.cache.SetRoomPage(ctx, roomID, page); err != nil {
			s.log.Warn("room page cache populate failed",
				zap.Int64("room_id", roomID),
				zap.Error(err),
			)
		}
	}

	return page, nil
}
