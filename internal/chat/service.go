// Package chat holds the application core: message sending, room
// origination and the cached read paths. Transports (websocket gateway,
// HTTP handlers) stay thin and call into here.
package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
	"github.com/GustavoFrossard/P.A.T.A/internal/observability"
)

type MessageStore interface {
	Insert(ctx context.Context, roomID, senderID int64, content string) (*domain.Message, error)
	ListByRoom(ctx context.Context, roomID int64, limit, offset int) ([]*domain.Message, int, error)
}

type RoomDirectory interface {
	GetOrCreate(ctx context.Context, petID, a, b int64) (*domain.Room, bool, error)
	Resolve(ctx context.Context, roomID int64) (*domain.Room, error)
	Summary(ctx context.Context, roomID int64) (*domain.RoomSummary, error)
	ListForUser(ctx context.Context, userID int64) ([]*domain.RoomSummary, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type ListingDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
}

// RoomCache mutations are best-effort: the service logs each failure and
// carries on. The cache is never consulted for correctness decisions.
type RoomCache interface {
	GetRoomPage(ctx context.Context, roomID int64) (*domain.MessagePage, bool)
	SetRoomPage(ctx context.Context, roomID int64, page *domain.MessagePage) error
	OnMessageAppended(ctx context.Context, roomID int64, view domain.MessageView) error
	OnRoomCreated(ctx context.Context, userA, userB int64) error
	GetUserRooms(ctx context.Context, userID int64) ([]domain.RoomView, bool)
	SetUserRooms(ctx context.Context, userID int64, rooms []domain.RoomView) error
}

// Notifier pushes a persisted message to the external fan-out service so
// clients without an open socket learn about it.
type Notifier interface {
	Notify(ctx context.Context, roomID int64, view domain.MessageView) error
}

const notifyTimeout = 5 * time.Second

type Service struct {
	rooms       RoomDirectory
	store       MessageStore
	users       UserDirectory
	listings    ListingDirectory
	cache       RoomCache
	notifier    Notifier
	pageSize    int
	serviceName string
	log         *zap.Logger
}

func New(
	rooms RoomDirectory,
	store MessageStore,
	users UserDirectory,
	listings ListingDirectory,
	cache RoomCache,
	notifier Notifier,
	pageSize int,
	serviceName string,
	log *zap.Logger,
) *Service {
	return &Service{
		rooms:       rooms,
		store:       store,
		users:       users,
		listings:    listings,
		cache:       cache,
		notifier:    notifier,
		pageSize:    pageSize,
		serviceName: serviceName,
		log:         log,
	}
}

func (s *Service) PageSize() int {
	return s.pageSize
}

func (s *Service) ResolveUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// notify fans the message out on a detached context so a slow or down push
// service never holds up the ack already owed to the sender.
func (s *Service) notify(roomID int64, view domain.MessageView) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, roomID, view); err != nil {
			s.log.Warn("push notification failed",
				zap.Int64("room_id", roomID),
				zap.Int64("message_id", view.ID),
				zap.Error(err),
			)
			observability.NotifyFailuresTotal.WithLabelValues(s.serviceName).Inc()
		}
	}()
}
