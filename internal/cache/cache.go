// Package cache is the short-lived read-through/write-through layer over a
// room's recent message page and each user's room list. It is never
// authoritative: every entry expires after a fixed short TTL, and every
// mutation here is best-effort. Callers log failures and move on; the TTL is
// the coherence backstop.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
	"github.com/GustavoFrossard/P.A.T.A/internal/observability"
)

type Cache struct {
	client      *redis.Client
	ttl         time.Duration
	serviceName string
	log         *zap.Logger
}

func New(addr string, ttl time.Duration, serviceName string, log *zap.Logger) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
		ttl:         ttl,
		serviceName: serviceName,
		log:         log,
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func roomPageKey(roomID int64) string {
	return fmt.Sprintf("chat:room:%d:messages:v1", roomID)
}

func userRoomsKey(userID int64) string {
	return fmt.Sprintf("chat:rooms:user:%d:v1", userID)
}

// GetRoomPage returns the cached page for a room. An unreadable or
// unrecognizable entry counts as a miss and is dropped.
func (c *Cache) GetRoomPage(ctx context.Context, roomID int64) (*domain.MessagePage, bool) {
	key := roomPageKey(roomID)

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.countLookup("room_page", "miss")
		return nil, false
	}
	if err != nil {
		c.log.Warn("room page read failed", zap.Int64("room_id", roomID), zap.Error(err))
		c.countLookup("room_page", "miss")
		return nil, false
	}

	page, err := decodePage(raw)
	if err != nil {
		c.log.Warn("dropping unrecognizable cached room page", zap.Int64("room_id", roomID))
		if err := c.client.Del(ctx, key).Err(); err != nil {
			c.log.Warn("room page drop failed", zap.Int64("room_id", roomID), zap.Error(err))
		}
		c.countLookup("room_page", "miss")
		return nil, false
	}

	c.countLookup("room_page", "hit")
	return page, true
}

func (c *Cache) SetRoomPage(ctx context.Context, roomID int64, page *domain.MessagePage) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal room page: %w", err)
	}
	return c.client.Set(ctx, roomPageKey(roomID), raw, c.ttl).Err()
}

// OnMessageAppended patches the cached page in place with the new message.
// When nothing usable is cached, the entry is invalidated instead: a fresh
// read beats a patch that might silently diverge from the store.
func (c *Cache) OnMessageAppended(ctx context.Context, roomID int64, view domain.MessageView) error {
	key := roomPageKey(roomID)

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return c.InvalidateRoomPage(ctx, roomID)
	}

	patched, err := patchPage(raw, view)
	if err != nil {
		return c.InvalidateRoomPage(ctx, roomID)
	}

	return c.client.Set(ctx, key, patched, c.ttl).Err()
}

// OnRoomCreated invalidates both participants' cached room lists. Always
// invalidation, never a patch: two user-scoped entries are not worth the
// coherence risk.
func (c *Cache) OnRoomCreated(ctx context.Context, userA, userB int64) error {
	return c.client.Del(ctx, userRoomsKey(userA), userRoomsKey(userB)).Err()
}

func (c *Cache) InvalidateRoomPage(ctx context.Context, roomID int64) error {
	return c.client.Del(ctx, roomPageKey(roomID)).Err()
}

func (c *Cache) InvalidateUserRooms(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, userRoomsKey(userID)).Err()
}

func (c *Cache) GetUserRooms(ctx context.Context, userID int64) ([]domain.RoomView, bool) {
	raw, err := c.client.Get(ctx, userRoomsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.countLookup("user_rooms", "miss")
		return nil, false
	}
	if err != nil {
		c.log.Warn("user rooms read failed", zap.Int64("user_id", userID), zap.Error(err))
		c.countLookup("user_rooms", "miss")
		return nil, false
	}

	var rooms []domain.RoomView
	if err := json.Unmarshal(raw, &rooms); err != nil {
		c.log.Warn("dropping unrecognizable cached room list", zap.Int64("user_id", userID))
		if err := c.InvalidateUserRooms(ctx, userID); err != nil {
			c.log.Warn("room list drop failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		c.countLookup("user_rooms", "miss")
		return nil, false
	}

	c.countLookup("user_rooms", "hit")
	return rooms, true
}

func (c *Cache) SetUserRooms(ctx context.Context, userID int64, rooms []domain.RoomView) error {
	raw, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("failed to marshal room list: %w", err)
	}
	return c.client.Set(ctx, userRoomsKey(userID), raw, c.ttl).Err()
}

func (c *Cache) countLookup(kind, result string) {
	observability.CacheLookupsTotal.WithLabelValues(c.serviceName, kind, result).Inc()
}
