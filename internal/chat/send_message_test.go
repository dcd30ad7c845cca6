package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/chat"
	"github.com/GustavoFrossard/P.A.T.A/internal/chat/chattest"
	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

type fixture struct {
	store    *chattest.Store
	rooms    *chattest.Rooms
	users    *chattest.Users
	listings *chattest.Listings
	cache    *chattest.Cache
	notifier *chattest.Notifier
	svc      *chat.Service

	alice *domain.User
	bob   *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    chattest.NewStore(),
		cache:    chattest.NewCache(),
		notifier: chattest.NewNotifier(),
		alice:    &domain.User{ID: 1, Username: "alice", Active: true},
		bob:      &domain.User{ID: 2, Username: "bob", Active: true},
	}
	f.users = chattest.NewUsers(f.alice, f.bob)
	f.listings = chattest.NewListings(&domain.Listing{ID: 7, Name: "Rex", OwnerID: f.bob.ID})
	f.rooms = chattest.NewRooms(f.users, f.listings)
	f.svc = chat.New(f.rooms, f.store, f.users, f.listings, f.cache, f.notifier, 50, "test", zap.NewNop())
	return f
}

func (f *fixture) room(t *testing.T) *domain.Room {
	t.Helper()
	room, _, err := f.rooms.GetOrCreate(context.Background(), 7, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	return room
}

func (f *fixture) waitNotify(t *testing.T) {
	t.Helper()
	select {
	case <-f.notifier.C:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fan-out notification")
	}
}

func TestSendMessagePersistsAndFansOut(t *testing.T) {
	f := newFixture(t)
	room := f.room(t)

	msg, err := f.svc.SendMessage(context.Background(), room.ID, f.alice, "hello")
	require.NoError(t, err)

	assert.Equal(t, int64(1), msg.ID)
	assert.Equal(t, room.ID, msg.RoomID)
	assert.Equal(t, f.alice.ID, msg.SenderID)
	assert.Equal(t, "alice", msg.SenderUsername)
	assert.False(t, msg.Timestamp.IsZero())

	f.waitNotify(t)
	assert.Equal(t, []int64{room.ID}, f.notifier.Calls())
}

func TestSendMessageIDsAreStrictlyIncreasing(t *testing.T) {
	f := newFixture(t)
	room := f.room(t)

	var last int64
	for i := 0; i < 5; i++ {
		msg, err := f.svc.SendMessage(context.Background(), room.ID, f.alice, "hello")
		require.NoError(t, err)
		assert.Greater(t, msg.ID, last)
		last = msg.ID
	}

	page, err := f.svc.ListRoomMessages(context.Background(), room.ID, 50, 0)
	require.NoError(t, err)
	require.Equal(t, 5, page.Count)
	for i := 1; i < len(page.Results); i++ {
		assert.Greater(t, page.Results[i].ID, page.Results[i-1].ID)
	}
}

func TestSendMessageEmptyContentNeverReachesStore(t *testing.T) {
	f := newFixture(t)
	room := f.room(t)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := f.svc.SendMessage(context.Background(), room.ID, f.alice, content)
		assert.ErrorIs(t, err, domain.ErrEmptyContent)
	}

	assert.Equal(t, 0, f.store.Inserts())
	assert.Empty(t, f.notifier.Calls())
}

func TestSendMessageTrimsContent(t *testing.T) {
	f := newFixture(t)
	room := f.room(t)

	msg, err := f.svc.SendMessage(context.Background(), room.ID, f.alice, "  hello \n")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
}

func TestSendMessageRejectsAnonymousSender(t *testing.T) {
	f := newFixture(t)
	room := f.room(t)

	_, err := f.svc.SendMessage(context.Background(), room.ID, nil, "hello")
	assert.ErrorIs(t, err, domain.ErrSenderInvalid)
	assert.Equal(t, 0, f.store.Inserts())
}

func TestSendMessageRejectsInactiveSender(t *testing.T) {
	f := newFixture(t)
	room := f.room(t)

	blocked := &domain.User{ID: f.alice.ID, Username: "alice", Active: false}
	_, err := f.svc.SendMessage(context.Background(), room.ID, blocked, "hello")
	assert.ErrorIs(t, err, domain.ErrSenderInvalid)
}

func TestSendMessageUnknownRoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SendMessage(context.Background(), 999, f.alice, "hello")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.Equal(t, 0, f.store.Inserts())
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	f := newFixture(t)
	room := f.room(t)

	mallory := &domain.User{ID: 99, Username: "mallory", Active: true}
	_, err := f.svc.SendMessage(context.Background(), room.ID, mallory, "hello")
	assert.ErrorIs(t, err, domain.ErrNotParticipant)
}

func TestSendMessagePersistErrorSkipsCacheAndNotify(t *testing.T) {
	f := newFixture(t)
	room := f.room(t)

	// Warm the cache so a wrongly-executed write-through would be visible.
	_, err := f.svc.ListRoomMessages(context.Background(), room.ID, 50, 0)
	require.NoError(t, err)

	storeDown := errors.New("store unavailable")
	f.store.FailWith(storeDown)

	_, err = f.svc.SendMessage(context.Background(), room.ID, f.alice, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, storeDown)

	page, ok := f.cache.GetRoomPage(context.Background(), room.ID)
	require.True(t, ok)
	assert.Equal(t, 0, page.Count)
	assert.Empty(t, f.notifier.Calls())
}

func TestSendMessagePatchesCachedPage(t *testing.T) {
	f := newFixture(t)
	room := f.room(t)

	_, err := f.svc.ListRoomMessages(context.Background(), room.ID, 50, 0)
	require.NoError(t, err)

	msg, err := f.svc.SendMessage(context.Background(), room.ID, f.alice, "hello")
	require.NoError(t, err)

	page, ok := f.cache.GetRoomPage(context.Background(), room.ID)
	require.True(t, ok)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, msg.ID, page.Results[0].ID)
	assert.Equal(t, "hello", page.Results[0].Content)
}

func TestSendMessageNotifierFailureDoesNotFailSend(t *testing.T) {
	f := newFixture(t)
	room := f.room(t)

	f.notifier.FailWith(errors.New("push service unreachable"))

	msg, err := f.svc.SendMessage(context.Background(), room.ID, f.alice, "hello")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)

	f.waitNotify(t)
	assert.Equal(t, 1, f.store.Inserts())
}
