package websocket_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/chat"
	"github.com/GustavoFrossard/P.A.T.A/internal/chat/chattest"
	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
	ws "github.com/GustavoFrossard/P.A.T.A/internal/websocket"
)

type gatewayFixture struct {
	server   *httptest.Server
	registry *ws.Registry
	store    *chattest.Store
	rooms    *chattest.Rooms
	notifier *chattest.Notifier
	resolver *chattest.Resolver

	alice *domain.User
	bob   *domain.User
	room  *domain.Room
}

func newGatewayFixture(t *testing.T, allowGuests bool) *gatewayFixture {
	t.Helper()

	f := &gatewayFixture{
		store:    chattest.NewStore(),
		notifier: chattest.NewNotifier(),
		resolver: chattest.NewResolver(),
		registry: ws.NewRegistry(),
		alice:    &domain.User{ID: 1, Username: "alice", Active: true},
		bob:      &domain.User{ID: 2, Username: "bob", Active: true},
	}

	users := chattest.NewUsers(f.alice, f.bob)
	listings := chattest.NewListings(&domain.Listing{ID: 7, Name: "Rex", OwnerID: f.bob.ID})
	f.rooms = chattest.NewRooms(users, listings)

	room, _, err := f.rooms.GetOrCreate(context.Background(), 7, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	f.room = room

	f.resolver.Tokens["alice-token"] = f.alice
	f.resolver.Tokens["bob-token"] = f.bob

	svc := chat.New(f.rooms, f.store, users, listings, chattest.NewCache(), f.notifier, 50, "test", zap.NewNop())
	handler := ws.NewHandler(f.registry, svc, f.resolver, allowGuests, "test", zap.NewNop())

	r := chi.NewRouter()
	r.Get("/ws/chat/{roomID}", handler.ServeHTTP)

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *gatewayFixture) dial(t *testing.T, roomID int64, token string) *gws.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + fmt.Sprintf("/ws/chat/%d", roomID)
	if token != "" {
		url += "?token=" + token
	}

	conn, resp, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *gws.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func expectSilence(t *testing.T, conn *gws.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func sendEnvelope(t *testing.T, conn *gws.Conn, payload string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(gws.TextMessage, []byte(payload)))
}

func TestGatewayAckThenBroadcast(t *testing.T) {
	f := newGatewayFixture(t, false)

	alice := f.dial(t, f.room.ID, "alice-token")
	bob := f.dial(t, f.room.ID, "bob-token")

	sendEnvelope(t, alice, `{"type":"message","content":"hello"}`)

	// Sender gets the ack first, then the broadcast copy.
	ack := readFrame(t, alice)
	assert.Equal(t, true, ack["saved"])
	id := ack["id"].(float64)
	assert.Greater(t, id, float64(0))

	echoed := readFrame(t, alice)
	assert.Equal(t, id, echoed["id"])

	received := readFrame(t, bob)
	assert.Equal(t, id, received["id"])
	assert.Equal(t, float64(f.room.ID), received["room"])
	assert.Equal(t, float64(f.alice.ID), received["sender"])
	assert.Equal(t, "alice", received["sender_username"])
	assert.Equal(t, "hello", received["content"])
	assert.NotEmpty(t, received["timestamp"])

	assert.Equal(t, 1, f.store.Inserts())
}

func TestGatewayBroadcastStaysInRoom(t *testing.T) {
	f := newGatewayFixture(t, false)

	alice := f.dial(t, f.room.ID, "alice-token")
	eavesdropper := f.dial(t, f.room.ID+100, "bob-token")

	sendEnvelope(t, alice, `{"type":"message","content":"hello"}`)
	readFrame(t, alice) // ack
	readFrame(t, alice) // broadcast

	expectSilence(t, eavesdropper)
}

func TestGatewayPersistFailureSendsErrorAck(t *testing.T) {
	f := newGatewayFixture(t, false)

	// A room the directory does not know about still accepts connections;
	// the failure surfaces at send time.
	alice := f.dial(t, 999, "alice-token")
	bob := f.dial(t, 999, "bob-token")

	sendEnvelope(t, alice, `{"type":"message","content":"hello"}`)

	ack := readFrame(t, alice)
	assert.Equal(t, "Could not save message", ack["error"])

	expectSilence(t, bob)
	assert.Equal(t, 0, f.store.Inserts())
}

func TestGatewayStoreFailureSendsErrorAck(t *testing.T) {
	f := newGatewayFixture(t, false)
	f.store.FailWith(errors.New("store unavailable"))

	alice := f.dial(t, f.room.ID, "alice-token")

	sendEnvelope(t, alice, `{"type":"message","content":"hello"}`)

	ack := readFrame(t, alice)
	assert.Equal(t, "Could not save message", ack["error"])
}

func TestGatewayNotifierFailureStillDelivers(t *testing.T) {
	f := newGatewayFixture(t, false)
	f.notifier.FailWith(errors.New("push service unreachable"))

	alice := f.dial(t, f.room.ID, "alice-token")
	bob := f.dial(t, f.room.ID, "bob-token")

	sendEnvelope(t, alice, `{"type":"message","content":"hello"}`)

	ack := readFrame(t, alice)
	assert.Equal(t, true, ack["saved"])

	received := readFrame(t, bob)
	assert.Equal(t, "hello", received["content"])
}

func TestGatewayDropsMalformedAndUnknownEnvelopes(t *testing.T) {
	f := newGatewayFixture(t, false)

	alice := f.dial(t, f.room.ID, "alice-token")

	sendEnvelope(t, alice, `not json at all`)
	sendEnvelope(t, alice, `{"type":"typing","content":"..."}`)
	sendEnvelope(t, alice, `{"type":"message","content":"   "}`)

	// None of the above produce a response. A valid message afterwards
	// proves the connection survived them.
	sendEnvelope(t, alice, `{"type":"message","content":"still here"}`)

	ack := readFrame(t, alice)
	assert.Equal(t, true, ack["saved"])

	assert.Equal(t, 1, f.store.Inserts())
}

func TestGatewayAnonymousSenderRejected(t *testing.T) {
	f := newGatewayFixture(t, false)

	// Bad token downgrades the connection to anonymous instead of closing it.
	anon := f.dial(t, f.room.ID, "forged-token")

	sendEnvelope(t, anon, fmt.Sprintf(`{"type":"message","content":"hello","sender_id":%d}`, f.alice.ID))

	ack := readFrame(t, anon)
	assert.Equal(t, "Could not save message", ack["error"])
	assert.Equal(t, 0, f.store.Inserts())
}

func TestGatewayGuestSenderHonoredWhenEnabled(t *testing.T) {
	f := newGatewayFixture(t, true)

	anon := f.dial(t, f.room.ID, "")

	sendEnvelope(t, anon, fmt.Sprintf(`{"type":"message","content":"hello","sender_id":%d}`, f.alice.ID))

	ack := readFrame(t, anon)
	assert.Equal(t, true, ack["saved"])

	echoed := readFrame(t, anon)
	assert.Equal(t, "alice", echoed["sender_username"])
}

func TestGatewayInvalidRoomPathRejectedBeforeUpgrade(t *testing.T) {
	f := newGatewayFixture(t, false)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/chat/not-a-number"
	_, resp, err := gws.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}
