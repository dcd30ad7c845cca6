package websocket

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

const (
	SendQueueSize = 128
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
)

// Session is one live connection bound to a single room. User is nil for
// anonymous connections; authentication failures at connect time leave the
// socket open and anonymous rather than refusing it.
type Session struct {
	ID     string
	RoomID int64
	User   *domain.User

	Conn      *websocket.Conn
	SendQueue chan []byte
	done      chan struct{}
	closed    atomic.Int32

	log *zap.Logger
}

func NewSession(id string, roomID int64, user *domain.User, conn *websocket.Conn, log *zap.Logger) *Session {
	return &Session{
		ID:        id,
		RoomID:    roomID,
		User:      user,
		Conn:      conn,
		SendQueue: make(chan []byte, SendQueueSize),
		done:      make(chan struct{}),
		log:       log,
	}
}

func (s *Session) Start() {
	go s.writeLoop()
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

// TrySend queues a payload for delivery. A full queue means the consumer is
// not keeping up; the connection is dropped rather than blocking the room.
func (s *Session) TrySend(msg []byte) bool {
	if s.closed.Load() == 1 {
		return false
	}
	select {
	case s.SendQueue <- msg:
		return true
	default:
		s.log.Warn("session backpressure overflow, dropping connection",
			zap.String("session_id", s.ID),
			zap.Int64("room_id", s.RoomID),
		)
		s.CloseWithReason(websocket.CloseInternalServerErr, "backpressure overflow")
		return false
	}
}

// SendJSON delivers a control payload (ack or error) to this session only.
func (s *Session) SendJSON(v interface{}) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		s.log.Error("failed to marshal session payload", zap.Error(err))
		return false
	}
	return s.TrySend(payload)
}

func (s *Session) Close() {
	s.CloseWithReason(websocket.CloseNormalClosure, "server closing")
}

func (s *Session) CloseWithReason(code int, reason string) {
	if !s.closed.CompareAndSwap(0, 1) {
		return
	}

	close(s.done)

	if s.Conn != nil {
		deadline := time.Now().Add(time.Second)
		_ = s.Conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		s.Conn.Close()
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case msg := <-s.SendQueue:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.log.Warn("session write error",
					zap.String("session_id", s.ID),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}
