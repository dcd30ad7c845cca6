package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/auth"
	"github.com/GustavoFrossard/P.A.T.A/internal/chat"
	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
	"github.com/GustavoFrossard/P.A.T.A/internal/observability"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// Handler upgrades /ws/chat/{roomID} connections and drives each one
// through its lifecycle: authenticate, join the room's broadcast group,
// relay inbound messages, and guarantee group removal on disconnect.
type Handler struct {
	registry    *Registry
	svc         *chat.Service
	resolver    IdentityResolver
	allowGuests bool
	serviceName string
	log         *zap.Logger
}

func NewHandler(registry *Registry, svc *chat.Service, resolver IdentityResolver, allowGuests bool, serviceName string, log *zap.Logger) *Handler {
	return &Handler{
		registry:    registry,
		svc:         svc,
		resolver:    resolver,
		allowGuests: allowGuests,
		serviceName: serviceName,
		log:         log,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid room id", http.StatusNotFound)
		return
	}

	// Identity resolution failure leaves the connection anonymous; sending
	// is gated later, at message time.
	var user *domain.User
	if token := auth.TokenFromRequest(r); token != "" {
		user, err = h.resolver.Resolve(r.Context(), token)
		if err != nil {
			h.log.Warn("websocket auth failed, continuing anonymous",
				zap.Int64("room_id", roomID),
				zap.Error(err),
			)
			user = nil
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	session := NewSession(uuid.NewString(), roomID, user, conn, h.log)

	// Join the broadcast group before reading anything: no message is
	// accepted from a connection that is not a group member.
	h.registry.Add(session)
	observability.WebSocketConnectionsActive.WithLabelValues(h.serviceName).Inc()

	session.Start()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	h.log.Info("websocket connected",
		zap.String("session_id", session.ID),
		zap.Int64("room_id", roomID),
		zap.Bool("authenticated", user != nil),
	)

	go h.readLoop(session)
}

func (h *Handler) readLoop(s *Session) {
	defer func() {
		// Group removal is unconditional, clean close or not.
		h.registry.Remove(s)
		s.Close()
		observability.WebSocketConnectionsActive.WithLabelValues(h.serviceName).Dec()
		h.log.Info("websocket disconnected",
			zap.String("session_id", s.ID),
			zap.Int64("room_id", s.RoomID),
		)
	}()

	for {
		_, raw, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read error",
					zap.String("session_id", s.ID),
					zap.Error(err),
				)
			}
			return
		}

		// Malformed and non-message envelopes are dropped without a
		// response: probing clients get no diagnostic signal.
		var env inboundEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		if env.Type != envelopeTypeMessage {
			continue
		}

		h.handleMessage(s, env)
	}
}

func (h *Handler) handleMessage(s *Session, env inboundEnvelope) {
	ctx := context.Background()

	sender := s.User
	if sender == nil && h.allowGuests && env.SenderID != nil {
		u, err := h.svc.ResolveUser(ctx, *env.SenderID)
		if err == nil {
			sender = u
		}
	}

	msg, err := h.svc.SendMessage(ctx, s.RoomID, sender, env.Content)
	if err != nil {
		// Blank content is dropped silently before anything else happens.
		if errors.Is(err, domain.ErrEmptyContent) {
			return
		}
		h.log.Warn("failed to persist websocket message",
			zap.Int64("room_id", s.RoomID),
			zap.String("session_id", s.ID),
			zap.Error(err),
		)
		s.SendJSON(errorAck{Error: saveErrorMessage})
		return
	}

	// Ack the sender first; fan-out must never delay it.
	s.SendJSON(savedAck{Saved: true, ID: msg.ID})

	payload, err := json.Marshal(domain.NewMessageView(msg))
	if err != nil {
		h.log.Error("failed to marshal broadcast envelope", zap.Error(err))
		return
	}
	h.registry.Broadcast(s.RoomID, payload)
}
