// Package notifier is the outbound push boundary: a single best-effort
// trigger per persisted message toward the external Pusher service, so
// clients without an open socket still learn about new messages.
package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pusher/pusher-http-go/v5"
	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

const (
	eventName      = "new-message"
	requestTimeout = 5 * time.Second
)

type Pusher struct {
	client  *pusher.Client
	enabled bool
}

// NewPusher builds the fan-out client. Missing credentials disable fan-out
// for the process lifetime rather than failing startup; every send then
// degrades to socket-only delivery.
func NewPusher(appID, key, secret, cluster string, log *zap.Logger) *Pusher {
	if appID == "" || key == "" || secret == "" {
		log.Warn("pusher credentials missing, fan-out notifications disabled")
		return &Pusher{}
	}

	return &Pusher{
		client: &pusher.Client{
			AppID:   appID,
			Key:     key,
			Secret:  secret,
			Cluster: cluster,
			Secure:  true,
			HTTPClient: &http.Client{
				Timeout: requestTimeout,
			},
		},
		enabled: true,
	}
}

func channelName(roomID int64) string {
	return fmt.Sprintf("chat-room-%d", roomID)
}

// Notify makes exactly one delivery attempt. The HTTP client timeout bounds
// the call; retries are the push service's problem, not the send path's.
func (p *Pusher) Notify(_ context.Context, roomID int64, view domain.MessageView) error {
	if !p.enabled {
		return nil
	}
	return p.client.Trigger(channelName(roomID), eventName, view)
}
