package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GustavoFrossard/P.A.T.A/internal/cache"
	"github.com/GustavoFrossard/P.A.T.A/internal/handlers"
	"github.com/GustavoFrossard/P.A.T.A/internal/middleware"
	"github.com/GustavoFrossard/P.A.T.A/internal/observability"
	"github.com/GustavoFrossard/P.A.T.A/internal/websocket"
)

func New(
	roomH *handlers.RoomHandler,
	msgH *handlers.MessageHandler,
	wsH *websocket.Handler,
	resolver middleware.IdentityResolver,
	db *sql.DB,
	cacheClient *cache.Cache,
	serviceName string,
) http.Handler {

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(observability.MetricsMiddleware(serviceName))
	r.Use(middleware.Recovery())

	r.Get("/health/live", observability.HealthLiveHandler)
	r.Get("/health/ready", observability.HealthReadyHandler(db, cacheClient))
	r.Handle("/metrics", promhttp.Handler())

	// The websocket endpoint authenticates itself: a missing or bad
	// credential leaves the connection anonymous instead of rejecting it.
	r.Get("/ws/chat/{roomID}", wsH.ServeHTTP)

	r.Group(func(p chi.Router) {
		p.Use(middleware.Auth(resolver))

		p.Get("/api/chat/rooms", roomH.List)
		p.Post("/api/chat/rooms", roomH.Create)
		p.Post("/api/chat/pets/{petID}/room", roomH.ByPet)

		p.Get("/api/chat/rooms/{roomID}/messages", msgH.List)
		p.Post("/api/chat/rooms/{roomID}/messages", msgH.Create)
	})

	return r
}
