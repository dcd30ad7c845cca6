package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/auth"
	"github.com/GustavoFrossard/P.A.T.A/internal/cache"
	"github.com/GustavoFrossard/P.A.T.A/internal/chat"
	"github.com/GustavoFrossard/P.A.T.A/internal/config"
	"github.com/GustavoFrossard/P.A.T.A/internal/handlers"
	"github.com/GustavoFrossard/P.A.T.A/internal/notifier"
	"github.com/GustavoFrossard/P.A.T.A/internal/observability"
	"github.com/GustavoFrossard/P.A.T.A/internal/repository/postgres"
	"github.com/GustavoFrossard/P.A.T.A/internal/router"
	"github.com/GustavoFrossard/P.A.T.A/internal/websocket"
)

func main() {
	cfg := config.Load()

	observability.InitLogger(cfg.ServiceName)
	log := observability.Log

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	db, err := postgres.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close()

	cacheClient := cache.New(cfg.RedisAddr, cfg.CacheTTL, cfg.ServiceName, log)
	defer cacheClient.Close()

	rooms := &postgres.RoomDirectory{DB: db}
	store := &postgres.MessageStore{DB: db}
	users := &postgres.UserDirectory{DB: db}
	listings := &postgres.ListingDirectory{DB: db}

	push := notifier.NewPusher(cfg.PusherAppID, cfg.PusherKey, cfg.PusherSecret, cfg.PusherCluster, log)

	svc := chat.New(rooms, store, users, listings, cacheClient, push, cfg.PageSize, cfg.ServiceName, log)

	resolver := auth.NewResolver(cfg.JWTSecret, users)

	registry := websocket.NewRegistry()
	wsH := websocket.NewHandler(registry, svc, resolver, cfg.AllowGuestSenders, cfg.ServiceName, log)

	roomH := handlers.NewRoomHandler(svc)
	msgH := handlers.NewMessageHandler(svc)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router.New(roomH, msgH, wsH, resolver, db, cacheClient, cfg.ServiceName),
	}

	go func() {
		log.Info("HTTP server started", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down...")

	registry.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP shutdown failed", zap.Error(err))
	}

	log.Info("shutdown complete")
}
