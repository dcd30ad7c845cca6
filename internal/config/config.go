package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr      string
	DatabaseURL   string
	RedisAddr     string
	ServiceName   string
	JWTSecret     string
	MigrationsDir string

	CacheTTL time.Duration
	PageSize int

	// AllowGuestSenders lets an unauthenticated socket name its sender via
	// the in-band sender_id field. The field is unauthenticated input, so
	// this is off by default.
	AllowGuestSenders bool

	PusherAppID   string
	PusherKey     string
	PusherSecret  string
	PusherCluster string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       mustEnv("DATABASE_URL"),
		RedisAddr:         mustEnv("REDIS_ADDR"),
		ServiceName:       getEnv("SERVICE_NAME", "pata-chat"),
		JWTSecret:         mustEnv("JWT_SECRET"),
		MigrationsDir:     getEnv("MIGRATIONS_DIR", "migrations"),
		CacheTTL:          time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,
		PageSize:          getEnvInt("MESSAGE_PAGE_SIZE", 50),
		AllowGuestSenders: getEnvBool("CHAT_ALLOW_GUEST_SENDERS", false),
		PusherAppID:       getEnv("PUSHER_APP_ID", ""),
		PusherKey:         getEnv("PUSHER_KEY", ""),
		PusherSecret:      getEnv("PUSHER_SECRET", ""),
		PusherCluster:     getEnv("PUSHER_CLUSTER", ""),
	}
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing required env: " + k)
	}
	return v
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "true"
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
