package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting of the board API.
type Config struct {
	Addr         string
	DatabasePath string
	CORSOrigin   string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	// Empty RedisURL keeps presence entries in process memory.
	RedisURL         string
	PresenceThrottle time.Duration
	PresenceIdle     time.Duration
}

func Load() Config {
	return Config{
		Addr:             getenv("API_ADDR", ":8008"),
		DatabasePath:     getenv("DATABASE_PATH", "kanban.db"),
		CORSOrigin:       getenv("CORS_ORIGIN", "*"),
		JWTSecret:        getenv("JWT_SECRET", "development-insecure-secret-change-me"),
		JWTIssuer:        getenv("JWT_ISSUER", "kanban-board-api"),
		JWTAudience:      getenv("JWT_AUDIENCE", "kanban-board-clients"),
		TokenTTL:         time.Duration(getenvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		RedisURL:         getenv("REDIS_URL", ""),
		PresenceThrottle: time.Duration(getenvInt("PRESENCE_THROTTLE_MS", 50)) * time.Millisecond,
		PresenceIdle:     time.Duration(getenvInt("PRESENCE_IDLE_SECONDS", 30)) * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
