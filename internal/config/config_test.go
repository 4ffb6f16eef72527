package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_ADDR", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("PRESENCE_THROTTLE_MS", "")

	cfg := Load()
	require.Equal(t, ":8008", cfg.Addr)
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, 50*time.Millisecond, cfg.PresenceThrottle)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_ADDR", ":9000")
	t.Setenv("PRESENCE_IDLE_SECONDS", "5")
	t.Setenv("TOKEN_TTL_HOURS", "not-a-number")

	cfg := Load()
	require.Equal(t, ":9000", cfg.Addr)
	require.Equal(t, 5*time.Second, cfg.PresenceIdle)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
}
