package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "ws://localhost:4000/ws", cfg.Endpoint)
	assert.Equal(t, "8002", cfg.HTTPPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "subzero_monitor", cfg.DBName)
	assert.Equal(t, 1000, cfg.TransitionChannelSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WS_ENDPOINT", "wss://telemetry.example.com/ws")
	t.Setenv("TRANSITION_BATCH_SIZE", "250")
	t.Setenv("DB_MAX_CONNS", "20")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "wss://telemetry.example.com/ws", cfg.Endpoint)
	assert.Equal(t, 250, cfg.TransitionBatchSize)
	assert.Equal(t, int32(20), cfg.DBMaxConns)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("TRANSITION_FLUSH_MS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 500, cfg.TransitionFlushMS)
}
