package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config covers runtime wiring only. Stream thresholds, buffer capacities
// and timeouts are compile-time constants in internal/streams.
type Config struct {
	// Telemetry channel
	Endpoint string
	APIKey   string

	// HTTP (metrics + health)
	HTTPPort string

	// Redis state cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TimescaleDB transition log
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int32

	// Transition pipeline tuning
	TransitionChannelSize int
	TransitionBatchSize   int
	TransitionFlushMS     int

	// State cache publish cadence
	StatePublishMS int

	// Logging
	LogLevel string
}

func Load() *Config {
	// Best-effort; production uses real environment variables.
	_ = godotenv.Load()

	return &Config{
		Endpoint:              getEnv("WS_ENDPOINT", "ws://localhost:4000/ws"),
		APIKey:                getEnv("API_KEY", ""),
		HTTPPort:              getEnv("HTTP_PORT", "8002"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		DBHost:                getEnv("DB_HOST", "localhost"),
		DBPort:                getEnv("DB_PORT", "5432"),
		DBUser:                getEnv("DB_USER", "subzero_user"),
		DBPassword:            getEnv("DB_PASSWORD", "subzero_password"),
		DBName:                getEnv("DB_NAME", "subzero_monitor"),
		DBMaxConns:            int32(getEnvInt("DB_MAX_CONNS", 5)),
		TransitionChannelSize: getEnvInt("TRANSITION_CHANNEL_SIZE", 1000),
		TransitionBatchSize:   getEnvInt("TRANSITION_BATCH_SIZE", 50),
		TransitionFlushMS:     getEnvInt("TRANSITION_FLUSH_MS", 500),
		StatePublishMS:        getEnvInt("STATE_PUBLISH_MS", 1000),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
