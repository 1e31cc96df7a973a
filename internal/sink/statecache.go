// Package sink fans composed stream state out to downstream consumers: a
// Redis cache the dashboard reads live state from, and a TimescaleDB log of
// status transitions.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"subzero-monitor/telemetry/internal/config"
	"subzero-monitor/telemetry/internal/domain"
	"subzero-monitor/telemetry/internal/metrics"
)

// stateTTL keeps stale entries from lingering when the monitor dies; the
// publisher refreshes well inside this window.
const stateTTL = 30 * time.Second

// Source is anything exposing composed stream state. Satisfied by
// *stream.Synchronizer.
type Source interface {
	Summary() domain.StreamSummary
}

type StateCache struct {
	client *redis.Client
}

func NewStateCache(ctx context.Context, cfg *config.Config) (*StateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &StateCache{client: client}, nil
}

func (c *StateCache) Close() error {
	return c.client.Close()
}

func (c *StateCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// WriteSummary stores one stream's state under stream:{name}:state and
// publishes it on dashboard:{name}:state for live subscribers.
func (c *StateCache) WriteSummary(ctx context.Context, s domain.StreamSummary) error {
	statsJSON, err := json.Marshal(s.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	stateData := map[string]interface{}{
		"stream":       s.Stream,
		"status":       string(s.Status),
		"is_connected": s.IsConnected,
		"is_online":    s.IsOnline,
		"history_len":  s.HistoryLen,
		"stats":        string(statsJSON),
	}
	if !s.LastDataReceivedAt.IsZero() {
		stateData["last_data_at"] = s.LastDataReceivedAt.Unix()
	}

	pubPayload, err := json.Marshal(stateData)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	stateKey := fmt.Sprintf("stream:%s:state", s.Stream)
	pubChannel := fmt.Sprintf("dashboard:%s:state", s.Stream)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, stateKey, stateData)
	pipe.Expire(ctx, stateKey, stateTTL)
	pipe.Publish(ctx, pubChannel, pubPayload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

// StatePublisher mirrors every stream's summary into the cache on a fixed
// cadence.
type StatePublisher struct {
	sources  map[string]Source
	cache    *StateCache
	interval time.Duration
	log      zerolog.Logger
}

func NewStatePublisher(
	sources map[string]Source,
	cache *StateCache,
	interval time.Duration,
	log zerolog.Logger,
) *StatePublisher {
	return &StatePublisher{
		sources:  sources,
		cache:    cache,
		interval: interval,
		log:      log.With().Str("component", "state_publisher").Logger(),
	}
}

func (p *StatePublisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.publishAll(ctx)

		case <-ctx.Done():
			// Final flush so the cache reflects shutdown-time state.
			p.publishAll(context.Background())
			return
		}
	}
}

func (p *StatePublisher) publishAll(ctx context.Context) {
	for name, src := range p.sources {
		if err := p.cache.WriteSummary(ctx, src.Summary()); err != nil {
			metrics.StateWriteFailures.Add(1)
			p.log.Warn().Err(err).Str("stream", name).Msg("state write failed")
		}
	}
}
