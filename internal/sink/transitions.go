package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"subzero-monitor/telemetry/internal/config"
	"subzero-monitor/telemetry/internal/domain"
	"subzero-monitor/telemetry/internal/metrics"
)

type TransitionStore struct {
	pool *pgxpool.Pool
}

func NewTransitionStore(ctx context.Context, cfg *config.Config) (*TransitionStore, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?pool_max_conns=%d",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBMaxConns,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &TransitionStore{pool: pool}, nil
}

func (s *TransitionStore) Close() {
	s.pool.Close()
}

func (s *TransitionStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var transitionColumns = []string{
	"stream",
	"device_id",
	"from_status",
	"to_status",
	"occurred_at",
}

func (s *TransitionStore) BatchInsert(ctx context.Context, ts []domain.Transition) error {
	if len(ts) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(ts))
	for i, t := range ts {
		rows[i] = []interface{}{
			t.Stream,
			t.DeviceID,
			string(t.From),
			string(t.To),
			t.At,
		}
	}

	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"status_transitions"},
		transitionColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("CopyFrom failed for batch of %d: %w", len(ts), err)
	}

	return nil
}

// TransitionWriter drains the transition channel into the store in batches,
// flushing on size or on the tick.
type TransitionWriter struct {
	ch        <-chan domain.Transition
	store     *TransitionStore
	batchSize int
	flushMS   int
	log       zerolog.Logger
}

func NewTransitionWriter(
	ch <-chan domain.Transition,
	store *TransitionStore,
	batchSize int,
	flushMS int,
	log zerolog.Logger,
) *TransitionWriter {
	return &TransitionWriter{
		ch:        ch,
		store:     store,
		batchSize: batchSize,
		flushMS:   flushMS,
		log:       log.With().Str("component", "transition_writer").Logger(),
	}
}

func (w *TransitionWriter) Run(ctx context.Context) {
	batch := make([]domain.Transition, 0, w.batchSize)
	ticker := time.NewTicker(time.Duration(w.flushMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case t, ok := <-w.ch:
			if !ok {
				if len(batch) > 0 {
					w.flush(batch)
				}
				return
			}
			batch = append(batch, t)
			if len(batch) >= w.batchSize {
				w.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = batch[:0]
			}

		case <-ctx.Done():
			if len(batch) > 0 {
				w.flush(batch)
			}
			return
		}
	}
}

func (w *TransitionWriter) flush(batch []domain.Transition) {
	// Shutdown still flushes, so the write context is independent.
	ctx := context.Background()

	err := w.store.BatchInsert(ctx, batch)
	if err != nil {
		w.log.Warn().Err(err).Int("batch", len(batch)).Msg("db write failed, retrying")
		time.Sleep(500 * time.Millisecond)
		err = w.store.BatchInsert(ctx, batch)
		if err != nil {
			w.log.Error().Err(err).Int("batch", len(batch)).Msg("db write permanently failed")
			metrics.DBWriteFailures.Add(int64(len(batch)))
			return
		}
	}
	metrics.DBWriteSuccess.Add(int64(len(batch)))
}
