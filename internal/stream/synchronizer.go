// Package stream implements the generic per-sensor synchronization engine:
// a bounded reading history, rolling aggregates, threshold classification
// and a liveness verdict, kept current from shared channel events and a
// periodic staleness poll.
package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"subzero-monitor/telemetry/internal/channel"
	"subzero-monitor/telemetry/internal/domain"
	"subzero-monitor/telemetry/internal/metrics"
)

// EventSource is the subscription a synchronizer consumes. Satisfied by
// *channel.Subscription.
type EventSource interface {
	Events() <-chan channel.Event
	Close()
}

// Config declares one stream: its wire name, bounds, timing constants,
// decoder, classification table and tracked statistics fields. Adding a
// sensor type is one of these declarations, not a new synchronizer.
type Config[R domain.Reading] struct {
	Stream        string
	Capacity      int
	OnlineTimeout time.Duration
	PollInterval  time.Duration
	Decode        func(raw json.RawMessage) (R, error)
	Rules         []domain.Rule[R]
	Fields        []Field[R]
}

// State is the composed per-stream state exposed to consumers. Latest is
// only meaningful when HasLatest is set; it always equals the last history
// entry when the history is non-empty.
type State[R domain.Reading] struct {
	History            []R
	Latest             R
	HasLatest          bool
	IsConnected        bool
	IsOnline           bool
	LastDataReceivedAt time.Time
	Status             domain.Status
	Stats              map[string]domain.FieldStats
}

type Synchronizer[R domain.Reading] struct {
	cfg         Config[R]
	src         EventSource
	clock       Clock
	log         zerolog.Logger
	transitions chan<- domain.Transition

	mu    sync.RWMutex
	state State[R]

	// set once incremental data arrives; a replayed initial snapshot must
	// not clobber fresher incremental readings
	sawIncremental bool

	stop     chan struct{}
	stopOnce sync.Once
}

// New builds a synchronizer for one stream. A nil clock uses wall time.
// transitions may be nil when nobody consumes status changes.
func New[R domain.Reading](
	cfg Config[R],
	src EventSource,
	transitions chan<- domain.Transition,
	clock Clock,
	log zerolog.Logger,
) *Synchronizer[R] {
	if clock == nil {
		clock = realClock{}
	}
	return &Synchronizer[R]{
		cfg:         cfg,
		src:         src,
		clock:       clock,
		log:         log.With().Str("stream", cfg.Stream).Logger(),
		transitions: transitions,
		state:       State[R]{Status: domain.StatusUnknown, Stats: ComputeStats[R](nil, cfg.Fields)},
		stop:        make(chan struct{}),
	}
}

// Run consumes channel events and liveness ticks until the context is
// cancelled or Stop is called, then detaches the subscription. Events are
// handled one at a time in arrival order.
func (s *Synchronizer[R]) Run(ctx context.Context) {
	ticker := s.clock.Ticker(s.cfg.PollInterval)
	defer ticker.Stop()
	defer s.src.Close()

	for {
		select {
		case ev, ok := <-s.src.Events():
			if !ok {
				return
			}
			s.handle(ev)

		case now := <-ticker.Chan():
			s.poll(now)

		case <-s.stop:
			return

		case <-ctx.Done():
			return
		}
	}
}

// Stop tears the synchronizer down. Safe to call more than once.
func (s *Synchronizer[R]) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Snapshot returns a copy of the current state. The history slice and stats
// map are copied so consumers can never mutate synchronizer-owned state.
func (s *Synchronizer[R]) Snapshot() State[R] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.state
	out.History = make([]R, len(s.state.History))
	copy(out.History, s.state.History)
	out.Stats = make(map[string]domain.FieldStats, len(s.state.Stats))
	for k, v := range s.state.Stats {
		out.Stats[k] = v
	}
	return out
}

// Summary returns the untyped view of the current state used by the sinks.
func (s *Synchronizer[R]) Summary() domain.StreamSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]domain.FieldStats, len(s.state.Stats))
	for k, v := range s.state.Stats {
		stats[k] = v
	}
	return domain.StreamSummary{
		Stream:             s.cfg.Stream,
		Status:             s.state.Status,
		IsConnected:        s.state.IsConnected,
		IsOnline:           s.state.IsOnline,
		LastDataReceivedAt: s.state.LastDataReceivedAt,
		HistoryLen:         len(s.state.History),
		Stats:              stats,
	}
}

func (s *Synchronizer[R]) handle(ev channel.Event) {
	switch ev.Kind {
	case channel.KindConnected:
		s.mu.Lock()
		s.state.IsConnected = true
		s.sawIncremental = false
		s.mu.Unlock()
		s.log.Info().Msg("transport connected")

	case channel.KindDisconnected:
		// Transport loss does not touch liveness; that stays with the poll.
		s.mu.Lock()
		s.state.IsConnected = false
		s.mu.Unlock()
		s.log.Warn().Msg("transport disconnected")

	case channel.KindSnapshot:
		s.applySnapshot(ev.Snapshot)

	case channel.KindReading:
		s.applyReading(ev.Data)
	}
}

func (s *Synchronizer[R]) applySnapshot(p *channel.SnapshotPayload) {
	if p == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sawIncremental {
		// Incremental data is fresher than any replayed snapshot.
		return
	}

	history := make([]R, 0, len(p.History))
	for _, raw := range p.History {
		r, err := s.cfg.Decode(raw)
		if err != nil {
			metrics.DecodeFailures.Add(1)
			s.log.Warn().Err(err).Msg("bad reading in snapshot")
			continue
		}
		history = append(history, r)
	}
	if over := len(history) - s.cfg.Capacity; over > 0 {
		history = history[over:]
	}

	s.state.History = history
	s.state.HasLatest = len(history) > 0
	if s.state.HasLatest {
		s.state.Latest = history[len(history)-1]
	} else {
		var zero R
		s.state.Latest = zero
	}

	s.state.LastDataReceivedAt = time.Time{}
	if p.LastDataReceivedAt != "" {
		if t, err := time.Parse(time.RFC3339, p.LastDataReceivedAt); err == nil {
			s.state.LastDataReceivedAt = t
		}
	}
	if s.state.LastDataReceivedAt.IsZero() && s.state.HasLatest {
		s.state.LastDataReceivedAt = s.state.Latest.At()
	}

	s.state.IsOnline = IsOnline(s.state.LastDataReceivedAt, s.clock.Now(), s.cfg.OnlineTimeout)
	s.state.Stats = ComputeStats(s.state.History, s.cfg.Fields)
	s.setStatusLocked(s.classifyLatestLocked())

	s.log.Info().Int("history", len(history)).Bool("online", s.state.IsOnline).
		Msg("snapshot applied")
}

func (s *Synchronizer[R]) applyReading(raw json.RawMessage) {
	r, err := s.cfg.Decode(raw)
	if err != nil {
		metrics.DecodeFailures.Add(1)
		s.log.Warn().Err(err).Msg("bad reading")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sawIncremental = true
	s.state.History = Append(s.state.History, r, s.cfg.Capacity)
	s.state.Latest = r
	s.state.HasLatest = true
	s.state.LastDataReceivedAt = s.clock.Now()
	s.state.IsOnline = true
	s.state.Stats = ComputeStats(s.state.History, s.cfg.Fields)
	s.setStatusLocked(domain.Classify(s.cfg.Rules, r))
}

// poll re-derives the liveness verdict on the fixed interval so a stream
// that stops producing goes offline without waiting for its next message.
// History and status are left untouched; staleness never clears state.
func (s *Synchronizer[R]) poll(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	online := IsOnline(s.state.LastDataReceivedAt, now, s.cfg.OnlineTimeout)
	if online == s.state.IsOnline {
		return
	}
	s.state.IsOnline = online
	if online {
		s.log.Info().Msg("stream back online")
	} else {
		s.log.Warn().Time("last_data", s.state.LastDataReceivedAt).Msg("stream went stale")
	}
}

func (s *Synchronizer[R]) classifyLatestLocked() domain.Status {
	if !s.state.HasLatest {
		return domain.StatusUnknown
	}
	return domain.Classify(s.cfg.Rules, s.state.Latest)
}

func (s *Synchronizer[R]) setStatusLocked(next domain.Status) {
	prev := s.state.Status
	if next == prev {
		return
	}
	s.state.Status = next

	device := ""
	if s.state.HasLatest {
		device = s.state.Latest.Device()
	}
	s.log.Info().Str("from", string(prev)).Str("to", string(next)).
		Str("device", device).Msg("status changed")

	if s.transitions == nil {
		return
	}
	t := domain.Transition{
		Stream:   s.cfg.Stream,
		DeviceID: device,
		From:     prev,
		To:       next,
		At:       s.clock.Now(),
	}
	select {
	case s.transitions <- t:
	default:
		metrics.TransitionDrops.Add(1)
	}
}
