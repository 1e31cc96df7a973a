package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"subzero-monitor/telemetry/internal/channel"
	"subzero-monitor/telemetry/internal/config"
	"subzero-monitor/telemetry/internal/domain"
	"subzero-monitor/telemetry/internal/metrics"
	"subzero-monitor/telemetry/internal/sink"
	"subzero-monitor/telemetry/internal/stream"
	"subzero-monitor/telemetry/internal/streams"
)

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cache, err := sink.NewStateCache(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("state cache init failed")
	}
	defer cache.Close()

	store, err := sink.NewTransitionStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("transition store init failed")
	}
	defer store.Close()

	ch := channel.Connect(cfg.Endpoint, cfg.APIKey, log)
	defer ch.Close()

	transitions := make(chan domain.Transition, cfg.TransitionChannelSize)

	var wg sync.WaitGroup

	freezer := startStream(ctx, &wg, streams.Freezer(), ch, transitions, log)
	fleet := startStream(ctx, &wg, streams.Fleet(), ch, transitions, log)
	car := startStream(ctx, &wg, streams.Car(), ch, transitions, log)
	wearable := startStream(ctx, &wg, streams.Wearable(), ch, transitions, log)
	home := startStream(ctx, &wg, streams.Home(), ch, transitions, log)

	sources := map[string]sink.Source{
		streams.NameFreezer:  freezer,
		streams.NameFleet:    fleet,
		streams.NameCar:      car,
		streams.NameWearable: wearable,
		streams.NameHome:     home,
	}

	writer := sink.NewTransitionWriter(transitions, store, cfg.TransitionBatchSize, cfg.TransitionFlushMS, log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		writer.Run(ctx)
	}()

	publisher := sink.NewStatePublisher(sources, cache, time.Duration(cfg.StatePublishMS)*time.Millisecond, log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		publisher.Run(ctx)
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", metrics.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := cache.Ping(r.Context()); err != nil {
			http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
			return
		}
		if err := store.Ping(r.Context()); err != nil {
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
		}
	}()

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Strs("streams", streams.Names()).
		Str("http_port", cfg.HTTPPort).
		Msg("telemetry monitor started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown failed")
	}

	wg.Wait()
	log.Info().Msg("stopped")
}

func startStream[R domain.Reading](
	ctx context.Context,
	wg *sync.WaitGroup,
	cfg stream.Config[R],
	ch *channel.Channel,
	transitions chan<- domain.Transition,
	log zerolog.Logger,
) *stream.Synchronizer[R] {
	s := stream.New(cfg, ch.Subscribe(cfg.Stream), transitions, nil, log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Run(ctx)
	}()
	return s
}
