package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shreya-shukla01/NSUTHackathon/internal/alerts"
	"github.com/shreya-shukla01/NSUTHackathon/internal/config"
	"github.com/shreya-shukla01/NSUTHackathon/internal/dashboard"
	"github.com/shreya-shukla01/NSUTHackathon/internal/intent"
	"github.com/shreya-shukla01/NSUTHackathon/internal/logging"
	"github.com/shreya-shukla01/NSUTHackathon/internal/pipeline"
	"github.com/shreya-shukla01/NSUTHackathon/internal/reasoning"
	"github.com/shreya-shukla01/NSUTHackathon/internal/seed"
	"github.com/shreya-shukla01/NSUTHackathon/internal/simulation"
	"github.com/shreya-shukla01/NSUTHackathon/internal/store"
	"github.com/shreya-shukla01/NSUTHackathon/internal/stream"
	transport "github.com/shreya-shukla01/NSUTHackathon/internal/transport/http"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("intentguard exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Store ───────────────────────────────────────────────
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}()
	logger.Info("store ready", "backend", cfg.StoreBackend)

	if cfg.SeedOnStartup {
		if err := seed.IfEmpty(ctx, st, time.Now(), logger); err != nil {
			logger.Warn("seeding failed", "error", err)
		}
	}

	// ── Redis (optional) ───────────────────────────────────
	var redis *store.RedisStore
	if cfg.RedisEnabled {
		redis, err = store.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, running without live state and dedup", "addr", cfg.RedisAddr, "error", err)
			redis = nil
		} else {
			defer redis.Close()
			logger.Info("redis ready", "addr", cfg.RedisAddr)
		}
	}

	// ── Classifier ─────────────────────────────────────────
	var reasoner intent.Reasoner
	if cfg.ReasoningAPIKey != "" {
		reasoner = reasoning.NewClient(reasoning.Config{
			BaseURL: cfg.ReasoningBaseURL,
			APIKey:  cfg.ReasoningAPIKey,
			Model:   cfg.ReasoningModel,
		})
	} else {
		logger.Warn("no reasoning API key configured, classifying with the heuristic only")
	}
	classifier := intent.NewClassifier(reasoner,
		intent.WithTimeout(time.Duration(cfg.ReasoningTimeoutSeconds)*time.Second),
		intent.WithRetry(cfg.ReasoningRetry),
		intent.WithLogger(logger),
	)

	// ── Alerts and live stream ─────────────────────────────
	policy, err := alerts.PolicyByName(cfg.AlertTransitionPolicy)
	if err != nil {
		return err
	}

	hub := stream.NewHub(cfg.CORSOrigins, logger)
	var workers sync.WaitGroup
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	var notifier alerts.Notifier = hub
	if redis != nil {
		notifier = redis
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := hub.Relay(hubCtx, redis); err != nil {
				logger.Error("alert relay stopped", "error", err)
			}
		}()
	}

	alertSvc := alerts.NewService(st,
		alerts.WithPolicy(policy),
		alerts.WithNotifier(notifier),
		alerts.WithListLimits(cfg.AlertListDefaultLimit, cfg.AlertListMaxLimit),
		alerts.WithLogger(logger),
	)
	logger.Info("alert service ready", "policy", policy.Name())

	// ── Ingestion pipeline ─────────────────────────────────
	stateSize := cfg.StateChannelSize
	if redis == nil {
		stateSize = 0
	}
	dispatcher := pipeline.NewDispatcher(cfg.DBChannelSize, stateSize, cfg.AlertChannelSize)

	// Stages stop when their channel closes, not on the signal, so reports
	// accepted before shutdown are still written.
	pipelineCtx, cancelPipeline := context.WithCancel(context.Background())
	defer cancelPipeline()

	var stages sync.WaitGroup
	startN := func(n int, run func(context.Context)) {
		for i := 0; i < n; i++ {
			stages.Add(1)
			go func() {
				defer stages.Done()
				run(pipelineCtx)
			}()
		}
	}

	if dispatcher.DBChan != nil {
		startN(cfg.DBWriterWorkers, pipeline.NewSensorWriter(
			dispatcher.DBChan, st, cfg.DBBatchSize, cfg.DBFlushIntervalMS, logger,
		).Run)
	}
	if dispatcher.StateChan != nil {
		startN(cfg.StateWriterWorkers, pipeline.NewStateWriter(dispatcher.StateChan, redis, logger).Run)
	}
	if dispatcher.AlertChan != nil {
		var dedup pipeline.Deduper
		if redis != nil {
			dedup = redis
		}
		startN(cfg.AlertWorkers, pipeline.NewAlertEvaluator(
			dispatcher.AlertChan,
			classifier,
			alertSvc,
			dedup,
			time.Duration(cfg.AlertDedupTTLSeconds)*time.Second,
			logger,
		).Run)
	}

	// ── Dashboard sources ──────────────────────────────────
	sim := simulation.NewSimulator(uint64(time.Now().UnixNano()))
	var latest simulation.LatestReader
	health := map[string]transport.Pinger{"store": st}
	if redis != nil {
		latest = redis
		health["redis"] = redis
	}

	router := transport.NewRouter(transport.Deps{
		Classifier:  classifier,
		Alerts:      alertSvc,
		Stats:       dashboard.NewAggregator(st, sim),
		History:     st,
		Live:        simulation.NewLiveSensors(latest, sim, logger),
		Trains:      st,
		Drones:      simulation.NewDroneDispatcher(sim, time.Duration(cfg.DroneDispatchDelayMS)*time.Millisecond),
		Ingest:      dispatcher,
		AlertStream: http.HandlerFunc(hub.ServeWS),
		Health:      health,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("intentguard listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			stop()
			return fmt.Errorf("http server: %w", err)
		}
	}

	// ── Shutdown ───────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", "error", err)
	}

	dispatcher.Close()
	drained := make(chan struct{})
	go func() {
		stages.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		logger.Info("pipeline drained")
	case <-shutdownCtx.Done():
		logger.Warn("pipeline drain timed out, abandoning queued reports")
		cancelPipeline()
		<-drained
	}

	stopHub()
	workers.Wait()
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "mongo":
		return store.NewMongoStore(ctx, cfg.MongoURL, cfg.DBName)
	case "timescale":
		return store.NewTimescaleStore(ctx, cfg.TimescaleURL())
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
