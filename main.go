package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/study-buddy/server/internal/agent/graph"
	"github.com/study-buddy/server/internal/agent/graph/nodes"
	"github.com/study-buddy/server/internal/agent/model"
	"github.com/study-buddy/server/internal/agent/repo"
	"github.com/study-buddy/server/internal/config"
	"github.com/study-buddy/server/internal/metrics"
	"github.com/study-buddy/server/internal/server"
	logx "github.com/study-buddy/server/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to load config")
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	store, closeStore := buildStore(ctx, cfg)
	defer closeStore()

	sink, closeSink := buildPlanSink(ctx, cfg)
	defer closeSink()

	caps, err := nodes.NewCapabilities(ctx, nodes.CapabilitiesConfig{
		ChatModelConfig: nodes.ChatModelConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Classifier: &cfg.Classifier,
			Response:   &cfg.Response,
		},
		ClassifierMaxTurns: cfg.Conversation.Classifier.MaxTurns,
		Recorder:           recorder,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build capabilities")
	}

	router, err := graph.NewRouter(graph.Config{
		Store:        store,
		Classifier:   caps.Classifier,
		Generator:    caps.Generator,
		PlanSink:     sink,
		Recorder:     recorder,
		Conversation: cfg.Conversation,
		PlanStore:    cfg.PlanStore,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build router")
	}

	srv := server.New(server.Config{Addr: cfg.Addr(), BodyLimit: cfg.HTTP.BodyLimit}, router, reg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		logx.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error().Err(err).Msg("Server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := router.Close(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Pending plan writes did not finish")
	}
	logx.Info().Msg("Server stopped")
}

func buildStore(ctx context.Context, cfg *config.AppConfig) (model.ConversationStore, func()) {
	switch cfg.Conversation.Store {
	case "redis":
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
		}
		logx.Info().Msg("Connected to Redis successfully")
		return repo.NewRedisConversationRepository(rdb, cfg.Conversation.TTL), func() { _ = rdb.Close() }
	default:
		logx.Info().Dur("ttl", cfg.Conversation.TTL).Msg("Using in-memory conversation store")
		return repo.NewMemoryConversationRepository(cfg.Conversation.TTL), func() {}
	}
}

func buildPlanSink(ctx context.Context, cfg *config.AppConfig) (model.PlanSink, func()) {
	switch cfg.PlanStore.Kind {
	case "sqlite":
		db, err := cfg.SQLite.Open(ctx, repo.StudyPlansSchema...)
		if err != nil {
			logx.Fatal().Err(err).Str("path", cfg.SQLite.Path).Msg("Failed to open plan database")
		}
		logx.Info().Str("path", cfg.SQLite.Path).Msg("Persisting study plans to sqlite")
		return repo.NewSQLitePlanRepository(db), closeDB(db)
	default:
		return repo.LogPlanRepository{}, func() {}
	}
}

func closeDB(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			logx.Error().Err(err).Msg("Failed to close plan database")
		}
	}
}
