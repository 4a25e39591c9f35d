package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-track-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-track-service/internal/adapter/kafka"
	"github.com/couchcryptid/storm-track-service/internal/config"
	"github.com/couchcryptid/storm-track-service/internal/engine"
	"github.com/couchcryptid/storm-track-service/internal/observability"
	"github.com/couchcryptid/storm-track-service/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := source.New(ctx, cfg.TrackSource, cfg.SourceTimeout, logger)
	if err != nil {
		logger.Error("failed to configure track source", "error", err)
		os.Exit(1)
	}

	opts := []engine.Option{
		engine.WithRecencyYears(cfg.RecencyYears),
		engine.WithPolicy(cfg.RankPolicy),
		engine.WithReloadInterval(cfg.ReloadInterval),
		engine.WithCacheSize(cfg.QueryCacheSize),
	}

	// Track publication is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, engine.WithPublisher(writer))
		logger.Info("kafka track publication enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka track publication disabled")
	}

	eng := engine.New(src, logger, metrics, opts...)
	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, cfg.QueryRateLimit, logger)

	// Start HTTP server. /readyz reports 503 until the first snapshot loads.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the load/reload loop.
	go func() {
		if err := eng.Run(ctx); err != nil {
			logger.Error("reload loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
