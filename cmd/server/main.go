package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/runmeter/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/runmeter/internal/adapter/kafka"
	"github.com/couchcryptid/runmeter/internal/config"
	"github.com/couchcryptid/runmeter/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience; a missing .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Results publishing is feature-flagged via KAFKA_ENABLED.
	var publisher httpadapter.ResultsPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		metrics.PublisherEnabled.Set(1)
		logger.Info("results publisher enabled", "topic", cfg.KafkaResultsTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("results publisher disabled")
	}

	// The engine is stateless: ready as soon as the server is serving.
	ready := httpadapter.ReadyFunc(func(context.Context) error { return nil })

	srv := httpadapter.NewServer(cfg, ready, publisher, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
