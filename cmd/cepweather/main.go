package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/cep-weather-service/internal/adapter/awesomeapi"
	"github.com/couchcryptid/cep-weather-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/cep-weather-service/internal/adapter/kafka"
	"github.com/couchcryptid/cep-weather-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/cep-weather-service/internal/config"
	"github.com/couchcryptid/cep-weather-service/internal/lookup"
	"github.com/couchcryptid/cep-weather-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	addresses := awesomeapi.NewClient(cfg.AddressAPIURL, cfg.LookupTimeout, metrics, logger)
	weather := openmeteo.NewClient(cfg.WeatherAPIURL, cfg.LookupTimeout, metrics, logger)

	// Lookup events are feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var (
		publisher lookup.EventPublisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		metrics.EventSinkEnabled.Set(1)
		logger.Info("lookup events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("lookup events disabled")
	}

	orch := lookup.New(addresses, weather, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, orch, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
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
