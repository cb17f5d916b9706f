// Command spread consumes fire weather observations from Kafka, predicts the
// forward rate of spread of a dry eucalypt forest fire for each one, and
// publishes the predictions to Kafka and, optionally, Postgres.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/vesta-spread-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/vesta-spread-service/internal/adapter/kafka"
	"github.com/couchcryptid/vesta-spread-service/internal/adapter/mapbox"
	"github.com/couchcryptid/vesta-spread-service/internal/adapter/postgres"
	"github.com/couchcryptid/vesta-spread-service/internal/config"
	"github.com/couchcryptid/vesta-spread-service/internal/domain"
	"github.com/couchcryptid/vesta-spread-service/internal/observability"
	"github.com/couchcryptid/vesta-spread-service/internal/pipeline"
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

	// Reverse geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var resolver domain.PlaceResolver
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		resolver = mapbox.NewCachedResolver(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	loader := pipeline.NewFanoutLoader().Add("kafka", writer)

	var history httpadapter.PredictionHistory
	var store *postgres.Store
	if cfg.PostgresDSN != "" {
		store, err = postgres.Open(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("failed to migrate postgres schema", "error", err)
			os.Exit(1)
		}
		loader.Add("postgres", store)
		history = store
		logger.Info("postgres sink enabled")
	}

	transformer := pipeline.NewTransformer(cfg.Scenario, resolver, logger)
	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, history, logger)

	logger.Info("scenario loaded",
		"wind_reduction_factor", cfg.Scenario.WindReductionFactor,
		"fuel_load_surface", cfg.Scenario.FuelLoadSurface,
		"slope", cfg.Scenario.Slope,
		"fhs_elevated", cfg.Scenario.FHSElevated,
		"height_elevated", cfg.Scenario.HeightElevated,
		"wet_forest", cfg.Scenario.WetForest,
		"drought_index", cfg.Scenario.DroughtIndex,
		"sinks", loader.Len(),
	)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("postgres close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
