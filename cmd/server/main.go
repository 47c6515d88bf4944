package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/turbine-catalog/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/turbine-catalog/internal/adapter/kafka"
	mongoadapter "github.com/couchcryptid/turbine-catalog/internal/adapter/mongo"
	"github.com/couchcryptid/turbine-catalog/internal/adapter/sheets"
	"github.com/couchcryptid/turbine-catalog/internal/config"
	"github.com/couchcryptid/turbine-catalog/internal/domain"
	"github.com/couchcryptid/turbine-catalog/internal/observability"
	"github.com/couchcryptid/turbine-catalog/internal/pipeline"
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

	// The store is optional: without MONGO_URI the server still serves
	// greetings and diagnostics, and data endpoints answer "not configured".
	var store domain.CatalogStore
	var diag httpadapter.Diagnostics
	var mongoStore *mongoadapter.Store
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		mongoStore, err = mongoadapter.Connect(connectCtx, cfg, logger)
		cancel()
		if err != nil {
			logger.Error("failed to connect to mongo", "error", err)
			os.Exit(1)
		}
		store = mongoStore
		diag = mongoStore
		metrics.StoreConfigured.Set(1)
		logger.Info("catalog store connected", "database", cfg.MongoDatabase, "collection", cfg.MongoCollection)
	} else {
		logger.Warn("no MONGO_URI set, running without a catalog store")
	}

	// Catalog-change events are feature-flagged via KAFKA_ENABLED.
	var events pipeline.EventPublisher
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		events = publisher
		logger.Info("catalog events enabled", "topic", cfg.KafkaTopic)
	}

	fetcher := sheets.NewClient(cfg.SheetFetchTimeout, logger)
	importer := pipeline.New(store, fetcher, events, logger, metrics)
	api := httpadapter.NewAPI(importer, store, diag, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, api, logger)

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
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if mongoStore != nil {
		if err := mongoStore.Close(shutdownCtx); err != nil {
			logger.Error("mongo disconnect error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
