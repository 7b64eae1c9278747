// Package main provides the API server entry point for the solfolio service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/eferbarn/solfolio/internal/adapter"
	"github.com/eferbarn/solfolio/internal/api"
	"github.com/eferbarn/solfolio/internal/config"
	"github.com/eferbarn/solfolio/internal/logging"
	"github.com/eferbarn/solfolio/internal/service"
	"github.com/eferbarn/solfolio/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Global().ErrorWithErr("failed to load configuration", err)
		os.Exit(1)
	}

	logging.Init(logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))
	logger := logging.Global()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("solfolio starting")

	store := buildStore(cfg, logger)

	ledger := adapter.NewLedgerClient(&cfg.Ledger, logger)
	insights := service.NewInsightsService(ledger, store, cfg.Insights, cfg.Cache.TTL, logger)

	server := api.NewServer(&api.ServerConfig{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, insights, ledger, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.ErrorWithErr("server failed", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.ErrorWithErr("graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logger.Info("solfolio stopped")
}

// buildStore selects the cache backend. A backend that cannot be reached
// degrades to the in-memory store: the cache is an optimization, never a
// prerequisite for serving requests.
func buildStore(cfg *config.Config, logger *logging.Logger) storage.Store {
	switch cfg.Cache.Backend {
	case "redis":
		store, err := storage.NewRedisStore(&cfg.Redis)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, falling back to in-memory cache")
			return storage.NewMemoryStore()
		}
		logger.Info("using Redis cache backend")
		return store
	case "postgres":
		store, err := storage.NewPostgresStore(&cfg.Postgres)
		if err != nil {
			logger.WithError(err).Warn("Postgres unavailable, falling back to in-memory cache")
			return storage.NewMemoryStore()
		}
		logger.Info("using Postgres cache backend")
		return store
	default:
		logger.Info("using in-memory cache backend")
		return storage.NewMemoryStore()
	}
}
