package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vanshika/astronum/backend/internal/app"
	"github.com/vanshika/astronum/backend/internal/config"
	"github.com/vanshika/astronum/backend/internal/logging"
	"github.com/vanshika/astronum/backend/internal/metrics"
	"github.com/vanshika/astronum/backend/internal/server"
	"github.com/vanshika/astronum/backend/internal/service"
	"github.com/vanshika/astronum/backend/internal/storage/sqlite"
	"github.com/vanshika/astronum/backend/internal/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("flushing traces failed", "error", err)
		}
	}()

	store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "path", cfg.Storage.SQLitePath)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing storage failed", "error", err)
		}
	}()

	people, err := app.OpenGraph(ctx, logger, cfg.Graph)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := people.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	insights, err := app.NewInsights(ctx, logger, cfg.AI)
	if err != nil {
		logger.Error("failed to load insight catalog", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	readings := service.NewReadingService(store, people.Repository(), insights, m, logger)
	chat := service.NewChatService(store, insights, m, logger, service.DefaultHistoryLimit)
	cache := server.NewResponseCache(cfg.Limits.CacheTTL, 0)
	apiHandlers := server.NewAPIHandlers(logger, readings, chat, cache, m)

	health := server.HealthChecks{"store": server.StoreHealthService{Store: store}}
	if people.Enabled() {
		health["graph"] = server.GraphHealthService{Client: people.Client}
	}

	clients, err := server.NewClientResolver(cfg.HTTP.TrustedProxies)
	if err != nil {
		logger.Error("invalid trusted proxies", "error", err)
		os.Exit(1)
	}

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           health,
		API:              apiHandlers,
		Metrics:          m,
		ExposeMetrics:    cfg.HTTP.MetricsEnabled,
		Limiter:          server.NewRateLimiter(cfg.Limits.RateLimitRequests, cfg.Limits.RateLimitWindow),
		Clients:          clients,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
