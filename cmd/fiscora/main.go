package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fiscora/internal/backend"
	"fiscora/internal/cache"
	"fiscora/internal/cli"
	"fiscora/internal/config"
	apphttp "fiscora/internal/http"
	applog "fiscora/internal/log"
	"fiscora/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig((*config.Config).Validate)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).
		CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err.Error(), applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	if cached, ok := res.Backend.(*backend.CachedCatalog); ok {
		caches.Register(cached.Cache())
		caches.StartCleanup(time.Minute)
	}

	// a nil *amqp.Client must not become a non-nil interface
	var publisher services.EventPublisher
	if res.Events != nil {
		publisher = res.Events
	}

	summaries := services.NewSummaryService(res.Backend, cfg.OpenEndedHorizonMonths, logger)
	svc := apphttp.Services{
		Transactions: services.NewTransactionService(res.Backend, publisher, logger),
		Summaries:    summaries,
		Budgets:      services.NewBudgetService(res.Backend, logger),
		Dashboard:    services.NewDashboardService(res.Backend, summaries, cfg.DashboardRecentLimit),
		Catalogs:     res.Backend,
	}
	if p, ok := res.Backend.(backend.Pinger); ok {
		svc.Ready = p
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		RequestTimeout:     cfg.RequestTimeout,
		Logger:             logger,
	}, svc)
	if err != nil {
		logger.Error("Failed to create server", applog.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		caches.Stop()
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err.Error())
			}
		}
	})

	logger.Info("Starting fiscora server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.DataBackend,
		"events", res.Events != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully", "requests", srv.Metrics().TotalRequests)
}
