package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/analytics"
	"spendwise/internal/auth"
	"spendwise/internal/backend"
	"spendwise/internal/cache"
	"spendwise/internal/cli"
	apphttp "spendwise/internal/http"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

const (
	shutdownTimeout    = 30 * time.Second
	trendCacheSize     = 1000
	cacheSweepInterval = time.Minute
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	tokens := auth.NewIssuer(cfg.SecretKey, cfg.TokenTTL, cfg.ResetTokenTTL)
	trends := cache.NewLRUCache[[]analytics.MonthlySummary](trendCacheSize, cfg.TrendCacheTTL)

	reports := services.NewReportService(res.Store, time.Now, trends, res.Reports, logger)
	deps := apphttp.Deps{
		Accounts: services.NewAccountService(res.Store, tokens, res.Notifier, services.AccountConfig{
			ResetBaseURL: cfg.ResetBaseURL,
			Admins:       cfg.AdminUsernames,
		}, logger),
		Ledger:     services.NewLedgerService(res.Store, time.Now, reports, logger),
		Reports:    reports,
		Admin:      services.NewAdminService(res.Store, logger),
		Health:     res.Store,
		TrendCache: trends,
	}
	srv := apphttp.NewServer(":"+cfg.Port, deps, apphttp.Config{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		AllowedOrigin:      cfg.CORSAllowedOrigin,
	}, logger)

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(trends)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting spendwise server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp_enabled", cfg.AMQPEnabled(),
			"sheets_enabled", cfg.SheetsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cacheManager.Run(gctx, cacheSweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		return nil
	})

	err = g.Wait()
	if cerr := res.Cleanup(); cerr != nil {
		logger.Error("Backend cleanup failed", "error", cerr)
	}
	if err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
