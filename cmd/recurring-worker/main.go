package main

import (
	"context"
	"os"
	"time"

	"spendwise/internal/backend"
	"spendwise/internal/cli"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentRecurring)
	logger.Info("Starting recurring-worker")

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	if backendConfig.Type == backend.MemoryBackend {
		logger.Warn("Memory backend is not shared with the API server, generated expenses stay in this process")
	}
	// The worker only needs the store; reports and notifications are the server's.
	backendConfig.AMQPURL = ""
	backendConfig.GoogleSpreadsheetID = ""

	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	processor := services.NewRecurringProcessor(res.Store, nil, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		logger.Info("Shutting down recurring-worker...")
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	})

	processingInterval := cfg.RecurringInterval
	logger.Info("Recurring expense processor configured",
		"interval", processingInterval,
		"backend", cfg.DataBackend)

	process := func(now time.Time) {
		count, err := processor.ProcessDue(ctx, now)
		if err != nil {
			logger.Error("Recurring processing failed", "error", err)
			return
		}
		logger.Info("Recurring processing complete",
			"expenses_created", count,
			"next_check", now.Add(processingInterval).Format("15:04:05"))
	}

	// Catch up on startup before waiting for the first tick.
	process(time.Now())

	ticker := time.NewTicker(processingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cli.WaitForShutdown(ctx, done)
			return
		case now := <-ticker.C:
			process(now)
		}
	}
}
