package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"habitlog/internal/amqp"
	"habitlog/internal/backend"
	"habitlog/internal/config"
	"habitlog/internal/gist"
	applog "habitlog/internal/log"
	"habitlog/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting habitlog-worker")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Configuration load failed", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if cfg.GistID == "" {
		logger.Error("GIST_ID is required for the sync worker")
		os.Exit(1)
	}

	// The worker reads the same store the web server writes.
	res, err := backend.Build(cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	}()

	gistClient := gist.NewClient(cfg.GistAPIURL, cfg.GistID, cfg.GistToken)
	syncWorker := worker.NewSyncWorker(res.Store, gistClient, cfg.DailyFile, cfg.WeeklyFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	// On startup, mirror both collections to cover anything missed while
	// the worker was down.
	logger.Info("Performing startup sync...")
	if err := syncWorker.SyncAll(ctx); err != nil {
		logger.Error("Startup sync failed", "error", err)
		// Don't exit - the consumer and periodic resync still run.
	}

	// Consume sync messages when AMQP is configured.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			if err := amqpClient.ConsumeCollectionSync(ctx, syncWorker.HandleSyncMessage); err != nil {
				if err != context.Canceled {
					logger.Error("Message consumption failed", "error", err)
				}
				cancel()
			}
		}()
		logger.Info("Consuming sync messages", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - relying on periodic sync only")
	}

	// Periodic resync for any missed messages.
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	logger.Info("Worker running", "sync_interval", cfg.SyncInterval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker stopped gracefully")
			return
		case <-ticker.C:
			if err := syncWorker.SyncAll(ctx); err != nil {
				logger.Error("Periodic sync failed", "error", err)
			}
		}
	}
}
