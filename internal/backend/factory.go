package backend

import (
	"fmt"
	"log/slog"

	"habitlog/internal/amqp"
	"habitlog/internal/config"
	"habitlog/internal/store"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the record store and its optional companions.
type Result struct {
	Store   store.Store
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Build creates the record store named by cfg.DataBackend plus the optional
// AMQP client that broadcasts collection changes. AMQP failures downgrade to
// a warning so the app still serves without the sync pipeline.
func Build(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := &Result{}

	switch cfg.DataBackend {
	case config.BackendFile:
		res.Store = store.NewFileStoreWithNames(cfg.DataDir, cfg.DailyFile, cfg.WeeklyFile)
		logger.Info("Initialized file backend",
			"data_dir", cfg.DataDir,
			"daily_file", cfg.DailyFile,
			"weekly_file", cfg.WeeklyFile)

	case config.BackendSQLite:
		s, err := store.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		res.Store = s
		res.Cleanup = s.Close
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	case config.BackendMemory:
		res.Store = store.NewMemoryStore()
		logger.Info("Initialized memory backend")

	default:
		return nil, fmt.Errorf("invalid data backend: %s", cfg.DataBackend)
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			res.AMQP = client
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	return res, nil
}

// Close tears down everything the factory created.
func (r *Result) Close() error {
	var firstErr error
	if r.AMQP != nil {
		if err := r.AMQP.Close(); err != nil {
			firstErr = err
		}
	}
	if r.Cleanup != nil {
		if err := r.Cleanup(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
