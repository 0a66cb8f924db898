package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"habitlog/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the transactional backend behind the same Load/Save
// contract as FileStore. Records live in one table keyed by collection and
// date, with the field mapping stored as a JSON blob so the store stays
// schema-agnostic.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, c core.Collection) (map[string]core.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, fields FROM records WHERE collection = ?`, string(c))
	if err != nil {
		return nil, fmt.Errorf("query %s records: %w", c, err)
	}
	defer rows.Close()

	data := map[string]core.Record{}
	for rows.Next() {
		var date, fields string
		if err := rows.Scan(&date, &fields); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		rec := core.Record{}
		if err := json.Unmarshal([]byte(fields), &rec); err != nil {
			// Same policy as the file backend: unreadable content is
			// dropped with a warning rather than failing the load.
			slog.WarnContext(ctx, "Record blob is malformed, skipping",
				"collection", string(c),
				"date", date,
				"error", err)
			continue
		}
		data[date] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s records: %w", c, err)
	}
	return data, nil
}

// Save replaces the whole collection in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, c core.Collection, data map[string]core.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ?`, string(c)); err != nil {
		return fmt.Errorf("clear %s records: %w", c, err)
	}

	for date, rec := range data {
		blob, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", date, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (collection, date, fields) VALUES (?, ?, ?)`,
			string(c), date, string(blob)); err != nil {
			return fmt.Errorf("insert record %s: %w", date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}

	slog.DebugContext(ctx, "Collection saved to SQLite",
		"collection", string(c),
		"records", len(data))
	return nil
}
