package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"habitlog/internal/core"
)

// Default collection filenames under the data directory.
const (
	DefaultDailyFile  = "daily_data.json"
	DefaultWeeklyFile = "weekly_data.json"
)

// FileStore persists each collection as a single human-diffable JSON file
// keyed by ISO date. Reads are fresh from disk, writes replace the whole
// file through a temp-file rename, so the files on disk are the sole owner
// of collection state.
type FileStore struct {
	dir   string
	files map[core.Collection]string
	mu    sync.RWMutex
}

func NewFileStore(dir string) *FileStore {
	return NewFileStoreWithNames(dir, DefaultDailyFile, DefaultWeeklyFile)
}

func NewFileStoreWithNames(dir, dailyFile, weeklyFile string) *FileStore {
	return &FileStore{
		dir: dir,
		files: map[core.Collection]string{
			core.Daily:  dailyFile,
			core.Weekly: weeklyFile,
		},
	}
}

// EnsureReady creates the data directory if it is absent. Calling it when
// the directory already exists is a no-op; permission and path errors
// propagate.
func (s *FileStore) EnsureReady() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory %s: %w", s.dir, err)
	}
	return nil
}

func (s *FileStore) path(c core.Collection) (string, error) {
	name, ok := s.files[c]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", c)
	}
	return filepath.Join(s.dir, name), nil
}

// Load returns the full persisted mapping for the collection. A missing
// file is a brand-new collection, not an error. A file that no longer
// parses resets the collection to empty: the UI must never crash on a
// corrupt data file, so the loss is logged and swallowed here.
func (s *FileStore) Load(ctx context.Context, c core.Collection) (map[string]core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.path(c)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]core.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	data := map[string]core.Record{}
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.WarnContext(ctx, "Collection file is malformed, treating as empty",
			"collection", string(c),
			"path", path,
			"error", err)
		return map[string]core.Record{}, nil
	}
	return data, nil
}

// Save serializes the whole mapping and replaces the collection file. The
// write goes through a temp file and rename so a crash leaves either the
// previous or the new content, never a torn file.
func (s *FileStore) Save(ctx context.Context, c core.Collection, data map[string]core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(c)
	if err != nil {
		return err
	}
	if err := s.EnsureReady(); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s collection: %w", c, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}

	slog.DebugContext(ctx, "Collection saved",
		"collection", string(c),
		"records", len(data),
		"path", path)
	return nil
}
