package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"habitlog/internal/core"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "habitlog.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	data := map[string]core.Record{
		"2023-03-22": {"weight": 70.5, "workout": true},
		"2023-03-23": {"notes": "rest day"},
	}
	if err := s.Save(ctx, core.Daily, data); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, core.Daily)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, data) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, data)
	}
}

func TestSQLiteStoreNeverWrittenIsEmpty(t *testing.T) {
	s := newTestSQLiteStore(t)
	got, err := s.Load(context.Background(), core.Weekly)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty mapping, got %#v", got)
	}
}

func TestSQLiteStoreSaveReplacesWholeCollection(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, core.Weekly, map[string]core.Record{
		"2023-03-13": {"waist": 81.0},
		"2023-03-20": {"waist": 80.5},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, core.Weekly, map[string]core.Record{
		"2023-03-20": {"waist": 80.5},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := s.Load(ctx, core.Weekly)
	if len(got) != 1 {
		t.Fatalf("expected 1 record after replacement, got %d", len(got))
	}
	if _, ok := got["2023-03-13"]; ok {
		t.Fatal("omitted key survived save")
	}
}

func TestSQLiteStoreCollectionsAreIndependent(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, core.Daily, map[string]core.Record{"2023-03-22": {"weight": 70.5}}); err != nil {
		t.Fatalf("save daily: %v", err)
	}
	if err := s.Save(ctx, core.Weekly, map[string]core.Record{"2023-03-20": {"waist": 80.0}}); err != nil {
		t.Fatalf("save weekly: %v", err)
	}
	daily, _ := s.Load(ctx, core.Daily)
	weekly, _ := s.Load(ctx, core.Weekly)
	if len(daily) != 1 || len(weekly) != 1 {
		t.Fatalf("collections bled into each other: daily=%d weekly=%d", len(daily), len(weekly))
	}
}
