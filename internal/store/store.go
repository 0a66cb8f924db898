package store

import (
	"context"

	"habitlog/internal/core"
)

// Store is whole-collection persistence for the two record collections.
// Save replaces the persisted collection with exactly the given mapping;
// a key omitted from the mapping is gone after Save. Implementations keep
// no state between calls: the backing storage is the single source of truth.
type Store interface {
	Load(ctx context.Context, c core.Collection) (map[string]core.Record, error)
	Save(ctx context.Context, c core.Collection, data map[string]core.Record) error
}

// Convenience wrappers binding Load/Save to the two fixed collections.
// They carry no behavior of their own.

func LoadDaily(ctx context.Context, s Store) (map[string]core.Record, error) {
	return s.Load(ctx, core.Daily)
}

func SaveDaily(ctx context.Context, s Store, data map[string]core.Record) error {
	return s.Save(ctx, core.Daily, data)
}

func LoadWeekly(ctx context.Context, s Store) (map[string]core.Record, error) {
	return s.Load(ctx, core.Weekly)
}

func SaveWeekly(ctx context.Context, s Store, data map[string]core.Record) error {
	return s.Save(ctx, core.Weekly, data)
}
