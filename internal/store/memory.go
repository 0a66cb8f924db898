package store

import (
	"context"
	"sync"

	"habitlog/internal/core"
)

// MemoryStore keeps both collections in process memory. It backs tests and
// throwaway dev runs; nothing survives a restart.
type MemoryStore struct {
	mu   sync.Mutex
	data map[core.Collection]map[string]core.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[core.Collection]map[string]core.Record{}}
}

func (s *MemoryStore) Load(_ context.Context, c core.Collection) (map[string]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCollection(s.data[c]), nil
}

func (s *MemoryStore) Save(_ context.Context, c core.Collection, data map[string]core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[c] = cloneCollection(data)
	return nil
}

// cloneCollection copies the mapping and its records so callers never share
// mutable state with the store.
func cloneCollection(in map[string]core.Record) map[string]core.Record {
	out := make(map[string]core.Record, len(in))
	for k, rec := range in {
		out[k] = rec.Clone()
	}
	return out
}
