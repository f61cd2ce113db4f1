package knowledge

import (
	"context"
	"sync"
	"time"

	"odyssey/pkg/platform/sentinel"
)

// InMemoryStore backs unit tests and single-process deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

func (s *InMemoryStore) Upsert(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	s.records[record.Key] = record
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[key]; ok {
		return record, nil
	}
	return Record{}, sentinel.ErrNotFound
}
