package constitution

import (
	"context"
	"sync"
	"time"

	"odyssey/pkg/platform/sentinel"
)

// InMemoryStore keeps the initial implementation lightweight and testable. It
// intentionally favors clarity over performance.
type InMemoryStore struct {
	mu    sync.RWMutex
	state *State
}

// NewInMemoryStore starts with the sovereignty flag active.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{state: &State{
		Category:    CategoryGovernance,
		Subcategory: SubcategorySovereignty,
		Status:      StatusSovereignActive,
		UpdatedAt:   time.Now(),
	}}
}

func (s *InMemoryStore) Fetch(_ context.Context) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return State{}, sentinel.ErrNotFound
	}
	return *s.state, nil
}

func (s *InMemoryStore) Set(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}
	s.state = &state
	return nil
}

// Clear removes the stored state so tests can exercise the not-found path.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
}
