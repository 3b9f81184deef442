package period

import (
	"context"
	"sync"

	"pubcred/pkg/platform/sentinel"
)

// InMemoryStore keeps periods in a map. Used by tests and dev mode.
type InMemoryStore struct {
	mu      sync.RWMutex
	periods map[int]Period
}

// NewInMemoryStore creates an empty in-memory period store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{periods: make(map[int]Period)}
}

func (s *InMemoryStore) FindByYear(ctx context.Context, year int) (*Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.periods[year]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (s *InMemoryStore) Save(ctx context.Context, p *Period) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods[p.Year] = *p
	return nil
}
