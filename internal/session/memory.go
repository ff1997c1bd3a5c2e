package session

import (
	"context"
	"sync"

	"github.com/najubudeen/vanturalog/internal/domain"
)

// MemoryStore holds a single session in memory. It backs tests and the
// standalone sync worker, which has no cookie jar to write to.
type MemoryStore struct {
	mu   sync.Mutex
	data *Data
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Get(_ context.Context) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, domain.ErrNotFound
	}
	cp := *s.data
	return &cp, nil
}

func (s *MemoryStore) Set(_ context.Context, d *Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.data = &cp
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}
