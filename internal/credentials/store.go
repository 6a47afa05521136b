package credentials

import (
	"context"
	"sync"

	"github.com/smallbiznis/inviteportal/internal/clock"
)

// OverrideStore holds the runtime override shared by every request.
type OverrideStore interface {
	Loader
	Apply(ctx context.Context, p Patch) (Override, error)
	Clear(ctx context.Context) error
}

// MemoryStore keeps the override in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	current Override
	clock   clock.Clock
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{clock: clock.System}
}

func (s *MemoryStore) Load(context.Context) (Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *MemoryStore) Apply(_ context.Context, p Patch) (Override, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.current.Merge(p)
	s.current.UpdatedAt = s.clock.Now().UTC()
	return s.current, nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Override{}
	return nil
}
