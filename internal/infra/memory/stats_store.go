package memory

import (
	"context"
	"sync"

	"rapbattle-quiz-service/internal/domain"
)

// StatsStore holds one user's stats blob in memory. It is the dev and
// test stand-in for the durable key-value slot.
type StatsStore struct {
	mu       sync.RWMutex
	snapshot domain.Snapshot
	present  bool
}

func NewStatsStore() *StatsStore {
	return &StatsStore{}
}

func (s *StatsStore) Load(_ context.Context) (domain.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.present, nil
}

func (s *StatsStore) Save(_ context.Context, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	s.present = true
	return nil
}
