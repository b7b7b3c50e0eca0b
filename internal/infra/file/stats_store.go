// Package file persists the stats blob to a single JSON file, for
// deployments that run without redis.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"rapbattle-quiz-service/internal/domain"
)

// StatsStore reads and writes one snapshot per file.
type StatsStore struct {
	path string
	mu   sync.Mutex
}

func NewStatsStore(path string) *StatsStore {
	return &StatsStore{path: path}
}

func (s *StatsStore) Load(_ context.Context) (domain.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("read stats file: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("decode stats file: %w", err)
	}
	return snapshot, true, nil
}

// Save writes through a temp file and renames so a crash mid-write
// cannot leave a truncated blob behind.
func (s *StatsStore) Save(_ context.Context, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create stats dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write stats file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace stats file: %w", err)
	}
	return nil
}
