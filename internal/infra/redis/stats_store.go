package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rapbattle-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// StatsStore keeps one user's stats blob under a single Redis key,
// mirroring the single key-value slot the progression store owns. The
// key is fixed at construction: one store instance per user.
type StatsStore struct {
	client *redis.Client
	key    string
}

func NewStatsStore(client *redis.Client, userKey string) *StatsStore {
	return &StatsStore{
		client: client,
		key:    "quiz:stats:" + userKey,
	}
}

func (s *StatsStore) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("load stats blob: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("decode stats blob: %w", err)
	}
	return snapshot, true, nil
}

func (s *StatsStore) Save(ctx context.Context, snapshot domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode stats blob: %w", err)
	}
	// Stats never expire; the blob is durable user state.
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save stats blob: %w", err)
	}
	return nil
}
