// Package progress folds completed quiz results into durable user
// statistics: counters, best streak, badges and derived views.
package progress

import (
	"context"
	"fmt"
	"math"
	"sync"

	"rapbattle-quiz-service/internal/domain"
)

// StatsStore is the single key-value slot the tracker persists its
// snapshot to after every mutation.
type StatsStore interface {
	Load(ctx context.Context) (domain.Snapshot, bool, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
}

// Tracker owns one user's stats. All mutation goes through its
// operations; every mutating operation persists before returning. A
// failed write keeps the in-memory effect for the process lifetime and
// surfaces domain.ErrStatsPersist so the caller can warn the user.
type Tracker struct {
	store StatsStore

	mu            sync.Mutex
	stats         domain.UserStats
	history       []domain.Result
	sessionStreak int
}

// NewTracker loads the persisted snapshot, starting from the zero
// state when the slot is empty.
func NewTracker(ctx context.Context, store StatsStore) (*Tracker, error) {
	snapshot, ok, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load quiz stats: %w", err)
	}
	t := &Tracker{store: store}
	if ok {
		t.stats = snapshot.UserStats
		t.history = snapshot.AnswerHistory
	}
	return t, nil
}

// RecordAnswer folds one revealed result into the stats and returns
// any badges it newly unlocked.
func (t *Tracker) RecordAnswer(ctx context.Context, result domain.Result) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = append(t.history, result)
	t.stats.TotalAnswers++
	if result.IsCorrect {
		t.stats.TotalCorrectAnswers++
		t.stats.TotalPoints += result.PointsEarned
		t.sessionStreak++
		if t.sessionStreak > t.stats.BestStreak {
			t.stats.BestStreak = t.sessionStreak
		}
	} else {
		t.sessionStreak = 0
	}

	unlocked := t.unlockLocked(earnedAfterAnswer(t.stats, t.history, result, t.sessionStreak))
	return unlocked, t.persistLocked(ctx)
}

// CompleteSession folds session-level stats for a fully played quiz.
// The average answer time uses a weighted average-of-
// per-session-averages fold, not a true mean over all answers. An
// empty result list still counts the quiz but skips the average fold,
// so the counted-but-unfolded session dilutes the weight of the next
// session's average.
func (t *Tracker) CompleteSession(ctx context.Context, results []domain.Result) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.TotalQuizzesCompleted++
	if len(results) > 0 {
		var total int64
		for _, r := range results {
			total += r.TimeSpentMillis
		}
		sessionAvg := float64(total) / float64(len(results))
		n := float64(t.stats.TotalQuizzesCompleted)
		t.stats.AverageAnswerTimeMillis = (t.stats.AverageAnswerTimeMillis*(n-1) + sessionAvg) / n
	}

	unlocked := t.unlockLocked(earnedAfterSession(t.stats, results))

	// Streaks are session-scoped; only the high-water mark survives.
	t.sessionStreak = 0

	return unlocked, t.persistLocked(ctx)
}

// unlockLocked filters already-earned ids and records the rest.
func (t *Tracker) unlockLocked(earned []string) []string {
	var unlocked []string
	for _, id := range earned {
		if t.stats.HasBadge(id) {
			continue
		}
		t.stats.UnlockedBadges = append(t.stats.UnlockedBadges, id)
		unlocked = append(unlocked, id)
	}
	return unlocked
}

func (t *Tracker) persistLocked(ctx context.Context) error {
	snapshot := domain.Snapshot{
		UserStats:     t.stats,
		AnswerHistory: t.history,
	}
	if err := t.store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStatsPersist, err)
	}
	return nil
}

// Reset overwrites the stats with the zero state, clears the history
// and persists immediately. Calling it twice is the same as once.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats = domain.UserStats{}
	t.history = nil
	t.sessionStreak = 0
	return t.persistLocked(ctx)
}

// Stats returns a copy of the current stats.
func (t *Tracker) Stats() domain.UserStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := t.stats
	stats.UnlockedBadges = append([]string(nil), t.stats.UnlockedBadges...)
	return stats
}

// Streak is the tracker's view of the in-progress session streak.
func (t *Tracker) Streak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionStreak
}

// Level derives the progression tier from the point total.
func (t *Tracker) Level() domain.Level {
	t.mu.Lock()
	defer t.mu.Unlock()
	return LevelForPoints(t.stats.TotalPoints)
}

// SuccessRate is the rounded percentage of correct answers, 0 before
// any answer has been recorded.
func (t *Tracker) SuccessRate() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stats.TotalAnswers == 0 {
		return 0
	}
	return int(math.Round(100 * float64(t.stats.TotalCorrectAnswers) / float64(t.stats.TotalAnswers)))
}
