package file

import (
	"context"
	"path/filepath"
	"testing"

	"rapbattle-quiz-service/internal/domain"
)

func TestStatsStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats", "quiz.json")
	store := NewStatsStore(path)
	ctx := context.Background()

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("expected missing file to read as empty slot, ok=%v err=%v", ok, err)
	}

	snapshot := domain.Snapshot{
		UserStats: domain.UserStats{
			TotalPoints:    35,
			TotalAnswers:   3,
			UnlockedBadges: []string{"first_quiz"},
		},
		AnswerHistory: []domain.Result{
			{
				QuestionID:      "battle_1",
				Category:        domain.CategoryBattles,
				UserAnswer:      domain.AnswerIndex(0),
				IsCorrect:       true,
				PointsEarned:    10,
				TimeSpentMillis: 4200,
			},
			{
				QuestionID:      "history_1",
				Category:        domain.CategoryHistory,
				UserAnswer:      domain.NoAnswer(),
				IsCorrect:       false,
				TimeSpentMillis: 30000,
			},
		},
	}
	if err := store.Save(ctx, snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded.UserStats.TotalPoints != 35 || len(loaded.AnswerHistory) != 2 {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}
	if loaded.AnswerHistory[1].UserAnswer.Answered() {
		t.Fatalf("no-answer sentinel must survive the round trip")
	}
	if index, ok := loaded.AnswerHistory[0].UserAnswer.Index(); !ok || index != 0 {
		t.Fatalf("answer index must survive the round trip, got %+v", loaded.AnswerHistory[0].UserAnswer)
	}
}
