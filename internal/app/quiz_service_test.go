package app_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"rapbattle-quiz-service/internal/app"
	"rapbattle-quiz-service/internal/bank"
	"rapbattle-quiz-service/internal/domain"
	"rapbattle-quiz-service/internal/infra/memory"
)

func TestStartSessionSelectsFilteredSubset(t *testing.T) {
	service := newTestService()

	session, err := service.StartSession(context.Background(), "hiphop", bank.Filter{Category: domain.CategoryBattles}, 5)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	// 4 battle questions in the catalog, 5 requested: underflow is fine.
	_, total := session.Progress()
	if total != 4 {
		t.Fatalf("expected 4 presented questions, got %d", total)
	}
	current, ok := session.Current()
	if !ok || current.Category != domain.CategoryBattles {
		t.Fatalf("expected a battles question, got %+v", current)
	}
}

func TestStartSessionUnknownBank(t *testing.T) {
	service := newTestService()
	_, err := service.StartSession(context.Background(), "missing", bank.Filter{}, 5)
	if !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

func TestStartSessionNoMatchesCompletesImmediately(t *testing.T) {
	service := newTestService()
	session, err := service.StartSession(context.Background(), "hiphop", bank.Filter{Category: domain.CategoryLyrics, Difficulty: domain.DifficultyEasy}, 5)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if !session.Completed() {
		t.Fatalf("expected an immediately complete session for an empty subset")
	}
}

func newTestService() *app.QuizService {
	catalog := domain.Catalog{ID: "hiphop"}
	for i := 0; i < 4; i++ {
		catalog.Questions = append(catalog.Questions, domain.Question{
			ID:            "battle_" + string(rune('1'+i)),
			Kind:          domain.KindMultipleChoice,
			Category:      domain.CategoryBattles,
			Difficulty:    domain.DifficultyEasy,
			Prompt:        "Choisissez",
			Options:       []string{"a", "b"},
			CorrectAnswer: 0,
			Points:        10,
		})
	}
	catalog.Questions = append(catalog.Questions, domain.Question{
		ID:            "lyrics_1",
		Kind:          domain.KindMultipleChoice,
		Category:      domain.CategoryLyrics,
		Difficulty:    domain.DifficultyHard,
		Prompt:        "Qui a rappé ... ?",
		Options:       []string{"a", "b"},
		CorrectAnswer: 1,
		Points:        20,
	})

	repo := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(map[string]domain.Catalog{
		"hiphop": catalog,
	}), 5*time.Minute)
	return app.NewQuizServiceWithRand(repo, rand.New(rand.NewSource(7)))
}
