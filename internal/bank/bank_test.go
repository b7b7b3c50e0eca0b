package bank

import (
	"errors"
	"math/rand"
	"testing"

	"rapbattle-quiz-service/internal/domain"
)

func TestValidateRejectsOutOfRangeAnswer(t *testing.T) {
	catalog := domain.Catalog{ID: "bank-1", Questions: []domain.Question{
		{
			ID:            "q1",
			Kind:          domain.KindMultipleChoice,
			Category:      domain.CategoryBattles,
			Difficulty:    domain.DifficultyEasy,
			Prompt:        "Pick one",
			Options:       []string{"a", "b"},
			CorrectAnswer: 2,
			Points:        10,
		},
	}}

	err := Validate(catalog)
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion, got %v", err)
	}
}

func TestValidateTrueFalsePinnedToTwoOptions(t *testing.T) {
	q := domain.Question{
		ID:            "tf1",
		Kind:          domain.KindTrueFalse,
		Category:      domain.CategoryHistory,
		Difficulty:    domain.DifficultyEasy,
		Prompt:        "Vrai ou faux ?",
		CorrectAnswer: 1,
		Points:        10,
	}
	if err := Validate(domain.Catalog{ID: "b", Questions: []domain.Question{q}}); err != nil {
		t.Fatalf("true-false with index 1 should validate: %v", err)
	}

	q.CorrectAnswer = 2
	err := Validate(domain.Catalog{ID: "b", Questions: []domain.Question{q}})
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion for index 2, got %v", err)
	}
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	q := domain.Question{
		ID:            "q1",
		Kind:          domain.KindTrueFalse,
		Category:      domain.CategoryBattles,
		Difficulty:    domain.DifficultyEasy,
		Prompt:        "p",
		CorrectAnswer: 0,
		Points:        5,
	}
	err := Validate(domain.Catalog{ID: "b", Questions: []domain.Question{q, q}})
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected duplicate id rejection, got %v", err)
	}
}

func TestSelectSubsetUnderflowReturnsAllMatches(t *testing.T) {
	questions := battleQuestions(4)
	rnd := rand.New(rand.NewSource(1))

	subset := SelectSubset(rnd, questions, Filter{Category: domain.CategoryBattles}, 5)
	if len(subset) != 4 {
		t.Fatalf("expected 4 questions when only 4 match, got %d", len(subset))
	}
}

func TestSelectSubsetFiltersByCategoryAndDifficulty(t *testing.T) {
	questions := append(battleQuestions(3), domain.Question{
		ID:            "lyr1",
		Kind:          domain.KindMultipleChoice,
		Category:      domain.CategoryLyrics,
		Difficulty:    domain.DifficultyHard,
		Prompt:        "p",
		Options:       []string{"a", "b"},
		CorrectAnswer: 0,
		Points:        20,
	})
	rnd := rand.New(rand.NewSource(1))

	subset := SelectSubset(rnd, questions, Filter{Category: domain.CategoryLyrics, Difficulty: domain.DifficultyHard}, 10)
	if len(subset) != 1 || subset[0].ID != "lyr1" {
		t.Fatalf("expected only lyr1, got %+v", subset)
	}

	// No filter matches everything.
	all := SelectSubset(rnd, questions, Filter{}, 10)
	if len(all) != 4 {
		t.Fatalf("expected all 4 with empty filter, got %d", len(all))
	}
}

func TestSelectSubsetEmptyMatchIsNotAnError(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	subset := SelectSubset(rnd, battleQuestions(2), Filter{Category: domain.CategoryArtists}, 3)
	if len(subset) != 0 {
		t.Fatalf("expected empty subset, got %d", len(subset))
	}
}

func TestSelectSubsetDeterministicWithSeed(t *testing.T) {
	questions := battleQuestions(8)

	first := SelectSubset(rand.New(rand.NewSource(42)), questions, Filter{}, 5)
	second := SelectSubset(rand.New(rand.NewSource(42)), questions, Filter{}, 5)

	if len(first) != 5 || len(second) != 5 {
		t.Fatalf("expected 5 questions, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("same seed produced different order at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func battleQuestions(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			ID:            "battle_" + string(rune('a'+i)),
			Kind:          domain.KindMultipleChoice,
			Category:      domain.CategoryBattles,
			Difficulty:    domain.DifficultyEasy,
			Prompt:        "p",
			Options:       []string{"x", "y"},
			CorrectAnswer: 0,
			Points:        10,
		})
	}
	return questions
}
