package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"rapbattle-quiz-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		CatalogLoader: NewStaticCatalogLoader(map[string]domain.Catalog{
			"hiphop": sampleCatalog(),
		}),
	}
	repo := NewCatalogRepository(loader, time.Minute)

	if _, err := repo.GetCatalog(context.Background(), "hiphop"); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetCatalog(context.Background(), "hiphop"); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryRejectsInvalidCatalog(t *testing.T) {
	broken := sampleCatalog()
	broken.Questions[0].CorrectAnswer = 99
	repo := NewCatalogRepository(NewStaticCatalogLoader(map[string]domain.Catalog{
		"hiphop": broken,
	}), time.Minute)

	_, err := repo.GetCatalog(context.Background(), "hiphop")
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCatalogRepositoryUnknownBank(t *testing.T) {
	repo := NewCatalogRepository(NewStaticCatalogLoader(nil), time.Minute)
	_, err := repo.GetCatalog(context.Background(), "missing")
	if !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, bankID string) (domain.Catalog, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx, bankID)
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		ID: "hiphop",
		Questions: []domain.Question{
			{
				ID:            "battle_1",
				Kind:          domain.KindMultipleChoice,
				Category:      domain.CategoryBattles,
				Difficulty:    domain.DifficultyEasy,
				Prompt:        "Quelle battle est la plus légendaire ?",
				Options:       []string{"Nas vs Jay-Z", "Drake vs Kendrick"},
				CorrectAnswer: 0,
				Explanation:   "Ether a marqué l'histoire.",
				Points:        10,
			},
		},
	}
}
