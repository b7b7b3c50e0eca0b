package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"rapbattle-quiz-service/internal/bank"
	"rapbattle-quiz-service/internal/domain"
)

// CatalogRepository loads question catalogs (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, bankID string) (domain.Catalog, error)
}

// QuizService builds quiz sessions from the question bank. Sessions
// themselves are single-owner and caller-driven; the service only owns
// catalog access and the shared random source used for selection.
type QuizService struct {
	catalogs CatalogRepository

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizService(catalogs CatalogRepository) *QuizService {
	return NewQuizServiceWithRand(catalogs, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewQuizServiceWithRand allows a seeded source for deterministic
// selection in tests.
func NewQuizServiceWithRand(catalogs CatalogRepository, rnd *rand.Rand) *QuizService {
	return &QuizService{catalogs: catalogs, rnd: rnd}
}

// StartSession selects up to count questions matching the filter and
// starts a session over them. Fewer matches than requested is not an
// error; zero matches yields an immediately complete session.
func (s *QuizService) StartSession(ctx context.Context, bankID string, filter bank.Filter, count int) (*Session, error) {
	catalog, err := s.catalogs.GetCatalog(ctx, bankID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	subset := bank.SelectSubset(s.rnd, catalog.Questions, filter, count)
	s.mu.Unlock()

	return NewSession(subset), nil
}
