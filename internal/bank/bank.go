// Package bank validates question catalogs and selects session subsets.
package bank

import (
	"fmt"
	"math/rand"

	"rapbattle-quiz-service/internal/domain"
)

// Filter narrows subset selection. Zero values match everything.
type Filter struct {
	Category   domain.Category
	Difficulty domain.Difficulty
}

func (f Filter) matches(q domain.Question) bool {
	if f.Category != "" && q.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	return true
}

// Validate checks every question's answer key at load time. A question
// whose CorrectAnswer does not index its options is a configuration
// error; the service must refuse to start rather than let it reach a
// session.
func Validate(catalog domain.Catalog) error {
	seen := make(map[string]struct{}, len(catalog.Questions))
	for _, q := range catalog.Questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question with empty id", domain.ErrInvalidQuestion)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", domain.ErrInvalidQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.Points <= 0 {
			return fmt.Errorf("%w: question %q has non-positive points", domain.ErrInvalidQuestion, q.ID)
		}
		count := q.OptionCount()
		if count == 0 {
			return fmt.Errorf("%w: question %q has no options", domain.ErrInvalidQuestion, q.ID)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= count {
			return fmt.Errorf("%w: question %q answer index %d out of range [0,%d)",
				domain.ErrInvalidQuestion, q.ID, q.CorrectAnswer, count)
		}
	}
	return nil
}

// SelectSubset filters the catalog, shuffles the matches with the
// injected random source and returns the first min(count, matches)
// questions. Fewer matches than requested is not an error; the caller
// gets whatever is available, possibly nothing.
func SelectSubset(rnd *rand.Rand, questions []domain.Question, filter Filter, count int) []domain.Question {
	filtered := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if filter.matches(q) {
			filtered = append(filtered, q)
		}
	}

	rnd.Shuffle(len(filtered), func(i, j int) {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	})

	if count < 0 {
		count = 0
	}
	if count > len(filtered) {
		count = len(filtered)
	}
	return filtered[:count]
}
