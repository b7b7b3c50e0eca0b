package domain

import "encoding/json"

// QuestionKind discriminates how a question is presented and scored.
// Only multiple-choice and true-false have scoring behavior today;
// complete-lyrics and chronology entries are stored as option lists
// and scored the same way when options are present.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple-choice"
	KindTrueFalse      QuestionKind = "true-false"
	KindCompleteLyrics QuestionKind = "complete-lyrics"
	KindChronology     QuestionKind = "chronology"
)

// Category tags a question with its catalog theme.
type Category string

const (
	CategoryBattles Category = "battles"
	CategoryLyrics  Category = "lyrics"
	CategoryHistory Category = "history"
	CategoryArtists Category = "artists"
)

// Difficulty is the question's declared difficulty tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// TrueFalseOptionCount pins true-false questions to a 2-option choice
// (index 0 = "Vrai", index 1 = "Faux").
const TrueFalseOptionCount = 2

// Question is an immutable catalog entry. CorrectAnswer is a zero-based
// index into Options (or into the fixed Vrai/Faux pair for true-false).
type Question struct {
	ID            string       `json:"id"`
	Kind          QuestionKind `json:"kind"`
	Category      Category     `json:"category"`
	Difficulty    Difficulty   `json:"difficulty"`
	Prompt        string       `json:"prompt"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer int          `json:"correctAnswer"`
	Explanation   string       `json:"explanation"`
	Points        int          `json:"points"`
	BattleID      string       `json:"battleId,omitempty"`
}

// OptionCount returns how many answer indexes are valid for the question.
func (q Question) OptionCount() int {
	if q.Kind == KindTrueFalse {
		return TrueFalseOptionCount
	}
	return len(q.Options)
}

// Answer is either a selected option index or the no-answer sentinel
// recorded when the question deadline elapses.
type Answer struct {
	index    int
	answered bool
}

// AnswerIndex wraps a selected option index.
func AnswerIndex(i int) Answer {
	return Answer{index: i, answered: true}
}

// NoAnswer is the timeout sentinel.
func NoAnswer() Answer {
	return Answer{}
}

// Index returns the selected index and whether one was selected.
func (a Answer) Index() (int, bool) {
	return a.index, a.answered
}

// Answered reports whether an option was selected before the deadline.
func (a Answer) Answered() bool {
	return a.answered
}

// MarshalJSON encodes the sentinel as JSON null, a selection as its index.
func (a Answer) MarshalJSON() ([]byte, error) {
	if !a.answered {
		return []byte("null"), nil
	}
	return json.Marshal(a.index)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Answer{}
		return nil
	}
	var index int
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	*a = AnswerIndex(index)
	return nil
}

// Result captures the outcome of one presented question. Category is
// carried so progression predicates never have to re-resolve the
// question from the catalog.
type Result struct {
	QuestionID      string   `json:"questionId"`
	Category        Category `json:"category"`
	UserAnswer      Answer   `json:"userAnswer"`
	IsCorrect       bool     `json:"isCorrect"`
	PointsEarned    int      `json:"pointsEarned"`
	TimeSpentMillis int64    `json:"timeSpentMillis"`
}

// UserStats is the durable per-user statistics record.
type UserStats struct {
	TotalQuizzesCompleted   int      `json:"totalQuizzesCompleted"`
	TotalPoints             int      `json:"totalPoints"`
	TotalCorrectAnswers     int      `json:"totalCorrectAnswers"`
	TotalAnswers            int      `json:"totalAnswers"`
	BestStreak              int      `json:"bestStreak"`
	UnlockedBadges          []string `json:"unlockedBadges"`
	AverageAnswerTimeMillis float64  `json:"averageAnswerTimeMillis"`
}

// HasBadge reports whether the badge id is already unlocked.
func (s UserStats) HasBadge(id string) bool {
	for _, b := range s.UnlockedBadges {
		if b == id {
			return true
		}
	}
	return false
}

// Snapshot is the single persisted blob: stats plus the answer history
// the category-count badge predicates are evaluated against.
type Snapshot struct {
	UserStats     UserStats `json:"userStats"`
	AnswerHistory []Result  `json:"answerHistory"`
}

// Catalog is an immutable set of questions loaded at startup.
type Catalog struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Badge is a static achievement catalog entry.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Level is the derived progression tier for a point total.
type Level struct {
	Level        int    `json:"level"`
	Name         string `json:"name"`
	PointsToNext int    `json:"pointsToNext"` // 0 at the final tier
}
