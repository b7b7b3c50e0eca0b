package app

import (
	"time"

	"rapbattle-quiz-service/internal/domain"
)

// Per-question answer window and post-answer explanation display.
const (
	QuestionTimeLimit = 30 * time.Second
	RevealDuration    = 2 * time.Second
)

// Phase is the session state machine position.
type Phase int

const (
	// PhaseAwaitingAnswer accepts exactly one answer for the current
	// question until its deadline.
	PhaseAwaitingAnswer Phase = iota
	// PhaseRevealed shows the explanation; answers are rejected.
	PhaseRevealed
	// PhaseComplete is terminal; the session cannot be reused.
	PhaseComplete
)

// Session runs one ordered sequence of questions to completion and
// accumulates a result per presented question. It is caller-driven:
// the transport owns the wall-clock timers and calls Submit /
// ExpireIfDue / Advance; the session itself never blocks.
type Session struct {
	questions   []domain.Question
	now         func() time.Time
	index       int
	phase       Phase
	shownAt     time.Time
	deadline    time.Time
	revealUntil time.Time
	streak      int
	results     []domain.Result
}

// NewSession starts a session over the selected questions. An empty
// selection completes immediately.
func NewSession(questions []domain.Question) *Session {
	return NewSessionWithClock(questions, time.Now)
}

// NewSessionWithClock allows deterministic timing in tests.
func NewSessionWithClock(questions []domain.Question, now func() time.Time) *Session {
	s := &Session{
		questions: questions,
		now:       now,
		results:   make([]domain.Result, 0, len(questions)),
	}
	if len(questions) == 0 {
		s.phase = PhaseComplete
		return s
	}
	s.present()
	return s
}

func (s *Session) present() {
	shown := s.now()
	s.phase = PhaseAwaitingAnswer
	s.shownAt = shown
	s.deadline = shown.Add(QuestionTimeLimit)
}

// Current returns the question being presented, if any.
func (s *Session) Current() (domain.Question, bool) {
	if s.phase == PhaseComplete {
		return domain.Question{}, false
	}
	return s.questions[s.index], true
}

// Phase returns the state machine position.
func (s *Session) Phase() Phase {
	return s.phase
}

// Deadline is when the current question times out.
func (s *Session) Deadline() time.Time {
	return s.deadline
}

// RevealDeadline is when the explanation display period ends.
func (s *Session) RevealDeadline() time.Time {
	return s.revealUntil
}

// Progress reports the zero-based question index and the total count.
func (s *Session) Progress() (int, int) {
	return s.index, len(s.questions)
}

// Streak is the running count of consecutive correct answers, exposed
// for display; the durable best-streak lives in the progression store.
func (s *Session) Streak() int {
	return s.streak
}

// Completed reports whether the terminal state was reached.
func (s *Session) Completed() bool {
	return s.phase == PhaseComplete
}

// Results returns the ordered per-question results recorded so far.
func (s *Session) Results() []domain.Result {
	out := make([]domain.Result, len(s.results))
	copy(out, s.results)
	return out
}

// Submit records an answer for the current question and moves to the
// revealed state. Submissions outside the awaiting phase are rejected
// so a late click during the reveal cannot score twice. A submission
// that arrives after the deadline is recorded as a timeout.
func (s *Session) Submit(index int) (domain.Result, error) {
	if s.phase == PhaseComplete {
		return domain.Result{}, domain.ErrSessionComplete
	}
	if s.phase != PhaseAwaitingAnswer {
		return domain.Result{}, domain.ErrNotAwaitingAnswer
	}

	question := s.questions[s.index]
	now := s.now()
	if now.After(s.deadline) {
		return s.resolve(question, domain.NoAnswer(), s.deadline), nil
	}
	if index < 0 || index >= question.OptionCount() {
		return domain.Result{}, domain.ErrOptionOutOfRange
	}
	return s.resolve(question, domain.AnswerIndex(index), now), nil
}

// ExpireIfDue synthesizes the no-answer result once the deadline has
// passed. It reports false when the deadline has not elapsed or the
// session is not awaiting an answer.
func (s *Session) ExpireIfDue() (domain.Result, bool) {
	if s.phase != PhaseAwaitingAnswer {
		return domain.Result{}, false
	}
	now := s.now()
	if now.Before(s.deadline) {
		return domain.Result{}, false
	}
	question := s.questions[s.index]
	return s.resolve(question, domain.NoAnswer(), s.deadline), true
}

func (s *Session) resolve(question domain.Question, answer domain.Answer, at time.Time) domain.Result {
	correct := false
	if index, ok := answer.Index(); ok {
		correct = index == question.CorrectAnswer
	}
	points := 0
	if correct {
		points = question.Points
	}

	result := domain.Result{
		QuestionID:      question.ID,
		Category:        question.Category,
		UserAnswer:      answer,
		IsCorrect:       correct,
		PointsEarned:    points,
		TimeSpentMillis: at.Sub(s.shownAt).Milliseconds(),
	}
	s.results = append(s.results, result)

	if correct {
		s.streak++
	} else {
		s.streak = 0
	}

	s.phase = PhaseRevealed
	s.revealUntil = s.now().Add(RevealDuration)
	return result
}

// Advance moves from the revealed state to the next question, or to
// the terminal state after the last one. The caller decides when the
// reveal period is over; RevealDeadline exposes the intended moment.
func (s *Session) Advance() error {
	if s.phase == PhaseComplete {
		return domain.ErrSessionComplete
	}
	if s.phase != PhaseRevealed {
		return domain.ErrNotRevealed
	}
	if s.index+1 >= len(s.questions) {
		s.phase = PhaseComplete
		return nil
	}
	s.index++
	s.present()
	return nil
}
