package domain

import "errors"

var (
	// ErrBankNotFound indicates the question catalog could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrInvalidQuestion is a fatal configuration error: a scorable
	// question whose answer key does not index its options.
	ErrInvalidQuestion = errors.New("invalid question configuration")
	// ErrNotAwaitingAnswer is returned for an answer submitted outside
	// the awaiting-answer phase; callers may simply drop it.
	ErrNotAwaitingAnswer = errors.New("session is not awaiting an answer")
	// ErrNotRevealed is returned when advancing a session that has not
	// resolved its current question yet.
	ErrNotRevealed = errors.New("session has not revealed the current question")
	// ErrSessionComplete is returned when acting on a finished session.
	ErrSessionComplete = errors.New("session already complete")
	// ErrOptionOutOfRange indicates a submitted option index is invalid.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrStatsPersist marks a storage write failure. The in-memory
	// stats update still applies; callers surface a warning instead of
	// rolling back.
	ErrStatsPersist = errors.New("failed to persist quiz stats")
)
