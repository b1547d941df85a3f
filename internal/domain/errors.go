package domain

import "errors"

var (
	// ErrNoQuestions is returned when the question pool is empty.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidSubmission is returned for malformed score submissions,
	// before anything reaches the store.
	ErrInvalidSubmission = errors.New("invalid score submission")
	// ErrMissingName is returned when a quiz is started without a player name.
	ErrMissingName = errors.New("player name is required")
	// ErrAnswerLocked is returned when an answer arrives while a previous
	// commit for the same question is still in flight.
	ErrAnswerLocked = errors.New("answer already being processed")
	// ErrSessionClosed is returned when acting on a finished or aborted session.
	ErrSessionClosed = errors.New("quiz session is closed")
)
