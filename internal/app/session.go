package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"trivia-service/internal/domain"
)

// SessionState is the quiz session lifecycle state.
type SessionState int

const (
	// StateInProgress means a question is live and accepting one answer.
	StateInProgress SessionState = iota
	// StateSubmitting means the final score is being persisted.
	StateSubmitting
	// StateFinished means the result was stored successfully.
	StateFinished
	// StateAborted is terminal: missing prerequisites, submit failure, or Close.
	StateAborted
)

const (
	DefaultQuestionTime = 15 * time.Second
	DefaultAdvanceDelay = 500 * time.Millisecond
)

// SessionConfig tunes session timing. Zero values fall back to the defaults;
// tests shrink them for determinism.
type SessionConfig struct {
	QuestionTime time.Duration
	AdvanceDelay time.Duration
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.QuestionTime <= 0 {
		c.QuestionTime = DefaultQuestionTime
	}
	if c.AdvanceDelay <= 0 {
		c.AdvanceDelay = DefaultAdvanceDelay
	}
	return c
}

// SubmitFunc persists a finished quiz result.
type SubmitFunc func(ctx context.Context, req ScoreRequest) (domain.ScoreSubmission, error)

// EventKind discriminates session events.
type EventKind int

const (
	// EventQuestion announces the live question and its countdown.
	EventQuestion EventKind = iota
	// EventAnswerCommitted announces a recorded answer, before the advance pause.
	EventAnswerCommitted
	// EventFinished carries the stored submission.
	EventFinished
	// EventAborted carries the reason the session died.
	EventAborted
)

// SessionEvent is pushed to the session's Events channel on every transition.
type SessionEvent struct {
	Kind     EventKind
	Index    int
	Total    int
	Question domain.Question
	TimeLeft int // seconds, for EventQuestion
	Answer   *int
	Correct  bool
	Result   domain.ScoreSubmission
	Err      error
}

// QuizSession drives one player through a fixed question list: per-question
// countdown, answer locking, forced timeout commits, and final scoring.
//
// Transitions are serialized by the mutex; at most one answer commit is in
// flight per question. The countdown for question i+1 never starts before
// question i's answer is recorded, and a stale countdown can never fire
// against a later question.
type QuizSession struct {
	cfg       SessionConfig
	name      string
	questions []domain.Question
	submit    SubmitFunc
	now       func() time.Time
	ctx       context.Context

	mu         sync.Mutex
	state      SessionState
	index      int
	answers    []*int
	committing bool
	deadline   time.Time
	countdown  *time.Timer
	advance    *time.Timer
	result     domain.ScoreSubmission
	err        error
	events     chan SessionEvent
	closed     bool
}

// NewQuizSession starts a session for name over questions. It fails with
// domain.ErrMissingName or domain.ErrNoQuestions when prerequisites are
// missing (the Loading -> Aborted path); otherwise the first question is
// live and its countdown running before this returns.
func NewQuizSession(ctx context.Context, name string, questions []domain.Question, submit SubmitFunc, cfg SessionConfig) (*QuizSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrMissingName
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	s := &QuizSession{
		cfg:       cfg.withDefaults(),
		name:      name,
		questions: questions,
		submit:    submit,
		now:       time.Now,
		ctx:       ctx,
		state:     StateInProgress,
		answers:   make([]*int, len(questions)),
		events:    make(chan SessionEvent, 2*len(questions)+2),
	}

	s.mu.Lock()
	s.startCountdownLocked()
	s.mu.Unlock()
	return s, nil
}

// Events delivers one event per transition. The channel is buffered for the
// whole session and closed when the session reaches a terminal state.
func (s *QuizSession) Events() <-chan SessionEvent {
	return s.events
}

// Answer commits the player's selection for the live question. A nil
// selection is an explicit skip. Returns domain.ErrAnswerLocked while a
// previous commit is still settling and domain.ErrSessionClosed once the
// session has left InProgress.
func (s *QuizSession) Answer(selection *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return domain.ErrSessionClosed
	}
	if s.committing {
		return domain.ErrAnswerLocked
	}
	if selection != nil && (*selection < 0 || *selection >= domain.OptionCount) {
		return domain.ErrInvalidSubmission
	}
	s.commitLocked(selection)
	return nil
}

// State reports the current lifecycle state.
func (s *QuizSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TimeLeft reports whole seconds remaining on the live question's countdown.
func (s *QuizSession) TimeLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return 0
	}
	left := s.deadline.Sub(s.now())
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// Result returns the stored submission once Finished, or the abort reason.
func (s *QuizSession) Result() (domain.ScoreSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.err
}

// Close aborts the session and cancels all timers. Safe to call from the
// transport when the client goes away mid-quiz.
func (s *QuizSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFinished || s.state == StateAborted {
		return
	}
	s.state = StateAborted
	s.err = domain.ErrSessionClosed
	s.stopTimersLocked()
	s.closeEventsLocked()
}

func (s *QuizSession) startCountdownLocked() {
	idx := s.index
	s.committing = false
	s.deadline = s.now().Add(s.cfg.QuestionTime)
	s.countdown = time.AfterFunc(s.cfg.QuestionTime, func() {
		s.forceTimeout(idx)
	})
	s.emitLocked(SessionEvent{
		Kind:     EventQuestion,
		Index:    idx,
		Total:    len(s.questions),
		Question: s.questions[idx],
		TimeLeft: int(s.cfg.QuestionTime / time.Second),
	})
}

// forceTimeout commits a nil answer when the countdown expires. The index
// guard drops timers that lost the race against an explicit answer.
func (s *QuizSession) forceTimeout(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress || s.committing || s.index != idx {
		return
	}
	s.commitLocked(nil)
}

func (s *QuizSession) commitLocked(selection *int) {
	s.answers[s.index] = selection
	s.committing = true
	if s.countdown != nil {
		s.countdown.Stop()
	}

	question := s.questions[s.index]
	s.emitLocked(SessionEvent{
		Kind:    EventAnswerCommitted,
		Index:   s.index,
		Answer:  selection,
		Correct: selection != nil && *selection == question.CorrectAnswer,
	})

	// Short pause so the client can reflect the selection before advancing.
	s.advance = time.AfterFunc(s.cfg.AdvanceDelay, s.advanceQuestion)
}

func (s *QuizSession) advanceQuestion() {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return
	}

	if s.index < len(s.questions)-1 {
		s.index++
		s.startCountdownLocked()
		s.mu.Unlock()
		return
	}

	s.state = StateSubmitting
	answers := make([]*int, len(s.answers))
	copy(answers, s.answers)
	s.mu.Unlock()

	score := Score(s.questions, answers)
	stored, err := s.submit(s.ctx, ScoreRequest{
		Name:           s.name,
		Score:          score,
		TotalQuestions: len(s.questions),
		Answers:        answers,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.state = StateAborted
		s.err = err
		s.emitLocked(SessionEvent{Kind: EventAborted, Err: err})
	} else {
		s.state = StateFinished
		s.result = stored
		s.emitLocked(SessionEvent{Kind: EventFinished, Result: stored})
	}
	s.closeEventsLocked()
}

func (s *QuizSession) stopTimersLocked() {
	if s.countdown != nil {
		s.countdown.Stop()
	}
	if s.advance != nil {
		s.advance.Stop()
	}
}

func (s *QuizSession) emitLocked(event SessionEvent) {
	if s.closed {
		return
	}
	select {
	case s.events <- event:
	default:
	}
}

func (s *QuizSession) closeEventsLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

// Score counts answers matching the correct option; a nil answer never
// matches.
func Score(questions []domain.Question, answers []*int) int {
	score := 0
	for i, question := range questions {
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		if *answers[i] == question.CorrectAnswer {
			score++
		}
	}
	return score
}
