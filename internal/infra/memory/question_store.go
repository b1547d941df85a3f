package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"trivia-service/internal/domain"
)

// QuestionStore is an in-memory app.QuestionRepository, used by tests and by
// the server when Postgres is not configured.
type QuestionStore struct {
	mu        sync.RWMutex
	questions []domain.Question
	clock     func() time.Time
}

func NewQuestionStore(seed []domain.Question) *QuestionStore {
	s := &QuestionStore{clock: time.Now}
	now := s.clock()
	for _, q := range seed {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		s.questions = append(s.questions, q)
	}
	return s
}

// WithClock is test-only for deterministic retention cutoffs.
func (s *QuestionStore) WithClock(now func() time.Time) *QuestionStore {
	s.clock = now
	return s
}

func (s *QuestionStore) List(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, len(s.questions))
	copy(out, s.questions)
	return out, nil
}

func (s *QuestionStore) Insert(_ context.Context, question domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = s.clock()
	}
	s.questions = append(s.questions, question)
	return question, nil
}

// DeleteOlderThan drops questions past the retention cutoff.
func (s *QuestionStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.questions[:0]
	removed := 0
	for _, q := range s.questions {
		if q.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, q)
	}
	s.questions = kept
	return removed, nil
}
