package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"trivia-service/internal/domain"
)

// ScoreStore is an in-memory app.ScoreRepository mirroring the Postgres one.
type ScoreStore struct {
	mu     sync.RWMutex
	scores []domain.ScoreSubmission
	clock  func() time.Time
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{clock: time.Now}
}

// WithClock is test-only for deterministic timestamps.
func (s *ScoreStore) WithClock(now func() time.Time) *ScoreStore {
	s.clock = now
	return s
}

func (s *ScoreStore) Insert(_ context.Context, submission domain.ScoreSubmission) (domain.ScoreSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	submission.ID = uuid.NewString()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = s.clock()
	}
	s.scores = append(s.scores, submission)
	return submission, nil
}

func (s *ScoreStore) ListSince(_ context.Context, since time.Time) ([]domain.ScoreSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScoreSubmission, 0, len(s.scores))
	for _, sub := range s.scores {
		if sub.CreatedAt.Before(since) {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

// DeleteOlderThan drops submissions past the retention cutoff.
func (s *ScoreStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.scores[:0]
	removed := 0
	for _, sub := range s.scores {
		if sub.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, sub)
	}
	s.scores = kept
	return removed, nil
}
