package app

import (
	"context"
	"fmt"
	"log"
	"time"
)

const (
	DefaultQuestionRetention = 7 * 24 * time.Hour
	DefaultScoreRetention    = 30 * 24 * time.Hour
)

// Pruner deletes records created before a cutoff, reporting how many went.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// RetentionPolicy holds the age limits for the two collections.
type RetentionPolicy struct {
	Questions time.Duration
	Scores    time.Duration
}

func (p RetentionPolicy) withDefaults() RetentionPolicy {
	if p.Questions <= 0 {
		p.Questions = DefaultQuestionRetention
	}
	if p.Scores <= 0 {
		p.Scores = DefaultScoreRetention
	}
	return p
}

// Cleanup applies age-based retention to both collections. Deletions are
// unconditional and irreversible.
func Cleanup(ctx context.Context, questions, scores Pruner, policy RetentionPolicy) error {
	policy = policy.withDefaults()
	now := time.Now()

	removedQuestions, err := questions.DeleteOlderThan(ctx, now.Add(-policy.Questions))
	if err != nil {
		return fmt.Errorf("prune questions: %w", err)
	}
	removedScores, err := scores.DeleteOlderThan(ctx, now.Add(-policy.Scores))
	if err != nil {
		return fmt.Errorf("prune scores: %w", err)
	}
	if removedQuestions > 0 || removedScores > 0 {
		log.Printf("retention cleanup: removed %d questions, %d scores", removedQuestions, removedScores)
	}
	return nil
}
