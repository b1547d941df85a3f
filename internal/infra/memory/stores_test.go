package memory

import (
	"context"
	"testing"
	"time"

	"trivia-service/internal/domain"
)

func TestQuestionStoreSeedsAndInserts(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore([]domain.Question{
		{Prompt: "seeded", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
	})

	questions, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 seeded question, got %d", len(questions))
	}
	if questions[0].ID == "" || questions[0].CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", questions[0])
	}

	if _, err := store.Insert(ctx, domain.Question{Prompt: "new", Options: []string{"a", "b", "c", "d"}}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	questions, _ = store.List(ctx)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}

func TestQuestionStoreRetention(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := NewQuestionStore(nil).WithClock(func() time.Time { return now })

	old := domain.Question{Prompt: "old", Options: []string{"a", "b", "c", "d"}, CreatedAt: now.Add(-8 * 24 * time.Hour)}
	fresh := domain.Question{Prompt: "fresh", Options: []string{"a", "b", "c", "d"}, CreatedAt: now.Add(-time.Hour)}
	if _, err := store.Insert(ctx, old); err != nil {
		t.Fatalf("insert old: %v", err)
	}
	if _, err := store.Insert(ctx, fresh); err != nil {
		t.Fatalf("insert fresh: %v", err)
	}

	removed, err := store.DeleteOlderThan(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	questions, _ := store.List(ctx)
	if len(questions) != 1 || questions[0].Prompt != "fresh" {
		t.Fatalf("expected only fresh question, got %+v", questions)
	}
}

func TestScoreStoreListSince(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := NewScoreStore().WithClock(func() time.Time { return now })

	for _, age := range []time.Duration{time.Hour, 3 * 24 * time.Hour, 10 * 24 * time.Hour} {
		if _, err := store.Insert(ctx, domain.ScoreSubmission{
			Name:           "Alice",
			Score:          5,
			TotalQuestions: 10,
			Percentage:     50,
			CreatedAt:      now.Add(-age),
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	recent, err := store.ListSince(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 in-window submissions, got %d", len(recent))
	}
}

func TestScoreStoreRetention(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := NewScoreStore().WithClock(func() time.Time { return now })

	if _, err := store.Insert(ctx, domain.ScoreSubmission{Name: "Old", CreatedAt: now.Add(-31 * 24 * time.Hour)}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.Insert(ctx, domain.ScoreSubmission{Name: "Fresh", CreatedAt: now.Add(-time.Hour)}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	removed, err := store.DeleteOlderThan(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	remaining, _ := store.ListSince(ctx, time.Time{})
	if len(remaining) != 1 || remaining[0].Name != "Fresh" {
		t.Fatalf("expected only fresh submission, got %+v", remaining)
	}
}
