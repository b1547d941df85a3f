package generator_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"trivia-service/internal/domain"
	"trivia-service/internal/generator"
)

type stubSource struct {
	content []string
	err     error
}

func (s *stubSource) Gather(_ context.Context) ([]string, error) {
	return s.content, s.err
}

type stubWriter struct {
	questions []domain.Question
	err       error
	calls     int
}

func (w *stubWriter) Write(_ context.Context, _ []string, _ int) ([]domain.Question, error) {
	w.calls++
	return w.questions, w.err
}

type recordingStore struct {
	mu        sync.Mutex
	questions []domain.Question
}

func (s *recordingStore) Insert(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, q)
	return q, nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

func validQuestion(prompt string) domain.Question {
	return domain.Question{
		Prompt:        prompt,
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: 2,
	}
}

func TestRunSavesValidQuestions(t *testing.T) {
	store := &recordingStore{}
	writer := &stubWriter{questions: []domain.Question{
		validQuestion("keeps this"),
		{Prompt: "", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},          // missing prompt
		{Prompt: "three options", Options: []string{"a", "b", "c"}, CorrectAnswer: 0},  // wrong option count
		{Prompt: "bad index", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 4}, // index out of range
	}}
	gen := generator.New(&stubSource{content: []string{"headline"}}, writer, store).
		WithBatching(10, 20, 0)

	if err := gen.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if writer.calls != 2 {
		t.Fatalf("expected 2 batches for target 20, got %d", writer.calls)
	}
	// One valid question per batch survives validation.
	if store.count() != 2 {
		t.Fatalf("expected 2 saved questions, got %d", store.count())
	}
}

func TestRunSkipsWhenNoContent(t *testing.T) {
	store := &recordingStore{}
	writer := &stubWriter{}
	gen := generator.New(&stubSource{}, writer, store).WithBatching(10, 20, 0)

	if err := gen.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if writer.calls != 0 {
		t.Fatalf("expected no model calls without content, got %d", writer.calls)
	}
	if store.count() != 0 {
		t.Fatalf("expected nothing saved, got %d", store.count())
	}
}

func TestRunFallsBackWhenGatheringFails(t *testing.T) {
	store := &recordingStore{}
	gen := generator.New(&stubSource{err: errors.New("network down")}, &stubWriter{}, store).
		WithBatching(10, 20, 0)

	if err := gen.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if store.count() != 1 {
		t.Fatalf("expected one fallback question, got %d", store.count())
	}
	saved := store.questions[0]
	if len(saved.Options) != domain.OptionCount || saved.CorrectAnswer < 0 || saved.CorrectAnswer >= domain.OptionCount {
		t.Fatalf("fallback question violates question shape: %+v", saved)
	}
}

func TestRunFallsBackWhenEveryBatchFails(t *testing.T) {
	store := &recordingStore{}
	writer := &stubWriter{err: errors.New("model unavailable")}
	gen := generator.New(&stubSource{content: []string{"headline"}}, writer, store).
		WithBatching(10, 20, 0)

	if err := gen.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if writer.calls != 2 {
		t.Fatalf("expected every batch attempted, got %d calls", writer.calls)
	}
	if store.count() != 1 {
		t.Fatalf("expected one fallback question, got %d", store.count())
	}
}

func TestFallbackBankShape(t *testing.T) {
	for i, q := range generator.FallbackQuestions() {
		if q.Prompt == "" {
			t.Errorf("fallback %d: empty prompt", i)
		}
		if len(q.Options) != domain.OptionCount {
			t.Errorf("fallback %d: %d options", i, len(q.Options))
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= domain.OptionCount {
			t.Errorf("fallback %d: correct index %d out of range", i, q.CorrectAnswer)
		}
	}
}
