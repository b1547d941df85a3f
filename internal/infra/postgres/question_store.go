package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-service/internal/domain"
)

// QuestionStore backs app.QuestionRepository with Postgres. Options are
// stored as JSONB.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) List(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, prompt, options, correct_answer, COALESCE(source_url, ''), created_at
		FROM questions
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var rawOptions []byte
		if err := rows.Scan(&q.ID, &q.Prompt, &rawOptions, &q.CorrectAnswer, &q.SourceURL, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *QuestionStore) Insert(ctx context.Context, question domain.Question) (domain.Question, error) {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now().UTC()
	}
	rawOptions, err := json.Marshal(question.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal options: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO questions (id, prompt, options, correct_answer, source_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		question.ID, question.Prompt, rawOptions, question.CorrectAnswer, question.SourceURL, question.CreatedAt)
	if err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return question, nil
}

// DeleteOlderThan enforces the question retention window.
func (s *QuestionStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete questions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
