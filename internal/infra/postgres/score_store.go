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

// ScoreStore backs app.ScoreRepository with Postgres. The per-question
// answer trail is stored as JSONB; nulls mark timed-out questions.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Insert(ctx context.Context, submission domain.ScoreSubmission) (domain.ScoreSubmission, error) {
	submission.ID = uuid.NewString()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now().UTC()
	}
	rawAnswers, err := json.Marshal(submission.Answers)
	if err != nil {
		return domain.ScoreSubmission{}, fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO scores (id, name, score, total_questions, percentage, answers, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		submission.ID, submission.Name, submission.Score, submission.TotalQuestions,
		submission.Percentage, rawAnswers, submission.CreatedAt)
	if err != nil {
		return domain.ScoreSubmission{}, fmt.Errorf("insert score: %w", err)
	}
	return submission, nil
}

func (s *ScoreStore) ListSince(ctx context.Context, since time.Time) ([]domain.ScoreSubmission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, score, total_questions, percentage, answers, created_at
		FROM scores
		WHERE created_at >= $1
		ORDER BY percentage DESC, created_at ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var submissions []domain.ScoreSubmission
	for rows.Next() {
		var sub domain.ScoreSubmission
		var rawAnswers []byte
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Score, &sub.TotalQuestions, &sub.Percentage, &rawAnswers, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		if err := json.Unmarshal(rawAnswers, &sub.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		submissions = append(submissions, sub)
	}
	return submissions, rows.Err()
}

// DeleteOlderThan enforces the score retention window.
func (s *ScoreStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scores WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete scores: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
