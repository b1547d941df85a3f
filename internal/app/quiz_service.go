package app

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"trivia-service/internal/domain"
)

// DefaultQuestionCount is the target quiz length.
const DefaultQuestionCount = 10

// DefaultWindow is the trailing period scoping leaderboard eligibility.
const DefaultWindow = 7 * 24 * time.Hour

// QuestionRepository exposes the question pool (Postgres, cached or in-memory).
type QuestionRepository interface {
	List(ctx context.Context) ([]domain.Question, error)
	Insert(ctx context.Context, question domain.Question) (domain.Question, error)
}

// ScoreRepository persists and reads back score submissions.
type ScoreRepository interface {
	Insert(ctx context.Context, submission domain.ScoreSubmission) (domain.ScoreSubmission, error)
	ListSince(ctx context.Context, since time.Time) ([]domain.ScoreSubmission, error)
}

// LeaderboardProvider is the read side of the leaderboard. *QuizService
// implements it; the Redis snapshot cache decorates it.
type LeaderboardProvider interface {
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// ScoreRequest is an inbound submission before the store assigns identity.
type ScoreRequest struct {
	Name           string `json:"name" validate:"required,max=64"`
	Score          int    `json:"score" validate:"gte=0"`
	TotalQuestions int    `json:"totalQuestions" validate:"gt=0"`
	Answers        []*int `json:"answers"`
}

// QuizService contains the trivia use cases: fetching a randomized question
// set, validating and persisting finished scores, and building the weekly
// leaderboard.
type QuizService struct {
	questions QuestionRepository
	scores    ScoreRepository
	validate  *validator.Validate
	window    time.Duration
	session   SessionConfig
	count     int
	clock     func() time.Time
}

func NewQuizService(questions QuestionRepository, scores ScoreRepository) *QuizService {
	return &QuizService{
		questions: questions,
		scores:    scores,
		validate:  validator.New(),
		window:    DefaultWindow,
		count:     DefaultQuestionCount,
		clock:     time.Now,
	}
}

// WithWindow overrides the leaderboard window.
func (s *QuizService) WithWindow(window time.Duration) *QuizService {
	if window > 0 {
		s.window = window
	}
	return s
}

// WithQuestionCount overrides the quiz length.
func (s *QuizService) WithQuestionCount(count int) *QuizService {
	if count > 0 {
		s.count = count
	}
	return s
}

// WithSessionConfig overrides session timing for sessions started here.
func (s *QuizService) WithSessionConfig(cfg SessionConfig) *QuizService {
	s.session = cfg
	return s
}

// WithClock is test-only for deterministic windows.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.clock = now
	return s
}

// FetchQuestions returns up to count questions in randomized order. It may
// return fewer, including zero; an empty pool is an empty result, not an
// error.
func (s *QuizService) FetchQuestions(ctx context.Context, count int) ([]domain.Question, error) {
	if count <= 0 {
		count = s.count
	}
	pool, err := s.questions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	// Top-level rand is lock-protected; one service handles concurrent
	// requests.
	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > count {
		shuffled = shuffled[:count]
	}
	return shuffled, nil
}

// SubmitScore validates a finished quiz result, computes the percentage
// server-side, and persists it. Malformed submissions are rejected with
// domain.ErrInvalidSubmission before anything reaches the store.
func (s *QuizService) SubmitScore(ctx context.Context, req ScoreRequest) (domain.ScoreSubmission, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return domain.ScoreSubmission{}, fmt.Errorf("%w: %v", domain.ErrInvalidSubmission, err)
	}
	if req.Score > req.TotalQuestions {
		return domain.ScoreSubmission{}, fmt.Errorf("%w: score %d exceeds total %d", domain.ErrInvalidSubmission, req.Score, req.TotalQuestions)
	}
	// An answer trail is optional, but when present it must cover every
	// question.
	if len(req.Answers) > 0 && len(req.Answers) != req.TotalQuestions {
		return domain.ScoreSubmission{}, fmt.Errorf("%w: %d answers for %d questions", domain.ErrInvalidSubmission, len(req.Answers), req.TotalQuestions)
	}
	for _, answer := range req.Answers {
		if answer != nil && (*answer < 0 || *answer >= domain.OptionCount) {
			return domain.ScoreSubmission{}, fmt.Errorf("%w: answer index %d out of range", domain.ErrInvalidSubmission, *answer)
		}
	}

	answers := req.Answers
	if answers == nil {
		answers = []*int{}
	}
	stored, err := s.scores.Insert(ctx, domain.ScoreSubmission{
		Name:           req.Name,
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
		Percentage:     domain.Percentage(req.Score, req.TotalQuestions),
		Answers:        answers,
	})
	if err != nil {
		return domain.ScoreSubmission{}, fmt.Errorf("insert score: %w", err)
	}
	return stored, nil
}

// Leaderboard ranks the trailing window's submissions. Recomputed from a
// read-only snapshot on every call.
func (s *QuizService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	windowStart := s.clock().Add(-s.window)
	submissions, err := s.scores.ListSince(ctx, windowStart)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return Rank(submissions, windowStart, limit), nil
}

// StartSession fetches a question set and starts an interactive session for
// name. Completion feeds SubmitScore, so session results land on the same
// leaderboard as direct API submissions.
func (s *QuizService) StartSession(ctx context.Context, name string) (*QuizSession, error) {
	questions, err := s.FetchQuestions(ctx, s.count)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return NewQuizSession(ctx, name, questions, s.SubmitScore, s.session)
}
