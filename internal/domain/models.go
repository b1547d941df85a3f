package domain

import (
	"math"
	"time"
)

// OptionCount is the fixed number of options on every question.
const OptionCount = 4

// Question is a single multiple-choice trivia item with exactly one
// correct option. Questions are immutable once created and expire after
// the question retention window.
type Question struct {
	ID            string    `json:"id"`
	Prompt        string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer int       `json:"correct_answer"`
	SourceURL     string    `json:"source_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ScoreSubmission is one player's completed-quiz result. The display name
// is free text: trimmed, not unique, not authenticated. Answers holds one
// entry per question in quiz order; nil means the question timed out with
// no selection.
type ScoreSubmission struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	Answers        []*int    `json:"answers"`
	CreatedAt      time.Time `json:"created_at"`
}

// LeaderboardEntry is a ScoreSubmission annotated with its 1-based rank.
// It is derived on every read, never stored.
type LeaderboardEntry struct {
	ScoreSubmission
	Rank int `json:"rank"`
}

// Percentage converts a raw correct count into a rounded integer
// percentage. A non-positive total yields 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
