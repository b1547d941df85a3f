package app

import (
	"sort"
	"time"

	"trivia-service/internal/domain"
)

// DefaultLeaderboardLimit caps the leaderboard when no explicit limit is given.
const DefaultLeaderboardLimit = 100

// Rank builds the public leaderboard from a snapshot of score submissions.
//
// Submissions created before windowStart are dropped. The rest are grouped
// by player name (exact, case-sensitive match: "Alice" and "alice" are
// distinct players) and each group is collapsed to its best submission:
// highest percentage, earliest CreatedAt on equal percentage. The retained
// submissions are ordered by percentage descending, with equal percentages
// ordered by earliest CreatedAt and then by name, truncated to limit, and
// assigned ranks 1..k in final position order.
//
// Pure: no side effects, empty input yields empty output.
func Rank(submissions []domain.ScoreSubmission, windowStart time.Time, limit int) []domain.LeaderboardEntry {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	best := make(map[string]domain.ScoreSubmission)
	for _, sub := range submissions {
		if sub.CreatedAt.Before(windowStart) {
			continue
		}
		current, ok := best[sub.Name]
		if !ok {
			best[sub.Name] = sub
			continue
		}
		if sub.Percentage > current.Percentage {
			best[sub.Name] = sub
		} else if sub.Percentage == current.Percentage && sub.CreatedAt.Before(current.CreatedAt) {
			best[sub.Name] = sub
		}
	}

	retained := make([]domain.ScoreSubmission, 0, len(best))
	for _, sub := range best {
		retained = append(retained, sub)
	}
	sort.Slice(retained, func(i, j int) bool {
		if retained[i].Percentage != retained[j].Percentage {
			return retained[i].Percentage > retained[j].Percentage
		}
		if !retained[i].CreatedAt.Equal(retained[j].CreatedAt) {
			return retained[i].CreatedAt.Before(retained[j].CreatedAt)
		}
		return retained[i].Name < retained[j].Name
	})

	if len(retained) > limit {
		retained = retained[:limit]
	}

	entries := make([]domain.LeaderboardEntry, len(retained))
	for i, sub := range retained {
		entries[i] = domain.LeaderboardEntry{ScoreSubmission: sub, Rank: i + 1}
	}
	return entries
}
