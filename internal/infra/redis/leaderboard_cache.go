package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
)

// LeaderboardCache keeps a short-lived JSON snapshot of the ranked
// leaderboard per limit. The ranking itself stays a pure recomputation in
// app; this only bounds how often the score table is re-read under load.
type LeaderboardCache struct {
	client *redis.Client
	next   app.LeaderboardProvider
	ttl    time.Duration
	sf     singleflight.Group
}

func NewLeaderboardCache(client *redis.Client, next app.LeaderboardProvider, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, next: next, ttl: ttl}
}

func (c *LeaderboardCache) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	key := c.key(limit)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
		var entries []domain.LeaderboardEntry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		entries, err := c.next.Leaderboard(ctx, limit)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(entries); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttl).Err()
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

func (c *LeaderboardCache) key(limit int) string {
	return "trivia:leaderboard:" + strconv.Itoa(limit)
}
