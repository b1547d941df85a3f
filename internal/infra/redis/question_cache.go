package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-service/internal/domain"
)

const questionPoolKey = "trivia:questions"

// QuestionCache caches the whole question pool as JSON under a single key
// and falls back to the backing repository on a miss. Inserts write through
// and invalidate the cached pool.
type QuestionCache struct {
	client *redis.Client
	next   QuestionRepository
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

// QuestionRepository matches app.QuestionRepository; redeclared here so the
// cache can decorate any backing store without importing app.
type QuestionRepository interface {
	List(ctx context.Context) ([]domain.Question, error)
	Insert(ctx context.Context, question domain.Question) (domain.Question, error)
}

func NewQuestionCache(client *redis.Client, next QuestionRepository, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		next:   next,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) List(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := c.cached(ctx); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(questionPoolKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if questions, ok := c.cached(ctx); ok {
			return questions, nil
		}

		questions, err := c.next.List(ctx)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(questions); err == nil {
			_ = c.client.Set(ctx, questionPoolKey, raw, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) Insert(ctx context.Context, question domain.Question) (domain.Question, error) {
	stored, err := c.next.Insert(ctx, question)
	if err != nil {
		return domain.Question{}, err
	}
	// Drop the cached pool so the next read sees the new question.
	_ = c.client.Del(ctx, questionPoolKey).Err()
	return stored, nil
}

func (c *QuestionCache) cached(ctx context.Context) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, questionPoolKey).Bytes()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
