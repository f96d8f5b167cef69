package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
)

// QuizCache is a read-through cache in front of a QuizStore. Single quiz
// reads are served from Redis (one JSON document per quiz, TTL with jitter);
// misses collapse through singleflight so a hot quiz loads once. Listings
// and writes pass through, and a delete evicts the cached document.
type QuizCache struct {
	client *redis.Client
	store  app.QuizStore
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, store app.QuizStore, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		store:  store,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	key := c.key(id)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err == nil {
			return quiz, nil
		}
		// Unreadable cache entry: drop it and fall through to the store.
		_ = c.client.Del(ctx, key).Err()
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var quiz domain.Quiz
			if err := json.Unmarshal(raw, &quiz); err == nil {
				return quiz, nil
			}
		}

		quiz, err := c.store.GetQuiz(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		if raw, err := json.Marshal(quiz); err == nil {
			// Best-effort: a failed SET just means the next read misses.
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) ListQuizzes(ctx context.Context, activeOnly bool) ([]domain.Quiz, error) {
	return c.store.ListQuizzes(ctx, activeOnly)
}

func (c *QuizCache) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	return c.store.CreateQuiz(ctx, quiz)
}

func (c *QuizCache) DeleteQuiz(ctx context.Context, id string) error {
	if err := c.store.DeleteQuiz(ctx, id); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(id)).Err()
	return nil
}

func (c *QuizCache) key(id string) string {
	return "quiz:" + id + ":doc"
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
