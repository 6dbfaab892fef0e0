package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"ready4exam-quiz-service/internal/domain"
	"ready4exam-quiz-service/internal/questions"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionCache caches per-category question lists in Redis as JSON values:
// SET questions:{topic}:{difficulty}:{category} <json> EX ttl
// It stores the unshuffled lists; quiz assembly shuffles on every fetch.
type QuestionCache struct {
	client *redis.Client
	source questions.CategoryFetcher
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, source questions.CategoryFetcher, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) FetchCategory(ctx context.Context, topic, difficulty string, category domain.Category, limit int) ([]domain.Question, error) {
	key := c.key(topic, difficulty, category)

	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var items []domain.Question
		if err := json.Unmarshal(cached, &items); err == nil {
			return items, nil
		}
		// Unreadable entry; fall through and refill.
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var items []domain.Question
			if err := json.Unmarshal(cached, &items); err == nil {
				return items, nil
			}
		}

		items, err := c.source.FetchCategory(ctx, topic, difficulty, category, limit)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(items); err == nil {
			// best-effort fill; a cache write failure never fails the fetch
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) key(topic, difficulty string, category domain.Category) string {
	return "questions:" + topic + ":" + difficulty + ":" + string(category)
}

// ttlWithJitter may be called from concurrent per-category fills, so the rnd
// access is locked.
func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	jitter := c.rnd.Int63n(jitterMax + 1)
	c.mu.Unlock()
	return c.ttl + time.Duration(jitter)
}
