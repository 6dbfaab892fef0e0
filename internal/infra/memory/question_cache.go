package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"ready4exam-quiz-service/internal/domain"
	"ready4exam-quiz-service/internal/questions"
	"golang.org/x/sync/singleflight"
)

// QuestionCache caches per-category question lists with TTL to avoid repeated
// store hits. It caches the unshuffled lists so every quiz assembly still
// shuffles downstream.
type QuestionCache struct {
	source questions.CategoryFetcher
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCategory
}

type cachedCategory struct {
	items     []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(source questions.CategoryFetcher, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCategory),
	}
}

func (c *QuestionCache) FetchCategory(ctx context.Context, topic, difficulty string, category domain.Category, limit int) ([]domain.Question, error) {
	key := cacheKey(topic, difficulty, category)
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.items, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.items, nil
		}
		c.mu.RUnlock()

		items, err := c.source.FetchCategory(ctx, topic, difficulty, category, limit)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = cachedCategory{
			items:     items,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func cacheKey(topic, difficulty string, category domain.Category) string {
	return topic + ":" + difficulty + ":" + string(category)
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
