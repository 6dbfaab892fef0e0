package redis

import (
	"context"
	"time"

	"ready4exam-quiz-service/internal/auth"
	"github.com/redis/go-redis/v9"
)

// PurchaseCache fronts a purchase reader with short-lived Redis markers:
// SET purchase:{userID}:{topic} 1|0 EX ttl
// Only the boolean outcome is cached, so a purchase shows up after at most
// one TTL.
type PurchaseCache struct {
	client *redis.Client
	inner  auth.PurchaseReader
	ttl    time.Duration
}

func NewPurchaseCache(client *redis.Client, inner auth.PurchaseReader, ttl time.Duration) *PurchaseCache {
	return &PurchaseCache{client: client, inner: inner, ttl: ttl}
}

func (c *PurchaseCache) HasPurchase(ctx context.Context, userID, topic string) (bool, error) {
	key := c.key(userID, topic)

	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		return cached == "1", nil
	}

	has, err := c.inner.HasPurchase(ctx, userID, topic)
	if err != nil {
		return false, err
	}

	value := "0"
	if has {
		value = "1"
	}
	// best-effort marker
	_ = c.client.Set(ctx, key, value, c.ttl).Err()
	return has, nil
}

func (c *PurchaseCache) key(userID, topic string) string {
	return "purchase:" + userID + ":" + topic
}
