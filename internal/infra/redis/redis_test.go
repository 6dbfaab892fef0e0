package redis_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ready4exam-quiz-service/internal/domain"
	infraredis "ready4exam-quiz-service/internal/infra/redis"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func testClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type countingSource struct {
	items []domain.Question
	err   error
	calls int64
}

func (s *countingSource) FetchCategory(context.Context, string, string, domain.Category, int) ([]domain.Question, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func (s *countingSource) count() int64 {
	return atomic.LoadInt64(&s.calls)
}

func mcqSet() []domain.Question {
	return []domain.Question{
		{ID: 1, Category: domain.CategoryMCQ, Text: "q1", Options: []domain.Option{{ID: "a", Text: "x"}}, CorrectOptionID: "a"},
		{ID: 2, Category: domain.CategoryMCQ, Text: "q2", Options: []domain.Option{{ID: "a", Text: "y"}}, CorrectOptionID: "a"},
	}
}

func TestQuestionCacheFillsAndServes(t *testing.T) {
	mr, client := testClient(t)
	source := &countingSource{items: mcqSet()}
	cache := infraredis.NewQuestionCache(client, source, time.Minute)
	ctx := context.Background()

	first, err := cache.FetchCategory(ctx, "gravitation", "medium", domain.CategoryMCQ, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	second, err := cache.FetchCategory(ctx, "gravitation", "medium", domain.CategoryMCQ, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if source.count() != 1 {
		t.Fatalf("expected one source hit, got %d", source.count())
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected two questions, got %d and %d", len(first), len(second))
	}
	if !mr.Exists("questions:gravitation:medium:mcq") {
		t.Fatalf("expected the category key in redis")
	}
}

func TestQuestionCacheRefillsCorruptEntry(t *testing.T) {
	mr, client := testClient(t)
	if err := mr.Set("questions:gravitation:medium:mcq", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	source := &countingSource{items: mcqSet()}
	cache := infraredis.NewQuestionCache(client, source, time.Minute)

	qs, err := cache.FetchCategory(context.Background(), "gravitation", "medium", domain.CategoryMCQ, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if source.count() != 1 {
		t.Fatalf("expected the corrupt entry to force a source hit, got %d calls", source.count())
	}
	if len(qs) != 2 {
		t.Fatalf("expected two questions, got %d", len(qs))
	}
}

// Quiz assembly fetches all three categories concurrently, so a cold cache
// fills three keys at once. Run with -race.
func TestQuestionCacheConcurrentColdFill(t *testing.T) {
	_, client := testClient(t)
	source := &countingSource{items: mcqSet()}
	cache := infraredis.NewQuestionCache(client, source, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, category := range domain.Categories() {
		category := category
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.FetchCategory(ctx, "gravitation", "medium", category, 10); err != nil {
				t.Errorf("fetch %s: %v", category, err)
			}
		}()
	}
	wg.Wait()

	if source.count() != 3 {
		t.Fatalf("expected one source hit per category, got %d", source.count())
	}
}

func TestQuestionCachePropagatesSourceError(t *testing.T) {
	_, client := testClient(t)
	source := &countingSource{err: errors.New("store down")}
	cache := infraredis.NewQuestionCache(client, source, time.Minute)

	if _, err := cache.FetchCategory(context.Background(), "gravitation", "medium", domain.CategoryMCQ, 10); err == nil {
		t.Fatalf("expected the source error to propagate")
	}
}

type countingPurchases struct {
	owned map[string]bool
	calls int
}

func (p *countingPurchases) HasPurchase(_ context.Context, userID, topic string) (bool, error) {
	p.calls++
	return p.owned[userID+":"+topic], nil
}

func TestPurchaseCacheMarkers(t *testing.T) {
	mr, client := testClient(t)
	inner := &countingPurchases{owned: map[string]bool{"u1:gravitation": true}}
	cache := infraredis.NewPurchaseCache(client, inner, time.Minute)
	ctx := context.Background()

	has, err := cache.HasPurchase(ctx, "u1", "gravitation")
	if err != nil || !has {
		t.Fatalf("expected purchase, got %v err=%v", has, err)
	}
	if _, err := cache.HasPurchase(ctx, "u1", "gravitation"); err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected the marker to absorb the repeat, got %d calls", inner.calls)
	}
	if got, _ := mr.Get("purchase:u1:gravitation"); got != "1" {
		t.Fatalf("expected positive marker, got %q", got)
	}

	// Negative outcomes are cached too.
	if has, err := cache.HasPurchase(ctx, "u2", "gravitation"); err != nil || has {
		t.Fatalf("expected no purchase for u2, got %v err=%v", has, err)
	}
	if got, _ := mr.Get("purchase:u2:gravitation"); got != "0" {
		t.Fatalf("expected negative marker, got %q", got)
	}
}

func TestPurchaseCacheExpiry(t *testing.T) {
	mr, client := testClient(t)
	inner := &countingPurchases{owned: map[string]bool{}}
	cache := infraredis.NewPurchaseCache(client, inner, time.Minute)
	ctx := context.Background()

	if has, err := cache.HasPurchase(ctx, "u1", "gravitation"); err != nil || has {
		t.Fatalf("expected no purchase yet, got %v err=%v", has, err)
	}

	// The purchase lands and the stale negative marker expires.
	inner.owned["u1:gravitation"] = true
	mr.FastForward(2 * time.Minute)

	has, err := cache.HasPurchase(ctx, "u1", "gravitation")
	if err != nil || !has {
		t.Fatalf("expected the purchase visible after expiry, got %v err=%v", has, err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected a second reader hit after expiry, got %d", inner.calls)
	}
}
