// Package questions assembles a quiz's question set: three category-scoped
// fetches run concurrently, partial failures degrade to empty categories, and
// the merged set is shuffled so questions are not clustered by kind.
package questions

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"ready4exam-quiz-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// CategoryFetcher loads one category's questions from a backing store or cache.
type CategoryFetcher interface {
	FetchCategory(ctx context.Context, topic, difficulty string, category domain.Category, limit int) ([]domain.Question, error)
}

// Counter reports how many questions exist for a topic (display only).
type Counter interface {
	CountQuestions(ctx context.Context, topic string) (int, error)
}

// Limits caps how many questions each category contributes to a quiz.
type Limits struct {
	MCQ                int
	AssertionReasoning int
	CaseStudy          int
}

// DefaultLimits mirrors the question mix served per quiz.
func DefaultLimits() Limits {
	return Limits{MCQ: 10, AssertionReasoning: 5, CaseStudy: 5}
}

func (l Limits) forCategory(c domain.Category) int {
	switch c {
	case domain.CategoryAssertionReasoning:
		return l.AssertionReasoning
	case domain.CategoryCaseStudy:
		return l.CaseStudy
	default:
		return l.MCQ
	}
}

// Fetcher joins per-category fetches into a shuffled question set.
type Fetcher struct {
	source  CategoryFetcher
	counter Counter
	limits  Limits

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewFetcher(source CategoryFetcher, counter Counter, limits Limits) *Fetcher {
	return &Fetcher{
		source:  source,
		counter: counter,
		limits:  limits,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewFetcherWithRand allows deterministic shuffles in tests.
func NewFetcherWithRand(source CategoryFetcher, counter Counter, limits Limits, rnd *rand.Rand) *Fetcher {
	f := NewFetcher(source, counter, limits)
	f.rnd = rnd
	return f
}

// FetchQuestions runs the three category queries concurrently and merges the
// results. A failed category logs and contributes nothing; the join only fails
// when the backing store itself is not initialized.
func (f *Fetcher) FetchQuestions(ctx context.Context, topic, difficulty string) ([]domain.Question, error) {
	if f.source == nil {
		return nil, domain.ErrStoreUnavailable
	}

	categories := domain.Categories()
	buckets := make([][]domain.Question, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		i, category := i, category
		g.Go(func() error {
			fetched, err := f.source.FetchCategory(gctx, topic, difficulty, category, f.limits.forCategory(category))
			if err != nil {
				if errors.Is(err, domain.ErrStoreUnavailable) {
					return err
				}
				log.Printf("questions: %s fetch failed for %s/%s: %v", category, topic, difficulty, err)
				return nil
			}
			buckets[i] = fetched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]domain.Question, 0, len(buckets[0])+len(buckets[1])+len(buckets[2]))
	for _, bucket := range buckets {
		merged = append(merged, bucket...)
	}

	f.mu.Lock()
	f.rnd.Shuffle(len(merged), func(i, j int) {
		merged[i], merged[j] = merged[j], merged[i]
	})
	f.mu.Unlock()

	return merged, nil
}

// CountQuestions reports the total available question count for a topic.
func (f *Fetcher) CountQuestions(ctx context.Context, topic string) (int, error) {
	if f.counter == nil {
		return 0, domain.ErrStoreUnavailable
	}
	return f.counter.CountQuestions(ctx, topic)
}
