package memory

import (
	"context"
	"sync"

	"ready4exam-quiz-service/internal/domain"
)

// ResultStore keeps submitted quiz results in memory, keyed by user. It backs
// demo mode and tests when Postgres is not configured.
type ResultStore struct {
	mu     sync.RWMutex
	byUser map[string][]domain.QuizResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{byUser: make(map[string][]domain.QuizResult)}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[result.UserID] = append(s.byUser[result.UserID], result)
	return nil
}

// ResultsFor returns the stored results for a user.
func (s *ResultStore) ResultsFor(userID string) []domain.QuizResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizResult, len(s.byUser[userID]))
	copy(out, s.byUser[userID])
	return out
}
