package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"ready4exam-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore persists one row per quiz submission.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.QuizResult) error {
	if s.pool == nil {
		return domain.ErrStoreUnavailable
	}

	perQuestion, err := json.Marshal(result.PerQuestion)
	if err != nil {
		return fmt.Errorf("marshal per-question reviews: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_results (user_id, topic_slug, difficulty, score, total_questions, per_question, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		result.UserID, result.Topic, result.Difficulty, result.Score, result.TotalQuestions, perQuestion, result.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}
