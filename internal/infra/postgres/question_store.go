package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"ready4exam-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionStore reads the question table. Options are stored as JSONB.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

// FetchCategory returns up to limit questions for one category, ordered by id
// for reproducible pagination.
func (s *QuestionStore) FetchCategory(ctx context.Context, topic, difficulty string, category domain.Category, limit int) ([]domain.Question, error) {
	if s.pool == nil {
		return nil, domain.ErrStoreUnavailable
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, question_type, question_text, COALESCE(scenario_reason_text, ''), options, correct_option_id, final_explanation
		FROM questions
		WHERE topic_slug = $1 AND difficulty = $2 AND question_type = $3
		ORDER BY id
		LIMIT $4`,
		topic, difficulty, string(category), limit)
	if err != nil {
		return nil, fmt.Errorf("query %s questions: %w", category, err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var q domain.Question
		var rawOptions []byte
		if err := rows.Scan(&q.ID, &q.Category, &q.Text, &q.Scenario, &rawOptions, &q.CorrectOptionID, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options for question %d: %w", q.ID, err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s questions: %w", category, err)
	}
	return out, nil
}

// CountQuestions reports the total rows stored for a topic across all
// difficulties and categories.
func (s *QuestionStore) CountQuestions(ctx context.Context, topic string) (int, error) {
	if s.pool == nil {
		return 0, domain.ErrStoreUnavailable
	}
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE topic_slug = $1`, topic).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}
