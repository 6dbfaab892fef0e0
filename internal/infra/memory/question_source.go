package memory

import (
	"context"

	"ready4exam-quiz-service/internal/domain"
)

// StaticQuestionSource serves questions from an in-memory map keyed by topic
// slug (useful for tests and demo mode without a database).
type StaticQuestionSource struct {
	byTopic map[string][]domain.Question
}

func NewStaticQuestionSource(byTopic map[string][]domain.Question) *StaticQuestionSource {
	return &StaticQuestionSource{byTopic: byTopic}
}

// FetchCategory filters the topic's questions by difficulty-agnostic category.
// The static source carries one difficulty tier per topic, so the difficulty
// filter is a no-op here.
func (s *StaticQuestionSource) FetchCategory(_ context.Context, topic, _ string, category domain.Category, limit int) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range s.byTopic[topic] {
		if q.Category != category {
			continue
		}
		out = append(out, q)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// CountQuestions reports the total stored for a topic.
func (s *StaticQuestionSource) CountQuestions(_ context.Context, topic string) (int, error) {
	return len(s.byTopic[topic]), nil
}
