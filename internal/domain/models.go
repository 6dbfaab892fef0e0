package domain

import "time"

// Category identifies one of the three question kinds served for a topic.
type Category string

const (
	CategoryMCQ                Category = "mcq"
	CategoryAssertionReasoning Category = "assertion_reasoning"
	CategoryCaseStudy          Category = "case_study"
)

// Categories lists all question kinds in their canonical order.
func Categories() []Category {
	return []Category{CategoryMCQ, CategoryAssertionReasoning, CategoryCaseStudy}
}

// Label is the short tag rendered on a question card.
func (c Category) Label() string {
	switch c {
	case CategoryAssertionReasoning:
		return "Assertion & Reason"
	case CategoryCaseStudy:
		return "Case Study"
	default:
		return "MCQ"
	}
}

// HasScenario reports whether questions of this kind carry a scenario/reason block.
func (c Category) HasScenario() bool {
	return c == CategoryAssertionReasoning || c == CategoryCaseStudy
}

// Difficulty levels accepted by the question table.
const (
	DifficultySimple   = "simple"
	DifficultyMedium   = "medium"
	DifficultyAdvanced = "advanced"
)

// NormalizeDifficulty lowercases a difficulty value and falls back to medium
// for empty or unknown input.
func NormalizeDifficulty(raw string) string {
	switch raw {
	case DifficultySimple, DifficultyMedium, DifficultyAdvanced:
		return raw
	case "Simple", "SIMPLE":
		return DifficultySimple
	case "Advanced", "ADVANCED":
		return DifficultyAdvanced
	default:
		return DifficultyMedium
	}
}

// Option represents a possible answer for a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question models one quiz item as stored in the question table. Exactly one
// option's ID equals CorrectOptionID; rows are created by the backing store and
// are read-only here.
type Question struct {
	ID              int64    `json:"id"`
	Category        Category `json:"question_type"`
	Text            string   `json:"question_text"`
	Scenario        string   `json:"scenario_reason_text,omitempty"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correct_option_id"`
	Explanation     string   `json:"final_explanation"`
}

// CorrectOption returns the option matching CorrectOptionID.
func (q Question) CorrectOption() (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == q.CorrectOptionID {
			return opt, true
		}
	}
	return Option{}, false
}

// Identity is the opaque handle for a signed-in user. Callers only inspect
// presence and the anonymous flag.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Anonymous   bool   `json:"anonymous"`
}

// AnswerReview records the outcome for a single question of a submitted quiz.
type AnswerReview struct {
	QuestionID      int64  `json:"questionId"`
	UserOptionID    string `json:"userOptionId"`
	CorrectOptionID string `json:"correctOptionId"`
	Correct         bool   `json:"correct"`
}

// QuizResult is the write-once record persisted after submission.
type QuizResult struct {
	UserID         string         `json:"userId"`
	Topic          string         `json:"topic"`
	Difficulty     string         `json:"difficulty"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	PerQuestion    []AnswerReview `json:"perQuestion"`
	SubmittedAt    time.Time      `json:"submittedAt"`
}
