// Package app contains the quiz controller: the single owner of in-memory
// quiz state and the orchestration of load, access check, fetch, answer
// collection, scoring, and result persistence.
package app

import (
	"context"
	"log"
	"net/url"
	"sync"
	"time"

	"ready4exam-quiz-service/internal/domain"
)

// Phase is the controller's explicit state.
type Phase int

const (
	PhaseLoading Phase = iota
	PhasePaywalled
	PhaseInProgress
	PhaseSubmitted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePaywalled:
		return "paywalled"
	case PhaseInProgress:
		return "in_progress"
	case PhaseSubmitted:
		return "submitted"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PageParams carries the read-only parameters a quiz session starts from.
// Topic is mandatory; difficulty defaults to medium.
type PageParams struct {
	Class      string
	Subject    string
	Topic      string
	Difficulty string
}

// ParamsFromQuery extracts page parameters from a request query string.
func ParamsFromQuery(q url.Values) PageParams {
	return PageParams{
		Class:      q.Get("class"),
		Subject:    q.Get("subject"),
		Topic:      q.Get("topic"),
		Difficulty: domain.NormalizeDifficulty(q.Get("difficulty")),
	}
}

// QuestionRepository fetches question sets and counts.
type QuestionRepository interface {
	FetchQuestions(ctx context.Context, topic, difficulty string) ([]domain.Question, error)
	CountQuestions(ctx context.Context, topic string) (int, error)
}

// ResultStore persists submitted quiz results.
type ResultStore interface {
	SaveResult(ctx context.Context, result domain.QuizResult) error
}

// AccessChecker is the single boolean entitlement decision point.
type AccessChecker interface {
	CheckAccess(ctx context.Context, topic string) bool
}

// IdentitySource reports the current identity, if any.
type IdentitySource func() (domain.Identity, bool)

// View is the presentation surface the controller drives. Each Show call
// replaces the active screen.
type View interface {
	ShowQuiz(params PageParams, qs []domain.Question, selected []string, submitted bool)
	ShowResults(score, total int)
	ShowPaywall(topic string)
	ShowStatus(message string, busy bool)
}

// Deps bundles the controller's collaborators.
type Deps struct {
	View        View
	Access      AccessChecker
	Questions   QuestionRepository
	Results     ResultStore
	Identity    IdentitySource
	LoadTimeout time.Duration
}

// Controller runs one quiz session. All state mutations happen on discrete
// event callbacks; the mutex guards against a sign-in change re-entering Load
// while an event is in flight.
type Controller struct {
	params PageParams
	deps   Deps

	mu        sync.Mutex
	phase     Phase
	questions []domain.Question
	answers   []string // parallel to questions; "" means unanswered
	score     int      // valid once submitted
}

func NewController(params PageParams, deps Deps) *Controller {
	params.Difficulty = domain.NormalizeDifficulty(params.Difficulty)
	return &Controller{params: params, deps: deps, phase: PhaseLoading}
}

// Params returns the session's page parameters.
func (c *Controller) Params() PageParams {
	return c.params
}

// Phase returns the controller's current state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Load runs the full sequence: parameter check, access check, fetch, render.
// Re-entering Load (e.g. after a sign-in) resets state; prior in-progress
// answers are discarded.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.questions = nil
	c.answers = nil
	c.score = 0
	c.mu.Unlock()

	if c.params.Topic == "" {
		c.fail(domain.ErrTopicRequired.Error())
		return
	}

	if c.deps.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.deps.LoadTimeout)
		defer cancel()
	}

	c.deps.View.ShowStatus("Checking access permissions...", true)
	if !c.deps.Access.CheckAccess(ctx, c.params.Topic) {
		c.mu.Lock()
		c.phase = PhasePaywalled
		c.mu.Unlock()
		c.deps.View.ShowPaywall(c.params.Topic)
		return
	}

	c.deps.View.ShowStatus("Fetching questions...", true)
	qs, err := c.deps.Questions.FetchQuestions(ctx, c.params.Topic, c.params.Difficulty)
	if err != nil {
		c.fail("Failed to load quiz: " + err.Error())
		return
	}
	if len(qs) == 0 {
		c.fail("No questions found for this topic and difficulty.")
		return
	}

	c.mu.Lock()
	c.phase = PhaseInProgress
	c.questions = qs
	c.answers = make([]string, len(qs))
	c.mu.Unlock()

	c.deps.View.ShowQuiz(c.params, qs, make([]string, len(qs)), false)
}

// Select records an option pick for a question. Ignored unless the quiz is in
// progress, so selection events after submission are dropped.
func (c *Controller) Select(questionID int64, optionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseInProgress {
		return
	}
	for i, q := range c.questions {
		if q.ID != questionID {
			continue
		}
		for _, opt := range q.Options {
			if opt.ID == optionID {
				c.answers[i] = optionID
				return
			}
		}
		return
	}
}

// Submit freezes the answers, scores the quiz synchronously, shows the marked
// quiz, then dispatches persistence off the critical path. The score screen
// waits for Results so the per-question feedback stays visible first. A second
// Submit is a no-op.
func (c *Controller) Submit(ctx context.Context) {
	c.mu.Lock()
	if c.phase != PhaseInProgress {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseSubmitted
	qs := c.questions
	answers := make([]string, len(c.answers))
	copy(answers, c.answers)
	c.mu.Unlock()

	score := 0
	reviews := make([]domain.AnswerReview, len(qs))
	for i, q := range qs {
		correct := answers[i] != "" && answers[i] == q.CorrectOptionID
		if correct {
			score++
		}
		reviews[i] = domain.AnswerReview{
			QuestionID:      q.ID,
			UserOptionID:    answers[i],
			CorrectOptionID: q.CorrectOptionID,
			Correct:         correct,
		}
	}

	c.mu.Lock()
	c.score = score
	c.mu.Unlock()

	c.deps.View.ShowQuiz(c.params, qs, answers, true)

	identity, signedIn := c.deps.Identity()
	if !signedIn {
		log.Printf("quiz: result not saved, no signed-in user")
		return
	}

	result := domain.QuizResult{
		UserID:         identity.UID,
		Topic:          c.params.Topic,
		Difficulty:     c.params.Difficulty,
		Score:          score,
		TotalQuestions: len(qs),
		PerQuestion:    reviews,
		SubmittedAt:    time.Now(),
	}
	go c.persist(result)
}

// Results shows the score screen. Ignored unless the quiz has been submitted,
// so the marked quiz stays up until the taker asks for the score.
func (c *Controller) Results() {
	c.mu.Lock()
	if c.phase != PhaseSubmitted {
		c.mu.Unlock()
		return
	}
	score, total := c.score, len(c.questions)
	c.mu.Unlock()
	c.deps.View.ShowResults(score, total)
}

// persist saves a result off the critical path. Failures are logged, never
// surfaced, never retried.
func (c *Controller) persist(result domain.QuizResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.deps.Results.SaveResult(ctx, result); err != nil {
		log.Printf("quiz: result save failed for %s/%s: %v", result.Topic, result.Difficulty, err)
	}
}

func (c *Controller) fail(message string) {
	c.mu.Lock()
	c.phase = PhaseFailed
	c.mu.Unlock()
	c.deps.View.ShowStatus(message, false)
}
