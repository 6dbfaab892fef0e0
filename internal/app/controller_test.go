package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ready4exam-quiz-service/internal/app"
	"ready4exam-quiz-service/internal/domain"
)

func TestLoadMissingTopicIsFatal(t *testing.T) {
	view := newFakeView()
	access := &fakeAccess{allow: true}
	repo := &fakeRepo{qs: fiveQuestions()}
	ctrl := newTestController(t, app.PageParams{Topic: ""}, view, access, repo, newFakeResults())

	ctrl.Load(context.Background())

	if ctrl.Phase() != app.PhaseFailed {
		t.Fatalf("expected failed phase, got %v", ctrl.Phase())
	}
	if access.calls != 0 {
		t.Fatalf("expected no access check, got %d", access.calls)
	}
	if repo.calls != 0 {
		t.Fatalf("expected no fetch, got %d", repo.calls)
	}
	if view.lastStatus == "" {
		t.Fatalf("expected a fatal status message")
	}
}

func TestLoadAccessDeniedShortCircuits(t *testing.T) {
	view := newFakeView()
	access := &fakeAccess{allow: false}
	repo := &fakeRepo{qs: fiveQuestions()}
	ctrl := newTestController(t, gravitationParams(), view, access, repo, newFakeResults())

	ctrl.Load(context.Background())

	if ctrl.Phase() != app.PhasePaywalled {
		t.Fatalf("expected paywalled phase, got %v", ctrl.Phase())
	}
	if repo.calls != 0 {
		t.Fatalf("expected fetch to be skipped, got %d calls", repo.calls)
	}
	if view.paywallTopic != "gravitation" {
		t.Fatalf("expected paywall for gravitation, got %q", view.paywallTopic)
	}
}

func TestLoadFetchErrorShowsStatus(t *testing.T) {
	view := newFakeView()
	repo := &fakeRepo{err: errors.New("category table missing")}
	ctrl := newTestController(t, gravitationParams(), view, &fakeAccess{allow: true}, repo, newFakeResults())

	ctrl.Load(context.Background())

	if ctrl.Phase() != app.PhaseFailed {
		t.Fatalf("expected failed phase, got %v", ctrl.Phase())
	}
	if view.lastStatus == "" || view.lastStatusBusy {
		t.Fatalf("expected terminal status with the error message, got %q busy=%v", view.lastStatus, view.lastStatusBusy)
	}
}

func TestScoreBounds(t *testing.T) {
	qs := fiveQuestions()

	// No answers selected: score 0.
	view := newFakeView()
	results := newFakeResults()
	ctrl := newTestController(t, gravitationParams(), view, &fakeAccess{allow: true}, &fakeRepo{qs: qs}, results)
	ctrl.Load(context.Background())
	ctrl.Submit(context.Background())
	ctrl.Results()
	if view.lastScore != 0 || view.lastTotal != 5 {
		t.Fatalf("expected 0/5 for no answers, got %d/%d", view.lastScore, view.lastTotal)
	}

	// All correct: score equals length.
	view = newFakeView()
	ctrl = newTestController(t, gravitationParams(), view, &fakeAccess{allow: true}, &fakeRepo{qs: qs}, newFakeResults())
	ctrl.Load(context.Background())
	for _, q := range qs {
		ctrl.Select(q.ID, q.CorrectOptionID)
	}
	ctrl.Submit(context.Background())
	ctrl.Results()
	if view.lastScore != 5 || view.lastTotal != 5 {
		t.Fatalf("expected 5/5 for all correct, got %d/%d", view.lastScore, view.lastTotal)
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	qs := fiveQuestions()
	view := newFakeView()
	results := newFakeResults()
	ctrl := newTestController(t, gravitationParams(), view, &fakeAccess{allow: true}, &fakeRepo{qs: qs}, results)

	ctrl.Load(context.Background())
	ctrl.Select(qs[0].ID, qs[0].CorrectOptionID)
	ctrl.Submit(context.Background())
	ctrl.Submit(context.Background())
	ctrl.Results()

	if got := view.resultShows; got != 1 {
		t.Fatalf("expected one results render, got %d", got)
	}

	first := results.wait(t)
	if first.Score != 1 {
		t.Fatalf("expected score 1 persisted, got %d", first.Score)
	}
	select {
	case extra := <-results.saved:
		t.Fatalf("expected a single persistence call, got another: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSelectIgnoredAfterSubmit(t *testing.T) {
	qs := fiveQuestions()
	view := newFakeView()
	results := newFakeResults()
	ctrl := newTestController(t, gravitationParams(), view, &fakeAccess{allow: true}, &fakeRepo{qs: qs}, results)

	ctrl.Load(context.Background())
	ctrl.Submit(context.Background())
	ctrl.Select(qs[0].ID, qs[0].CorrectOptionID)

	if ctrl.Phase() != app.PhaseSubmitted {
		t.Fatalf("expected submitted phase, got %v", ctrl.Phase())
	}
	saved := results.wait(t)
	if saved.Score != 0 {
		t.Fatalf("late selection must not change the persisted score, got %d", saved.Score)
	}
}

func TestReloadDiscardsInProgressAnswers(t *testing.T) {
	qs := fiveQuestions()
	view := newFakeView()
	ctrl := newTestController(t, gravitationParams(), view, &fakeAccess{allow: true}, &fakeRepo{qs: qs}, newFakeResults())

	ctrl.Load(context.Background())
	ctrl.Select(qs[0].ID, qs[0].CorrectOptionID)
	ctrl.Load(context.Background())
	ctrl.Submit(context.Background())
	ctrl.Results()

	if view.lastScore != 0 {
		t.Fatalf("expected reload to discard answers, got score %d", view.lastScore)
	}
}

func TestResultsWaitForRequest(t *testing.T) {
	qs := fiveQuestions()
	view := newFakeView()
	ctrl := newTestController(t, gravitationParams(), view, &fakeAccess{allow: true}, &fakeRepo{qs: qs}, newFakeResults())

	ctrl.Load(context.Background())
	ctrl.Results() // nothing to show yet
	if view.resultShows != 0 {
		t.Fatalf("results must not render before submission, got %d renders", view.resultShows)
	}

	ctrl.Select(qs[0].ID, qs[0].CorrectOptionID)
	ctrl.Submit(context.Background())
	if view.resultShows != 0 {
		t.Fatalf("submit itself must leave the marked quiz visible, got %d renders", view.resultShows)
	}
	if !view.submittedQuizShown {
		t.Fatalf("expected the marked quiz after submit")
	}

	ctrl.Results()
	if view.resultShows != 1 || view.lastScore != 1 || view.lastTotal != 5 {
		t.Fatalf("expected 1/5 on request, got %d renders %d/%d", view.resultShows, view.lastScore, view.lastTotal)
	}
}

func TestGravitationScenario(t *testing.T) {
	qs := fiveQuestions()
	view := newFakeView()
	results := newFakeResults()
	ctrl := newTestController(t, gravitationParams(), view, &fakeAccess{allow: true}, &fakeRepo{qs: qs}, results)

	ctrl.Load(context.Background())
	// Four correct answers, one wrong pick.
	for _, q := range qs[:4] {
		ctrl.Select(q.ID, q.CorrectOptionID)
	}
	ctrl.Select(qs[4].ID, wrongOption(qs[4]))
	ctrl.Submit(context.Background())
	ctrl.Results()

	if view.lastScore != 4 || view.lastTotal != 5 {
		t.Fatalf("expected 4 / 5, got %d / %d", view.lastScore, view.lastTotal)
	}
	if !view.submittedQuizShown {
		t.Fatalf("expected the marked quiz to render before the results")
	}

	saved := results.wait(t)
	if saved.Topic != "gravitation" || saved.Difficulty != domain.DifficultyMedium {
		t.Fatalf("unexpected result keys: %+v", saved)
	}
	if saved.Score != 4 || saved.TotalQuestions != 5 {
		t.Fatalf("expected 4/5 persisted, got %d/%d", saved.Score, saved.TotalQuestions)
	}
	if len(saved.PerQuestion) != 5 {
		t.Fatalf("expected 5 reviews, got %d", len(saved.PerQuestion))
	}
	wrong := saved.PerQuestion[4]
	if wrong.Correct || wrong.CorrectOptionID != qs[4].CorrectOptionID {
		t.Fatalf("expected last review marked incorrect with the right answer recorded, got %+v", wrong)
	}
}

func TestPersistenceSkippedWhenSignedOut(t *testing.T) {
	qs := fiveQuestions()
	results := newFakeResults()
	ctrl := app.NewController(gravitationParams(), app.Deps{
		View:      newFakeView(),
		Access:    &fakeAccess{allow: true},
		Questions: &fakeRepo{qs: qs},
		Results:   results,
		Identity:  func() (domain.Identity, bool) { return domain.Identity{}, false },
	})

	ctrl.Load(context.Background())
	ctrl.Submit(context.Background())

	select {
	case saved := <-results.saved:
		t.Fatalf("expected no persistence without identity, got %+v", saved)
	case <-time.After(100 * time.Millisecond):
	}
}

// --- fakes ---

func newTestController(t *testing.T, params app.PageParams, view *fakeView, access *fakeAccess, repo *fakeRepo, results *fakeResults) *app.Controller {
	t.Helper()
	return app.NewController(params, app.Deps{
		View:      view,
		Access:    access,
		Questions: repo,
		Results:   results,
		Identity:  func() (domain.Identity, bool) { return domain.Identity{UID: "u1", DisplayName: "Alice"}, true },
	})
}

func gravitationParams() app.PageParams {
	return app.PageParams{Class: "9", Subject: "Science", Topic: "gravitation", Difficulty: domain.DifficultyMedium}
}

type fakeView struct {
	mu                 sync.Mutex
	lastStatus         string
	lastStatusBusy     bool
	paywallTopic       string
	lastScore          int
	lastTotal          int
	resultShows        int
	submittedQuizShown bool
}

func newFakeView() *fakeView { return &fakeView{} }

func (v *fakeView) ShowQuiz(_ app.PageParams, _ []domain.Question, _ []string, submitted bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if submitted {
		v.submittedQuizShown = true
	}
}

func (v *fakeView) ShowResults(score, total int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastScore = score
	v.lastTotal = total
	v.resultShows++
}

func (v *fakeView) ShowPaywall(topic string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paywallTopic = topic
}

func (v *fakeView) ShowStatus(message string, busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastStatus = message
	v.lastStatusBusy = busy
}

type fakeAccess struct {
	allow bool
	calls int
}

func (a *fakeAccess) CheckAccess(_ context.Context, _ string) bool {
	a.calls++
	return a.allow
}

type fakeRepo struct {
	qs    []domain.Question
	err   error
	calls int
}

func (r *fakeRepo) FetchQuestions(_ context.Context, _, _ string) ([]domain.Question, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.qs, nil
}

func (r *fakeRepo) CountQuestions(_ context.Context, _ string) (int, error) {
	return len(r.qs), nil
}

type fakeResults struct {
	saved chan domain.QuizResult
}

func newFakeResults() *fakeResults {
	return &fakeResults{saved: make(chan domain.QuizResult, 4)}
}

func (r *fakeResults) SaveResult(_ context.Context, result domain.QuizResult) error {
	r.saved <- result
	return nil
}

func (r *fakeResults) wait(t *testing.T) domain.QuizResult {
	t.Helper()
	select {
	case result := <-r.saved:
		return result
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for result persistence")
		return domain.QuizResult{}
	}
}

func fiveQuestions() []domain.Question {
	mk := func(id int64, category domain.Category, correct string) domain.Question {
		return domain.Question{
			ID:       id,
			Category: category,
			Text:     "question",
			Options: []domain.Option{
				{ID: "a", Text: "first"},
				{ID: "b", Text: "second"},
				{ID: "c", Text: "third"},
			},
			CorrectOptionID: correct,
		}
	}
	return []domain.Question{
		mk(1, domain.CategoryMCQ, "a"),
		mk(2, domain.CategoryMCQ, "b"),
		mk(3, domain.CategoryMCQ, "c"),
		mk(4, domain.CategoryAssertionReasoning, "a"),
		mk(5, domain.CategoryCaseStudy, "b"),
	}
}

func wrongOption(q domain.Question) string {
	for _, opt := range q.Options {
		if opt.ID != q.CorrectOptionID {
			return opt.ID
		}
	}
	return ""
}
