package view

import (
	"fmt"
	"strconv"
	"strings"

	"ready4exam-quiz-service/internal/domain"
)

// Screen names. Exactly one screen is active at a time; the transport replaces
// the previous screen whenever a new one is pushed.
const (
	ScreenQuiz    = "quiz-content"
	ScreenResults = "results-screen"
	ScreenPaywall = "paywall-screen"
	ScreenStatus  = "status-screen"
)

// Screen wraps a screen's content in its addressable container.
func Screen(name string, content Node) Node {
	return El("section", Attrs{"id": name, "class": "screen"}, content)
}

// QuestionCard renders one question: ordinal, category tag, optional
// scenario/assertion block, and the option list in stored order. After
// submission the correct option is marked, a differing user pick is marked
// incorrect, inputs are disabled, and the explanation is shown.
func QuestionCard(q domain.Question, ordinal int, selectedOptionID string, submitted bool) Node {
	kids := []Node{
		El("div", Attrs{"class": "question-header"},
			El("span", Attrs{"class": "ordinal"}, Text(fmt.Sprintf("Q%d.", ordinal))),
			El("span", Attrs{"class": "category-tag"}, Text(q.Category.Label())),
		),
	}

	if q.Category.HasScenario() && q.Scenario != "" {
		kids = append(kids, El("div", Attrs{"class": "scenario"}, CleanText(q.Scenario)))
	}

	kids = append(kids, El("div", Attrs{"class": "question-text"}, CleanText(q.Text)))
	kids = append(kids, optionList(q, selectedOptionID, submitted))

	if submitted && q.Explanation != "" {
		kids = append(kids, El("div", Attrs{"class": "explanation"}, CleanText(q.Explanation)))
	}

	return El("div", Attrs{
		"class":            "question-card",
		"data-question-id": strconv.FormatInt(q.ID, 10),
	}, kids...)
}

func optionList(q domain.Question, selectedOptionID string, submitted bool) Node {
	items := make([]Node, 0, len(q.Options))
	for _, opt := range q.Options {
		selected := opt.ID == selectedOptionID

		classes := []string{"option"}
		if submitted {
			if opt.ID == q.CorrectOptionID {
				classes = append(classes, "correct")
			} else if selected {
				classes = append(classes, "incorrect")
			}
		} else if selected {
			classes = append(classes, "selected")
		}

		inputAttrs := Attrs{
			"type":           "radio",
			"name":           "question-" + strconv.FormatInt(q.ID, 10),
			"value":          opt.ID,
			"data-option-id": opt.ID,
		}
		if selected {
			inputAttrs["checked"] = "checked"
		}
		if submitted {
			inputAttrs["disabled"] = "disabled"
		}

		items = append(items, El("label", Attrs{"class": strings.Join(classes, " ")},
			El("input", inputAttrs),
			El("span", Attrs{"class": "option-text"}, CleanText(opt.Text)),
		))
	}
	return El("div", Attrs{"class": "options"}, items...)
}

// QuizScreen renders the full quiz: header, cards in order, and the submit
// control, which becomes the results control once marked.
func QuizScreen(topicTitle, difficulty string, qs []domain.Question, selected []string, submitted bool) Node {
	kids := []Node{
		El("div", Attrs{"class": "quiz-header"},
			El("h1", Attrs{"id": "quiz-title"}, Text(topicTitle)),
			El("span", Attrs{"class": "difficulty-badge"}, Text(strings.ToUpper(difficulty))),
		),
	}
	for i, q := range qs {
		sel := ""
		if i < len(selected) {
			sel = selected[i]
		}
		kids = append(kids, QuestionCard(q, i+1, sel, submitted))
	}

	if submitted {
		kids = append(kids, El("button", Attrs{"id": "results-btn", "data-action": "results"}, Text("View Results")))
	} else {
		kids = append(kids, El("button", Attrs{"id": "submit-btn", "data-action": "submit"}, Text("Submit Quiz")))
	}

	return Screen(ScreenQuiz, El("div", Attrs{"class": "quiz-body"}, kids...))
}

// ScoreCard renders the results screen content for a finished quiz.
func ScoreCard(score, total int) Node {
	percent := 0
	if total > 0 {
		percent = score * 100 / total
	}

	message := "Keep practicing!"
	if percent >= 80 {
		message = "Excellent work!"
	} else if percent >= 50 {
		message = "Good effort! Room for improvement."
	}

	return Screen(ScreenResults, El("div", Attrs{"class": "score-card"},
		El("h2", nil, Text("Quiz Results")),
		El("div", Attrs{"class": "score", "id": "results-display"}, Text(fmt.Sprintf("%d / %d", score, total))),
		El("div", Attrs{"class": "percent"}, Text(fmt.Sprintf("%d%%", percent))),
		El("p", Attrs{"class": "message"}, Text(message)),
	))
}

// PaywallCard renders the access-denied screen for a locked topic.
func PaywallCard(topicTitle string) Node {
	return Screen(ScreenPaywall, El("div", Attrs{"class": "paywall"},
		El("h2", nil, Text("Access Restricted")),
		El("p", nil, Text(fmt.Sprintf("The %s quiz is part of our premium content.", topicTitle))),
		El("p", Attrs{"class": "hint"}, Text("Please sign in to confirm your access or purchase a subscription.")),
		El("button", Attrs{"data-action": "signin"}, Text("Sign In / Get Access")),
	))
}

// StatusBanner renders the status screen: progress messages and fatal errors.
func StatusBanner(message string, busy bool) Node {
	class := "status"
	if busy {
		class = "status busy"
	}
	return Screen(ScreenStatus, El("div", Attrs{"class": class, "id": "status-message"}, Text(message)))
}

// AuthNav renders the sign-in/out navigation fragment.
func AuthNav(identity domain.Identity, signedIn bool) Node {
	if !signedIn {
		return El("nav", Attrs{"id": "auth-nav"},
			El("button", Attrs{"data-action": "signin", "id": "login-btn"}, Text("Sign in")),
		)
	}
	name := identity.DisplayName
	if name == "" {
		name = identity.UID
	}
	return El("nav", Attrs{"id": "auth-nav"},
		El("span", Attrs{"class": "user"}, Text(name)),
		El("button", Attrs{"data-action": "signout", "id": "logout-btn"}, Text("Sign out")),
	)
}
