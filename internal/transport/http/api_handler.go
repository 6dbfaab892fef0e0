package http

import (
	"encoding/json"
	"log"
	"net/http"

	"ready4exam-quiz-service/internal/app"
	"ready4exam-quiz-service/internal/catalog"
)

// APIHandler serves the read-only JSON endpoints used outside the quiz flow:
// the curriculum for navigation and per-topic question counts for display.
type APIHandler struct {
	questions  app.QuestionRepository
	curriculum catalog.Curriculum
}

func NewAPIHandler(questions app.QuestionRepository, curriculum catalog.Curriculum) *APIHandler {
	return &APIHandler{questions: questions, curriculum: curriculum}
}

func (h *APIHandler) Curriculum(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.curriculum)
}

func (h *APIHandler) QuestionCount(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		http.Error(w, "missing topic", http.StatusBadRequest)
		return
	}
	count, err := h.questions.CountQuestions(r.Context(), topic)
	if err != nil {
		log.Printf("api: count questions for %s: %v", topic, err)
		http.Error(w, "count unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{"topic": topic, "count": count})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}
