package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"ready4exam-quiz-service/internal/app"
	"ready4exam-quiz-service/internal/auth"
	"ready4exam-quiz-service/internal/catalog"
	"ready4exam-quiz-service/internal/domain"
	"ready4exam-quiz-service/internal/view"
	"github.com/gorilla/websocket"
)

// QuizHandler runs one quiz session per websocket connection: the page
// parameters arrive in the query string, rendered screens are pushed out, and
// selection/submit/sign-in events come back in.
type QuizHandler struct {
	gateway     *auth.Gateway
	questions   app.QuestionRepository
	results     app.ResultStore
	curriculum  catalog.Curriculum
	loadTimeout time.Duration
	upgrader    websocket.Upgrader
}

func NewQuizHandler(gateway *auth.Gateway, questions app.QuestionRepository, results app.ResultStore, curriculum catalog.Curriculum, loadTimeout time.Duration) *QuizHandler {
	return &QuizHandler{
		gateway:     gateway,
		questions:   questions,
		results:     results,
		curriculum:  curriculum,
		loadTimeout: loadTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuestionID int64  `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type outboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type viewPayload struct {
	Screen string `json:"screen"`
	HTML   string `json:"html"`
}

type authPayload struct {
	SignedIn    bool   `json:"signedIn"`
	UID         string `json:"uid,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	HTML        string `json:"html"`
}

type errorMessagePayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and wires the connection into a quiz session.
func (h *QuizHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	params := app.ParamsFromQuery(r.URL.Query())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session := newSession(h.curriculum)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer session.close()
		for {
			select {
			case msg := <-session.send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-session.done:
				return
			}
		}
	}()

	ctrl := app.NewController(params, app.Deps{
		View:        session,
		Access:      h.gateway,
		Questions:   h.questions,
		Results:     h.results,
		Identity:    h.gateway.Current,
		LoadTimeout: h.loadTimeout,
	})

	identity, signedIn := h.gateway.Current()
	session.pushAuth(identity, signedIn)

	// Every auth transition flows through one path: update the nav and rerun
	// the load sequence, which discards in-progress answers.
	unsubscribe := h.gateway.OnChange(func(identity domain.Identity, signedIn bool) {
		session.pushAuth(identity, signedIn)
		go ctrl.Load(context.Background())
	})
	defer unsubscribe()

	ctrl.Load(r.Context())

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				session.pushError("invalid select payload")
				continue
			}
			ctrl.Select(payload.QuestionID, payload.OptionID)
		case "submit":
			ctrl.Submit(r.Context())
		case "results":
			ctrl.Results()
		case "signin":
			if _, err := h.gateway.SignIn(r.Context()); err != nil {
				log.Printf("ws sign-in failed: %v", err)
				session.ShowStatus("Sign-in failed. Please try again.", false)
			}
		case "signout":
			if err := h.gateway.SignOut(r.Context()); err != nil {
				session.pushError("sign-out failed")
			}
		case "reload":
			ctrl.Load(r.Context())
		default:
			session.pushError("unsupported message type")
		}
	}

	session.close()
	<-writerDone
}

// session renders controller output to HTML fragments and pushes them on the
// socket. It implements app.View; each view message replaces the active
// screen, keeping exactly one visible.
type session struct {
	curriculum catalog.Curriculum

	send      chan outboundMessage
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(curriculum catalog.Curriculum) *session {
	return &session{
		curriculum: curriculum,
		send:       make(chan outboundMessage, 32),
		done:       make(chan struct{}),
	}
}

func (s *session) ShowQuiz(params app.PageParams, qs []domain.Question, selected []string, submitted bool) {
	title := s.curriculum.TopicTitle(params.Topic)
	s.pushView(view.ScreenQuiz, view.QuizScreen(title, params.Difficulty, qs, selected, submitted))
}

func (s *session) ShowResults(score, total int) {
	s.pushView(view.ScreenResults, view.ScoreCard(score, total))
}

func (s *session) ShowPaywall(topic string) {
	s.pushView(view.ScreenPaywall, view.PaywallCard(s.curriculum.TopicTitle(topic)))
}

func (s *session) ShowStatus(message string, busy bool) {
	s.pushView(view.ScreenStatus, view.StatusBanner(message, busy))
}

func (s *session) pushView(screen string, node view.Node) {
	s.push(outboundMessage{Type: "view", Payload: viewPayload{Screen: screen, HTML: view.Render(node)}})
}

func (s *session) pushAuth(identity domain.Identity, signedIn bool) {
	payload := authPayload{
		SignedIn: signedIn,
		HTML:     view.Render(view.AuthNav(identity, signedIn)),
	}
	if signedIn {
		payload.UID = identity.UID
		payload.DisplayName = identity.DisplayName
	}
	s.push(outboundMessage{Type: "auth", Payload: payload})
}

func (s *session) pushError(message string) {
	s.push(outboundMessage{Type: "error", Payload: errorMessagePayload{Message: message}})
}

// push blocks until the writer takes the message so no screen is ever lost; a
// slow client slows the session down rather than skipping frames. A closed
// session unblocks immediately.
func (s *session) push(msg outboundMessage) {
	select {
	case s.send <- msg:
	case <-s.done:
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}
