package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"rapbattle-quiz-service/internal/app"
	"rapbattle-quiz-service/internal/bank"
	"rapbattle-quiz-service/internal/domain"
	"rapbattle-quiz-service/internal/progress"
	"github.com/gorilla/websocket"
)

// StatsStoreFactory binds a stats store to one user's key-value slot.
type StatsStoreFactory func(userKey string) progress.StatsStore

// WSHandler drives quiz sessions over a websocket. The handler owns
// the wall-clock timers (answer deadline, reveal period) and turns
// them into session transitions; the connected client only ever
// starts sessions and submits answers.
type WSHandler struct {
	service  *app.QuizService
	stores   StatsStoreFactory
	bankID   string
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, stores StatsStoreFactory, bankID string) *WSHandler {
	return &WSHandler{
		service: service,
		stores:  stores,
		bankID:  bankID,
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

type startPayload struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

type answerPayload struct {
	Index int `json:"index"`
}

type questionPayload struct {
	QuestionID       string   `json:"questionId"`
	Index            int      `json:"index"`
	Total            int      `json:"total"`
	Prompt           string   `json:"prompt"`
	Options          []string `json:"options"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Points           int      `json:"points"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

type revealPayload struct {
	QuestionID    string        `json:"questionId"`
	UserAnswer    domain.Answer `json:"userAnswer"`
	CorrectAnswer int           `json:"correctAnswer"`
	IsCorrect     bool          `json:"isCorrect"`
	PointsEarned  int           `json:"pointsEarned"`
	Explanation   string        `json:"explanation"`
	Streak        int           `json:"streak"`
	NewBadges     []string      `json:"newBadges"`
}

type completePayload struct {
	Results     []domain.Result  `json:"results"`
	NewBadges   []string         `json:"newBadges"`
	Stats       domain.UserStats `json:"stats"`
	Level       domain.Level     `json:"level"`
	SuccessRate int              `json:"successRate"`
}

type statsPayload struct {
	Stats       domain.UserStats `json:"stats"`
	Level       domain.Level     `json:"level"`
	SuccessRate int              `json:"successRate"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// The fixed Vrai/Faux pair presented for true-false questions.
var trueFalseOptions = []string{"Vrai", "Faux"}

// ServeWS upgrades HTTP requests to websockets and runs the per-user
// quiz loop until the client disconnects. Disconnecting mid-session
// abandons it: revealed answers are already recorded, but nothing
// session-scoped is folded.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	tracker, err := progress.NewTracker(r.Context(), h.stores(userID))
	if err != nil {
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		log.Printf("load stats for %s: %v", userID, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	inbound := make(chan inboundMessage)
	go func() {
		defer close(inbound)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			inbound <- msg
		}
	}()

	loop := &sessionLoop{
		handler: h,
		tracker: tracker,
		send:    send,
		r:       r,
	}
	loop.run(inbound)

	close(send)
	<-writerDone
}

// sessionLoop serializes timer events and client messages for one
// connection, so session transitions never race.
type sessionLoop struct {
	handler *WSHandler
	tracker *progress.Tracker
	send    chan outboundMessage[any]
	r       *http.Request

	session       *app.Session
	questionTimer *time.Timer
	revealTimer   *time.Timer
}

func (l *sessionLoop) run(inbound <-chan inboundMessage) {
	// Timers start drained; their channels are swapped in on demand.
	l.questionTimer = time.NewTimer(time.Hour)
	l.revealTimer = time.NewTimer(time.Hour)
	stopTimer(l.questionTimer)
	stopTimer(l.revealTimer)
	defer stopTimer(l.questionTimer)
	defer stopTimer(l.revealTimer)

	l.sendStats()

	for {
		select {
		case msg, ok := <-inbound:
			if !ok {
				return
			}
			l.handleMessage(msg)
		case <-l.questionTimer.C:
			l.handleQuestionTimeout()
		case <-l.revealTimer.C:
			l.handleRevealElapsed()
		}
	}
}

func (l *sessionLoop) handleMessage(msg inboundMessage) {
	switch msg.Type {
	case "start":
		var payload startPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				l.sendError("invalid start payload")
				return
			}
		}
		l.startSession(payload)
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			l.sendError("invalid answer payload")
			return
		}
		l.handleAnswer(payload.Index)
	case "stats":
		l.sendStats()
	case "reset":
		if err := l.tracker.Reset(l.r.Context()); err != nil {
			l.sendWarning()
		}
		l.sendStats()
	default:
		l.sendError("unsupported message type")
	}
}

func (l *sessionLoop) startSession(payload startPayload) {
	if l.session != nil && !l.session.Completed() {
		l.sendError("a session is already in progress")
		return
	}

	count := payload.Count
	if count <= 0 {
		count = 5
	}
	filter := bank.Filter{
		Category:   domain.Category(payload.Category),
		Difficulty: domain.Difficulty(payload.Difficulty),
	}

	session, err := l.handler.service.StartSession(l.r.Context(), l.handler.bankID, filter, count)
	if err != nil {
		l.sendError(err.Error())
		return
	}
	l.session = session

	if session.Completed() {
		// Nothing matched the filter; complete with an empty result
		// list and no durable effect.
		l.send <- outboundMessage[any]{Type: "sessionComplete", Payload: completePayload{
			Results:     session.Results(),
			Stats:       l.tracker.Stats(),
			Level:       l.tracker.Level(),
			SuccessRate: l.tracker.SuccessRate(),
		}}
		l.session = nil
		return
	}
	l.presentQuestion()
}

func (l *sessionLoop) presentQuestion() {
	question, ok := l.session.Current()
	if !ok {
		return
	}
	index, total := l.session.Progress()

	options := question.Options
	if question.Kind == domain.KindTrueFalse {
		options = trueFalseOptions
	}

	l.send <- outboundMessage[any]{Type: "question", Payload: questionPayload{
		QuestionID:       question.ID,
		Index:            index,
		Total:            total,
		Prompt:           question.Prompt,
		Options:          options,
		Category:         string(question.Category),
		Difficulty:       string(question.Difficulty),
		Points:           question.Points,
		TimeLimitSeconds: int(app.QuestionTimeLimit / time.Second),
	}}
	resetTimer(l.questionTimer, time.Until(l.session.Deadline()))
}

func (l *sessionLoop) handleAnswer(index int) {
	if l.session == nil {
		l.sendError("no session in progress")
		return
	}
	result, err := l.session.Submit(index)
	switch {
	case errors.Is(err, domain.ErrOptionOutOfRange):
		l.sendError("option index out of range")
		return
	case err != nil:
		// Late or duplicate frames during the reveal are dropped.
		return
	}
	l.reveal(result)
}

func (l *sessionLoop) handleQuestionTimeout() {
	if l.session == nil {
		return
	}
	result, due := l.session.ExpireIfDue()
	if !due {
		return
	}
	l.reveal(result)
}

func (l *sessionLoop) reveal(result domain.Result) {
	stopTimer(l.questionTimer)

	newBadges, err := l.tracker.RecordAnswer(l.r.Context(), result)
	if err != nil {
		l.sendWarning()
	}

	question, _ := l.session.Current()
	l.send <- outboundMessage[any]{Type: "reveal", Payload: revealPayload{
		QuestionID:    result.QuestionID,
		UserAnswer:    result.UserAnswer,
		CorrectAnswer: question.CorrectAnswer,
		IsCorrect:     result.IsCorrect,
		PointsEarned:  result.PointsEarned,
		Explanation:   question.Explanation,
		Streak:        l.session.Streak(),
		NewBadges:     newBadges,
	}}
	resetTimer(l.revealTimer, time.Until(l.session.RevealDeadline()))
}

func (l *sessionLoop) handleRevealElapsed() {
	if l.session == nil {
		return
	}
	if err := l.session.Advance(); err != nil {
		return
	}
	if !l.session.Completed() {
		l.presentQuestion()
		return
	}

	results := l.session.Results()
	newBadges, err := l.tracker.CompleteSession(l.r.Context(), results)
	if err != nil {
		l.sendWarning()
	}
	l.send <- outboundMessage[any]{Type: "sessionComplete", Payload: completePayload{
		Results:     results,
		NewBadges:   newBadges,
		Stats:       l.tracker.Stats(),
		Level:       l.tracker.Level(),
		SuccessRate: l.tracker.SuccessRate(),
	}}
	l.session = nil
}

func (l *sessionLoop) sendStats() {
	l.send <- outboundMessage[any]{Type: "stats", Payload: statsPayload{
		Stats:       l.tracker.Stats(),
		Level:       l.tracker.Level(),
		SuccessRate: l.tracker.SuccessRate(),
	}}
}

func (l *sessionLoop) sendError(message string) {
	l.send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}

// sendWarning tells the client its progress may not survive a reload;
// the in-memory stats keep applying either way.
func (l *sessionLoop) sendWarning() {
	l.send <- outboundMessage[any]{Type: "warning", Payload: errorPayload{Message: "progress could not be saved"}}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	stopTimer(t)
	if d < 0 {
		d = 0
	}
	t.Reset(d)
}
