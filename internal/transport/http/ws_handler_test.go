package http

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"rapbattle-quiz-service/internal/app"
	"rapbattle-quiz-service/internal/domain"
	"rapbattle-quiz-service/internal/infra/memory"
	"rapbattle-quiz-service/internal/progress"
	"github.com/gorilla/websocket"
)

func TestWebSocketQuizFlow(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial stats snapshot first.
	if msgType, _ := readNext(conn, t, "stats"); msgType != "stats" {
		t.Fatalf("expected stats, got %s", msgType)
	}

	// Start a one-question session.
	start := map[string]any{
		"type":    "start",
		"payload": map[string]any{"count": 1},
	}
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("write start: %v", err)
	}

	_, question := readNext(conn, t, "question")
	if question["prompt"] == "" {
		t.Fatalf("expected question prompt, got %+v", question)
	}

	// Answer correctly (index 0 in the sample catalog).
	answer := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"index": 0},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	_, reveal := readNext(conn, t, "reveal")
	if correct, ok := reveal["isCorrect"].(bool); !ok || !correct {
		t.Fatalf("expected correct reveal, got %+v", reveal)
	}

	// After the reveal period the session completes with folded stats.
	_, complete := readNext(conn, t, "sessionComplete")
	stats, ok := complete["stats"].(map[string]any)
	if !ok {
		t.Fatalf("expected stats in completion, got %+v", complete)
	}
	if points, _ := stats["totalPoints"].(float64); points != 10 {
		t.Fatalf("expected 10 points after a correct answer, got %v", stats["totalPoints"])
	}
	if quizzes, _ := stats["totalQuizzesCompleted"].(float64); quizzes != 1 {
		t.Fatalf("expected 1 completed quiz, got %v", stats["totalQuizzesCompleted"])
	}
}

func TestWebSocketRequiresUserID(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without userId, got %d", resp.StatusCode)
	}
}

func TestWebSocketResetZeroesStats(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u2"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "stats")

	if err := conn.WriteJSON(map[string]any{"type": "reset"}); err != nil {
		t.Fatalf("write reset: %v", err)
	}
	_, payload := readNext(conn, t, "stats")
	stats, ok := payload["stats"].(map[string]any)
	if !ok {
		t.Fatalf("expected stats payload, got %+v", payload)
	}
	if points, _ := stats["totalPoints"].(float64); points != 0 {
		t.Fatalf("expected zeroed stats, got %v", stats["totalPoints"])
	}
}

func newTestServer() *httptest.Server {
	repo := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(map[string]domain.Catalog{
		"hiphop": sampleCatalog(),
	}), time.Minute)
	service := app.NewQuizService(repo)

	var mu sync.Mutex
	stores := make(map[string]*memory.StatsStore)
	factory := func(userKey string) progress.StatsStore {
		mu.Lock()
		defer mu.Unlock()
		if store, ok := stores[userKey]; ok {
			return store
		}
		store := memory.NewStatsStore()
		stores[userKey] = store
		return store
	}

	wsHandler := NewWSHandler(service, factory, "hiphop")
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux)
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		ID: "hiphop",
		Questions: []domain.Question{
			{
				ID:            "battle_1",
				Kind:          domain.KindMultipleChoice,
				Category:      domain.CategoryBattles,
				Difficulty:    domain.DifficultyEasy,
				Prompt:        "Quelle battle est considérée comme légendaire ?",
				Options:       []string{"Nas vs Jay-Z", "Eminem vs Vanilla Ice"},
				CorrectAnswer: 0,
				Explanation:   "Ether a marqué l'histoire du hip-hop.",
				Points:        10,
			},
		},
	}
}
