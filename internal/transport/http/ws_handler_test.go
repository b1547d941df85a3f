package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
)

func TestWebSocketQuizFlow(t *testing.T) {
	service := app.NewQuizService(memory.NewQuestionStore([]domain.Question{
		{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, CorrectAnswer: 1},
	}), memory.NewScoreStore()).
		WithQuestionCount(1).
		WithSessionConfig(app.SessionConfig{
			QuestionTime: 2 * time.Second,
			AdvanceDelay: 10 * time.Millisecond,
		})
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?name=Alice"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// First frame is the live question, without the correct index.
	msgType, payload := readNext(conn, t, "question")
	if msgType != "question" {
		t.Fatalf("expected question, got %s", msgType)
	}
	question, ok := payload["question"].(map[string]any)
	if !ok {
		t.Fatalf("expected question payload, got %+v", payload)
	}
	if _, leaked := question["correct_answer"]; leaked {
		t.Fatalf("correct answer leaked to client: %+v", question)
	}
	if left, _ := payload["timeLeft"].(float64); left <= 0 || left > 2 {
		t.Fatalf("expected live countdown in (0, 2], got %+v", payload["timeLeft"])
	}

	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"selection": 1,
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	resultSeen := false
	finishedSeen := false
	for i := 0; i < 3; i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "answerResult":
			resultSeen = true
			if correct, _ := payload["correct"].(bool); !correct {
				t.Fatalf("expected correct answer, got %+v", payload)
			}
		case "finished":
			finishedSeen = true
			if score, _ := payload["score"].(float64); score != 1 {
				t.Fatalf("expected score 1, got %+v", payload)
			}
			if pct, _ := payload["percentage"].(float64); pct != 100 {
				t.Fatalf("expected percentage 100, got %+v", payload)
			}
		}
		if resultSeen && finishedSeen {
			break
		}
	}
	if !resultSeen || !finishedSeen {
		t.Fatalf("expected answerResult and finished, got answerResult=%v finished=%v", resultSeen, finishedSeen)
	}
}

func TestWebSocketTimeoutForcesSkip(t *testing.T) {
	service := app.NewQuizService(memory.NewQuestionStore([]domain.Question{
		{Prompt: "slow one", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
	}), memory.NewScoreStore()).
		WithQuestionCount(1).
		WithSessionConfig(app.SessionConfig{
			QuestionTime: 50 * time.Millisecond,
			AdvanceDelay: 10 * time.Millisecond,
		})
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?name=Sleepy"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "question")

	typ, payload := readNext(conn, t, "answerResult")
	if typ != "answerResult" {
		t.Fatalf("expected answerResult, got %s", typ)
	}
	if payload["selection"] != nil {
		t.Fatalf("expected nil selection on timeout, got %+v", payload)
	}
	if correct, _ := payload["correct"].(bool); correct {
		t.Fatalf("a timed-out question must never score")
	}

	_, payload = readNext(conn, t, "finished")
	if score, _ := payload["score"].(float64); score != 0 {
		t.Fatalf("expected score 0, got %+v", payload)
	}
}

func TestWebSocketRequiresName(t *testing.T) {
	service := app.NewQuizService(memory.NewQuestionStore(nil), memory.NewScoreStore())
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without name, got %d", resp.StatusCode)
	}
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
