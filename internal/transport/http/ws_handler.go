package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
)

// WSHandler runs interactive quiz sessions over a websocket: the server
// owns the countdown and answer locking, the client only renders and
// submits selections.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
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

type answerPayload struct {
	// Selection is the zero-based option index; null is an explicit skip.
	Selection *int `json:"selection"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// questionView is the client-facing question shape: the correct index
// never leaves the server in session mode.
type questionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

type questionFrame struct {
	Index    int          `json:"index"`
	Total    int          `json:"total"`
	Question questionView `json:"question"`
	TimeLeft int          `json:"timeLeft"`
}

type answerFrame struct {
	Index     int  `json:"index"`
	Selection *int `json:"selection"`
	Correct   bool `json:"correct"`
}

type finishedFrame struct {
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Name       string `json:"name"`
}

// ServeWS upgrades the request and drives one quiz session until it
// finishes, aborts, or the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.StartSession(r.Context(), name)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer session.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case event, ok := <-session.Events():
				if !ok {
					return
				}
				// Frames are delivered asynchronously; report the live
				// countdown, not the configured full duration.
				if event.Kind == app.EventQuestion {
					if left := session.TimeLeft(); left > 0 {
						event.TimeLeft = left
					}
				}
				msg, final := frameFor(event)
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
				if final {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			switch err := session.Answer(payload.Selection); err {
			case nil:
			case domain.ErrAnswerLocked:
				// A commit is already in flight for this question; drop it.
			case domain.ErrSessionClosed:
				// Terminal frame is on its way; nothing to do.
			default:
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}

		if state := session.State(); state == app.StateFinished || state == app.StateAborted {
			break
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

// frameFor maps a session event to its wire shape. The bool return marks
// terminal frames.
func frameFor(event app.SessionEvent) (outboundMessage[any], bool) {
	switch event.Kind {
	case app.EventQuestion:
		return outboundMessage[any]{Type: "question", Payload: questionFrame{
			Index: event.Index,
			Total: event.Total,
			Question: questionView{
				ID:      event.Question.ID,
				Prompt:  event.Question.Prompt,
				Options: event.Question.Options,
			},
			TimeLeft: event.TimeLeft,
		}}, false
	case app.EventAnswerCommitted:
		return outboundMessage[any]{Type: "answerResult", Payload: answerFrame{
			Index:     event.Index,
			Selection: event.Answer,
			Correct:   event.Correct,
		}}, false
	case app.EventFinished:
		return outboundMessage[any]{Type: "finished", Payload: finishedFrame{
			Score:      event.Result.Score,
			Total:      event.Result.TotalQuestions,
			Percentage: event.Result.Percentage,
			Name:       event.Result.Name,
		}}, true
	default:
		message := "quiz aborted"
		if event.Err != nil {
			message = event.Err.Error()
		}
		return outboundMessage[any]{Type: "aborted", Payload: errorPayload{Message: message}}, true
	}
}
