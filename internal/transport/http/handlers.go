package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
)

// Handler serves the JSON API consumed by the browser quiz client.
type Handler struct {
	service      *app.QuizService
	leaderboards app.LeaderboardProvider
	defaultLimit int
}

func NewHandler(service *app.QuizService, leaderboards app.LeaderboardProvider) *Handler {
	if leaderboards == nil {
		leaderboards = service
	}
	return &Handler{
		service:      service,
		leaderboards: leaderboards,
		defaultLimit: app.DefaultLeaderboardLimit,
	}
}

// WithDefaultLimit overrides the leaderboard size used when the request
// carries no limit parameter.
func (h *Handler) WithDefaultLimit(limit int) *Handler {
	if limit > 0 {
		h.defaultLimit = limit
	}
	return h
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/questions", h.getQuestions)
	mux.HandleFunc("/api/scores", h.submitScore)
	mux.HandleFunc("/api/leaderboard", h.getLeaderboard)
}

func (h *Handler) getQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	count := queryInt(r, "count", 0)
	questions, err := h.service.FetchQuestions(r.Context(), count)
	if err != nil {
		log.Printf("fetch questions: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch questions")
		return
	}

	// An empty pool is an empty state, never an error.
	if len(questions) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"questions": []domain.Question{},
			"total":     0,
			"message":   "No questions available at the moment. Please try again later.",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"questions": questions,
		"total":     len(questions),
	})
}

func (h *Handler) submitScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req app.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stored, err := h.service.SubmitScore(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSubmission) {
			writeError(w, http.StatusBadRequest, "invalid input data")
			return
		}
		log.Printf("submit score: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to submit score")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"score":   stored,
		"message": "Score submitted successfully",
	})
}

func (h *Handler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := queryInt(r, "limit", h.defaultLimit)
	entries, err := h.leaderboards.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Printf("fetch leaderboard: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch leaderboard")
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"leaderboard": entries,
		"total":       len(entries),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
