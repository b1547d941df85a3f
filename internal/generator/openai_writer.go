package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"trivia-service/internal/domain"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIWriter asks a chat-completion model for a JSON array of questions.
// A failing primary model is retried once on the fallback model; there is
// no other retry policy.
type OpenAIWriter struct {
	apiKey        string
	model         string
	fallbackModel string
	baseURL       string
	client        *http.Client
}

func NewOpenAIWriter(apiKey, model, fallbackModel string) *OpenAIWriter {
	if model == "" {
		model = "gpt-4"
	}
	if fallbackModel == "" {
		fallbackModel = "gpt-3.5-turbo"
	}
	return &OpenAIWriter{
		apiKey:        apiKey,
		model:         model,
		fallbackModel: fallbackModel,
		baseURL:       defaultOpenAIBaseURL,
		client:        &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL points the writer at a different endpoint (tests).
func (w *OpenAIWriter) WithBaseURL(url string) *OpenAIWriter {
	w.baseURL = strings.TrimRight(url, "/")
	return w
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type generatedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	SourceURL     string   `json:"source_url"`
}

func (w *OpenAIWriter) Write(ctx context.Context, content []string, count int) ([]domain.Question, error) {
	questions, err := w.complete(ctx, w.model, content, count)
	if err == nil {
		return questions, nil
	}
	log.Printf("model %s failed, retrying with %s: %v", w.model, w.fallbackModel, err)

	questions, fallbackErr := w.complete(ctx, w.fallbackModel, content, count)
	if fallbackErr != nil {
		return nil, fmt.Errorf("both models failed: %v; %w", err, fallbackErr)
	}
	return questions, nil
}

func (w *OpenAIWriter) complete(ctx context.Context, model string, content []string, count int) ([]domain.Question, error) {
	contextWindow := content
	if len(contextWindow) > 10 {
		contextWindow = contextWindow[:10]
	}

	systemPrompt := fmt.Sprintf(`You write trivia quizzes from recent news. Generate %d challenging multiple-choice questions grounded in the content below.

Each question must have exactly 4 options and exactly one correct answer, given as a zero-based index.

Recent content:
%s

Respond with only a JSON array in this exact shape:
[
  {
    "question": "...",
    "options": ["A", "B", "C", "D"],
    "correct_answer": 0,
    "source_url": "https://example.com"
  }
]`, count, strings.Join(contextWindow, "\n\n"))

	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Generate %d questions.", count)},
		},
		Temperature: 0.7,
		MaxTokens:   4000,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completion status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices")
	}

	return parseQuestions(completion.Choices[0].Message.Content)
}

// parseQuestions decodes the model's JSON array, tolerating markdown code
// fences around it.
func parseQuestions(raw string) ([]domain.Question, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var generated []generatedQuestion
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	questions := make([]domain.Question, 0, len(generated))
	for _, g := range generated {
		questions = append(questions, domain.Question{
			Prompt:        g.Question,
			Options:       g.Options,
			CorrectAnswer: g.CorrectAnswer,
			SourceURL:     g.SourceURL,
		})
	}
	return questions, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
