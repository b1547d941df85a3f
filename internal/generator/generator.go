// Package generator implements the best-effort question generation job:
// gather textual context from news sources, ask a language model to write
// question batches, validate them against the question shape, and fall back
// to a static bank when everything else fails. Availability over freshness:
// no failure in here propagates past the job boundary.
package generator

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"

	"trivia-service/internal/domain"
)

// ContentSource gathers raw text snippets used as generation context.
type ContentSource interface {
	Gather(ctx context.Context) ([]string, error)
}

// QuestionWriter turns context snippets into candidate questions.
type QuestionWriter interface {
	Write(ctx context.Context, content []string, count int) ([]domain.Question, error)
}

// QuestionStore is the append side of the question pool.
type QuestionStore interface {
	Insert(ctx context.Context, question domain.Question) (domain.Question, error)
}

const (
	DefaultBatchSize   = 10
	DefaultBatchTarget = 20
	DefaultBatchDelay  = 2 * time.Second
)

// Generator runs one generation pass at a time. It has no retry policy and
// no consistency guarantees: failed batches are logged and skipped.
type Generator struct {
	source    ContentSource
	writer    QuestionWriter
	store     QuestionStore
	validate  *validator.Validate
	batchSize int
	target    int
	delay     time.Duration
	fallback  []domain.Question
	rnd       *rand.Rand
}

func New(source ContentSource, writer QuestionWriter, store QuestionStore) *Generator {
	return &Generator{
		source:    source,
		writer:    writer,
		store:     store,
		validate:  validator.New(),
		batchSize: DefaultBatchSize,
		target:    DefaultBatchTarget,
		delay:     DefaultBatchDelay,
		fallback:  FallbackQuestions(),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithBatching overrides batch size, total target and inter-batch delay.
func (g *Generator) WithBatching(size, target int, delay time.Duration) *Generator {
	if size > 0 {
		g.batchSize = size
	}
	if target > 0 {
		g.target = target
	}
	if delay >= 0 {
		g.delay = delay
	}
	return g
}

// Run executes one generation pass. When context gathering fails or no
// batch produces a single valid question, one entry from the static
// fallback bank is inserted instead.
func (g *Generator) Run(ctx context.Context) error {
	log.Printf("starting question generation")

	content, err := g.source.Gather(ctx)
	if err != nil {
		log.Printf("content gathering failed, degrading to fallback: %v", err)
		return g.insertFallback(ctx)
	}
	if len(content) == 0 {
		log.Printf("no content found, skipping generation")
		return nil
	}

	generated := 0
	for i := 0; i < g.target; i += g.batchSize {
		count := g.batchSize
		if remaining := g.target - i; remaining < count {
			count = remaining
		}

		questions, err := g.writer.Write(ctx, content, count)
		if err != nil {
			log.Printf("batch %d failed: %v", i/g.batchSize+1, err)
			continue
		}

		saved := 0
		for _, question := range questions {
			if !g.valid(question) {
				continue
			}
			if _, err := g.store.Insert(ctx, question); err != nil {
				log.Printf("save question: %v", err)
				continue
			}
			saved++
		}
		generated += saved
		log.Printf("batch %d: saved %d questions", i/g.batchSize+1, saved)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.delay):
		}
	}

	if generated == 0 {
		log.Printf("no questions generated, degrading to fallback")
		return g.insertFallback(ctx)
	}
	log.Printf("generated %d questions", generated)
	return nil
}

func (g *Generator) insertFallback(ctx context.Context) error {
	if len(g.fallback) == 0 {
		return nil
	}
	question := g.fallback[g.rnd.Intn(len(g.fallback))]
	if _, err := g.store.Insert(ctx, question); err != nil {
		log.Printf("insert fallback question: %v", err)
		return err
	}
	log.Printf("inserted fallback question")
	return nil
}

// questionCheck mirrors the question shape for validation of model output.
type questionCheck struct {
	Prompt        string   `validate:"required"`
	Options       []string `validate:"len=4,dive,required"`
	CorrectAnswer int      `validate:"gte=0,lte=3"`
}

func (g *Generator) valid(q domain.Question) bool {
	return g.validate.Struct(questionCheck{
		Prompt:        q.Prompt,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
	}) == nil
}
