package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-service/internal/app"
	"trivia-service/internal/config"
	"trivia-service/internal/generator"
	"trivia-service/internal/infra/memory"
	pgstore "trivia-service/internal/infra/postgres"
	rediscache "trivia-service/internal/infra/redis"
	transport "trivia-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	cacheTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Without Postgres the server runs self-contained on the fallback bank.
	var questions app.QuestionRepository
	var scores app.ScoreRepository
	var questionPruner, scorePruner app.Pruner
	if pool != nil {
		pgQuestions := pgstore.NewQuestionStore(pool)
		pgScores := pgstore.NewScoreStore(pool)
		questions, scores = pgQuestions, pgScores
		questionPruner, scorePruner = pgQuestions, pgScores
	} else {
		memQuestions := memory.NewQuestionStore(generator.FallbackQuestions())
		memScores := memory.NewScoreStore()
		questions, scores = memQuestions, memScores
		questionPruner, scorePruner = memQuestions, memScores
	}

	if redisClient != nil {
		questions = rediscache.NewQuestionCache(redisClient, questions, cacheTTL)
	}

	service := app.NewQuizService(questions, scores).
		WithQuestionCount(cfg.Quiz.QuestionCount).
		WithWindow(config.Duration(cfg.Quiz.Window, app.DefaultWindow)).
		WithSessionConfig(app.SessionConfig{
			QuestionTime: config.Duration(cfg.Quiz.QuestionTime, app.DefaultQuestionTime),
			AdvanceDelay: config.Duration(cfg.Quiz.AdvanceDelay, app.DefaultAdvanceDelay),
		})

	var leaderboards app.LeaderboardProvider = service
	if redisClient != nil {
		leaderboards = rediscache.NewLeaderboardCache(redisClient, service, 30*time.Second)
	}

	gen := newGenerator(cfg, questions)
	retention := app.RetentionPolicy{
		Questions: config.Duration(cfg.Retention.Questions, app.DefaultQuestionRetention),
		Scores:    config.Duration(cfg.Retention.Scores, app.DefaultScoreRetention),
	}

	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	go runPeriodicJobs(jobCtx, gen, questionPruner, scorePruner, retention,
		config.Duration(cfg.Generator.Interval, time.Hour))

	handler := transport.NewHandler(service, leaderboards).
		WithDefaultLimit(cfg.Quiz.LeaderboardLimit)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("starting trivia service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newGenerator(cfg config.Config, store generator.QuestionStore) *generator.Generator {
	source := generator.NewNewsSource(cfg.Generator.Feeds, cfg.Generator.ScrapeURL, nil)
	writer := generator.NewOpenAIWriter(cfg.Generator.APIKey, cfg.Generator.Model, cfg.Generator.FallbackModel)
	return generator.New(source, writer, store).
		WithBatching(cfg.Generator.BatchSize, cfg.Generator.BatchTarget,
			config.Duration(cfg.Generator.BatchDelay, generator.DefaultBatchDelay))
}

// runPeriodicJobs drives question generation and retention cleanup on one
// shared ticker. Failures are logged and the next tick tries again; the
// serving path never depends on this loop.
func runPeriodicJobs(ctx context.Context, gen *generator.Generator, questions, scores app.Pruner, retention app.RetentionPolicy, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := gen.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("question generation: %v", err)
			}
			if err := app.Cleanup(ctx, questions, scores, retention); err != nil && ctx.Err() == nil {
				log.Printf("retention cleanup: %v", err)
			}
		}
	}
}
