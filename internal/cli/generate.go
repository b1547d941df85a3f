package cli

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"trivia-service/internal/config"
	"trivia-service/internal/generator"
	"trivia-service/internal/infra/memory"
	pgstore "trivia-service/internal/infra/postgres"
)

// NewGenerateCmd runs one question generation pass and exits. Useful as a
// cron entrypoint when the long-running server isn't deployed.
func NewGenerateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Run one question generation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), *configPath)
		},
	}
}

func runGenerate(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var store generator.QuestionStore
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewQuestionStore(pool)
	} else {
		store = memory.NewQuestionStore(nil)
	}

	return newGenerator(cfg, store).Run(ctx)
}
