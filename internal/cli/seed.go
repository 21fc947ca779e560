package cli

import (
	"context"
	"fmt"

	"codecrafter-quiz/internal/catalog"
	"codecrafter-quiz/internal/config"
	"codecrafter-quiz/internal/domain"
	pgstore "codecrafter-quiz/internal/infra/postgres"
	redisstore "codecrafter-quiz/internal/infra/redis"
	sqlitestore "codecrafter-quiz/internal/infra/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads the bundled quiz catalog into Postgres or SQLite.
func NewSeedCmd(configPath *string) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the quiz catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg, log, target, catalog.Sample())
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "postgres or sqlite (default: whichever is configured)")
	return cmd
}

func runSeed(ctx context.Context, cfg config.Config, log zerolog.Logger, target string, quizzes []domain.Quiz) error {
	if target == "" {
		target = "sqlite"
		if cfg.Postgres.URL != "" {
			target = "postgres"
		}
	}

	var (
		n   int
		err error
	)
	switch target {
	case "postgres":
		n, err = seedPostgres(ctx, cfg, log, quizzes)
	case "sqlite":
		n, err = seedSQLite(ctx, cfg, quizzes)
	default:
		return fmt.Errorf("unknown seed target %q", target)
	}
	if err != nil {
		return err
	}
	log.Info().Str("target", target).Int("quizzes", n).Msg("catalog seeded")

	if client := newRedisClient(cfg); client != nil {
		defer client.Close()
		ids := make([]string, 0, len(quizzes))
		for _, q := range quizzes {
			ids = append(ids, q.ID)
		}
		if err := redisstore.NewQuizRepository(client, nil, 0).Invalidate(ctx, ids...); err != nil {
			log.Warn().Err(err).Msg("quiz cache invalidation failed")
		}
	}
	return nil
}

func seedPostgres(ctx context.Context, cfg config.Config, log zerolog.Logger, quizzes []domain.Quiz) (int, error) {
	db, err := openBun(cfg)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := migrateDB(ctx, db, log); err != nil {
		return 0, err
	}
	return pgstore.Seed(ctx, db, quizzes)
}

func seedSQLite(ctx context.Context, cfg config.Config, quizzes []domain.Quiz) (int, error) {
	if cfg.Catalog.SQLitePath == "" {
		return 0, fmt.Errorf("catalog sqlite_path not configured")
	}
	store, err := sqlitestore.NewQuizStore(cfg.Catalog.SQLitePath)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	return store.Seed(ctx, quizzes)
}
