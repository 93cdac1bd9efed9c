package cli

import (
	"compat-quiz-service/internal/domain"
	"compat-quiz-service/internal/infra/memory"
	pgstore "compat-quiz-service/internal/infra/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSeedCmd writes quiz definitions (built-in or from a YAML file) into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load quiz definitions into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if file == "" {
				file = cfg.Quiz.File
			}
			quizzes, err := quizSource(file)
			if err != nil {
				return err
			}

			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}
			db, err := openBunDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := pgstore.SeedQuizzes(cmd.Context(), db, quizzes)
			if err != nil {
				return err
			}
			log.Info("quizzes seeded", zap.Int("count", n))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file with quiz definitions (defaults to the built-in quiz)")
	return cmd
}

// quizSource loads quizzes from a YAML file, or the built-in set when path is empty.
func quizSource(path string) (map[string]domain.Quiz, error) {
	if path == "" {
		return memory.BuiltinQuizzes(), nil
	}
	return memory.LoadQuizFile(path)
}
