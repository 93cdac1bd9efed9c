package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"compat-quiz-service/internal/app"
	"compat-quiz-service/internal/domain"
	"compat-quiz-service/internal/engine"
	"compat-quiz-service/internal/infra/memory"
	"github.com/spf13/cobra"
)

// NewScoreCmd scores an answers JSON document offline, e.g. {"0":[1],"2":[0,2]}.
func NewScoreCmd(configPath *string) *cobra.Command {
	var (
		quizID string
		name   string
	)
	cmd := &cobra.Command{
		Use:   "score [answers.json]",
		Short: "Score a set of answers against a quiz",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			quizzes, err := quizSource(cfg.Quiz.File)
			if err != nil {
				return err
			}
			if quizID == "" {
				quizID = defaultQuizID(cfg.Quiz.DefaultID)
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			var answers domain.Answers
			if err := json.NewDecoder(in).Decode(&answers); err != nil {
				return fmt.Errorf("decode answers: %w", err)
			}

			service := app.NewQuizService(
				memory.NewSessionStore(time.Minute),
				memory.NewQuizRepository(memory.NewStaticQuizLoader(quizzes), 0),
				app.WithLogger(log),
			)
			result, err := service.Score(context.Background(), quizID, answers)
			if err != nil {
				return err
			}
			view := engine.ResultView(domain.Completion{ParticipantName: name, Result: result})
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d%%\n%s\n", view.Emoji, view.Headline, view.Percentage, view.Description)
			return nil
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id (defaults to quiz.default_id)")
	cmd.Flags().StringVar(&name, "name", "", "participant name used in the description")
	return cmd
}
