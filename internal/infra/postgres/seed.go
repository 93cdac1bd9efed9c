package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"compat-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

// SeedQuizzes upserts quiz definitions into the quizzes table. Every quiz is validated
// first; nothing is written if any of them is invalid.
func SeedQuizzes(ctx context.Context, db *bun.DB, quizzes map[string]domain.Quiz) (int, error) {
	ids := make([]string, 0, len(quizzes))
	for id, quiz := range quizzes {
		if err := quiz.Validate(); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, id := range ids {
			data, err := json.Marshal(quizzes[id])
			if err != nil {
				return fmt.Errorf("marshal quiz %s: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO quizzes (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`,
				id, string(data)); err != nil {
				return fmt.Errorf("upsert quiz %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
