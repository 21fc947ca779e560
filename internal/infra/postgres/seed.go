package postgres

import (
	"context"
	"fmt"

	"codecrafter-quiz/internal/domain"
	"github.com/uptrace/bun"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID   string      `bun:"id,pk"`
	Data domain.Quiz `bun:"data,type:jsonb"`
}

// Seed upserts quizzes. New rows are appended in slice order; existing rows
// keep their position and get the new content.
func Seed(ctx context.Context, db *bun.DB, quizzes []domain.Quiz) (int, error) {
	if len(quizzes) == 0 {
		return 0, nil
	}
	rows := make([]quizRow, 0, len(quizzes))
	for _, q := range quizzes {
		rows = append(rows, quizRow{ID: q.ID, Data: q})
	}

	res, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = now()").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed quizzes: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
