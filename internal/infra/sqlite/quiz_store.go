package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"codecrafter-quiz/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// QuizStore keeps the catalog in a single-file SQLite database. It serves as
// a quiz loader when Postgres is not configured.
type QuizStore struct {
	db *sql.DB
}

func NewQuizStore(path string) (*QuizStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "quiz.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &QuizStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *QuizStore) Close() error {
	return s.db.Close()
}

func (s *QuizStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			data TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quizzes_position ON quizzes(position);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *QuizStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM quizzes WHERE id = ?`, quizID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, fmt.Errorf("%w: %s", domain.ErrQuizNotFound, quizID)
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz %s: %w", quizID, err)
	}
	quiz.ID = quizID
	return quiz, nil
}

func (s *QuizStore) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM quizzes ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.QuizSummary, 0)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var quiz domain.Quiz
		if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
			return nil, fmt.Errorf("unmarshal quiz %s: %w", id, err)
		}
		quiz.ID = id
		quizzes = append(quizzes, quiz.Summary())
	}
	return quizzes, rows.Err()
}

// Seed upserts quizzes in one transaction. New ids are appended after the
// current last position; existing ids keep theirs.
func (s *QuizStore) Seed(ctx context.Context, quizzes []domain.Quiz) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) FROM quizzes`).Scan(&next); err != nil {
		return 0, err
	}

	for _, q := range quizzes {
		raw, err := json.Marshal(q)
		if err != nil {
			return 0, err
		}
		next++
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quizzes (id, position, data) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
			q.ID, next, string(raw),
		); err != nil {
			return 0, fmt.Errorf("seed quiz %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(quizzes), nil
}
