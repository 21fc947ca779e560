// Package catalog reads quiz content, either over HTTP or from an in-process
// repository, and holds the catalog helpers shared by every presentation.
package catalog

import (
	"context"

	"codecrafter-quiz/internal/domain"
)

// Repository is the server-side catalog store.
type Repository interface {
	ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Local serves a Repository to session runtimes. Results are copied so no
// session can alias a cached quiz.
type Local struct {
	repo Repository
}

func NewLocal(repo Repository) *Local {
	return &Local{repo: repo}
}

func (l *Local) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	quizzes, err := l.repo.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.QuizSummary{}, quizzes...), nil
}

func (l *Local) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := l.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	return CloneQuiz(quiz), nil
}

// CloneQuiz deep-copies the question slices of q.
func CloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]string(nil), question.Options...)
		questions[i] = question
	}
	q.Questions = questions
	return q
}

// UniqueTopics returns each topic once, in order of first appearance.
func UniqueTopics(quizzes []domain.QuizSummary) []string {
	seen := make(map[string]struct{}, len(quizzes))
	topics := make([]string, 0, len(quizzes))
	for _, q := range quizzes {
		if _, ok := seen[q.Topic]; ok {
			continue
		}
		seen[q.Topic] = struct{}{}
		topics = append(topics, q.Topic)
	}
	return topics
}

// FilterByTopic keeps the quizzes of one topic, preserving order.
func FilterByTopic(quizzes []domain.QuizSummary, topic string) []domain.QuizSummary {
	out := make([]domain.QuizSummary, 0)
	for _, q := range quizzes {
		if q.Topic == topic {
			out = append(out, q)
		}
	}
	return out
}

// Summaries strips questions from a list of quizzes.
func Summaries(quizzes []domain.Quiz) []domain.QuizSummary {
	out := make([]domain.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, q.Summary())
	}
	return out
}
