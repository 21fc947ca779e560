package catalog

import (
	"context"
	"testing"

	"codecrafter-quiz/internal/domain"
)

func TestUniqueTopicsKeepsFirstAppearance(t *testing.T) {
	topics := UniqueTopics([]domain.QuizSummary{
		{ID: "a", Topic: "Go"},
		{ID: "b", Topic: "JavaScript"},
		{ID: "c", Topic: "Go"},
		{ID: "d", Topic: "Python"},
	})
	want := []string{"Go", "JavaScript", "Python"}
	if len(topics) != len(want) {
		t.Fatalf("topics = %v", topics)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("topics = %v, want %v", topics, want)
		}
	}
}

func TestFilterByTopic(t *testing.T) {
	got := FilterByTopic(Summaries(Sample()), "JavaScript")
	if len(got) != 2 || got[0].ID != "js-basics" || got[1].ID != "js-async" {
		t.Fatalf("unexpected filter result %+v", got)
	}
	if empty := FilterByTopic(nil, "Go"); empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty slice, got %#v", empty)
	}
}

func TestLocalReturnsCopies(t *testing.T) {
	repo := &mapRepository{quizzes: SampleByID()}
	local := NewLocal(repo)

	quiz, err := local.GetQuiz(context.Background(), "js-basics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	quiz.Questions[0].Options[0] = "mutated"

	again, _ := local.GetQuiz(context.Background(), "js-basics")
	if again.Questions[0].Options[0] == "mutated" {
		t.Fatalf("local catalog leaked a shared slice")
	}
}

func TestSampleQuizzesAreWellFormed(t *testing.T) {
	for _, quiz := range Sample() {
		if len(quiz.Questions) == 0 || quiz.Duration <= 0 {
			t.Fatalf("quiz %s is not playable", quiz.ID)
		}
		for _, q := range quiz.Questions {
			if !q.HasOption(q.CorrectAnswer) {
				t.Fatalf("quiz %s: correct answer %q not among options", quiz.ID, q.CorrectAnswer)
			}
		}
	}
}

type mapRepository struct {
	quizzes map[string]domain.Quiz
}

func (r *mapRepository) ListQuizzes(context.Context) ([]domain.QuizSummary, error) {
	return Summaries(Sample()), nil
}

func (r *mapRepository) GetQuiz(_ context.Context, id string) (domain.Quiz, error) {
	q, ok := r.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return q, nil
}
