package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"codecrafter-quiz/internal/catalog"
	"codecrafter-quiz/internal/domain"
	"codecrafter-quiz/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuizLoader: memory.NewStaticQuizLoader(catalog.Sample())}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute)

	quiz, err := repo.GetQuiz(context.Background(), "js-basics")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.quizCalls() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.quizCalls())
	}
	if !mr.Exists("quiz:detail:js-basics") {
		t.Fatalf("expected quiz cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, _ := repo.GetQuiz(context.Background(), "js-basics")
	if loader.quizCalls() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.quizCalls())
	}
	if len(cached.Questions) != len(quiz.Questions) || cached.Questions[0].CorrectAnswer != quiz.Questions[0].CorrectAnswer {
		t.Fatalf("cached quiz differs: %+v", cached)
	}
}

func TestQuizRepositoryCachesCatalogList(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuizLoader: memory.NewStaticQuizLoader(catalog.Sample())}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute)

	for i := 0; i < 3; i++ {
		quizzes, err := repo.ListQuizzes(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(quizzes) != len(catalog.Sample()) || quizzes[0].ID != "js-basics" {
			t.Fatalf("unexpected list %+v", quizzes)
		}
	}
	if loader.listCalls() != 1 {
		t.Fatalf("expected one list load, got %d", loader.listCalls())
	}

	if ttl := mr.TTL(catalogKey); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with jitter, got %s", ttl)
	}

	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.ListQuizzes(context.Background())
	if loader.listCalls() != 2 {
		t.Fatalf("expected reload after invalidate, got %d", loader.listCalls())
	}
}

func TestQuizRepositoryKeepsCatalogAndDetailApart(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	quizzes := []domain.Quiz{{ID: "catalog", Name: "Catalog Quiz", Topic: "Go", Duration: 1}}
	loader := &countingLoader{QuizLoader: memory.NewStaticQuizLoader(quizzes)}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "catalog"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	list, err := repo.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "catalog" {
		t.Fatalf("unexpected list %+v", list)
	}
	if !mr.Exists("quiz:detail:catalog") || !mr.Exists(catalogKey) {
		t.Fatalf("expected separate detail and catalog keys, got %v", mr.Keys())
	}

	quiz, err := repo.GetQuiz(context.Background(), "catalog")
	if err != nil {
		t.Fatalf("get cached quiz: %v", err)
	}
	if quiz.Name != "Catalog Quiz" || loader.quizCalls() != 1 {
		t.Fatalf("detail cache clobbered: %+v loads=%d", quiz, loader.quizCalls())
	}
}

func TestQuizRepositoryFallsBackWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	repo := NewQuizRepository(client, memory.NewStaticQuizLoader(catalog.Sample()), time.Minute)
	quiz, err := repo.GetQuiz(context.Background(), "py-fundamentals")
	if err != nil {
		t.Fatalf("expected loader fallback, got %v", err)
	}
	if quiz.Topic != "Python" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
}

type countingLoader struct {
	QuizLoader

	mu    sync.Mutex
	quiz  int
	lists int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.mu.Lock()
	l.quiz++
	l.mu.Unlock()
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func (l *countingLoader) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	l.mu.Lock()
	l.lists++
	l.mu.Unlock()
	return l.QuizLoader.ListQuizzes(ctx)
}

func (l *countingLoader) quizCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quiz
}

func (l *countingLoader) listCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
