package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"codecrafter-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from a backing store (Postgres, SQLite or
// the bundled sample).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
}

const catalogKey = "quiz:catalog"

// QuizRepository caches quiz content in Redis and falls back to a loader on
// cache miss.
// Quizzes are stored as JSON: SET quiz:detail:{quizID} {quiz}
// The list is stored as JSON: SET quiz:catalog {summaries}
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	key := r.quizKey(quizID)

	var quiz domain.Quiz
	if r.readJSON(ctx, key, &quiz) {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		var cached domain.Quiz
		if r.readJSON(ctx, key, &cached) {
			return cached, nil
		}

		loaded, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.writeJSON(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	var quizzes []domain.QuizSummary
	if r.readJSON(ctx, catalogKey, &quizzes) {
		return quizzes, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		var cached []domain.QuizSummary
		if r.readJSON(ctx, catalogKey, &cached) {
			return cached, nil
		}

		loaded, err := r.loader.ListQuizzes(ctx)
		if err != nil {
			return nil, err
		}
		r.writeJSON(ctx, catalogKey, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuizSummary), nil
}

// Invalidate removes the cached list and the given quizzes.
func (r *QuizRepository) Invalidate(ctx context.Context, quizIDs ...string) error {
	keys := []string{catalogKey}
	for _, id := range quizIDs {
		keys = append(keys, r.quizKey(id))
	}
	return r.client.Del(ctx, keys...).Err()
}

// readJSON reports a cache hit. Redis errors count as a miss so the loader
// still serves the request.
func (r *QuizRepository) readJSON(ctx context.Context, key string, out any) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (r *QuizRepository) writeJSON(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	// best-effort fill
	_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
}

func (r *QuizRepository) quizKey(quizID string) string {
	return "quiz:detail:" + quizID
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
