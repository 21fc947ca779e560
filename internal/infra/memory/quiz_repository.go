package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"codecrafter-quiz/internal/catalog"
	"codecrafter-quiz/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from a backing store (Postgres, SQLite or
// the bundled sample).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
}

const listKey = "\x00catalog"

// QuizRepository caches quizzes and the catalog list with TTL to avoid
// repeated loader hits.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedQuiz
	list  *cachedList
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

type cachedList struct {
	quizzes   []domain.QuizSummary
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cachedQuiz(quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		if quiz, ok := r.cachedQuiz(quizID); ok {
			return quiz, nil
		}

		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		r.mu.Lock()
		r.cache[quizID] = cachedQuiz{
			quiz:      quiz,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return catalog.CloneQuiz(result.(domain.Quiz)), nil
}

func (r *QuizRepository) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	if quizzes, ok := r.cachedList(); ok {
		return quizzes, nil
	}

	result, err, _ := r.sf.Do(listKey, func() (interface{}, error) {
		if quizzes, ok := r.cachedList(); ok {
			return quizzes, nil
		}

		quizzes, err := r.loader.ListQuizzes(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.list = &cachedList{
			quizzes:   quizzes,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.QuizSummary{}, result.([]domain.QuizSummary)...), nil
}

func (r *QuizRepository) cachedQuiz(quizID string) (domain.Quiz, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[quizID]; ok && entry.expiresAt.After(now) {
		return catalog.CloneQuiz(entry.quiz), true
	}
	return domain.Quiz{}, false
}

func (r *QuizRepository) cachedList() ([]domain.QuizSummary, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.list != nil && r.list.expiresAt.After(now) {
		return append([]domain.QuizSummary{}, r.list.quizzes...), true
	}
	return nil, false
}

func (r *QuizRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuizLoader serves a fixed, ordered set of quizzes.
type StaticQuizLoader struct {
	order   []string
	quizzes map[string]domain.Quiz
}

func NewStaticQuizLoader(quizzes []domain.Quiz) *StaticQuizLoader {
	l := &StaticQuizLoader{quizzes: make(map[string]domain.Quiz, len(quizzes))}
	for _, q := range quizzes {
		if _, dup := l.quizzes[q.ID]; !dup {
			l.order = append(l.order, q.ID)
		}
		l.quizzes[q.ID] = q
	}
	return l
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := l.quizzes[quizID]; ok {
		return catalog.CloneQuiz(quiz), nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (l *StaticQuizLoader) ListQuizzes(context.Context) ([]domain.QuizSummary, error) {
	out := make([]domain.QuizSummary, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.quizzes[id].Summary())
	}
	return out, nil
}
