package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"codecrafter-quiz/internal/app"
	"codecrafter-quiz/internal/domain"
)

func TestRuntimeQuizFlow(t *testing.T) {
	rt, tracker, ticker := newTestRuntime(t, &stubCatalog{quizzes: map[string]domain.Quiz{"js1": oneMinuteQuiz()}})

	waitFor(t, rt, func(s app.Snapshot) bool { return len(s.Quizzes) == 1 })
	if got := tracker.pageViews(); len(got) == 0 || got[0] != "/" {
		t.Fatalf("expected initial home page view, got %v", got)
	}

	if _, err := rt.Dispatch(context.Background(), app.StartQuiz{QuizID: "js1"}); err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	waitFor(t, rt, func(s app.Snapshot) bool { return s.Page == app.PageQuiz })

	snap, err := rt.Dispatch(context.Background(), app.SelectAnswer{Option: "let"})
	if err != nil {
		t.Fatalf("select answer: %v", err)
	}
	if snap.Answers[0] != "let" {
		t.Fatalf("expected recorded answer, got %v", snap.Answers)
	}

	ticker.tick(t)
	waitFor(t, rt, func(s app.Snapshot) bool { return s.RemainingSeconds == 59 })

	snap, err = rt.Dispatch(context.Background(), app.NextQuestion{})
	if err != nil {
		t.Fatalf("next question: %v", err)
	}
	if snap.Page != app.PageResults || snap.TimerRunning || snap.Score != 1 {
		t.Fatalf("expected finished attempt, got page=%s running=%v score=%d", snap.Page, snap.TimerRunning, snap.Score)
	}
	if ticker.stopCount() != 1 {
		t.Fatalf("expected ticker stopped once, got %d", ticker.stopCount())
	}

	events := tracker.eventActions()
	if len(events) != 2 || events[0] != "Quiz Started" || events[1] != "Quiz Completed" {
		t.Fatalf("unexpected events %v", events)
	}
}

func TestRuntimeTimerExpiry(t *testing.T) {
	rt, _, ticker := newTestRuntime(t, &stubCatalog{quizzes: map[string]domain.Quiz{"js1": oneMinuteQuiz()}})
	waitFor(t, rt, func(s app.Snapshot) bool { return len(s.Quizzes) == 1 })

	if _, err := rt.Dispatch(context.Background(), app.StartQuiz{QuizID: "js1"}); err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	waitFor(t, rt, func(s app.Snapshot) bool { return s.Page == app.PageQuiz })

	for i := 0; i < 60; i++ {
		ticker.tick(t)
	}
	waitFor(t, rt, func(s app.Snapshot) bool { return s.Page == app.PageResults })

	snap := rt.Snapshot()
	if snap.TimerRunning || snap.RemainingSeconds != 0 {
		t.Fatalf("expected stopped timer at 0, got running=%v remaining=%d", snap.TimerRunning, snap.RemainingSeconds)
	}
	if ticker.stopCount() != 1 {
		t.Fatalf("expected ticker stopped, got %d", ticker.stopCount())
	}
}

func TestRuntimeGoHomeCancelsTimer(t *testing.T) {
	rt, _, ticker := newTestRuntime(t, &stubCatalog{quizzes: map[string]domain.Quiz{"js1": oneMinuteQuiz()}})
	waitFor(t, rt, func(s app.Snapshot) bool { return len(s.Quizzes) == 1 })

	_, _ = rt.Dispatch(context.Background(), app.StartQuiz{QuizID: "js1"})
	waitFor(t, rt, func(s app.Snapshot) bool { return s.Page == app.PageQuiz })

	snap, err := rt.Dispatch(context.Background(), app.GoHome{})
	if err != nil {
		t.Fatalf("go home: %v", err)
	}
	if snap.Page != app.PageHome || snap.TimerRunning || snap.SelectedQuiz != nil {
		t.Fatalf("expected baseline, got %+v", snap.Session)
	}
	if ticker.stopCount() != 1 {
		t.Fatalf("expected ticker stopped, got %d", ticker.stopCount())
	}
}

func TestRuntimeDetailFailureReturnsToTopics(t *testing.T) {
	catalog := &stubCatalog{quizzes: map[string]domain.Quiz{}, detailErr: errors.New("503")}
	rt, _, _ := newTestRuntime(t, catalog)
	waitFor(t, rt, func(s app.Snapshot) bool { return len(s.Quizzes) == 1 })

	if _, err := rt.Dispatch(context.Background(), app.StartQuiz{QuizID: "js1"}); err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	waitFor(t, rt, func(s app.Snapshot) bool { return s.Page == app.PageTopics })
	if snap := rt.Snapshot(); snap.Notice != app.NoticeQuizFailed || snap.SelectedQuiz != nil {
		t.Fatalf("expected failure notice without quiz, got %+v", snap.Session)
	}
}

func TestRuntimeCatalogFailureNotice(t *testing.T) {
	rt, _, _ := newTestRuntime(t, &stubCatalog{listErr: errors.New("connection refused")})
	waitFor(t, rt, func(s app.Snapshot) bool { return s.Notice == app.NoticeCatalogFailed })

	snap, err := rt.Dispatch(context.Background(), app.Navigate{Page: app.PageAbout})
	if err != nil || snap.Page != app.PageAbout {
		t.Fatalf("navigation should keep working, got page=%s err=%v", snap.Page, err)
	}
}

func TestRuntimeSubscribeReceivesUpdates(t *testing.T) {
	rt, _, _ := newTestRuntime(t, &stubCatalog{quizzes: map[string]domain.Quiz{"js1": oneMinuteQuiz()}})
	ch, cancel := rt.Subscribe()
	defer cancel()

	<-ch // initial snapshot

	if _, err := rt.Dispatch(context.Background(), app.Navigate{Page: app.PageBlog}); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-ch:
			if snap.Page == app.PageBlog {
				return
			}
		case <-deadline:
			t.Fatalf("expected blog snapshot")
		}
	}
}

func newTestRuntime(t *testing.T, catalog *stubCatalog) (*app.Runtime, *recordingTracker, *manualTicker) {
	t.Helper()
	if catalog.quizzes == nil {
		catalog.quizzes = map[string]domain.Quiz{}
	}
	tracker := &recordingTracker{}
	ticker := &manualTicker{}
	rt := app.NewRuntime("s1", catalog, tracker, app.WithTicker(time.Second, ticker.start))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = rt.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-rt.Done()
	})
	return rt, tracker, ticker
}

func waitFor(t *testing.T, rt *app.Runtime, cond func(app.Snapshot) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond(rt.Snapshot()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met, last snapshot %+v", rt.Snapshot().Session)
}

func oneMinuteQuiz() domain.Quiz {
	return domain.Quiz{
		ID:       "js1",
		Name:     "JS Basics",
		Topic:    "JavaScript",
		Duration: 1,
		Questions: []domain.Question{
			{QuestionText: "Block-scoped keyword?", Options: []string{"var", "let"}, CorrectAnswer: "let"},
		},
	}
}

type stubCatalog struct {
	quizzes   map[string]domain.Quiz
	listErr   error
	detailErr error
}

func (c *stubCatalog) ListQuizzes(context.Context) ([]domain.QuizSummary, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return []domain.QuizSummary{{ID: "js1", Name: "JS Basics", Topic: "JavaScript", Duration: 1}}, nil
}

func (c *stubCatalog) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if c.detailErr != nil {
		return domain.Quiz{}, c.detailErr
	}
	quiz, ok := c.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

type recordingTracker struct {
	mu     sync.Mutex
	views  []string
	events []string
}

func (r *recordingTracker) PageView(path, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, path)
}

func (r *recordingTracker) Event(ev domain.AnalyticsEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev.Action)
}

func (r *recordingTracker) pageViews() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.views...)
}

func (r *recordingTracker) eventActions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// manualTicker hands out a tick channel the test drives by hand.
type manualTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	stopped int
}

func (m *manualTicker) start(time.Duration) (<-chan time.Time, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ch = make(chan time.Time)
	return m.ch, func() {
		m.mu.Lock()
		m.stopped++
		m.mu.Unlock()
	}
}

func (m *manualTicker) tick(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	ch := m.ch
	m.mu.Unlock()
	select {
	case ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatalf("timer goroutine not receiving ticks")
	}
}

func (m *manualTicker) stopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}
