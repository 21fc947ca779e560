package app

import (
	"context"
	"sync"
	"time"

	"codecrafter-quiz/internal/domain"
	"github.com/rs/zerolog"
)

// Catalog loads quiz content for a session (HTTP API or in-process repository).
type Catalog interface {
	ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Tracker receives analytics notifications. Implementations must not block
// and must swallow their own failures.
type Tracker interface {
	PageView(path, title string)
	Event(ev domain.AnalyticsEvent)
}

// TickerFunc starts a periodic tick source and returns its stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

// Snapshot is an immutable copy of a session handed to readers.
type Snapshot struct {
	Session
	SessionID string    `json:"sessionId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RuntimeOption customizes a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(log zerolog.Logger) RuntimeOption {
	return func(r *Runtime) { r.log = log }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) RuntimeOption {
	return func(r *Runtime) { r.now = now }
}

// WithTicker replaces the one-second tick source.
func WithTicker(interval time.Duration, ticker TickerFunc) RuntimeOption {
	return func(r *Runtime) {
		r.interval = interval
		r.newTicker = ticker
	}
}

// WithFetchTimeout bounds each catalog call.
func WithFetchTimeout(d time.Duration) RuntimeOption {
	return func(r *Runtime) { r.fetchTimeout = d }
}

// Runtime owns one Session and applies every event to it on a single
// goroutine: user actions, timer ticks and fetch results all pass through the
// inbox, so no two mutations interleave.
type Runtime struct {
	id           string
	catalog      Catalog
	tracker      Tracker
	log          zerolog.Logger
	now          func() time.Time
	interval     time.Duration
	newTicker    TickerFunc
	fetchTimeout time.Duration

	inbox     chan envelope
	done      chan struct{}
	closeOnce sync.Once
	stopTimer func()

	mu          sync.RWMutex
	state       Session
	updatedAt   time.Time
	subscribers map[chan Snapshot]struct{}
}

type envelope struct {
	msg   Message
	reply chan result
}

type result struct {
	snap Snapshot
	err  error
}

// NewRuntime builds a runtime at the application-start baseline. Call Run to
// start processing.
func NewRuntime(id string, catalog Catalog, tracker Tracker, opts ...RuntimeOption) *Runtime {
	if tracker == nil {
		tracker = noopTracker{}
	}
	r := &Runtime{
		id:           id,
		catalog:      catalog,
		tracker:      tracker,
		log:          zerolog.Nop(),
		now:          time.Now,
		interval:     time.Second,
		newTicker:    defaultTicker,
		fetchTimeout: 10 * time.Second,
		inbox:        make(chan envelope, 16),
		done:         make(chan struct{}),
		state:        NewSession(),
		subscribers:  make(map[chan Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.updatedAt = r.now()
	return r
}

// ID returns the session identifier.
func (r *Runtime) ID() string {
	return r.id
}

// Done is closed once Run has returned.
func (r *Runtime) Done() <-chan struct{} {
	return r.done
}

// Run processes events until ctx is cancelled. It records the initial page
// view and requests the catalog list before handling anything else.
func (r *Runtime) Run(ctx context.Context) error {
	defer r.shutdown()

	path, title := Location(r.current())
	r.execute(ctx, []Command{TrackPageView{Path: path, Title: title}, FetchCatalog{}})

	for {
		select {
		case env := <-r.inbox:
			r.handle(ctx, env)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Dispatch applies msg and waits for the resulting snapshot. A rejected
// message returns the unchanged snapshot together with the reducer error.
func (r *Runtime) Dispatch(ctx context.Context, msg Message) (Snapshot, error) {
	reply := make(chan result, 1)
	select {
	case r.inbox <- envelope{msg: msg, reply: reply}:
	case <-r.done:
		return r.Snapshot(), context.Canceled
	case <-ctx.Done():
		return r.Snapshot(), ctx.Err()
	}

	select {
	case res := <-reply:
		return res.snap, res.err
	case <-r.done:
		return r.Snapshot(), context.Canceled
	case <-ctx.Done():
		return r.Snapshot(), ctx.Err()
	}
}

// Snapshot returns the latest state.
func (r *Runtime) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every change.
// The caller must invoke the returned cancel function to avoid leaks.
func (r *Runtime) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	initial := r.snapshotLocked()
	r.mu.Unlock()

	ch <- initial

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Runtime) handle(ctx context.Context, env envelope) {
	next, cmds, err := Reduce(r.current(), env.msg)
	if err != nil {
		r.log.Debug().Err(err).Str("session", r.id).Msgf("rejected %T", env.msg)
	}

	// Effects are started before the new state becomes visible; anything they
	// post back is queued behind this message.
	r.execute(ctx, cmds)

	r.mu.Lock()
	r.state = next
	r.updatedAt = r.now()
	snap := r.broadcastLocked()
	r.mu.Unlock()

	if env.reply != nil {
		env.reply <- result{snap: snap, err: err}
	}
}

func (r *Runtime) execute(ctx context.Context, cmds []Command) {
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case FetchCatalog:
			go r.fetchCatalog(ctx)
		case FetchQuiz:
			go r.fetchQuiz(ctx, c)
		case StartTimer:
			r.startTimer(ctx, c.Attempt)
		case StopTimer:
			r.cancelTimer()
		case TrackPageView:
			r.tracker.PageView(c.Path, c.Title)
		case TrackEvent:
			r.tracker.Event(c.Event)
		}
	}
}

func (r *Runtime) fetchCatalog(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	quizzes, err := r.catalog.ListQuizzes(fetchCtx)
	if err != nil {
		r.log.Warn().Err(err).Str("session", r.id).Msg("fetch quizzes failed")
		r.post(CatalogFailed{Err: err})
		return
	}
	r.post(CatalogLoaded{Quizzes: quizzes})
}

func (r *Runtime) fetchQuiz(ctx context.Context, cmd FetchQuiz) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	quiz, err := r.catalog.GetQuiz(fetchCtx, cmd.QuizID)
	if err != nil {
		r.log.Warn().Err(err).Str("session", r.id).Str("quiz", cmd.QuizID).Msg("fetch quiz details failed")
		r.post(QuizFailed{QuizID: cmd.QuizID, Err: err, Attempt: cmd.Attempt})
		return
	}
	r.post(QuizLoaded{Quiz: quiz, Attempt: cmd.Attempt})
}

func (r *Runtime) startTimer(ctx context.Context, attempt int) {
	r.cancelTimer()

	ticks, stop := r.newTicker(r.interval)
	quit := make(chan struct{})
	r.stopTimer = func() {
		stop()
		close(quit)
	}

	go func() {
		for {
			select {
			case <-ticks:
				select {
				case r.inbox <- envelope{msg: Tick{Attempt: attempt}}:
				case <-quit:
					return
				case <-r.done:
					return
				}
			case <-quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (r *Runtime) cancelTimer() {
	if r.stopTimer != nil {
		r.stopTimer()
		r.stopTimer = nil
	}
}

// post delivers an asynchronous result back onto the event loop.
func (r *Runtime) post(msg Message) {
	select {
	case r.inbox <- envelope{msg: msg}:
	case <-r.done:
	}
}

func (r *Runtime) current() Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Runtime) shutdown() {
	r.closeOnce.Do(func() {
		r.cancelTimer()
		close(r.done)

		r.mu.Lock()
		for ch := range r.subscribers {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	})
}

func (r *Runtime) broadcastLocked() Snapshot {
	snap := r.snapshotLocked()
	for ch := range r.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest pending snapshot so a slow reader never blocks the loop.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (r *Runtime) snapshotLocked() Snapshot {
	return Snapshot{
		Session:   r.state.Clone(),
		SessionID: r.id,
		UpdatedAt: r.updatedAt,
	}
}

func defaultTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type noopTracker struct{}

func (noopTracker) PageView(string, string)      {}
func (noopTracker) Event(domain.AnalyticsEvent) {}
