// Package analytics forwards page views and custom events to external sinks
// without ever blocking or failing the caller.
package analytics

import (
	"context"
	"sync"
	"time"

	"codecrafter-quiz/internal/app"
	"codecrafter-quiz/internal/domain"
	"github.com/rs/zerolog"
)

type Kind string

const (
	KindPageView Kind = "pageview"
	KindEvent    Kind = "event"
)

// Hit is one analytics notification.
type Hit struct {
	ClientID string                 `json:"clientId"`
	Kind     Kind                   `json:"kind"`
	Path     string                 `json:"path,omitempty"`
	Title    string                 `json:"title,omitempty"`
	Event    *domain.AnalyticsEvent `json:"event,omitempty"`
	At       time.Time              `json:"at"`
}

// Sink delivers hits somewhere.
type Sink interface {
	Send(ctx context.Context, hit Hit) error
}

type Option func(*Dispatcher)

func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithSendTimeout bounds each Sink.Send call.
func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// Dispatcher queues hits and fans them out to every sink on one worker
// goroutine. A full queue drops the hit.
type Dispatcher struct {
	sinks   []Sink
	log     zerolog.Logger
	now     func() time.Time
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Hit
	done   chan struct{}
}

func NewDispatcher(queueSize int, sinks []Sink, opts ...Option) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		sinks:   sinks,
		log:     zerolog.Nop(),
		now:     time.Now,
		timeout: 5 * time.Second,
		queue:   make(chan Hit, queueSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// Track enqueues hit. It never blocks.
func (d *Dispatcher) Track(hit Hit) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- hit:
	default:
		d.log.Warn().Str("kind", string(hit.Kind)).Msg("analytics queue full, dropping hit")
	}
}

// Session returns a tracker that stamps every hit with clientID.
func (d *Dispatcher) Session(clientID string) app.Tracker {
	return &sessionTracker{d: d, clientID: clientID}
}

// Close stops accepting hits and waits until the queued ones are delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for hit := range d.queue {
		for _, sink := range d.sinks {
			d.deliver(sink, hit)
		}
	}
}

func (d *Dispatcher) deliver(sink Sink, hit Hit) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := sink.Send(ctx, hit); err != nil {
		d.log.Warn().Err(err).
			Str("sink", sinkName(sink)).
			Str("kind", string(hit.Kind)).
			Msg("analytics delivery failed")
	}
}

type sessionTracker struct {
	d        *Dispatcher
	clientID string
}

func (t *sessionTracker) PageView(path, title string) {
	t.d.Track(Hit{
		ClientID: t.clientID,
		Kind:     KindPageView,
		Path:     path,
		Title:    title,
		At:       t.d.now(),
	})
}

func (t *sessionTracker) Event(ev domain.AnalyticsEvent) {
	t.d.Track(Hit{
		ClientID: t.clientID,
		Kind:     KindEvent,
		Event:    &ev,
		At:       t.d.now(),
	})
}

type named interface {
	Name() string
}

func sinkName(s Sink) string {
	if n, ok := s.(named); ok {
		return n.Name()
	}
	return "sink"
}
