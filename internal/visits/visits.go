// Package visits records one document per anonymous visitor and reports the
// live visitor count for an application namespace.
package visits

import (
	"context"
	"strings"
	"time"

	"codecrafter-quiz/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Ledger persists visit documents.
//
// Upsert increments visitCount and sets lastVisitAt on an existing document,
// keeping firstVisitAt. A missing document is created with count 1 and both
// timestamps set to at.
type Ledger interface {
	Upsert(ctx context.Context, appID, userID string, at time.Time) (domain.Visit, error)
	CountVisitors(ctx context.Context, appID string) (int64, error)
}

// CollectionPath is the visits collection of one namespace.
func CollectionPath(appID string) string {
	return "artifacts/" + appID + "/public/data/visits"
}

// DocumentPath is the visit document of one visitor.
func DocumentPath(appID, userID string) string {
	return CollectionPath(appID) + "/" + userID
}

// AnonymousID mints a new visitor identity. Every call yields a distinct id.
// A configured initial session token acts as the namespace the id is minted
// in, so deployments sharing a token share an id space.
func AnonymousID(initialToken string) string {
	id := uuid.New()
	if token := strings.TrimSpace(initialToken); token != "" {
		ns := uuid.NewSHA1(uuid.NameSpaceURL, []byte(token))
		id = uuid.NewSHA1(ns, id[:])
	}
	return id.String()
}

type Option func(*Service)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPollInterval sets how often Watch re-reads the visitor count.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

type Service struct {
	ledger   Ledger
	appID    string
	log      zerolog.Logger
	now      func() time.Time
	interval time.Duration
}

func NewService(ledger Ledger, appID string, opts ...Option) *Service {
	s := &Service{
		ledger:   ledger,
		appID:    appID,
		log:      zerolog.Nop(),
		now:      time.Now,
		interval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) AppID() string {
	return s.appID
}

// Start records a visit for userID. Failures are logged and otherwise ignored.
func (s *Service) Start(ctx context.Context, userID string) {
	visit, err := s.ledger.Upsert(ctx, s.appID, userID, s.now())
	if err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("record visit failed")
		return
	}
	s.log.Debug().
		Str("user", userID).
		Int64("visit_count", visit.VisitCount).
		Msg("visit recorded")
}

// Count returns the number of distinct visitors.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.ledger.CountVisitors(ctx, s.appID)
}

// Watch emits the visitor count once and then every time it changes. The
// channel is closed when ctx is done.
func (s *Service) Watch(ctx context.Context) <-chan int64 {
	out := make(chan int64, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		last := int64(-1)
		for {
			n, err := s.Count(ctx)
			switch {
			case err != nil:
				if ctx.Err() == nil {
					s.log.Warn().Err(err).Msg("count visitors failed")
				}
			case n != last:
				last = n
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
