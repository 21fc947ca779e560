package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"codecrafter-quiz/internal/domain"
	"codecrafter-quiz/internal/visits"
)

// VisitLedger keeps visit documents keyed by their document path.
type VisitLedger struct {
	mu   sync.Mutex
	docs map[string]domain.Visit
}

func NewVisitLedger() *VisitLedger {
	return &VisitLedger{docs: make(map[string]domain.Visit)}
}

func (l *VisitLedger) Upsert(_ context.Context, appID, userID string, at time.Time) (domain.Visit, error) {
	path := visits.DocumentPath(appID, userID)
	stamp := domain.FormatTimestamp(at)

	l.mu.Lock()
	defer l.mu.Unlock()

	visit, ok := l.docs[path]
	if !ok {
		visit = domain.Visit{UserID: userID, FirstVisitAt: stamp}
	}
	visit.VisitCount++
	visit.LastVisitAt = stamp
	l.docs[path] = visit
	return visit, nil
}

func (l *VisitLedger) CountVisitors(_ context.Context, appID string) (int64, error) {
	prefix := visits.CollectionPath(appID) + "/"

	l.mu.Lock()
	defer l.mu.Unlock()

	var n int64
	for path := range l.docs {
		if strings.HasPrefix(path, prefix) {
			n++
		}
	}
	return n, nil
}

// Get returns the stored document for a visitor.
func (l *VisitLedger) Get(appID, userID string) (domain.Visit, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	visit, ok := l.docs[visits.DocumentPath(appID, userID)]
	return visit, ok
}
