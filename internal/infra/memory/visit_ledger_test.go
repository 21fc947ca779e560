package memory

import (
	"context"
	"testing"
	"time"
)

func TestVisitLedgerUpsert(t *testing.T) {
	ledger := NewVisitLedger()
	first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	visit, err := ledger.Upsert(context.Background(), "app", "u1", first)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if visit.VisitCount != 1 || visit.FirstVisitAt != visit.LastVisitAt {
		t.Fatalf("unexpected first visit %+v", visit)
	}

	visit, _ = ledger.Upsert(context.Background(), "app", "u1", first.Add(time.Hour))
	if visit.VisitCount != 2 {
		t.Fatalf("expected count 2, got %d", visit.VisitCount)
	}
	if visit.FirstVisitAt != "2024-03-01T09:00:00.000Z" || visit.LastVisitAt != "2024-03-01T10:00:00.000Z" {
		t.Fatalf("unexpected timestamps %+v", visit)
	}
}

func TestVisitLedgerCountsPerApp(t *testing.T) {
	ledger := NewVisitLedger()
	now := time.Now()
	_, _ = ledger.Upsert(context.Background(), "app", "u1", now)
	_, _ = ledger.Upsert(context.Background(), "app", "u1", now)
	_, _ = ledger.Upsert(context.Background(), "app", "u2", now)
	_, _ = ledger.Upsert(context.Background(), "other", "u3", now)

	n, err := ledger.CountVisitors(context.Background(), "app")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 visitors, got %d", n)
	}
}
