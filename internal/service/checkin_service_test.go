package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"recoveryos/internal/domain"
	"recoveryos/internal/metrics"
	"recoveryos/internal/ratelimit"
	"recoveryos/internal/store"
)

func newCheckinService(capacity int) *CheckinService {
	return NewCheckinService(
		zap.NewNop(),
		ratelimit.NewLimiter(capacity, time.Minute),
		store.NewCheckinStore(),
		NewRiskScorer(3),
		metrics.New("test_checkin"),
	)
}

func neutralCheckinRecord() domain.CheckinRecord {
	return domain.CheckinRecord{
		Adherence:  100,
		MoodTrend:  0,
		Cravings:   0,
		SleepHours: 8,
		Isolation:  0,
		RecordedAt: time.Now(),
	}
}

func TestCheckinServiceScoresAgainstAppendedHistory(t *testing.T) {
	svc := newCheckinService(10)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		assessment, err := svc.Process(ctx, "client-a", "subject-1", neutralCheckinRecord())
		if err != nil {
			t.Fatalf("process %d: %v", i+1, err)
		}
		if !assessment.Insufficient() {
			t.Fatalf("expected insufficient data with %d check-ins, got band %s", i+1, assessment.Band)
		}
	}

	assessment, err := svc.Process(ctx, "client-a", "subject-1", neutralCheckinRecord())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if assessment.Insufficient() {
		t.Fatalf("third check-in must count toward its own score")
	}
	if assessment.Band != domain.BandLow || assessment.Score != 0 {
		t.Fatalf("neutral history: band=%s score=%d", assessment.Band, assessment.Score)
	}

	if got := len(svc.History(ctx, "subject-1")); got != 3 {
		t.Fatalf("history length = %d", got)
	}
	if svc.Total() != 3 {
		t.Fatalf("total = %d", svc.Total())
	}
}

func TestCheckinServiceRateLimitedKeepsHistoryIntact(t *testing.T) {
	svc := newCheckinService(2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Process(ctx, "client-b", "subject-2", neutralCheckinRecord()); err != nil {
			t.Fatalf("process %d: %v", i+1, err)
		}
	}

	_, err := svc.Process(ctx, "client-b", "subject-2", neutralCheckinRecord())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	// El registro rechazado no se persiste.
	if got := len(svc.History(ctx, "subject-2")); got != 2 {
		t.Fatalf("history length after rejection = %d", got)
	}
}

func TestCheckinServiceRateLimitIsPerClientKey(t *testing.T) {
	svc := newCheckinService(1)
	ctx := context.Background()

	if _, err := svc.Process(ctx, "client-c", "subject-3", neutralCheckinRecord()); err != nil {
		t.Fatalf("first client: %v", err)
	}
	if _, err := svc.Process(ctx, "client-d", "subject-3", neutralCheckinRecord()); err != nil {
		t.Fatalf("distinct client key must not share the budget: %v", err)
	}
	if _, err := svc.Process(ctx, "client-c", "subject-3", neutralCheckinRecord()); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited for exhausted key, got %v", err)
	}
}
