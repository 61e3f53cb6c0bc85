package service

import (
	"strings"
	"testing"
	"time"

	"recoveryos/internal/domain"
)

func neutralRecord() domain.CheckinRecord {
	return domain.CheckinRecord{
		Adherence:  100,
		MoodTrend:  0,
		Cravings:   0,
		SleepHours: 8,
		Isolation:  0,
		RecordedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func historyOf(records ...domain.CheckinRecord) []domain.CheckinRecord {
	return records
}

func paddedHistory(latest domain.CheckinRecord) []domain.CheckinRecord {
	return historyOf(neutralRecord(), neutralRecord(), latest)
}

func TestEvaluateInsufficientDataFloor(t *testing.T) {
	scorer := NewRiskScorer(3)

	for n := 0; n < 3; n++ {
		history := make([]domain.CheckinRecord, n)
		for i := range history {
			history[i] = neutralRecord()
		}
		got := scorer.Evaluate(history)
		if !got.Insufficient() {
			t.Fatalf("expected insufficient_data for %d records, got band %s", n, got.Band)
		}
		if got.Reflection != reflectionInsufficient {
			t.Fatalf("expected the insufficient reflection, got %q", got.Reflection)
		}
	}
}

func TestEvaluateNeutralHistoryScoresZeroLow(t *testing.T) {
	scorer := NewRiskScorer(3)

	got := scorer.Evaluate(historyOf(neutralRecord(), neutralRecord(), neutralRecord()))
	if got.Insufficient() {
		t.Fatalf("expected a scored assessment at 3 records")
	}
	if got.Score != 0 {
		t.Fatalf("expected score 0 for all-neutral values, got %d", got.Score)
	}
	if got.Band != domain.BandLow {
		t.Fatalf("expected band low, got %s", got.Band)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	scorer := NewRiskScorer(3)
	latest := domain.CheckinRecord{Adherence: 60, MoodTrend: -4, Cravings: 45, SleepHours: 5.5, Isolation: 40}
	history := paddedHistory(latest)

	first := scorer.Evaluate(history)
	second := scorer.Evaluate(history)
	if first != second {
		t.Fatalf("expected identical assessments, got %+v and %+v", first, second)
	}
}

func TestEvaluateUsesOnlyLatestRecord(t *testing.T) {
	scorer := NewRiskScorer(3)
	worst := domain.CheckinRecord{Adherence: 0, MoodTrend: -10, Cravings: 100, SleepHours: 0, Isolation: 100}

	got := scorer.Evaluate(historyOf(worst, worst, neutralRecord()))
	if got.Score != 0 || got.Band != domain.BandLow {
		t.Fatalf("expected earlier records to carry no weight, got score %d band %s", got.Score, got.Band)
	}
}

func TestEvaluateBandBoundaries(t *testing.T) {
	scorer := NewRiskScorer(3)

	cases := []struct {
		name   string
		latest domain.CheckinRecord
		score  int
		band   domain.Band
	}{
		{"29 is low", domain.CheckinRecord{Adherence: 100, SleepHours: 8, Isolation: 58}, 29, domain.BandLow},
		{"30 is elevated", domain.CheckinRecord{Adherence: 100, SleepHours: 8, Isolation: 60}, 30, domain.BandElevated},
		{"54 is elevated", domain.CheckinRecord{Adherence: 100, SleepHours: 8, Isolation: 100, Cravings: 12}, 54, domain.BandElevated},
		{"55 is moderate", domain.CheckinRecord{Adherence: 100, SleepHours: 8, Isolation: 100, Cravings: 15}, 55, domain.BandModerate},
		{"74 is moderate", domain.CheckinRecord{Adherence: 100, SleepHours: 8, Isolation: 100, Cravings: 72}, 74, domain.BandModerate},
		{"75 is high", domain.CheckinRecord{Adherence: 100, SleepHours: 8, Isolation: 100, Cravings: 75}, 75, domain.BandHigh},
	}
	for _, tc := range cases {
		got := scorer.Evaluate(paddedHistory(tc.latest))
		if got.Score != tc.score {
			t.Fatalf("%s: expected score %d, got %d", tc.name, tc.score, got.Score)
		}
		if got.Band != tc.band {
			t.Fatalf("%s: expected band %s, got %s", tc.name, tc.band, got.Band)
		}
	}
}

func TestEvaluateClampsAtHundred(t *testing.T) {
	scorer := NewRiskScorer(3)
	latest := domain.CheckinRecord{Adherence: 8, MoodTrend: -10, Cravings: 94, SleepHours: 2, Isolation: 90}

	got := scorer.Evaluate(paddedHistory(latest))
	if got.Score != 100 {
		t.Fatalf("expected component sum above 100 to clamp to 100, got %d", got.Score)
	}
	if got.Band != domain.BandHigh {
		t.Fatalf("expected band high, got %s", got.Band)
	}
}

func TestEvaluateSleepComponentFloorsFractions(t *testing.T) {
	scorer := NewRiskScorer(3)
	latest := neutralRecord()
	latest.SleepHours = 6.7 // deficit 1.3 * 4 = 5.2 -> 5

	got := scorer.Evaluate(paddedHistory(latest))
	if got.Score != 5 {
		t.Fatalf("expected fractional sleep deficit to floor to 5, got %d", got.Score)
	}
}

func TestEvaluateLongSleepAddsNothing(t *testing.T) {
	scorer := NewRiskScorer(3)
	latest := neutralRecord()
	latest.SleepHours = 11

	got := scorer.Evaluate(paddedHistory(latest))
	if got.Score != 0 {
		t.Fatalf("expected sleep above 8h to contribute 0, got score %d", got.Score)
	}
}

func TestEvaluateHighBandAlwaysCarriesCrisisNotice(t *testing.T) {
	scorer := NewRiskScorer(3)

	highs := []domain.CheckinRecord{
		{Adherence: 8, MoodTrend: -10, Cravings: 94, SleepHours: 2, Isolation: 90},
		{Adherence: 100, SleepHours: 8, Isolation: 100, Cravings: 75},
		{Adherence: 0, MoodTrend: -10, Cravings: 0, SleepHours: 1, Isolation: 40},
	}
	for i, latest := range highs {
		got := scorer.Evaluate(paddedHistory(latest))
		if got.Band != domain.BandHigh {
			t.Fatalf("case %d: expected band high, got %s (score %d)", i, got.Band, got.Score)
		}
		if !strings.Contains(got.Reflection, "988") || !strings.Contains(got.Reflection, "emergency") {
			t.Fatalf("case %d: high reflection must carry the crisis notice, got %q", i, got.Reflection)
		}
	}
}

func TestEvaluateFooterOnEveryAssessment(t *testing.T) {
	scorer := NewRiskScorer(3)

	for _, history := range [][]domain.CheckinRecord{
		nil,
		historyOf(neutralRecord(), neutralRecord(), neutralRecord()),
	} {
		got := scorer.Evaluate(history)
		if !strings.Contains(got.Footer, "988") || !strings.Contains(got.Footer, "emergency") {
			t.Fatalf("expected crisis footer on every assessment, got %q", got.Footer)
		}
	}
}

func TestNewRiskScorerHonorsCustomFloor(t *testing.T) {
	scorer := NewRiskScorer(5)

	history := make([]domain.CheckinRecord, 4)
	for i := range history {
		history[i] = neutralRecord()
	}
	if got := scorer.Evaluate(history); !got.Insufficient() {
		t.Fatalf("expected insufficient_data below a floor of 5, got band %s", got.Band)
	}
}
