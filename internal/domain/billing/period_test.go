package billing

import (
	"testing"
	"time"
)

func TestPeriodForMidMonth(t *testing.T) {
	now := time.Date(2025, 7, 15, 13, 45, 0, 0, time.UTC)
	p := PeriodFor(now)

	wantStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	if !p.Start.Equal(wantStart) || !p.End.Equal(wantEnd) {
		t.Fatalf("got [%v, %v), want [%v, %v)", p.Start, p.End, wantStart, wantEnd)
	}
}

func TestPeriodForFirstOfMonth(t *testing.T) {
	// A run at the anchor itself still bills the month that just ended.
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	p := PeriodFor(now)

	wantStart := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if !p.Start.Equal(wantStart) || !p.End.Equal(now) {
		t.Fatalf("got [%v, %v)", p.Start, p.End)
	}
}

func TestPeriodForJanuaryCrossesYear(t *testing.T) {
	now := time.Date(2025, 1, 10, 2, 0, 0, 0, time.UTC)
	p := PeriodFor(now)

	wantStart := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !p.Start.Equal(wantStart) || !p.End.Equal(wantEnd) {
		t.Fatalf("got [%v, %v)", p.Start, p.End)
	}
}

func TestPeriodForNonUTCInput(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2025, 5, 1, 2, 0, 0, 0, loc) // Apr 30 21:00 UTC
	p := PeriodFor(now)

	wantEnd := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	if !p.End.Equal(wantEnd) {
		t.Fatalf("period bounds must be UTC-anchored, got end %v", p.End)
	}
}
