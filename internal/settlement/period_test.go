package settlement

import (
	"errors"
	"testing"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
)

func TestPeriodFrom(t *testing.T) {
	t.Parallel()

	p, err := PeriodFrom(day(t, "2025-09-16"), DefaultPeriodDays)
	if err != nil {
		t.Fatalf("period: %v", err)
	}
	if p.End.Format(domain.DateLayout) != "2025-09-29" || p.Days() != 14 {
		t.Fatalf("unexpected period %s (%d days)", p, p.Days())
	}
	if _, err := PeriodFrom(day(t, "2025-09-16"), 0); err == nil {
		t.Fatalf("expected error for zero-day period")
	}
}

func TestPeriodEndingAt(t *testing.T) {
	t.Parallel()

	p, err := PeriodEndingAt(day(t, "2025-09-30"), 15)
	if err != nil {
		t.Fatalf("period: %v", err)
	}
	if p.Start.Format(domain.DateLayout) != "2025-09-16" {
		t.Fatalf("start want=2025-09-16 got=%s", p.Start.Format(domain.DateLayout))
	}
}

func TestSplitPeriods(t *testing.T) {
	t.Parallel()

	periods, err := SplitPeriods(dateRange(t, "2025-09-01", "2025-09-30"), 14)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	want := [][2]string{
		{"2025-09-01", "2025-09-14"},
		{"2025-09-15", "2025-09-28"},
		{"2025-09-29", "2025-09-30"},
	}
	if len(periods) != len(want) {
		t.Fatalf("want %d periods, got %d", len(want), len(periods))
	}
	for i, p := range periods {
		if p.Start.Format(domain.DateLayout) != want[i][0] || p.End.Format(domain.DateLayout) != want[i][1] {
			t.Fatalf("period %d want=%v got=%s", i, want[i], p)
		}
	}

	_, err = SplitPeriods(domain.DateRange{Start: day(t, "2025-09-30"), End: day(t, "2025-09-01")}, 14)
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
}
