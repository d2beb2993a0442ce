package settlement

import (
	"fmt"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
)

// DefaultPeriodDays is the stall's settlement cycle.
const DefaultPeriodDays = 14

// PeriodFrom returns the settlement period of days days starting at start.
func PeriodFrom(start time.Time, days int) (domain.DateRange, error) {
	if days < 1 {
		return domain.DateRange{}, fmt.Errorf("period must cover at least one day, got %d", days)
	}
	start = domain.StartOfDay(start)
	return domain.NewDateRange(start, start.AddDate(0, 0, days-1))
}

// PeriodEndingAt returns the days-long period whose last day is end.
func PeriodEndingAt(end time.Time, days int) (domain.DateRange, error) {
	if days < 1 {
		return domain.DateRange{}, fmt.Errorf("period must cover at least one day, got %d", days)
	}
	end = domain.StartOfDay(end)
	return domain.NewDateRange(end.AddDate(0, 0, -(days - 1)), end)
}

// SplitPeriods cuts rng into consecutive periods of days days. The last
// period is truncated at rng.End.
func SplitPeriods(rng domain.DateRange, days int) ([]domain.DateRange, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, fmt.Errorf("period must cover at least one day, got %d", days)
	}

	end := domain.StartOfDay(rng.End.In(rng.Start.Location()))
	var out []domain.DateRange
	for cur := domain.StartOfDay(rng.Start); !cur.After(end); cur = cur.AddDate(0, 0, days) {
		periodEnd := cur.AddDate(0, 0, days-1)
		if periodEnd.After(end) {
			periodEnd = end
		}
		out = append(out, domain.DateRange{Start: cur, End: periodEnd})
	}
	return out, nil
}
