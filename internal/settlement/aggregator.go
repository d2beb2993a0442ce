package settlement

import (
	"sort"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Aggregate sums quantity and revenue per category for records inside rng.
// The result always has one entry per known category, in category order,
// zero-filled when a category has no sales.
func Aggregate(records []domain.CategorizedRecord, rng domain.DateRange) []domain.CategoryAggregate {
	categories := domain.Categories()
	out := make([]domain.CategoryAggregate, len(categories))
	for i, c := range categories {
		out[i] = domain.CategoryAggregate{Category: c, TotalRevenue: decimal.Zero}
	}

	for _, r := range records {
		if !rng.Contains(r.Timestamp) {
			continue
		}
		idx := r.Category.Index()
		if idx < 0 {
			idx = domain.CategoryOther.Index()
		}
		out[idx].TotalQuantity += r.Quantity
		out[idx].TotalRevenue = out[idx].TotalRevenue.Add(r.Amount())
	}

	return out
}

// AggregateDaily sums quantity and revenue per calendar day inside rng,
// ordered by date. Days with no sales are omitted.
func AggregateDaily(records []domain.CategorizedRecord, rng domain.DateRange) []domain.DailyAggregate {
	loc := rng.Start.Location()
	byDay := make(map[int64]*domain.DailyAggregate)
	for _, r := range records {
		if !rng.Contains(r.Timestamp) {
			continue
		}
		day := domain.StartOfDay(r.Timestamp.In(loc))
		agg, ok := byDay[day.Unix()]
		if !ok {
			agg = &domain.DailyAggregate{Date: day, TotalRevenue: decimal.Zero}
			byDay[day.Unix()] = agg
		}
		agg.TotalQuantity += r.Quantity
		agg.TotalRevenue = agg.TotalRevenue.Add(r.Amount())
	}

	out := make([]domain.DailyAggregate, 0, len(byDay))
	for _, agg := range byDay {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// FilterRange returns the records whose timestamp falls inside rng.
func FilterRange(records []domain.CategorizedRecord, rng domain.DateRange) []domain.CategorizedRecord {
	out := make([]domain.CategorizedRecord, 0, len(records))
	for _, r := range records {
		if rng.Contains(r.Timestamp) {
			out = append(out, r)
		}
	}
	return out
}
