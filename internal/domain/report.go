package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAggregate holds totals for one category over a date range.
type CategoryAggregate struct {
	Category      Category        `json:"category"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// DailyAggregate holds totals for one calendar day.
type DailyAggregate struct {
	Date          time.Time       `json:"date"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// ReconciliationResult compares sales revenue against reported revenue.
// RevenueRatio is a percentage rounded to one decimal place; nil means the
// ratio is undefined because there were no sales.
type ReconciliationResult struct {
	TotalSalesRevenue decimal.Decimal  `json:"total_sales_revenue"`
	ReportedRevenue   decimal.Decimal  `json:"reported_revenue"`
	CostBasis         decimal.Decimal  `json:"cost_basis"`
	RevenueRatio      *decimal.Decimal `json:"revenue_ratio"`
	Profit            decimal.Decimal  `json:"profit"`
	Warnings          []error          `json:"-"`
}

// HasRatio reports whether the revenue ratio is defined.
func (r ReconciliationResult) HasRatio() bool {
	return r.RevenueRatio != nil
}

// Report is the assembled output of one pipeline run.
type Report struct {
	DateRange          DateRange            `json:"date_range"`
	CategoryAggregates []CategoryAggregate  `json:"category_aggregates"`
	Daily              []DailyAggregate     `json:"daily,omitempty"`
	Reconciliation     ReconciliationResult `json:"reconciliation"`
	SkippedRows        int                  `json:"skipped_rows"`
	GeneratedAt        time.Time            `json:"generated_at"`
}

// TotalQuantity sums quantities over all categories.
func (r *Report) TotalQuantity() int64 {
	var total int64
	for _, agg := range r.CategoryAggregates {
		total += agg.TotalQuantity
	}
	return total
}

// Aggregate returns the aggregate for c.
func (r *Report) Aggregate(c Category) (CategoryAggregate, bool) {
	for _, agg := range r.CategoryAggregates {
		if agg.Category == c {
			return agg, true
		}
	}
	return CategoryAggregate{}, false
}
