package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportRun is the audit record of one generated report.
type ReportRun struct {
	ID              int64               `db:"id" json:"id"`
	Source          string              `db:"source" json:"source"`
	StartDate       time.Time           `db:"start_date" json:"start_date"`
	EndDate         time.Time           `db:"end_date" json:"end_date"`
	TotalQuantity   int64               `db:"total_quantity" json:"total_quantity"`
	TotalSales      decimal.Decimal     `db:"total_sales" json:"total_sales"`
	ReportedRevenue decimal.Decimal     `db:"reported_revenue" json:"reported_revenue"`
	RevenueRatio    decimal.NullDecimal `db:"revenue_ratio" json:"revenue_ratio"`
	CostBasis       decimal.Decimal     `db:"cost_basis" json:"cost_basis"`
	Profit          decimal.Decimal     `db:"profit" json:"profit"`
	SkippedRows     int                 `db:"skipped_rows" json:"skipped_rows"`
	ArtifactURL     string              `db:"artifact_url" json:"artifact_url,omitempty"`
	GeneratedAt     time.Time           `db:"generated_at" json:"generated_at"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`

	Categories []CategoryAggregate `db:"-" json:"categories,omitempty"`
}

// NewReportRun flattens a report for storage.
func NewReportRun(source string, r *Report) ReportRun {
	run := ReportRun{
		Source:          source,
		StartDate:       r.DateRange.Start,
		EndDate:         r.DateRange.End,
		TotalQuantity:   r.TotalQuantity(),
		TotalSales:      r.Reconciliation.TotalSalesRevenue,
		ReportedRevenue: r.Reconciliation.ReportedRevenue,
		CostBasis:       r.Reconciliation.CostBasis,
		Profit:          r.Reconciliation.Profit,
		SkippedRows:     r.SkippedRows,
		GeneratedAt:     r.GeneratedAt,
		Categories:      append([]CategoryAggregate(nil), r.CategoryAggregates...),
	}
	if r.Reconciliation.RevenueRatio != nil {
		run.RevenueRatio = decimal.NewNullDecimal(*r.Reconciliation.RevenueRatio)
	}
	return run
}
