package settlement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// SummaryLabel marks the trailing totals row of an exported table.
const SummaryLabel = "合計"

// TableHeader is the column order of an exported table.
var TableHeader = []string{"category", "quantity", "revenue"}

// Builder assembles reports. Clock is injectable so generated_at can be
// pinned in tests.
type Builder struct {
	clock func() time.Time
}

// NewBuilder returns a builder stamping reports with clock(); nil means time.Now.
func NewBuilder(clock func() time.Time) *Builder {
	if clock == nil {
		clock = time.Now
	}
	return &Builder{clock: clock}
}

// BuildOption sets optional report parts at construction time.
type BuildOption func(*domain.Report)

// WithDaily attaches per-day totals. The slice is copied.
func WithDaily(daily []domain.DailyAggregate) BuildOption {
	return func(r *domain.Report) {
		r.Daily = append([]domain.DailyAggregate(nil), daily...)
	}
}

// WithSkippedRows records how many raw rows were dropped as malformed.
func WithSkippedRows(n int) BuildOption {
	return func(r *domain.Report) {
		r.SkippedRows = n
	}
}

// Build assembles a report from already computed parts. The aggregates slice
// is copied so later changes by the caller cannot reach the report.
func (b *Builder) Build(rng domain.DateRange, aggregates []domain.CategoryAggregate, rec domain.ReconciliationResult, opts ...BuildOption) *domain.Report {
	aggs := make([]domain.CategoryAggregate, len(aggregates))
	copy(aggs, aggregates)
	if rec.Warnings != nil {
		rec.Warnings = append([]error(nil), rec.Warnings...)
	}
	report := &domain.Report{
		DateRange:          rng,
		CategoryAggregates: aggs,
		Reconciliation:     rec,
		GeneratedAt:        b.clock(),
	}
	for _, opt := range opts {
		opt(report)
	}
	return report
}

// BuildReport is Build with the wall clock.
func BuildReport(rng domain.DateRange, aggregates []domain.CategoryAggregate, rec domain.ReconciliationResult) *domain.Report {
	return NewBuilder(nil).Build(rng, aggregates, rec)
}

// Table is a spreadsheet-ready projection of a report.
type Table struct {
	Header []string
	Rows   [][]string
}

// ToTable returns one row per category (category, quantity, revenue) in
// category order followed by a summary row. Revenue keeps full precision so
// ParseTable reads back the same amounts.
func ToTable(r *domain.Report) Table {
	t := Table{Header: append([]string(nil), TableHeader...)}
	for _, agg := range r.CategoryAggregates {
		t.Rows = append(t.Rows, []string{
			string(agg.Category),
			strconv.FormatInt(agg.TotalQuantity, 10),
			agg.TotalRevenue.String(),
		})
	}
	t.Rows = append(t.Rows, []string{
		SummaryLabel,
		strconv.FormatInt(r.TotalQuantity(), 10),
		r.Reconciliation.TotalSalesRevenue.String(),
	})
	return t
}

// ParseTable reads category rows back from a table produced by ToTable. The
// header row, if present, and the summary row are skipped.
func ParseTable(rows [][]string) ([]domain.CategoryAggregate, error) {
	var out []domain.CategoryAggregate
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: expected 3 columns, got %d", i, len(row))
		}
		label := strings.TrimSpace(row[0])
		if label == SummaryLabel || (i == 0 && strings.EqualFold(label, TableHeader[0])) {
			continue
		}
		cat, ok := domain.ParseCategory(label)
		if !ok {
			return nil, fmt.Errorf("row %d: unknown category %q", i, label)
		}
		qty, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: quantity: %w", i, err)
		}
		rev, err := decimal.NewFromString(strings.TrimSpace(row[2]))
		if err != nil {
			return nil, fmt.Errorf("row %d: revenue: %w", i, err)
		}
		out = append(out, domain.CategoryAggregate{Category: cat, TotalQuantity: qty, TotalRevenue: rev})
	}
	return out, nil
}

// Display is the payload rendered by the interactive page.
type Display struct {
	DateRange        DisplayRange          `json:"date_range"`
	TotalSalesAmount decimal.Decimal       `json:"total_sales_amount"`
	TotalQuantity    int64                 `json:"total_quantity"`
	Categories       map[string]int64      `json:"categories"`
	Breakdown        []DisplayCategory     `json:"breakdown"`
	Reconciliation   DisplayReconciliation `json:"reconciliation"`
	Warnings         []string              `json:"warnings,omitempty"`
	SkippedRows      int                   `json:"skipped_rows"`
	GeneratedAt      time.Time             `json:"generated_at"`
}

type DisplayRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

type DisplayCategory struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type DisplayReconciliation struct {
	TotalReportedRevenue decimal.Decimal  `json:"total_reported_revenue"`
	RevenueRatioPercent  *decimal.Decimal `json:"revenue_ratio_percent"`
	Profit               decimal.Decimal  `json:"profit"`
	CostBasis            decimal.Decimal  `json:"cost_basis"`
}

// ToDisplay projects a report for interactive rendering.
func ToDisplay(r *domain.Report) Display {
	d := Display{
		DateRange: DisplayRange{
			Start: r.DateRange.Start.Format(domain.DateLayout),
			End:   r.DateRange.End.Format(domain.DateLayout),
			Label: r.DateRange.String(),
		},
		TotalSalesAmount: r.Reconciliation.TotalSalesRevenue,
		TotalQuantity:    r.TotalQuantity(),
		Categories:       make(map[string]int64, len(r.CategoryAggregates)),
		Breakdown:        make([]DisplayCategory, 0, len(r.CategoryAggregates)),
		Reconciliation: DisplayReconciliation{
			TotalReportedRevenue: r.Reconciliation.ReportedRevenue,
			RevenueRatioPercent:  r.Reconciliation.RevenueRatio,
			Profit:               r.Reconciliation.Profit,
			CostBasis:            r.Reconciliation.CostBasis,
		},
		SkippedRows: r.SkippedRows,
		GeneratedAt: r.GeneratedAt,
	}
	for _, agg := range r.CategoryAggregates {
		d.Categories[string(agg.Category)] = agg.TotalQuantity
		d.Breakdown = append(d.Breakdown, DisplayCategory{
			Name:     string(agg.Category),
			Quantity: agg.TotalQuantity,
			Revenue:  agg.TotalRevenue,
		})
	}
	for _, w := range r.Reconciliation.Warnings {
		d.Warnings = append(d.Warnings, w.Error())
	}
	return d
}
