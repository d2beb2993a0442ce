package pipeline

import (
	"context"
	"fmt"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/settlement"
	"github.com/shopspring/decimal"
)

// ReportFunc produces the report for one settlement period.
type ReportFunc func(ctx context.Context, rng domain.DateRange) (*domain.Report, error)

// Config holds configuration for a batch run.
type Config struct {
	PeriodDays  int // Length of each settlement period
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the stall's two-week cycle with four workers.
func DefaultConfig() Config {
	return Config{
		PeriodDays:  settlement.DefaultPeriodDays,
		WorkerCount: 4,
	}
}

// PeriodResult is the outcome for one period. Exactly one of Report and Err
// is set.
type PeriodResult struct {
	Range  domain.DateRange
	Report *domain.Report
	Err    error
}

// Orchestrator splits a range into settlement periods and reports each one.
type Orchestrator struct {
	cfg   Config
	run   ReportFunc
	makeW func(run ReportFunc, cfg Config) *Worker
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(cfg Config, run ReportFunc) *Orchestrator {
	if cfg.PeriodDays < 1 {
		cfg.PeriodDays = settlement.DefaultPeriodDays
	}
	return &Orchestrator{
		cfg:   cfg,
		run:   run,
		makeW: NewWorker,
	}
}

// Run reports every period of rng. Results are in period order. A failing
// period does not stop the others; only an invalid range or a cancelled
// context fails the whole batch.
func (o *Orchestrator) Run(ctx context.Context, rng domain.DateRange) ([]PeriodResult, error) {
	periods, err := settlement.SplitPeriods(rng, o.cfg.PeriodDays)
	if err != nil {
		return nil, fmt.Errorf("failed to split %s: %w", rng, err)
	}

	worker := o.makeW(o.run, o.cfg)
	results, err := worker.ProcessPeriods(ctx, periods)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// BatchTotals sums the successful periods of a batch.
type BatchTotals struct {
	Periods       int
	Failed        int
	TotalQuantity int64
	TotalSales    decimal.Decimal
	Reported      decimal.Decimal
	CostBasis     decimal.Decimal
	Profit        decimal.Decimal
}

func Totals(results []PeriodResult) BatchTotals {
	t := BatchTotals{Periods: len(results)}
	for _, res := range results {
		if res.Err != nil {
			t.Failed++
			continue
		}
		rec := res.Report.Reconciliation
		t.TotalQuantity += res.Report.TotalQuantity()
		t.TotalSales = t.TotalSales.Add(rec.TotalSalesRevenue)
		t.Reported = t.Reported.Add(rec.ReportedRevenue)
		t.CostBasis = t.CostBasis.Add(rec.CostBasis)
		t.Profit = t.Profit.Add(rec.Profit)
	}
	return t
}
