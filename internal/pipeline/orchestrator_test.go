package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/settlement"
	"github.com/shopspring/decimal"
)

var taipei = time.FixedZone("CST", 8*60*60)

func mustRange(t *testing.T, start, end string) domain.DateRange {
	t.Helper()
	rng, err := domain.ParseDateRange(start, end, taipei)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return rng
}

// oneSalePerDay reports one 雞排 at 100 per day with 50 of reported revenue
// per day and no cost.
func oneSalePerDay(ctx context.Context, rng domain.DateRange) (*domain.Report, error) {
	days := int64(rng.Days())
	aggs := []domain.CategoryAggregate{
		{Category: domain.CategoryCutlet, TotalQuantity: days, TotalRevenue: decimal.NewFromInt(100 * days)},
	}
	rec := settlement.ReconcileRange(rng, aggs, decimal.NewFromInt(50*days), decimal.Zero)
	return settlement.BuildReport(rng, aggs, rec), nil
}

func TestOrchestrator_RunsEveryPeriodInOrder(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(Config{PeriodDays: 14, WorkerCount: 3}, oneSalePerDay)
	results, err := o.Run(context.Background(), mustRange(t, "2025-09-01", "2025-10-12"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("periods want=3 got=%d", len(results))
	}
	wantStarts := []string{"2025-09-01", "2025-09-15", "2025-09-29"}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("period %d: %v", i, res.Err)
		}
		if got := res.Range.Start.Format(domain.DateLayout); got != wantStarts[i] {
			t.Fatalf("period %d start want=%s got=%s", i, wantStarts[i], got)
		}
	}

	totals := Totals(results)
	if totals.TotalQuantity != 42 || !totals.TotalSales.Equal(decimal.NewFromInt(4200)) {
		t.Fatalf("totals unexpected: %+v", totals)
	}
	if !totals.Profit.Equal(decimal.NewFromInt(4200)) || totals.Failed != 0 {
		t.Fatalf("totals unexpected: %+v", totals)
	}
}

func TestOrchestrator_FailedPeriodDoesNotStopBatch(t *testing.T) {
	t.Parallel()

	failOn := mustRange(t, "2025-09-15", "2025-09-28")
	run := func(ctx context.Context, rng domain.DateRange) (*domain.Report, error) {
		if rng.Start.Equal(failOn.Start) {
			return nil, &domain.DataSourceTimeoutError{Operation: "fetch", Timeout: time.Second}
		}
		return oneSalePerDay(ctx, rng)
	}

	results, err := NewOrchestrator(Config{PeriodDays: 14, WorkerCount: 2}, run).
		Run(context.Background(), mustRange(t, "2025-09-01", "2025-10-12"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !errors.Is(results[1].Err, domain.ErrDataSourceTimeout) {
		t.Fatalf("period 1 want timeout got %v", results[1].Err)
	}
	totals := Totals(results)
	if totals.Failed != 1 || totals.TotalQuantity != 28 {
		t.Fatalf("totals unexpected: %+v", totals)
	}
}

func TestOrchestrator_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	run := func(ctx context.Context, rng domain.DateRange) (*domain.Report, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return oneSalePerDay(ctx, rng)
	}

	results, err := NewOrchestrator(Config{PeriodDays: 1, WorkerCount: 2}, run).
		Run(context.Background(), mustRange(t, "2025-09-01", "2025-09-10"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 10 {
		t.Fatalf("periods want=10 got=%d", len(results))
	}
	if peak.Load() > 2 {
		t.Fatalf("peak concurrency want<=2 got=%d", peak.Load())
	}
}

func TestOrchestrator_InvalidRange(t *testing.T) {
	t.Parallel()

	rng := domain.DateRange{
		Start: time.Date(2025, 9, 30, 0, 0, 0, 0, taipei),
		End:   time.Date(2025, 9, 1, 0, 0, 0, 0, taipei),
	}
	_, err := NewOrchestrator(DefaultConfig(), oneSalePerDay).Run(context.Background(), rng)
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("want ErrInvalidDateRange got %v", err)
	}
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOrchestrator(DefaultConfig(), oneSalePerDay).Run(ctx, mustRange(t, "2025-09-01", "2025-09-30"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled got %v", err)
	}
}
