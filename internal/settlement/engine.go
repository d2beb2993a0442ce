package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RawDataSource supplies raw sales rows and the independently reported
// revenue for a date range.
type RawDataSource interface {
	FetchRows(ctx context.Context, rng domain.DateRange) ([]domain.RawRow, error)
	FetchReportedRevenue(ctx context.Context, rng domain.DateRange) (decimal.Decimal, error)
}

// CostSource derives the cost basis from the categorized records in range.
type CostSource interface {
	CostBasis(records []domain.CategorizedRecord) (decimal.Decimal, []string)
}

// FixedCost is a CostSource returning the same amount regardless of input.
type FixedCost decimal.Decimal

func (f FixedCost) CostBasis([]domain.CategorizedRecord) (decimal.Decimal, []string) {
	return decimal.Decimal(f), nil
}

// Pricing is the price data for one request. Lookup fills unit prices that
// rows lack; nil keeps the engine's configured prices. Costs derives the cost
// basis; nil means a zero cost basis.
type Pricing struct {
	Lookup PriceLookup
	Costs  CostSource
}

// PricingFunc resolves Pricing for one request. It runs inside the fetch,
// under the same deadline as the data source.
type PricingFunc func(ctx context.Context) (Pricing, error)

// Options configures an Engine.
type Options struct {
	Location     *time.Location
	Prices       PriceLookup
	Rules        []Rule
	FetchTimeout time.Duration
	Clock        func() time.Time
	// IncludeDaily adds per-day totals to generated reports.
	IncludeDaily bool
}

// Engine runs normalize → categorize → aggregate → reconcile → build for one
// request. It holds configuration only; every call is independent.
type Engine struct {
	normalizer   *Normalizer
	categorizer  *Categorizer
	builder      *Builder
	fetchTimeout time.Duration
	includeDaily bool
}

func NewEngine(opts Options) *Engine {
	return &Engine{
		normalizer:   NewNormalizer(opts.Location, opts.Prices),
		categorizer:  NewCategorizer(opts.Rules),
		builder:      NewBuilder(opts.Clock),
		fetchTimeout: opts.FetchTimeout,
		includeDaily: opts.IncludeDaily,
	}
}

// GenerateReport fetches data for rng from src and produces a report using
// costBasis for profit. Either a complete report or an error is returned.
func (e *Engine) GenerateReport(ctx context.Context, rng domain.DateRange, src RawDataSource, costBasis decimal.Decimal) (*domain.Report, error) {
	return e.GenerateReportWithCosts(ctx, rng, src, FixedCost(costBasis))
}

// GenerateReportWithCosts is GenerateReport with the cost basis derived from
// the records in range, for example from a price book.
func (e *Engine) GenerateReportWithCosts(ctx context.Context, rng domain.DateRange, src RawDataSource, costs CostSource) (*domain.Report, error) {
	return e.GenerateReportWithPricing(ctx, rng, src, func(context.Context) (Pricing, error) {
		return Pricing{Costs: costs}, nil
	})
}

// GenerateReportWithPricing resolves prices per request, for example from a
// settings sheet, and applies them to both revenue and cost.
func (e *Engine) GenerateReportWithPricing(ctx context.Context, rng domain.DateRange, src RawDataSource, resolve PricingFunc) (*domain.Report, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	res, err := e.fetch(ctx, rng, src, resolve)
	if err != nil {
		return nil, err
	}

	return e.Compute(rng, res.rows, res.reported, res.pricing), nil
}

// Compute runs the pure part of the pipeline over already fetched data.
func (e *Engine) Compute(rng domain.DateRange, rows []domain.RawRow, reported decimal.Decimal, pricing Pricing) *domain.Report {
	normalizer := e.normalizer
	if pricing.Lookup != nil {
		normalizer = normalizer.WithPrices(pricing.Lookup)
	}
	costs := pricing.Costs
	if costs == nil {
		costs = FixedCost(decimal.Zero)
	}

	normalized := normalizer.Normalize(rows)
	if normalized.Skipped > 0 {
		log.Warn().
			Int("skipped", normalized.Skipped).
			Int("total", len(rows)).
			Str("range", rng.String()).
			Msg("settlement: skipped malformed rows")
		for _, rowErr := range normalized.Errors {
			log.Debug().Err(rowErr).Msg("settlement: malformed row")
		}
	}

	categorized := e.categorizer.CategorizeAll(normalized.Records)
	inRange := FilterRange(categorized, rng)
	aggregates := Aggregate(inRange, rng)

	costBasis, missing := costs.CostBasis(inRange)
	if len(missing) > 0 {
		log.Warn().Strs("items", missing).Msg("settlement: no cost configured for items")
	}

	opts := []BuildOption{WithSkippedRows(normalized.Skipped)}
	if e.includeDaily {
		opts = append(opts, WithDaily(AggregateDaily(inRange, rng)))
	}
	rec := ReconcileRange(rng, aggregates, reported, costBasis)
	return e.builder.Build(rng, aggregates, rec, opts...)
}

type fetchResult struct {
	rows     []domain.RawRow
	reported decimal.Decimal
	pricing  Pricing
	err      error
}

// fetch performs the only blocking step: rows, reported revenue and prices
// under one deadline. No computation starts until all three are in hand.
func (e *Engine) fetch(ctx context.Context, rng domain.DateRange, src RawDataSource, resolve PricingFunc) (fetchResult, error) {
	if err := ctx.Err(); err != nil {
		return fetchResult{}, err
	}

	if e.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
	}

	done := make(chan fetchResult, 1)
	go func() {
		rows, err := src.FetchRows(ctx, rng)
		if err != nil {
			done <- fetchResult{err: fmt.Errorf("fetch rows: %w", err)}
			return
		}
		reported, err := src.FetchReportedRevenue(ctx, rng)
		if err != nil {
			done <- fetchResult{err: fmt.Errorf("fetch reported revenue: %w", err)}
			return
		}
		var pricing Pricing
		if resolve != nil {
			if pricing, err = resolve(ctx); err != nil {
				done <- fetchResult{err: fmt.Errorf("fetch prices: %w", err)}
				return
			}
		}
		done <- fetchResult{rows: rows, reported: reported, pricing: pricing}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return fetchResult{}, &domain.DataSourceTimeoutError{Operation: "fetch", Timeout: e.fetchTimeout}
			}
			return fetchResult{}, res.err
		}
		return res, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fetchResult{}, &domain.DataSourceTimeoutError{Operation: "fetch", Timeout: e.fetchTimeout}
		}
		return fetchResult{}, ctx.Err()
	}
}
