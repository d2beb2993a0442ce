package service

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/cache"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/export"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/pricebook"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/repository"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/settlement"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PriceProvider supplies a price book that may change between requests, such
// as the settings sheet.
type PriceProvider interface {
	Prices(ctx context.Context) (pricebook.Book, error)
}

// ReportRequest selects a range and, optionally, an explicit cost basis.
// A nil CostBasis falls back to the configured default, then the price book.
type ReportRequest struct {
	Range     domain.DateRange
	CostBasis *decimal.Decimal
}

// ExportResult describes a saved workbook.
type ExportResult struct {
	Report    *domain.Report
	RunID     int64
	Path      string
	ObjectKey string
}

type ReportServiceConfig struct {
	Engine     *settlement.Engine
	Source     settlement.RawDataSource
	SourceName string
	Book       pricebook.Book
	Prices     PriceProvider
	// DefaultCostBasis applies to requests that carry no cost basis.
	DefaultCostBasis *decimal.Decimal
	Cache            cache.ReportCache
	Runs             repository.ReportRunRepository
	Store            storage.ObjectStorage
	ReportDir        string
}

type ReportService struct {
	engine      *settlement.Engine
	source      settlement.RawDataSource
	sourceName  string
	book        pricebook.Book
	prices      PriceProvider
	defaultCost *decimal.Decimal
	cache       cache.ReportCache
	runs        repository.ReportRunRepository
	store       storage.ObjectStorage
	exporter    *export.Exporter
	reportDir   string
}

func NewReportService(cfg ReportServiceConfig) *ReportService {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNoopReportCache()
	}
	if cfg.Runs == nil {
		cfg.Runs = repository.NewNoopReportRunRepository()
	}
	if cfg.Book == nil {
		cfg.Book = pricebook.Defaults()
	}
	if cfg.SourceName == "" {
		cfg.SourceName = "default"
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = os.TempDir()
	}
	return &ReportService{
		engine:      cfg.Engine,
		source:      cfg.Source,
		sourceName:  cfg.SourceName,
		book:        cfg.Book,
		prices:      cfg.Prices,
		defaultCost: cfg.DefaultCostBasis,
		cache:       cfg.Cache,
		runs:        cfg.Runs,
		store:       cfg.Store,
		exporter:    export.NewExporter(),
		reportDir:   cfg.ReportDir,
	}
}

// Generate runs the engine and records the run.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (*domain.Report, error) {
	report, _, err := s.generate(ctx, req)
	return report, err
}

// Display returns the interactive projection, served from cache when possible.
func (s *ReportService) Display(ctx context.Context, req ReportRequest) (*settlement.Display, error) {
	if err := req.Range.Validate(); err != nil {
		return nil, err
	}

	key := s.cacheKey(req)
	if cached, ok, err := s.cache.GetReport(ctx, key); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("settlement: cache get report failed")
	}

	report, _, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	display := settlement.ToDisplay(report)
	if err := s.cache.SetReport(ctx, key, &display); err != nil {
		log.Warn().Err(err).Msg("settlement: cache set report failed")
	}
	return &display, nil
}

// Table returns the tabular export of a fresh report.
func (s *ReportService) Table(ctx context.Context, req ReportRequest) (settlement.Table, error) {
	report, _, err := s.generate(ctx, req)
	if err != nil {
		return settlement.Table{}, err
	}
	return settlement.ToTable(report), nil
}

// Export writes the workbook to the report directory and archives it when an
// object store is configured.
func (s *ReportService) Export(ctx context.Context, req ReportRequest) (*ExportResult, error) {
	report, runID, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	path, err := s.exporter.SaveTo(s.reportDir, report)
	if err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}
	result := &ExportResult{Report: report, RunID: runID, Path: path}

	if s.store == nil {
		return result, nil
	}

	folder := fmt.Sprintf("%s_%s",
		report.DateRange.Start.Format(domain.DateLayout),
		report.DateRange.End.Format(domain.DateLayout))
	key, err := storage.ArchiveFile(ctx, s.store, folder, path)
	if err != nil {
		return nil, fmt.Errorf("archive workbook: %w", err)
	}
	result.ObjectKey = key

	if runID > 0 {
		if err := s.runs.SetArtifactURL(ctx, runID, key); err != nil {
			log.Warn().Err(err).Int64("run_id", runID).Msg("settlement: failed to record artifact")
		}
	}
	return result, nil
}

func (s *ReportService) ListRuns(ctx context.Context, filter repository.RunFilter) ([]domain.ReportRun, error) {
	return s.runs.ListRuns(ctx, filter)
}

func (s *ReportService) GetRun(ctx context.Context, id int64) (*domain.ReportRun, error) {
	return s.runs.GetRun(ctx, id)
}

// InvalidateCache drops every cached report, for example after prices change.
func (s *ReportService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

func (s *ReportService) generate(ctx context.Context, req ReportRequest) (*domain.Report, int64, error) {
	report, err := s.engine.GenerateReportWithPricing(ctx, req.Range, s.source, s.pricing(req))
	if err != nil {
		return nil, 0, err
	}

	run := domain.NewReportRun(s.sourceName, report)
	id, err := s.runs.SaveRun(ctx, &run)
	if err != nil {
		// Audit failures do not fail the request.
		log.Warn().Err(err).Str("range", req.Range.String()).Msg("settlement: failed to record report run")
	}

	log.Info().
		Str("range", req.Range.String()).
		Str("total_sales", report.Reconciliation.TotalSalesRevenue.String()).
		Str("profit", report.Reconciliation.Profit.String()).
		Int64("run_id", id).
		Msg("settlement: report generated")

	return report, id, nil
}

// pricing resolves the price book for one request: the configured book
// overlaid with the provider's prices. The book fills missing unit prices;
// the cost basis is the effective explicit cost or else the book's costs.
func (s *ReportService) pricing(req ReportRequest) settlement.PricingFunc {
	return func(ctx context.Context) (settlement.Pricing, error) {
		book := s.book
		if s.prices != nil {
			overrides, err := s.prices.Prices(ctx)
			if err != nil {
				return settlement.Pricing{}, fmt.Errorf("load prices: %w", err)
			}
			book = book.Merge(overrides)
		}

		pricing := settlement.Pricing{Lookup: book, Costs: book}
		if cost := s.effectiveCost(req); cost != nil {
			pricing.Costs = settlement.FixedCost(*cost)
		}
		return pricing, nil
	}
}

func (s *ReportService) cacheKey(req ReportRequest) cache.ReportKey {
	key := cache.ReportKey{
		Source: s.sourceName,
		Start:  req.Range.Start.Format(domain.DateLayout),
		End:    req.Range.End.Format(domain.DateLayout),
	}
	if cost := s.effectiveCost(req); cost != nil {
		key.CostBasis = cost.String()
	}
	return key
}

func (s *ReportService) effectiveCost(req ReportRequest) *decimal.Decimal {
	if req.CostBasis != nil {
		return req.CostBasis
	}
	return s.defaultCost
}
