// Package app assembles the settlement stack from configuration for the
// command binaries.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/cache"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/config"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/drive"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/pricebook"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/repository"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/service"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/settlement"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/sheets"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Options overrides parts of the configured stack.
type Options struct {
	// Files reads sales from local exports instead of the spreadsheet.
	Files []string
	// Reported overrides reported revenue for file sources.
	Reported *decimal.Decimal
	Runs     repository.ReportRunRepository
	// NoCache disables the report cache regardless of configuration.
	NoCache bool
}

// LoadPriceBook reads the configured price book, falling back to defaults.
func LoadPriceBook(cfg *config.Config) pricebook.Book {
	book, err := pricebook.LoadFile(cfg.App.PriceBookFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.App.PriceBookFile).Msg("price book unreadable, using defaults")
		return pricebook.Defaults()
	}
	return book
}

// NewEngine builds an engine from the settlement section.
func NewEngine(cfg *config.Config, book pricebook.Book) *settlement.Engine {
	return settlement.NewEngine(settlement.Options{
		Location:     cfg.Settlement.Location(),
		Prices:       book,
		FetchTimeout: cfg.Settlement.FetchTimeout,
		IncludeDaily: true,
	})
}

// NewSheetsSource connects to the order form spreadsheet.
func NewSheetsSource(ctx context.Context, cfg *config.Config) (*sheets.Source, error) {
	if cfg.Sheets.CredentialsJSON == "" || cfg.Sheets.SpreadsheetID == "" {
		return nil, fmt.Errorf("GOOGLE_SHEETS_CREDENTIALS_JSON and GOOGLE_SHEETS_SPREADSHEET_ID are required")
	}
	client, err := sheets.NewClient(ctx, cfg.Sheets.CredentialsJSON, cfg.Sheets.SpreadsheetID)
	if err != nil {
		return nil, err
	}
	return sheets.NewSource(client, sheets.SourceConfig{
		MainSheet:     cfg.Sheets.MainSheet,
		DataRange:     cfg.Sheets.DataRange,
		SettingsSheet: cfg.Sheets.SettingsSheet,
		SettingsRange: cfg.Sheets.SettingsRange,
		Location:      cfg.Settlement.Location(),
	}), nil
}

// NewStore returns the configured object store, or nil when archiving is off.
func NewStore(cfg *config.Config) (storage.ObjectStorage, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	client, err := storage.NewS3Client(storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
		Prefix:    cfg.Storage.Prefix,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// DefaultCostBasis parses SETTLEMENT_COST_BASIS. Empty means none.
func DefaultCostBasis(cfg *config.Config) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(cfg.Settlement.CostBasis)
	if raw == "" {
		return nil, nil
	}
	cost, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid SETTLEMENT_COST_BASIS %q: %w", raw, err)
	}
	return &cost, nil
}

// NewReportService wires source, cache, store and engine into a service.
func NewReportService(ctx context.Context, cfg *config.Config, opts Options) (*service.ReportService, error) {
	book := LoadPriceBook(cfg)

	svcCfg := service.ReportServiceConfig{
		Engine:    NewEngine(cfg, book),
		Book:      book,
		Runs:      opts.Runs,
		ReportDir: cfg.App.ReportDir,
	}

	if len(opts.Files) > 0 {
		src := drive.NewFileSource(cfg.Settlement.Location(), opts.Files...)
		src.Reported = opts.Reported
		svcCfg.Source = src
		svcCfg.SourceName = "files"
	} else {
		src, err := NewSheetsSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		svcCfg.Source = src
		svcCfg.SourceName = "sheets"
		svcCfg.Prices = src
	}

	cost, err := DefaultCostBasis(cfg)
	if err != nil {
		return nil, err
	}
	svcCfg.DefaultCostBasis = cost

	if !opts.NoCache {
		reportCache, err := cache.NewReportCache(cfg.Cache)
		if err != nil {
			log.Warn().Err(err).Msg("report cache unavailable, continuing without it")
			reportCache = cache.NewNoopReportCache()
		}
		svcCfg.Cache = reportCache
	}

	store, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}
	svcCfg.Store = store

	return service.NewReportService(svcCfg), nil
}
