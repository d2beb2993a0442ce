package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/pricebook"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type SourceConfig struct {
	MainSheet     string
	DataRange     string
	SettingsSheet string
	SettingsRange string
	Location      *time.Location
}

// Source exposes the order form spreadsheet as sale rows. Each submission is
// reduced to the newest one per day, then expanded to one row per item.
type Source struct {
	reader ValuesReader
	cfg    SourceConfig
}

func NewSource(reader ValuesReader, cfg SourceConfig) *Source {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Source{reader: reader, cfg: cfg}
}

// FetchRows reads the main sheet and returns one raw row per ordered item.
// Rows outside rng are returned too; the engine filters by date.
func (s *Source) FetchRows(ctx context.Context, rng domain.DateRange) ([]domain.RawRow, error) {
	submissions, err := s.submissions(ctx)
	if err != nil {
		return nil, err
	}

	rows := ExpandForm(submissions)
	log.Info().
		Int("submissions", len(submissions)).
		Int("items", len(rows)).
		Str("range", rng.String()).
		Msg("sheets: fetched order form")
	return rows, nil
}

// FetchReportedRevenue sums the daily takings column over the newest
// submission of each day in rng.
func (s *Source) FetchReportedRevenue(ctx context.Context, rng domain.DateRange) (decimal.Decimal, error) {
	submissions, err := s.submissions(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return ReportedRevenue(submissions, rng, s.cfg.Location), nil
}

// Prices reads the settings sheet. Only the listed items are returned; callers
// overlay them on their own book with Merge.
func (s *Source) Prices(ctx context.Context) (pricebook.Book, error) {
	values, err := s.reader.ReadRange(ctx, A1(s.cfg.SettingsSheet, s.cfg.SettingsRange))
	if err != nil {
		return nil, fmt.Errorf("read settings sheet: %w", err)
	}
	book := ParseSettings(values)
	log.Info().Int("items", len(book)).Msg("sheets: loaded price settings")
	return book, nil
}

// Submissions returns the deduplicated form submissions.
func (s *Source) Submissions(ctx context.Context) ([]domain.RawRow, error) {
	return s.submissions(ctx)
}

func (s *Source) submissions(ctx context.Context) ([]domain.RawRow, error) {
	values, err := s.reader.ReadRange(ctx, A1(s.cfg.MainSheet, s.cfg.DataRange))
	if err != nil {
		return nil, fmt.Errorf("read order form: %w", err)
	}
	return LatestPerDate(RowsFromValues(values), s.cfg.Location), nil
}
