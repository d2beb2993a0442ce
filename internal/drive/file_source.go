package drive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/sheets"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// FileSource reads sales rows from local CSV or XLSX exports. Files may hold
// either one sale per row or raw order form submissions; the latter are
// expanded the same way as the live spreadsheet.
type FileSource struct {
	Paths    []string
	Location *time.Location
	// Reported overrides the daily takings column when set.
	Reported *decimal.Decimal
}

func NewFileSource(loc *time.Location, paths ...string) *FileSource {
	return &FileSource{Paths: paths, Location: loc}
}

func (s *FileSource) FetchRows(ctx context.Context, rng domain.DateRange) ([]domain.RawRow, error) {
	rows, form, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if form {
		rows = sheets.ExpandForm(sheets.LatestPerDate(rows, s.location()))
	}
	log.Info().Int("rows", len(rows)).Int("files", len(s.Paths)).Str("range", rng.String()).Msg("drive: loaded sales files")
	return rows, nil
}

func (s *FileSource) FetchReportedRevenue(ctx context.Context, rng domain.DateRange) (decimal.Decimal, error) {
	if s.Reported != nil {
		return *s.Reported, nil
	}
	rows, form, err := s.load(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if form {
		rows = sheets.LatestPerDate(rows, s.location())
	}
	return sheets.ReportedRevenue(rows, rng, s.location()), nil
}

func (s *FileSource) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// load reads every file and reports whether any of them is a form export.
func (s *FileSource) load(ctx context.Context) ([]domain.RawRow, bool, error) {
	if len(s.Paths) == 0 {
		return nil, false, fmt.Errorf("no sales files configured")
	}

	var (
		all  []domain.RawRow
		form bool
	)
	for _, path := range s.Paths {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		table, err := ReadTable(path)
		if err != nil {
			return nil, false, err
		}
		rows, isForm := rowsFromTable(table)
		form = form || isForm
		all = append(all, rows...)
	}
	return all, form, nil
}

func rowsFromTable(table [][]string) ([]domain.RawRow, bool) {
	if len(table) < 2 {
		return nil, false
	}
	header := make([]string, len(table[0]))
	form := false
	for i, h := range table[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		if _, ok := sheets.ItemName(h); ok {
			form = true
		}
	}

	rows := make([]domain.RawRow, 0, len(table)-1)
	for _, line := range table[1:] {
		row := make(domain.RawRow, len(header))
		blank := true
		for i, h := range header {
			if h == "" || i >= len(line) {
				continue
			}
			if strings.TrimSpace(line[i]) != "" {
				blank = false
			}
			if _, dup := row[h]; dup && line[i] == "" {
				continue
			}
			row[h] = line[i]
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows, form
}
