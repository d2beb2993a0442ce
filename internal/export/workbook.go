package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/settlement"
	"github.com/xuri/excelize/v2"
)

// Sheet names of an exported settlement workbook.
const (
	SheetSummary  = "對帳摘要"
	SheetCategory = "品項統計"
	SheetDaily    = "每日統計"
)

// Exporter renders reports as Excel workbooks.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// Export builds a workbook with a summary sheet, the category table and,
// when the report carries them, per-day totals.
func (e *Exporter) Export(r *domain.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	writers := []func(*excelize.File, *domain.Report, int) error{
		writeSummary,
		writeCategories,
	}
	if len(r.Daily) > 0 {
		writers = append(writers, writeDaily)
	}
	for _, write := range writers {
		if err := write(f, r, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// SaveTo writes the workbook under dir and returns its path.
func (e *Exporter) SaveTo(dir string, r *domain.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	f, err := e.Export(r)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, FileName(r, ".xlsx"))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", path, err)
	}
	return path, nil
}

// FileName is the conventional export name for a report's range.
func FileName(r *domain.Report, ext string) string {
	return fmt.Sprintf("chicken_settlement_%s_%s%s",
		r.DateRange.Start.Format("20060102"),
		r.DateRange.End.Format("20060102"),
		ext,
	)
}

func writeSummary(f *excelize.File, r *domain.Report, headerStyle int) error {
	rec := r.Reconciliation
	ratio := "N/A"
	if rec.RevenueRatio != nil {
		ratio = rec.RevenueRatio.StringFixed(1) + "%"
	}

	rows := [][]interface{}{
		{"項目", "數值"},
		{"對帳期間", r.DateRange.String()},
		{"總銷售金額", rec.TotalSalesRevenue.InexactFloat64()},
		{"總銷售數量", r.TotalQuantity()},
		{"回報營業總額", rec.ReportedRevenue.InexactFloat64()},
		{"營收比例", ratio},
		{"成本", rec.CostBasis.InexactFloat64()},
		{"利潤", rec.Profit.InexactFloat64()},
		{"略過筆數", r.SkippedRows},
		{"產生時間", r.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	for _, w := range rec.Warnings {
		rows = append(rows, []interface{}{"警告", w.Error()})
	}

	if err := setRows(f, SheetSummary, rows); err != nil {
		return err
	}
	f.SetRowStyle(SheetSummary, 1, 1, headerStyle)
	f.SetColWidth(SheetSummary, "A", "A", 18)
	f.SetColWidth(SheetSummary, "B", "B", 28)
	return nil
}

func writeCategories(f *excelize.File, r *domain.Report, headerStyle int) error {
	if _, err := f.NewSheet(SheetCategory); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetCategory, err)
	}

	table := settlement.ToTable(r)
	rows := make([][]interface{}, 0, len(table.Rows)+1)
	rows = append(rows, stringsToCells(table.Header))
	for _, row := range table.Rows {
		rows = append(rows, stringsToCells(row))
	}

	if err := setRows(f, SheetCategory, rows); err != nil {
		return err
	}
	f.SetRowStyle(SheetCategory, 1, 1, headerStyle)
	f.SetColWidth(SheetCategory, "A", "C", 15)
	return nil
}

func writeDaily(f *excelize.File, r *domain.Report, headerStyle int) error {
	if _, err := f.NewSheet(SheetDaily); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetDaily, err)
	}

	rows := [][]interface{}{{"日期", "總數量", "總金額"}}
	for _, d := range r.Daily {
		rows = append(rows, []interface{}{
			d.Date.Format(domain.DateLayout),
			d.TotalQuantity,
			d.TotalRevenue.InexactFloat64(),
		})
	}

	if err := setRows(f, SheetDaily, rows); err != nil {
		return err
	}
	f.SetRowStyle(SheetDaily, 1, 1, headerStyle)
	f.SetColWidth(SheetDaily, "A", "C", 15)
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// The category table keeps its formatted strings so the sheet reads back
// exactly as ToTable produced it.
func stringsToCells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
