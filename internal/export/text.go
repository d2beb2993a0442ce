package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/settlement"
)

// WriteCSV writes the category table, header and summary row included.
func WriteCSV(w io.Writer, r *domain.Report) error {
	table := settlement.ToTable(r)
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// RenderText formats a report as a plain text summary for chat messages
// and terminals.
func RenderText(r *domain.Report) string {
	rec := r.Reconciliation
	var b strings.Builder

	rule := strings.Repeat("=", 40)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "炸雞對帳摘要")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "對帳期間：%s\n\n", r.DateRange.String())

	fmt.Fprintln(&b, "品項統計：")
	for _, agg := range r.CategoryAggregates {
		if agg.TotalQuantity == 0 && agg.TotalRevenue.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "  %s：%d 份，$%s\n", agg.Category, agg.TotalQuantity, agg.TotalRevenue.StringFixed(0))
	}

	if len(r.Daily) > 0 {
		fmt.Fprintln(&b, "\n每日統計：")
		for _, d := range r.Daily {
			fmt.Fprintf(&b, "  %s：%d 份，$%s\n", d.Date.Format(domain.DateLayout), d.TotalQuantity, d.TotalRevenue.StringFixed(0))
		}
	}

	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "總銷售數量：%d 份\n", r.TotalQuantity())
	fmt.Fprintf(&b, "總銷售金額：$%s\n", rec.TotalSalesRevenue.StringFixed(0))
	fmt.Fprintf(&b, "回報營業總額：$%s\n", rec.ReportedRevenue.StringFixed(0))
	if rec.RevenueRatio != nil {
		fmt.Fprintf(&b, "營收比例：%s%%\n", rec.RevenueRatio.StringFixed(1))
	} else {
		fmt.Fprintln(&b, "營收比例：N/A")
	}
	fmt.Fprintf(&b, "成本：$%s\n", rec.CostBasis.StringFixed(0))
	fmt.Fprintf(&b, "利潤：$%s\n", rec.Profit.StringFixed(0))

	if r.SkippedRows > 0 {
		fmt.Fprintf(&b, "\n略過 %d 筆格式錯誤資料\n", r.SkippedRows)
	}
	for _, w := range rec.Warnings {
		fmt.Fprintf(&b, "警告：%s\n", w.Error())
	}
	fmt.Fprint(&b, rule)
	return b.String()
}
