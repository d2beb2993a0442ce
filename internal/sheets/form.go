package sheets

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/pricebook"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Column labels of the order form response sheet.
const (
	ColumnSubmittedAt = "時間戳記"
	ColumnDate        = "日期"
	ColumnRevenue     = "營業總額"
	ColumnProduct     = "品項"
	ColumnQuantity    = "數量"
)

var (
	// itemColumn matches "炸物的訂購 [雞翅 *3]" style headers.
	itemColumn = regexp.MustCompile(`^炸物的訂購\s*[\[_]\s*([^\]]+?)\s*\]?$`)
	// packSuffix strips the pack size from labels like "棒腿*2".
	packSuffix = regexp.MustCompile(`\s*\*\s*\d+$`)
)

// ItemName returns the product name encoded in a form column header.
func ItemName(header string) (string, bool) {
	m := itemColumn.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		return "", false
	}
	name := packSuffix.ReplaceAllString(m[1], "")
	if name == "" {
		return "", false
	}
	return name, true
}

// ParseSubmittedAt parses form timestamps such as "2025/9/16 下午 3:04:05".
func ParseSubmittedAt(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	v = strings.Replace(v, "上午", "AM", 1)
	v = strings.Replace(v, "下午", "PM", 1)
	for _, layout := range []string{"2006/1/2 PM 3:04:05", "2006/1/2 15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized submission time %q", v)
}

// RowsFromValues converts a sheet value grid into rows keyed by the header
// row. Short rows are padded with empty cells.
func RowsFromValues(values [][]interface{}) []domain.RawRow {
	if len(values) < 2 {
		return nil
	}
	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(h))
	}

	rows := make([]domain.RawRow, 0, len(values)-1)
	for _, line := range values[1:] {
		row := make(domain.RawRow, len(header))
		empty := true
		for i, h := range header {
			if h == "" {
				continue
			}
			var cell string
			if i < len(line) && line[i] != nil {
				cell = fmt.Sprint(line[i])
			}
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
			if _, dup := row[h]; dup && cell == "" {
				continue
			}
			row[h] = cell
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}

// LatestPerDate keeps one submission per business day: the one with the
// newest submission time. When no row carries a readable submission time
// the input is returned unchanged. Otherwise rows with an unreadable time are
// dropped and counted in the log.
func LatestPerDate(rows []domain.RawRow, loc *time.Location) []domain.RawRow {
	out, dropped := latestPerDate(rows, loc)
	if dropped > 0 {
		log.Warn().
			Int("dropped", dropped).
			Int("submissions", len(rows)).
			Msg("sheets: dropped submissions with unreadable timestamps")
	}
	return out
}

func latestPerDate(rows []domain.RawRow, loc *time.Location) ([]domain.RawRow, int) {
	type pick struct {
		row domain.RawRow
		at  time.Time
	}
	latest := make(map[string]*pick)
	var order []string
	unreadable := 0
	for _, row := range rows {
		at, err := ParseSubmittedAt(row[ColumnSubmittedAt], loc)
		if err != nil {
			unreadable++
			continue
		}
		date := strings.TrimSpace(row[ColumnDate])
		cur, ok := latest[date]
		if !ok {
			latest[date] = &pick{row: row, at: at}
			order = append(order, date)
			continue
		}
		if at.After(cur.at) {
			cur.row, cur.at = row, at
		}
	}
	if len(latest) == 0 {
		return rows, 0
	}

	out := make([]domain.RawRow, 0, len(order))
	for _, date := range order {
		out = append(out, latest[date].row)
	}
	return out, unreadable
}

// ExpandForm turns wide form submissions into one raw sale row per ordered
// item. Quantities are passed through untouched for the normalizer. Empty
// cells produce no row.
func ExpandForm(rows []domain.RawRow) []domain.RawRow {
	var out []domain.RawRow
	for _, row := range rows {
		headers := make([]string, 0, len(row))
		for header := range row {
			headers = append(headers, header)
		}
		sort.Strings(headers)
		for _, header := range headers {
			value := row[header]
			name, ok := ItemName(header)
			if !ok || strings.TrimSpace(value) == "" {
				continue
			}
			out = append(out, domain.RawRow{
				ColumnDate:     row[ColumnDate],
				ColumnProduct:  name,
				ColumnQuantity: value,
			})
		}
	}
	return out
}

// ReportedRevenue sums the daily takings column for rows dated inside rng.
func ReportedRevenue(rows []domain.RawRow, rng domain.DateRange, loc *time.Location) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		day, ok := parseDay(row[ColumnDate], loc)
		if !ok || !rng.Contains(day) {
			continue
		}
		raw := row[ColumnRevenue]
		amount, ok := parseAmount(raw)
		if !ok {
			if strings.TrimSpace(raw) != "" {
				log.Warn().Str("date", row[ColumnDate]).Str("value", raw).Msg("sheets: unreadable daily revenue")
			}
			continue
		}
		total = total.Add(amount)
	}
	return total
}

// ParseSettings reads the settings sheet into a price book. Rows are either
// name | name | cost | price | ..., or the short form name | price, which
// yields PriceOnly entries.
func ParseSettings(values [][]interface{}) pricebook.Book {
	book := pricebook.Book{}
	for i, line := range values {
		if len(line) < 2 {
			continue
		}
		name := strings.TrimSpace(fmt.Sprint(line[0]))
		if name == "" {
			continue
		}
		cells := make([]string, len(line))
		for j, c := range line {
			cells[j] = strings.TrimSpace(fmt.Sprint(c))
		}

		if len(cells) < 4 {
			price, ok := parseAmount(cells[1])
			if !ok {
				warnSettingsRow(i, name)
				continue
			}
			book.SetPrice(name, price)
			continue
		}
		cost, okCost := parseAmount(cells[2])
		price, okPrice := parseAmount(cells[3])
		if !okCost || !okPrice {
			warnSettingsRow(i, name)
			continue
		}
		book.Set(name, cost, price)
	}
	return book
}

func warnSettingsRow(i int, name string) {
	// Header rows land here.
	if i > 0 {
		log.Warn().Str("item", name).Msg("sheets: skipping settings row without numeric prices")
	}
}

func parseDay(v string, loc *time.Location) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, ' '); i > 0 {
		v = v[:i]
	}
	for _, layout := range []string{domain.DateLayout, "2006/01/02", "2006/1/2"} {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseAmount(v string) (decimal.Decimal, bool) {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "$")
	v = strings.TrimPrefix(v, "NT$")
	v = strings.ReplaceAll(v, ",", "")
	if v == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
