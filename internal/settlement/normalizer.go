package settlement

import (
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Header aliases accepted for each canonical field. The form sheet uses the
// Chinese labels; exports and fixtures often use the English ones.
var (
	dateKeys     = []string{"日期", "date", "Date", "timestamp"}
	productKeys  = []string{"品項", "product_name", "product", "Product"}
	quantityKeys = []string{"數量", "quantity", "qty", "Quantity"}
	priceKeys    = []string{"單價", "unit_price", "price", "Price"}
)

var dateLayouts = []string{
	domain.DateLayout,
	"2006/01/02",
	"2006/1/2",
}

// PriceLookup supplies a unit price when a raw row carries none.
type PriceLookup interface {
	UnitPrice(product string) (decimal.Decimal, bool)
}

// NormalizeResult is the outcome of one batch. Skipped counts rows dropped
// as malformed; Errors holds one MalformedRecordError per skipped row.
type NormalizeResult struct {
	Records []domain.SaleRecord
	Skipped int
	Errors  []error
}

// Normalizer turns raw rows into sale records.
type Normalizer struct {
	location *time.Location
	prices   PriceLookup
}

// NewNormalizer creates a normalizer. loc fixes the zone for every parsed
// date; prices may be nil.
func NewNormalizer(loc *time.Location, prices PriceLookup) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{location: loc, prices: prices}
}

// WithPrices returns a normalizer with n's location and a different price
// lookup.
func (n *Normalizer) WithPrices(prices PriceLookup) *Normalizer {
	return &Normalizer{location: n.location, prices: prices}
}

// Normalize converts every row it can. Malformed rows never fail the batch.
func (n *Normalizer) Normalize(rows []domain.RawRow) NormalizeResult {
	result := NormalizeResult{Records: make([]domain.SaleRecord, 0, len(rows))}
	for i, row := range rows {
		rec, err := n.normalizeRow(i, row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result
}

func (n *Normalizer) normalizeRow(idx int, row domain.RawRow) (domain.SaleRecord, error) {
	malformed := func(field, value, reason string) error {
		return &domain.MalformedRecordError{Row: idx, Field: field, Value: value, Reason: reason}
	}

	rawDate := lookup(row, dateKeys)
	ts, ok := n.parseDate(rawDate)
	if !ok {
		return domain.SaleRecord{}, malformed("date", rawDate, "expected YYYY-MM-DD")
	}

	product := lookup(row, productKeys)
	if product == "" {
		return domain.SaleRecord{}, malformed("product_name", product, "missing product name")
	}

	rawQty := lookup(row, quantityKeys)
	qty, ok := parseQuantity(rawQty)
	if !ok {
		return domain.SaleRecord{}, malformed("quantity", rawQty, "expected a non-negative integer")
	}

	rawPrice := lookup(row, priceKeys)
	var price decimal.Decimal
	if rawPrice == "" {
		if n.prices == nil {
			return domain.SaleRecord{}, malformed("unit_price", rawPrice, "missing price")
		}
		p, found := n.prices.UnitPrice(product)
		if !found {
			return domain.SaleRecord{}, malformed("unit_price", rawPrice, "missing price and no price book entry")
		}
		price = p
	} else {
		p, err := decimal.NewFromString(strings.ReplaceAll(rawPrice, ",", ""))
		if err != nil {
			return domain.SaleRecord{}, malformed("unit_price", rawPrice, "not a number")
		}
		price = p
	}
	if price.IsNegative() {
		return domain.SaleRecord{}, malformed("unit_price", rawPrice, "negative price")
	}

	return domain.SaleRecord{
		Timestamp:   ts,
		ProductName: product,
		Quantity:    qty,
		UnitPrice:   price,
	}, nil
}

func (n *Normalizer) parseDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	// Form timestamps carry a time part after the date; only the day matters.
	if i := strings.IndexByte(v, ' '); i > 0 {
		v = v[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, n.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseQuantity accepts "3", "3.0", "3份" and "一份".
func parseQuantity(v string) (int64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if v == "一份" {
		return 1, true
	}
	v = strings.TrimSpace(strings.TrimSuffix(v, "份"))
	if q, err := strconv.ParseInt(v, 10, 64); err == nil {
		return q, q >= 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

func lookup(row domain.RawRow, keys []string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
