package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical day format used across the settlement engine.
const DateLayout = "2006-01-02"

// RawRow is a single opaque key/value row as delivered by a data source.
// Keys are header labels (Chinese or English); values are untrimmed cells.
type RawRow map[string]string

// SaleRecord is one normalized sale line. Treat it as an immutable value.
type SaleRecord struct {
	Timestamp   time.Time       `json:"timestamp"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Amount is quantity × unit price.
func (r SaleRecord) Amount() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(r.Quantity))
}

// CategorizedRecord is a SaleRecord with exactly one category attached.
type CategorizedRecord struct {
	SaleRecord
	Category Category `json:"category"`
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange builds a range and validates Start <= End.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// ParseDateRange parses two YYYY-MM-DD strings in loc.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	s, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return NewDateRange(s, e)
}

// Validate returns an InvalidDateRangeError when Start is after End.
func (r DateRange) Validate() error {
	if startOfDay(r.Start).After(startOfDay(r.End)) {
		return &InvalidDateRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Contains reports whether t falls on a day within the range, both ends
// inclusive. Comparison is by calendar day in the range's location.
func (r DateRange) Contains(t time.Time) bool {
	loc := r.Start.Location()
	day := startOfDay(t.In(loc))
	return !day.Before(startOfDay(r.Start)) && !day.After(startOfDay(r.End.In(loc)))
}

// Days returns the number of calendar days covered.
func (r DateRange) Days() int {
	loc := r.Start.Location()
	return int(startOfDay(r.End.In(loc)).Sub(startOfDay(r.Start)).Hours()/24) + 1
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s 至 %s", r.Start.Format(DateLayout), r.End.Format(DateLayout))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return startOfDay(t)
}
