package settlement

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

var taipei = time.FixedZone("CST", 8*60*60)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(domain.DateLayout, s, taipei)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return d
}

func dateRange(t *testing.T, start, end string) domain.DateRange {
	t.Helper()
	r, err := domain.NewDateRange(day(t, start), day(t, end))
	if err != nil {
		t.Fatalf("range %s..%s: %v", start, end, err)
	}
	return r
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sale(t *testing.T, date, product string, qty int64, price string) domain.SaleRecord {
	t.Helper()
	return domain.SaleRecord{Timestamp: day(t, date), ProductName: product, Quantity: qty, UnitPrice: dec(price)}
}

// demoRows reproduces the observed demo figures: 45/12/8/9 units and 1,660 in
// sales between 2025-09-16 and 2025-09-30.
func demoRows() []domain.RawRow {
	return []domain.RawRow{
		{"日期": "2025-09-16", "品項": "雞排", "數量": "20", "單價": "20"},
		{"日期": "2025-09-20", "品項": "雞排", "數量": "25", "單價": "20"},
		{"日期": "2025-09-18", "品項": "雞翅", "數量": "12", "單價": "25"},
		{"日期": "2025-09-22", "品項": "棒腿", "數量": "8", "單價": "35"},
		{"日期": "2025-09-30", "品項": "雞塊", "數量": "9份", "單價": "20"},
		// outside the range
		{"日期": "2025-10-01", "品項": "雞排", "數量": "3", "單價": "20"},
	}
}

type fakeSource struct {
	rows     []domain.RawRow
	reported decimal.Decimal
	err      error
	delay    time.Duration
	block    chan struct{}
	calls    atomic.Int32
}

func (f *fakeSource) FetchRows(ctx context.Context, _ domain.DateRange) ([]domain.RawRow, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeSource) FetchReportedRevenue(context.Context, domain.DateRange) (decimal.Decimal, error) {
	return f.reported, nil
}
