package settlement

import (
	"errors"
	"testing"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

type priceMap map[string]decimal.Decimal

func (p priceMap) UnitPrice(name string) (decimal.Decimal, bool) {
	v, ok := p[name]
	return v, ok
}

func TestNormalize_SkipsMalformedRows(t *testing.T) {
	t.Parallel()

	rows := []domain.RawRow{
		{"日期": "2025-09-16", "品項": "雞排", "數量": "3", "單價": "70"},
		{"日期": "not-a-date", "品項": "雞排", "數量": "3", "單價": "70"},
		{"日期": "2025-09-16", "品項": "雞排", "數量": "-1", "單價": "70"},
		{"日期": "2025-09-16", "品項": "雞排", "數量": "2", "單價": "-5"},
		{"日期": "2025-09-16", "品項": "雞排", "數量": "1.5", "單價": "70"},
		{"日期": "2025-09-16", "品項": "", "數量": "1", "單價": "70"},
		{"date": "2025/09/17", "product_name": "雞翅", "quantity": "一份", "unit_price": "180"},
	}

	res := NewNormalizer(taipei, nil).Normalize(rows)
	if len(res.Records) != 2 {
		t.Fatalf("records want=2 got=%d", len(res.Records))
	}
	if res.Skipped != 5 || len(res.Errors) != 5 {
		t.Fatalf("skipped want=5 got=%d errors=%d", res.Skipped, len(res.Errors))
	}
	for _, err := range res.Errors {
		if !errors.Is(err, domain.ErrMalformedRecord) {
			t.Fatalf("expected malformed record error, got %v", err)
		}
		var mre *domain.MalformedRecordError
		if !errors.As(err, &mre) {
			t.Fatalf("expected *MalformedRecordError, got %T", err)
		}
	}

	second := res.Records[1]
	if second.Quantity != 1 || second.ProductName != "雞翅" {
		t.Fatalf("unexpected record: %+v", second)
	}
	if got := second.Timestamp.Format(domain.DateLayout); got != "2025-09-17" {
		t.Fatalf("date want=2025-09-17 got=%s", got)
	}
	if second.Timestamp.Location() != taipei {
		t.Fatalf("expected fixed location, got %v", second.Timestamp.Location())
	}
}

func TestNormalize_QuantityForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"3", 3, true},
		{"3.0", 3, true},
		{"3份", 3, true},
		{" 4 份", 4, true},
		{"一份", 1, true},
		{"0", 0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-2", 0, false},
		{"2.5", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseQuantity(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("parseQuantity(%q) want=(%d,%v) got=(%d,%v)", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func TestNormalize_PriceFallback(t *testing.T) {
	t.Parallel()

	rows := []domain.RawRow{
		{"日期": "2025-09-16", "品項": "雞排", "數量": "2"},
		{"日期": "2025-09-16", "品項": "章魚燒", "數量": "2"},
	}
	res := NewNormalizer(taipei, priceMap{"雞排": dec("170")}).Normalize(rows)
	if len(res.Records) != 1 || res.Skipped != 1 {
		t.Fatalf("want 1 record 1 skipped, got %d/%d", len(res.Records), res.Skipped)
	}
	if !res.Records[0].UnitPrice.Equal(dec("170")) {
		t.Fatalf("fallback price want=170 got=%s", res.Records[0].UnitPrice)
	}
}

func TestNormalize_TimestampSuffixIgnored(t *testing.T) {
	t.Parallel()

	res := NewNormalizer(taipei, nil).Normalize([]domain.RawRow{
		{"日期": "2025/9/16 下午 3:04:05", "品項": "雞塊", "數量": "1", "單價": "120"},
	})
	if len(res.Records) != 1 {
		t.Fatalf("expected record, errors=%v", res.Errors)
	}
	if got := res.Records[0].Timestamp.Format(domain.DateLayout); got != "2025-09-16" {
		t.Fatalf("date want=2025-09-16 got=%s", got)
	}
}
