package settlement

import (
	"testing"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
)

func TestCategorize_DefaultRules(t *testing.T) {
	t.Parallel()

	c := NewCategorizer(nil)
	cases := map[string]domain.Category{
		"雞排":     domain.CategoryCutlet,
		"超大雞排":   domain.CategoryCutlet,
		"雞翅 *3":  domain.CategoryWing,
		"棒腿":     domain.CategoryLeg,
		"雞腿便當":   domain.CategoryLeg,
		"雞塊":     domain.CategoryNugget,
		"地瓜":     domain.CategoryOther,
		"":       domain.CategoryOther,
		"chicken": domain.CategoryOther,
	}
	for name, want := range cases {
		got := c.Categorize(domain.SaleRecord{ProductName: name})
		if got.Category != want {
			t.Fatalf("%q want=%s got=%s", name, want, got.Category)
		}
	}
}

func TestCategorize_FirstMatchWins(t *testing.T) {
	t.Parallel()

	c := NewCategorizer([]Rule{
		{Match: Contains("雞"), Category: domain.CategoryNugget},
		{Match: Contains("雞排"), Category: domain.CategoryCutlet},
	})
	if got := c.Categorize(domain.SaleRecord{ProductName: "雞排"}).Category; got != domain.CategoryNugget {
		t.Fatalf("first rule should win, got %s", got)
	}
}

func TestCategorize_Deterministic(t *testing.T) {
	t.Parallel()

	c := NewCategorizer(nil)
	rec := sale(t, "2025-09-16", "雞翅", 3, "25")
	first := c.Categorize(rec)
	for i := 0; i < 100; i++ {
		if got := c.Categorize(rec); got != first {
			t.Fatalf("iteration %d: categorization changed: %+v vs %+v", i, got, first)
		}
	}
	if first.SaleRecord != rec {
		t.Fatalf("record must be carried unchanged")
	}
}
