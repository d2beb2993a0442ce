package settlement

import (
	"strings"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
)

// Rule maps product names matching Match to Category.
type Rule struct {
	Match    func(productName string) bool
	Category domain.Category
}

// Contains builds a predicate that matches when the name holds any of subs.
func Contains(subs ...string) func(string) bool {
	return func(name string) bool {
		for _, s := range subs {
			if strings.Contains(name, s) {
				return true
			}
		}
		return false
	}
}

// DefaultRules is the stall's rule table. Order matters: first match wins.
func DefaultRules() []Rule {
	return []Rule{
		{Match: Contains("雞排"), Category: domain.CategoryCutlet},
		{Match: Contains("雞翅"), Category: domain.CategoryWing},
		{Match: Contains("雞腿", "棒腿"), Category: domain.CategoryLeg},
		{Match: Contains("雞塊"), Category: domain.CategoryNugget},
	}
}

// Categorizer assigns each record exactly one category.
type Categorizer struct {
	rules []Rule
}

// NewCategorizer copies rules; a nil slice means DefaultRules.
func NewCategorizer(rules []Rule) *Categorizer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Categorizer{rules: append([]Rule(nil), rules...)}
}

// Categorize returns rec with the first matching rule's category, or Other.
func (c *Categorizer) Categorize(rec domain.SaleRecord) domain.CategorizedRecord {
	for _, rule := range c.rules {
		if rule.Match(rec.ProductName) {
			return domain.CategorizedRecord{SaleRecord: rec, Category: rule.Category}
		}
	}
	return domain.CategorizedRecord{SaleRecord: rec, Category: domain.CategoryOther}
}

// CategorizeAll categorizes a batch, preserving order.
func (c *Categorizer) CategorizeAll(records []domain.SaleRecord) []domain.CategorizedRecord {
	out := make([]domain.CategorizedRecord, len(records))
	for i, r := range records {
		out[i] = c.Categorize(r)
	}
	return out
}
