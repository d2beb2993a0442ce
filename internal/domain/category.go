package domain

import "strings"

// Category is one of the fixed product groupings.
type Category string

const (
	CategoryCutlet   Category = "雞排"
	CategoryWing     Category = "雞翅"
	CategoryLeg      Category = "雞腿"
	CategoryNugget   Category = "雞塊"
	CategoryOther    Category = "Other"
	categoryOtherAlt          = "其他"
)

var categoryOrder = []Category{
	CategoryCutlet,
	CategoryWing,
	CategoryLeg,
	CategoryNugget,
	CategoryOther,
}

// Categories returns every known category in report order. The returned slice
// is a copy.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Index returns the position of c in report order, or -1.
func (c Category) Index() int {
	for i, known := range categoryOrder {
		if known == c {
			return i
		}
	}
	return -1
}

// ParseCategory returns the category for a label (case-insensitive for Other).
func ParseCategory(label string) (Category, bool) {
	label = strings.TrimSpace(label)
	if strings.EqualFold(label, string(CategoryOther)) || label == categoryOtherAlt {
		return CategoryOther, true
	}
	c := Category(label)
	if c.Index() < 0 {
		return "", false
	}
	return c, true
}
