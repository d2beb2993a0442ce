package settlement

import (
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Reconcile compares aggregated sales revenue with the reported revenue.
// A zero-sales range yields a nil ratio and a NoSalesInRangeError warning;
// profit is still computed and may be negative.
func Reconcile(aggregates []domain.CategoryAggregate, reported, costBasis decimal.Decimal) domain.ReconciliationResult {
	return ReconcileRange(domain.DateRange{}, aggregates, reported, costBasis)
}

// ReconcileRange is Reconcile with the range recorded on the no-sales warning.
func ReconcileRange(rng domain.DateRange, aggregates []domain.CategoryAggregate, reported, costBasis decimal.Decimal) domain.ReconciliationResult {
	total := decimal.Zero
	for _, agg := range aggregates {
		total = total.Add(agg.TotalRevenue)
	}

	result := domain.ReconciliationResult{
		TotalSalesRevenue: total,
		ReportedRevenue:   reported,
		CostBasis:         costBasis,
		Profit:            total.Sub(costBasis),
	}

	if total.IsZero() {
		result.Warnings = append(result.Warnings, &domain.NoSalesInRangeError{Range: rng})
		return result
	}

	ratio := reported.Mul(hundred).DivRound(total, 8).Round(1)
	result.RevenueRatio = &ratio
	return result
}
