package pricing

import "github.com/shopspring/decimal"

// PriceQuote carries the catalog inputs for add-product price
// normalization.
type PriceQuote struct {
	SellingPrice decimal.Decimal
	AverageCost  decimal.Decimal

	// CategoryPrice is the per-category calculated price, when the order
	// selects a price category that carries one for this product.
	CategoryPrice *decimal.Decimal

	// TaxInclusive marks a displayed price that already contains VAT at
	// TaxRate percent.
	TaxInclusive bool
	TaxRate      decimal.Decimal
}

// NormalizeUnitPrice resolves the tax-exclusive base price for a new
// order line. Selection order: selling price, average cost when selling
// price is absent or zero, then the category price when one exists. A
// tax-inclusive candidate is divided by (1 + rate/100) so every line
// carries a tax-exclusive unit price from creation onward.
func NormalizeUnitPrice(q PriceQuote) decimal.Decimal {
	candidate := NonNegative(q.SellingPrice)
	if candidate.IsZero() {
		candidate = NonNegative(q.AverageCost)
	}

	if q.CategoryPrice != nil {
		candidate = NonNegative(*q.CategoryPrice)
	}

	rate := ClampPercent(q.TaxRate)
	if q.TaxInclusive && rate.IsPositive() {
		candidate = candidate.Div(one.Add(rate.Div(hundred)))
	}

	return candidate
}
