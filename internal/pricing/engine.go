// Package pricing computes per-line and order-level totals for sales and
// purchasing orders. Every function is pure: malformed numeric input is
// coerced to zero and out-of-range discounts are clamped, so callers can
// invoke the engine continuously while a form is being edited without
// guarding against transient garbage.
package pricing

import "github.com/shopspring/decimal"

// DiscountMode selects which discount representation is authoritative on
// a line. The inactive representation is retained for display only.
type DiscountMode string

const (
	DiscountAmount     DiscountMode = "AMOUNT"
	DiscountPercentage DiscountMode = "PERCENTAGE"
)

// DefaultDiscountMode applies to newly created lines.
const DefaultDiscountMode = DiscountAmount

// OrderContext carries the order-level inputs that apply uniformly to
// every line.
type OrderContext struct {
	// ExchangeRate converts line totals into the system default currency.
	// Values <= 0 compute as 1.0.
	ExchangeRate decimal.Decimal
}

// LineInput is one order row. UnitPrice is always the tax-exclusive base
// price per unit; tax-inclusive product prices are normalized before the
// line is created (see NormalizeUnitPrice).
type LineInput struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal

	DiscountMode       DiscountMode
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal

	// TaxRate and WHTRate are percentages (18 means 18%), resolved from
	// the selected tax codes. Missing codes resolve to zero upstream.
	TaxRate decimal.Decimal
	WHTRate decimal.Decimal
}

// LineTotals holds the derived amounts for one line.
type LineTotals struct {
	Subtotal                   decimal.Decimal
	Discount                   decimal.Decimal
	AmountAfterDiscount        decimal.Decimal
	AmountAfterDiscountPerUnit decimal.Decimal
	VATPerUnit                 decimal.Decimal
	AmountAfterVATPerUnit      decimal.Decimal
	Tax                        decimal.Decimal
	WHT                        decimal.Decimal
	AmountAfterWHT             decimal.Decimal
	Total                      decimal.Decimal
	EquivalentAmount           decimal.Decimal
}

// OrderTotals aggregates the whole order.
type OrderTotals struct {
	Subtotal            decimal.Decimal
	TotalDiscount       decimal.Decimal
	TotalTax            decimal.Decimal
	TotalWHT            decimal.Decimal
	AmountAfterDiscount decimal.Decimal
	AmountAfterWHT      decimal.Decimal
	Total               decimal.Decimal
	EquivalentTotal     decimal.Decimal
	EffectiveVATPercent decimal.Decimal
}

// ComputeLine derives the totals for a single line.
//
// Composition order: subtotal, minus discount, minus WHT, plus VAT. WHT
// and VAT are both computed on the post-discount base, never on each
// other. A quantity of zero or less uses a divisor of 1 so the per-unit
// discount split never divides by zero.
func ComputeLine(in LineInput, exchangeRate decimal.Decimal) LineTotals {
	qty := NonNegative(in.Quantity)
	price := NonNegative(in.UnitPrice)

	divisor := qty
	if divisor.LessThanOrEqual(zero) {
		divisor = one
	}

	subtotal := qty.Mul(price)

	var discount, perUnitAfterDiscount decimal.Decimal
	switch in.DiscountMode {
	case DiscountPercentage:
		pct := ClampPercent(in.DiscountPercentage)
		discount = subtotal.Mul(pct).Div(hundred)
		perUnitAfterDiscount = price.Mul(one.Sub(pct.Div(hundred)))
	default:
		amount := ClampRange(in.DiscountAmount, subtotal)
		discount = amount
		perUnitAfterDiscount = NonNegative(price.Sub(amount.Div(divisor)))
	}

	afterDiscount := subtotal.Sub(discount)

	taxRate := ClampPercent(in.TaxRate)
	whtRate := ClampPercent(in.WHTRate)

	vatPerUnit := perUnitAfterDiscount.Mul(taxRate).Div(hundred)
	tax := vatPerUnit.Mul(qty)
	wht := afterDiscount.Mul(whtRate).Div(hundred)
	afterWHT := afterDiscount.Sub(wht)
	total := afterWHT.Add(tax)

	rate := exchangeRate
	if rate.LessThanOrEqual(zero) {
		rate = one
	}

	return LineTotals{
		Subtotal:                   subtotal,
		Discount:                   discount,
		AmountAfterDiscount:        afterDiscount,
		AmountAfterDiscountPerUnit: perUnitAfterDiscount,
		VATPerUnit:                 vatPerUnit,
		AmountAfterVATPerUnit:      perUnitAfterDiscount.Add(vatPerUnit),
		Tax:                        tax,
		WHT:                        wht,
		AmountAfterWHT:             afterWHT,
		Total:                      total,
		EquivalentAmount:           total.Mul(rate),
	}
}

// ComputeTotals derives every line's totals and the order aggregate. The
// order total is the exact per-line sum, never a shortcut formula.
func ComputeTotals(ord OrderContext, lines []LineInput) ([]LineTotals, OrderTotals) {
	lineTotals := make([]LineTotals, 0, len(lines))

	var agg OrderTotals
	for _, line := range lines {
		lt := ComputeLine(line, ord.ExchangeRate)
		lineTotals = append(lineTotals, lt)

		agg.Subtotal = agg.Subtotal.Add(lt.Subtotal)
		agg.TotalDiscount = agg.TotalDiscount.Add(lt.Discount)
		agg.TotalTax = agg.TotalTax.Add(lt.Tax)
		agg.TotalWHT = agg.TotalWHT.Add(lt.WHT)
		agg.Total = agg.Total.Add(lt.Total)
		agg.EquivalentTotal = agg.EquivalentTotal.Add(lt.EquivalentAmount)
	}

	agg.AmountAfterDiscount = agg.Subtotal.Sub(agg.TotalDiscount)
	agg.AmountAfterWHT = agg.AmountAfterDiscount.Sub(agg.TotalWHT)

	if agg.AmountAfterDiscount.IsPositive() {
		agg.EffectiveVATPercent = agg.TotalTax.Div(agg.AmountAfterDiscount).Mul(hundred)
	}

	return lineTotals, agg
}
