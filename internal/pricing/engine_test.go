package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s got %s %v", want, got.String(), msgAndArgs)
}

func TestComputeLinePercentageDiscount(t *testing.T) {
	lt := ComputeLine(LineInput{
		Quantity:           dec("2"),
		UnitPrice:          dec("100"),
		DiscountMode:       DiscountPercentage,
		DiscountPercentage: dec("10"),
		TaxRate:            dec("18"),
	}, decimal.Zero)

	assertDecimal(t, "200", lt.Subtotal)
	assertDecimal(t, "20", lt.Discount)
	assertDecimal(t, "180", lt.AmountAfterDiscount)
	assertDecimal(t, "90", lt.AmountAfterDiscountPerUnit)
	assertDecimal(t, "16.2", lt.VATPerUnit)
	assertDecimal(t, "32.4", lt.Tax)
	assertDecimal(t, "0", lt.WHT)
	assertDecimal(t, "212.4", lt.Total)
}

func TestComputeLineAmountDiscount(t *testing.T) {
	lt := ComputeLine(LineInput{
		Quantity:       dec("2"),
		UnitPrice:      dec("100"),
		DiscountMode:   DiscountAmount,
		DiscountAmount: dec("50"),
		TaxRate:        dec("18"),
	}, decimal.Zero)

	assertDecimal(t, "50", lt.Discount)
	assertDecimal(t, "150", lt.AmountAfterDiscount)
	assertDecimal(t, "75", lt.AmountAfterDiscountPerUnit)
	assertDecimal(t, "13.5", lt.VATPerUnit)
	assertDecimal(t, "27", lt.Tax)
	assertDecimal(t, "177", lt.Total)
}

func TestComputeLineWithWithholding(t *testing.T) {
	lt := ComputeLine(LineInput{
		Quantity:           dec("2"),
		UnitPrice:          dec("100"),
		DiscountMode:       DiscountPercentage,
		DiscountPercentage: dec("10"),
		TaxRate:            dec("18"),
		WHTRate:            dec("5"),
	}, decimal.Zero)

	assertDecimal(t, "9", lt.WHT)
	assertDecimal(t, "171", lt.AmountAfterWHT)
	assertDecimal(t, "203.4", lt.Total)
}

func TestComputeLineDiscountAmountClampedToSubtotal(t *testing.T) {
	lt := ComputeLine(LineInput{
		Quantity:       dec("2"),
		UnitPrice:      dec("100"),
		DiscountMode:   DiscountAmount,
		DiscountAmount: dec("500"),
		TaxRate:        dec("18"),
	}, decimal.Zero)

	assertDecimal(t, "200", lt.Discount)
	assertDecimal(t, "0", lt.AmountAfterDiscount)
	assertDecimal(t, "0", lt.Tax)
	assertDecimal(t, "0", lt.Total)
}

func TestComputeLineDiscountPercentageClamped(t *testing.T) {
	lt := ComputeLine(LineInput{
		Quantity:           dec("1"),
		UnitPrice:          dec("100"),
		DiscountMode:       DiscountPercentage,
		DiscountPercentage: dec("150"),
	}, decimal.Zero)

	assertDecimal(t, "100", lt.Discount)
	assertDecimal(t, "0", lt.AmountAfterDiscount)
	assertDecimal(t, "0", lt.Total)
}

func TestComputeLineZeroQuantityDivision(t *testing.T) {
	lt := ComputeLine(LineInput{
		Quantity:       dec("0"),
		UnitPrice:      dec("100"),
		DiscountMode:   DiscountAmount,
		DiscountAmount: dec("10"),
	}, decimal.Zero)

	// Subtotal is zero so the discount clamps to zero; the divisor of 1
	// keeps the per-unit split finite.
	assertDecimal(t, "0", lt.Subtotal)
	assertDecimal(t, "0", lt.Discount)
	assertDecimal(t, "100", lt.AmountAfterDiscountPerUnit)
	assertDecimal(t, "0", lt.Total)
}

func TestComputeLineNegativeInputsDegradeToZero(t *testing.T) {
	lt := ComputeLine(LineInput{
		Quantity:           dec("-3"),
		UnitPrice:          dec("-50"),
		DiscountMode:       DiscountPercentage,
		DiscountPercentage: dec("-10"),
		TaxRate:            dec("-18"),
		WHTRate:            dec("-5"),
	}, decimal.Zero)

	assertDecimal(t, "0", lt.Subtotal)
	assertDecimal(t, "0", lt.Discount)
	assertDecimal(t, "0", lt.Tax)
	assertDecimal(t, "0", lt.WHT)
	assertDecimal(t, "0", lt.Total)
}

func TestComputeLineUnknownModeDefaultsToAmount(t *testing.T) {
	lt := ComputeLine(LineInput{
		Quantity:       dec("2"),
		UnitPrice:      dec("100"),
		DiscountMode:   DiscountMode("WEIRD"),
		DiscountAmount: dec("50"),
	}, decimal.Zero)

	assertDecimal(t, "50", lt.Discount)
}

func TestComputeLineEquivalentAmount(t *testing.T) {
	lt := ComputeLine(LineInput{
		Quantity:  dec("1"),
		UnitPrice: dec("100"),
	}, dec("3.75"))
	assertDecimal(t, "375", lt.EquivalentAmount)

	lt = ComputeLine(LineInput{
		Quantity:  dec("1"),
		UnitPrice: dec("100"),
	}, decimal.Zero)
	assertDecimal(t, "100", lt.EquivalentAmount, "rate <= 0 computes as 1.0")
}

func TestDiscountModeEquivalence(t *testing.T) {
	// 10% of a 200 subtotal and a flat 20 produce identical totals; the
	// mode is an input selector, not a different formula.
	pct := ComputeLine(LineInput{
		Quantity:           dec("2"),
		UnitPrice:          dec("100"),
		DiscountMode:       DiscountPercentage,
		DiscountPercentage: dec("10"),
		TaxRate:            dec("18"),
		WHTRate:            dec("5"),
	}, decimal.Zero)
	amt := ComputeLine(LineInput{
		Quantity:       dec("2"),
		UnitPrice:      dec("100"),
		DiscountMode:   DiscountAmount,
		DiscountAmount: dec("20"),
		TaxRate:        dec("18"),
		WHTRate:        dec("5"),
	}, decimal.Zero)

	assert.True(t, pct.Discount.Equal(amt.Discount))
	assert.True(t, pct.Tax.Equal(amt.Tax))
	assert.True(t, pct.WHT.Equal(amt.WHT))
	assert.True(t, pct.Total.Equal(amt.Total))
}

func TestComputeLineIdempotent(t *testing.T) {
	in := LineInput{
		Quantity:           dec("3"),
		UnitPrice:          dec("19.99"),
		DiscountMode:       DiscountPercentage,
		DiscountPercentage: dec("12.5"),
		TaxRate:            dec("18"),
		WHTRate:            dec("2"),
	}
	rate := dec("1.08")

	first := ComputeLine(in, rate)
	second := ComputeLine(in, rate)
	assert.Equal(t, first, second)
}

func TestComputeTotalsAggregation(t *testing.T) {
	lines := []LineInput{
		{
			Quantity:           dec("2"),
			UnitPrice:          dec("100"),
			DiscountMode:       DiscountPercentage,
			DiscountPercentage: dec("10"),
			TaxRate:            dec("18"),
		},
		{
			Quantity:       dec("1"),
			UnitPrice:      dec("50"),
			DiscountMode:   DiscountAmount,
			DiscountAmount: dec("5"),
			TaxRate:        dec("18"),
			WHTRate:        dec("5"),
		},
	}

	lineTotals, totals := ComputeTotals(OrderContext{ExchangeRate: dec("1")}, lines)
	require.Len(t, lineTotals, 2)

	assertDecimal(t, "250", totals.Subtotal)
	assertDecimal(t, "25", totals.TotalDiscount)
	assertDecimal(t, "225", totals.AmountAfterDiscount)

	// The order total is exactly the per-line sum.
	sum := decimal.Zero
	for _, lt := range lineTotals {
		sum = sum.Add(lt.Total)
	}
	assert.True(t, totals.Total.Equal(sum))

	// Per-line summation matches the aggregate shortcut.
	assert.True(t, totals.Total.Equal(totals.AmountAfterWHT.Add(totals.TotalTax)))

	assertDecimal(t, "18", totals.EffectiveVATPercent)
}

func TestComputeTotalsEmptyLines(t *testing.T) {
	lineTotals, totals := ComputeTotals(OrderContext{}, nil)
	assert.Empty(t, lineTotals)
	assertDecimal(t, "0", totals.Subtotal)
	assertDecimal(t, "0", totals.Total)
	assertDecimal(t, "0", totals.EffectiveVATPercent)
}

func TestComputeTotalsEffectiveVATZeroBase(t *testing.T) {
	lines := []LineInput{{
		Quantity:           dec("1"),
		UnitPrice:          dec("100"),
		DiscountMode:       DiscountPercentage,
		DiscountPercentage: dec("100"),
		TaxRate:            dec("18"),
	}}

	_, totals := ComputeTotals(OrderContext{}, lines)
	assertDecimal(t, "0", totals.AmountAfterDiscount)
	assertDecimal(t, "0", totals.EffectiveVATPercent)
}

func TestComputeLineProperties(t *testing.T) {
	cases := []LineInput{
		{Quantity: dec("1"), UnitPrice: dec("0.01"), DiscountMode: DiscountAmount, DiscountAmount: dec("0.01")},
		{Quantity: dec("7"), UnitPrice: dec("13.37"), DiscountMode: DiscountPercentage, DiscountPercentage: dec("33"), TaxRate: dec("11"), WHTRate: dec("2")},
		{Quantity: dec("1000"), UnitPrice: dec("2500"), DiscountMode: DiscountAmount, DiscountAmount: dec("999999"), TaxRate: dec("18"), WHTRate: dec("5")},
		{Quantity: dec("0.5"), UnitPrice: dec("3"), DiscountMode: DiscountPercentage, DiscountPercentage: dec("100"), TaxRate: dec("18")},
	}

	for _, in := range cases {
		lt := ComputeLine(in, decimal.Zero)
		assert.True(t, lt.Discount.LessThanOrEqual(lt.Subtotal), "discount exceeds subtotal for %+v", in)
		assert.False(t, lt.AmountAfterDiscount.IsNegative(), "negative post-discount amount for %+v", in)
	}
}

func TestSafeCoercions(t *testing.T) {
	assert.True(t, FromFloat(math.NaN()).IsZero())
	assert.True(t, FromFloat(math.Inf(1)).IsZero())
	assert.True(t, FromFloat(math.Inf(-1)).IsZero())
	assertDecimal(t, "1.5", FromFloat(1.5))

	assert.True(t, ParseDecimal("not-a-number").IsZero())
	assertDecimal(t, "42.42", ParseDecimal("42.42"))

	assert.True(t, NonNegative(dec("-1")).IsZero())
	assertDecimal(t, "3", NonNegative(dec("3")))

	assertDecimal(t, "100", ClampPercent(dec("250")))
	assertDecimal(t, "0", ClampPercent(dec("-4")))

	assertDecimal(t, "10", ClampRange(dec("99"), dec("10")))
	assertDecimal(t, "0", ClampRange(dec("5"), dec("-1")))
}
