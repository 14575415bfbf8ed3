package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeUnitPriceSellingPrice(t *testing.T) {
	price := NormalizeUnitPrice(PriceQuote{
		SellingPrice: dec("150"),
		AverageCost:  dec("90"),
	})
	assertDecimal(t, "150", price)
}

func TestNormalizeUnitPriceFallsBackToAverageCost(t *testing.T) {
	price := NormalizeUnitPrice(PriceQuote{
		SellingPrice: decimal.Zero,
		AverageCost:  dec("90"),
	})
	assertDecimal(t, "90", price)
}

func TestNormalizeUnitPriceCategoryOverride(t *testing.T) {
	category := dec("120")
	price := NormalizeUnitPrice(PriceQuote{
		SellingPrice:  dec("150"),
		CategoryPrice: &category,
	})
	assertDecimal(t, "120", price)
}

func TestNormalizeUnitPriceTaxInclusiveRoundTrip(t *testing.T) {
	price := NormalizeUnitPrice(PriceQuote{
		SellingPrice: dec("118"),
		TaxInclusive: true,
		TaxRate:      dec("18"),
	})
	assertDecimal(t, "100", price)

	// Recomputing the tax-added per-unit amount reproduces the displayed
	// price.
	lt := ComputeLine(LineInput{
		Quantity:  dec("1"),
		UnitPrice: price,
		TaxRate:   dec("18"),
	}, decimal.Zero)
	assertDecimal(t, "18", lt.VATPerUnit)
	assertDecimal(t, "118", lt.AmountAfterVATPerUnit)
}

func TestNormalizeUnitPriceZeroRateUntouched(t *testing.T) {
	price := NormalizeUnitPrice(PriceQuote{
		SellingPrice: dec("118"),
		TaxInclusive: true,
		TaxRate:      decimal.Zero,
	})
	assertDecimal(t, "118", price)
}

func TestNormalizeUnitPriceNegativeInputs(t *testing.T) {
	price := NormalizeUnitPrice(PriceQuote{
		SellingPrice: dec("-10"),
		AverageCost:  dec("-5"),
	})
	assert.True(t, price.IsZero())
}
