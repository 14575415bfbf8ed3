package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/retailgrid/orderdesk/internal/catalog/domain"
	"github.com/retailgrid/orderdesk/internal/config"
	orderdomain "github.com/retailgrid/orderdesk/internal/order/domain"
	orderrepository "github.com/retailgrid/orderdesk/internal/order/repository"
	"github.com/retailgrid/orderdesk/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubTaxRates struct {
	rates map[snowflake.ID]decimal.Decimal
	wht   map[snowflake.ID]decimal.Decimal
}

func (s stubTaxRates) ResolveRate(_ context.Context, id *snowflake.ID, withholding bool) decimal.Decimal {
	if id == nil {
		return decimal.Zero
	}
	table := s.rates
	if withholding {
		table = s.wht
	}
	if rate, ok := table[*id]; ok {
		return rate
	}
	return decimal.Zero
}

type stubFXRates struct {
	rate decimal.Decimal
}

func (s stubFXRates) RateToBase(_ context.Context, _ snowflake.ID) decimal.Decimal {
	return s.rate
}

type stubQuotes struct {
	quotes map[string]*catalogdomain.QuoteResponse
}

func (s stubQuotes) Quote(_ context.Context, req catalogdomain.QuoteRequest) (*catalogdomain.QuoteResponse, error) {
	if quote, ok := s.quotes[req.ProductID]; ok {
		return quote, nil
	}
	return nil, catalogdomain.ErrNotFound
}

type testEnv struct {
	svc    orderdomain.Service
	db     *gorm.DB
	node   *snowflake.Node
	taxID  snowflake.ID
	whtID  snowflake.ID
	quotes map[string]*catalogdomain.QuoteResponse
}

func newTestEnv(t *testing.T, fxRate decimal.Decimal) testEnv {
	return newTestEnvWithPolicy(t, fxRate, nil)
}

func newTestEnvWithPolicy(t *testing.T, fxRate decimal.Decimal, policy *config.PricingPolicyHolder) testEnv {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&orderdomain.Order{}, &orderdomain.LineItem{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	taxID := node.Generate()
	whtID := node.Generate()
	quotes := make(map[string]*catalogdomain.QuoteResponse)

	svc := NewService(serviceParams{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  orderrepository.NewRepository(db),
		Rates: stubTaxRates{
			rates: map[snowflake.ID]decimal.Decimal{
				taxID: decimal.NewFromInt(18),
			},
			wht: map[snowflake.ID]decimal.Decimal{
				whtID: decimal.NewFromInt(3),
			},
		},
		FXRates: stubFXRates{rate: fxRate},
		Quotes:  stubQuotes{quotes: quotes},
		Policy:  policy,
	})

	return testEnv{svc: svc, db: db, node: node, taxID: taxID, whtID: whtID, quotes: quotes}
}

func assertAmount(t *testing.T, expected string, actual decimal.Decimal, label string) {
	t.Helper()
	want, err := decimal.NewFromString(expected)
	require.NoError(t, err)
	assert.True(t, want.Equal(actual), "%s: expected %s, got %s", label, expected, actual.String())
}

func TestCreateOrder_ComputesAndPersistsTotals(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))
	ctx := context.Background()

	taxID := env.taxID.String()
	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme Wholesale",
		Lines: []orderdomain.LineRequest{
			{
				ProductID:          env.node.Generate().String(),
				Quantity:           decimal.NewFromInt(2),
				UnitPrice:          decimal.NewFromInt(100),
				DiscountMode:       pricing.DiscountPercentage,
				DiscountPercentage: decimal.NewFromInt(10),
				TaxCodeID:          &taxID,
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)

	assert.Equal(t, orderdomain.StatusDraft, resp.Status)
	assert.True(t, strings.HasPrefix(resp.Number, "SO-"))

	assertAmount(t, "200", resp.Totals.Subtotal, "subtotal")
	assertAmount(t, "20", resp.Totals.TotalDiscount, "discount")
	assertAmount(t, "32.4", resp.Totals.TotalTax, "tax")
	assertAmount(t, "212.4", resp.Totals.Total, "total")
	assertAmount(t, "18", resp.Totals.EffectiveVATPercent, "effective vat")

	// Reload from storage; derived amounts must round-trip.
	stored, err := env.svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assertAmount(t, "212.4", stored.Totals.Total, "stored total")
	assertAmount(t, "32.4", stored.Lines[0].LineTax, "stored line tax")
}

func TestCreateOrder_WithholdingReducesPayable(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))
	ctx := context.Background()

	taxID := env.taxID.String()
	whtID := env.whtID.String()
	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypePurchase,
		CounterpartyName: "Supply Co",
		Lines: []orderdomain.LineRequest{
			{
				ProductID: env.node.Generate().String(),
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(200),
				TaxCodeID: &taxID,
				WHTCodeID: &whtID,
			},
		},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Number, "PO-"))
	assertAmount(t, "6", resp.Totals.TotalWHT, "withholding")
	assertAmount(t, "194", resp.Totals.AmountAfterWHT, "amount after withholding")
	assertAmount(t, "36", resp.Totals.TotalTax, "tax")
	assertAmount(t, "230.4", resp.Totals.Total, "total")
}

func TestCreateOrder_UnknownDiscountModeDefaultsToAmount(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))
	ctx := context.Background()

	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
		Lines: []orderdomain.LineRequest{
			{
				ProductID:      env.node.Generate().String(),
				Quantity:       decimal.NewFromInt(1),
				UnitPrice:      decimal.NewFromInt(50),
				DiscountMode:   "BOGUS",
				DiscountAmount: decimal.NewFromInt(5),
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, pricing.DiscountAmount, resp.Lines[0].DiscountMode)
	assertAmount(t, "5", resp.Totals.TotalDiscount, "discount")
	assertAmount(t, "45", resp.Totals.Total, "total")
}

func TestCreateOrder_FiltersEmptySerialNumbers(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))
	ctx := context.Background()

	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
		Lines: []orderdomain.LineRequest{
			{
				ProductID:     env.node.Generate().String(),
				Quantity:      decimal.NewFromInt(2),
				UnitPrice:     decimal.NewFromInt(10),
				SerialNumbers: []string{" SN-1 ", "", "SN-2"},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"SN-1", "SN-2"}, resp.Lines[0].SerialNumbers)
}

func TestCreateOrder_RejectsMissingCounterparty(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))

	_, err := env.svc.Create(context.Background(), orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "   ",
	})
	assert.ErrorIs(t, err, orderdomain.ErrInvalidCounterparty)
}

func TestSubmit_RequiresLineItems(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))
	ctx := context.Background()

	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
	})
	require.NoError(t, err)

	_, err = env.svc.Submit(ctx, resp.ID)
	assert.ErrorIs(t, err, orderdomain.ErrNoLineItems)
}

func TestSubmit_FreezesOrder(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))
	ctx := context.Background()

	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
		Lines: []orderdomain.LineRequest{
			{
				ProductID: env.node.Generate().String(),
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(10),
			},
		},
	})
	require.NoError(t, err)

	submitted, err := env.svc.Submit(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	// Submitted orders reject every mutation.
	name := "New Name"
	_, err = env.svc.Update(ctx, orderdomain.UpdateRequest{ID: resp.ID, CounterpartyName: &name})
	assert.ErrorIs(t, err, orderdomain.ErrOrderSubmitted)

	_, err = env.svc.Submit(ctx, resp.ID)
	assert.ErrorIs(t, err, orderdomain.ErrOrderSubmitted)

	err = env.svc.Delete(ctx, resp.ID)
	assert.ErrorIs(t, err, orderdomain.ErrOrderSubmitted)
}

func TestUpdate_ReplacesLinesAndRecomputes(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))
	ctx := context.Background()

	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
		Lines: []orderdomain.LineRequest{
			{
				ProductID: env.node.Generate().String(),
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(10),
			},
		},
	})
	require.NoError(t, err)
	assertAmount(t, "10", resp.Totals.Total, "initial total")

	lines := []orderdomain.LineRequest{
		{
			ProductID: env.node.Generate().String(),
			Quantity:  decimal.NewFromInt(3),
			UnitPrice: decimal.NewFromInt(25),
		},
		{
			ProductID:      env.node.Generate().String(),
			Quantity:       decimal.NewFromInt(1),
			UnitPrice:      decimal.NewFromInt(40),
			DiscountAmount: decimal.NewFromInt(15),
		},
	}
	updated, err := env.svc.Update(ctx, orderdomain.UpdateRequest{ID: resp.ID, Lines: &lines})
	require.NoError(t, err)

	require.Len(t, updated.Lines, 2)
	assertAmount(t, "115", updated.Totals.Subtotal, "subtotal")
	assertAmount(t, "15", updated.Totals.TotalDiscount, "discount")
	assertAmount(t, "100", updated.Totals.Total, "total")

	stored, err := env.svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	assertAmount(t, "100", stored.Totals.Total, "stored total")
}

func TestCreateOrder_EquivalentTotalsUseCurrencyRate(t *testing.T) {
	env := newTestEnv(t, decimal.RequireFromString("3.75"))
	ctx := context.Background()

	currencyID := env.node.Generate().String()
	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
		CurrencyID:       &currencyID,
		Lines: []orderdomain.LineRequest{
			{
				ProductID: env.node.Generate().String(),
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(100),
			},
		},
	})
	require.NoError(t, err)

	assertAmount(t, "3.75", resp.ExchangeRate, "exchange rate")
	assertAmount(t, "100", resp.Totals.Total, "total")
	assertAmount(t, "375", resp.Totals.EquivalentTotal, "equivalent total")
}

func TestCreateOrder_ExplicitRateWinsOverCurrency(t *testing.T) {
	env := newTestEnv(t, decimal.RequireFromString("3.75"))
	ctx := context.Background()

	currencyID := env.node.Generate().String()
	explicit := decimal.NewFromInt(2)
	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
		CurrencyID:       &currencyID,
		ExchangeRate:     &explicit,
		Lines: []orderdomain.LineRequest{
			{
				ProductID: env.node.Generate().String(),
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(50),
			},
		},
	})
	require.NoError(t, err)

	assertAmount(t, "2", resp.ExchangeRate, "exchange rate")
	assertAmount(t, "100", resp.Totals.EquivalentTotal, "equivalent total")
}

func TestPreview_DoesNotPersist(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))
	ctx := context.Background()

	resp, err := env.svc.Preview(ctx, orderdomain.PreviewRequest{
		Lines: []orderdomain.LineRequest{
			{
				ProductID:          env.node.Generate().String(),
				Quantity:           decimal.NewFromInt(2),
				UnitPrice:          decimal.NewFromInt(100),
				DiscountMode:       pricing.DiscountPercentage,
				DiscountPercentage: decimal.NewFromInt(10),
				TaxRate:            decPtr("18"),
			},
		},
	})
	require.NoError(t, err)
	assertAmount(t, "212.4", resp.Totals.Total, "preview total")

	var count int64
	require.NoError(t, env.db.Model(&orderdomain.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrder_ProductOnlyLinePricedFromCatalog(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))
	ctx := context.Background()

	productID := env.node.Generate().String()
	taxID := env.taxID.String()
	whtID := env.whtID.String()
	env.quotes[productID] = &catalogdomain.QuoteResponse{
		ProductID: productID,
		UnitPrice: decimal.NewFromInt(120),
		TaxCodeID: &taxID,
		WHTCodeID: &whtID,
	}

	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
		Lines: []orderdomain.LineRequest{
			{
				ProductID: productID,
				Quantity:  decimal.NewFromInt(2),
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)

	line := resp.Lines[0]
	assertAmount(t, "120", line.UnitPrice, "unit price")
	assertAmount(t, "18", line.TaxRate, "tax rate")
	assertAmount(t, "3", line.WHTRate, "wht rate")
	require.NotNil(t, line.TaxCodeID)
	assert.Equal(t, taxID, *line.TaxCodeID)

	assertAmount(t, "240", resp.Totals.Subtotal, "subtotal")
	assertAmount(t, "43.2", resp.Totals.TotalTax, "tax")

	// The quoted price round-trips through storage.
	stored, err := env.svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assertAmount(t, "120", stored.Lines[0].UnitPrice, "stored unit price")
}

func TestCreateOrder_ExplicitPriceSkipsCatalog(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))
	ctx := context.Background()

	// No quote registered; an explicit price must not hit the catalog.
	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
		Lines: []orderdomain.LineRequest{
			{
				ProductID: env.node.Generate().String(),
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(75),
			},
		},
	})
	require.NoError(t, err)
	assertAmount(t, "75", resp.Totals.Total, "total")
}

func TestCreateOrder_ProductOnlyLineUnknownProduct(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))

	_, err := env.svc.Create(context.Background(), orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
		Lines: []orderdomain.LineRequest{
			{
				ProductID: env.node.Generate().String(),
				Quantity:  decimal.NewFromInt(1),
			},
		},
	})
	assert.ErrorIs(t, err, orderdomain.ErrInvalidProduct)
}

func TestCreateOrder_PolicyDefaultDiscountMode(t *testing.T) {
	policy := config.DefaultPricingPolicy()
	policy.DefaultDiscountMode = "PERCENTAGE"
	env := newTestEnvWithPolicy(t, decimal.NewFromInt(1), config.NewStaticPricingPolicyHolder(policy))
	ctx := context.Background()

	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
		Lines: []orderdomain.LineRequest{
			{
				ProductID:          env.node.Generate().String(),
				Quantity:           decimal.NewFromInt(1),
				UnitPrice:          decimal.NewFromInt(100),
				DiscountPercentage: decimal.NewFromInt(10),
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, pricing.DiscountPercentage, resp.Lines[0].DiscountMode)
	assertAmount(t, "10", resp.Totals.TotalDiscount, "discount")
	assertAmount(t, "90", resp.Totals.Total, "total")
}

func TestResponses_RoundAtDisplayScale(t *testing.T) {
	policy := config.DefaultPricingPolicy()
	policy.DisplayScale = 0
	env := newTestEnvWithPolicy(t, decimal.NewFromInt(1), config.NewStaticPricingPolicyHolder(policy))
	ctx := context.Background()

	taxID := env.taxID.String()
	resp, err := env.svc.Create(ctx, orderdomain.CreateRequest{
		StoreID:          env.node.Generate().String(),
		Type:             orderdomain.TypeSales,
		CounterpartyName: "Acme",
		Lines: []orderdomain.LineRequest{
			{
				ProductID:          env.node.Generate().String(),
				Quantity:           decimal.NewFromInt(2),
				UnitPrice:          decimal.NewFromInt(100),
				DiscountMode:       pricing.DiscountPercentage,
				DiscountPercentage: decimal.NewFromInt(10),
				TaxCodeID:          &taxID,
			},
		},
	})
	require.NoError(t, err)

	// 32.4 tax and 212.4 total render at scale zero.
	assertAmount(t, "32", resp.Lines[0].LineTax, "line tax")
	assertAmount(t, "212", resp.Totals.Total, "total")
}

func TestGet_UnknownOrder(t *testing.T) {
	env := newTestEnv(t, decimal.NewFromInt(1))

	_, err := env.svc.Get(context.Background(), env.node.Generate().String())
	assert.ErrorIs(t, err, orderdomain.ErrNotFound)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
