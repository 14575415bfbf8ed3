package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/retailgrid/orderdesk/internal/catalog/domain"
	catalogrepository "github.com/retailgrid/orderdesk/internal/catalog/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubRates struct {
	rates map[snowflake.ID]decimal.Decimal
	wht   map[snowflake.ID]decimal.Decimal
}

func (s stubRates) ResolveRate(_ context.Context, id *snowflake.ID, withholding bool) decimal.Decimal {
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

type stubPriceLookup struct {
	prices map[snowflake.ID]decimal.Decimal
}

func (s stubPriceLookup) CategoryPriceFor(_ context.Context, categoryID, _ snowflake.ID) (*decimal.Decimal, error) {
	if price, ok := s.prices[categoryID]; ok {
		return &price, nil
	}
	return nil, nil
}

type testEnv struct {
	svc   catalogdomain.Service
	node  *snowflake.Node
	taxID snowflake.ID
	whtID snowflake.ID
	catID snowflake.ID
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalogdomain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	taxID := node.Generate()
	whtID := node.Generate()
	catID := node.Generate()

	svc := NewService(serviceParams{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  catalogrepository.NewRepository(db),
		Rates: stubRates{
			rates: map[snowflake.ID]decimal.Decimal{
				taxID: decimal.NewFromInt(18),
			},
			wht: map[snowflake.ID]decimal.Decimal{
				whtID: decimal.NewFromInt(3),
			},
		},
		PriceLookup: stubPriceLookup{prices: map[snowflake.ID]decimal.Decimal{
			catID: decimal.NewFromInt(85),
		}},
	})

	return testEnv{svc: svc, node: node, taxID: taxID, whtID: whtID, catID: catID}
}

func assertAmount(t *testing.T, expected string, actual decimal.Decimal, label string) {
	t.Helper()
	want := decimal.RequireFromString(expected)
	assert.True(t, want.Equal(actual), "%s: expected %s, got %s", label, expected, actual.String())
}

func TestCreate_SlugifiesCode(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.Create(context.Background(), catalogdomain.CreateRequest{
		Name:         "Espresso Machine XL",
		SellingPrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	assert.Equal(t, "espresso-machine-xl", resp.Code)
	assert.Equal(t, catalogdomain.TrackingNone, resp.TrackingMode)
}

func TestCreate_RejectsDuplicateCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, catalogdomain.CreateRequest{Name: "Widget", Code: "widget"})
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, catalogdomain.CreateRequest{Name: "Widget Two", Code: "Widget"})
	assert.ErrorIs(t, err, catalogdomain.ErrCodeExists)
}

func TestQuote_UsesSellingPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	taxID := env.taxID.String()
	created, err := env.svc.Create(ctx, catalogdomain.CreateRequest{
		Name:             "Widget",
		SellingPrice:     decimal.NewFromInt(120),
		AverageCost:      decimal.NewFromInt(80),
		DefaultTaxCodeID: &taxID,
	})
	require.NoError(t, err)

	quote, err := env.svc.Quote(ctx, catalogdomain.QuoteRequest{ProductID: created.ID})
	require.NoError(t, err)

	assertAmount(t, "120", quote.UnitPrice, "unit price")
	assertAmount(t, "18", quote.TaxRate, "tax rate")
}

func TestQuote_ResolvesRatesByClass(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	taxID := env.taxID.String()
	whtID := env.whtID.String()
	created, err := env.svc.Create(ctx, catalogdomain.CreateRequest{
		Name:             "Consulting",
		SellingPrice:     decimal.NewFromInt(1000),
		DefaultTaxCodeID: &taxID,
		DefaultWHTCodeID: &whtID,
	})
	require.NoError(t, err)

	quote, err := env.svc.Quote(ctx, catalogdomain.QuoteRequest{ProductID: created.ID})
	require.NoError(t, err)

	assertAmount(t, "18", quote.TaxRate, "tax rate")
	assertAmount(t, "3", quote.WHTRate, "wht rate")
}

func TestQuote_FallsBackToAverageCost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, catalogdomain.CreateRequest{
		Name:        "Widget",
		AverageCost: decimal.NewFromInt(80),
	})
	require.NoError(t, err)

	quote, err := env.svc.Quote(ctx, catalogdomain.QuoteRequest{ProductID: created.ID})
	require.NoError(t, err)

	assertAmount(t, "80", quote.UnitPrice, "unit price")
}

func TestQuote_CategoryPriceOverrides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, catalogdomain.CreateRequest{
		Name:         "Widget",
		SellingPrice: decimal.NewFromInt(120),
	})
	require.NoError(t, err)

	catID := env.catID.String()
	quote, err := env.svc.Quote(ctx, catalogdomain.QuoteRequest{
		ProductID:       created.ID,
		PriceCategoryID: &catID,
	})
	require.NoError(t, err)

	assertAmount(t, "85", quote.UnitPrice, "unit price")
}

func TestQuote_TaxInclusivePriceIsNormalized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	taxID := env.taxID.String()
	created, err := env.svc.Create(ctx, catalogdomain.CreateRequest{
		Name:              "Widget",
		SellingPrice:      decimal.NewFromInt(118),
		PriceTaxInclusive: true,
		DefaultTaxCodeID:  &taxID,
	})
	require.NoError(t, err)

	quote, err := env.svc.Quote(ctx, catalogdomain.QuoteRequest{ProductID: created.ID})
	require.NoError(t, err)

	// 118 gross at 18% resolves to a 100 base price.
	assertAmount(t, "100", quote.UnitPrice, "unit price")
	assert.True(t, quote.PriceTaxInclusive)
}

func TestQuote_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Quote(context.Background(), catalogdomain.QuoteRequest{
		ProductID: env.node.Generate().String(),
	})
	assert.ErrorIs(t, err, catalogdomain.ErrNotFound)
}

func TestList_CursorPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		_, err := env.svc.Create(ctx, catalogdomain.CreateRequest{Name: name})
		require.NoError(t, err)
	}

	first, err := env.svc.List(ctx, catalogdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, first.Products, 3)

	paged, err := env.svc.List(ctx, func() catalogdomain.ListRequest {
		var req catalogdomain.ListRequest
		req.PageSize = 2
		return req
	}())
	require.NoError(t, err)
	require.Len(t, paged.Products, 2)
	require.NotNil(t, paged.PageInfo)
	assert.True(t, paged.PageInfo.HasMore)
	require.NotEmpty(t, paged.PageInfo.NextPageToken)

	rest, err := env.svc.List(ctx, func() catalogdomain.ListRequest {
		var req catalogdomain.ListRequest
		req.PageSize = 2
		req.PageToken = paged.PageInfo.NextPageToken
		return req
	}())
	require.NoError(t, err)
	require.Len(t, rest.Products, 1)
	assert.False(t, rest.PageInfo.HasMore)
}
