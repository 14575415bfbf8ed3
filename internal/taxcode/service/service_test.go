package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	taxdomain "github.com/retailgrid/orderdesk/internal/taxcode/domain"
	taxrepository "github.com/retailgrid/orderdesk/internal/taxcode/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) taxdomain.Service {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&taxdomain.TaxCode{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(serviceParams{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  taxrepository.NewRepository(db),
	})
}

func TestCreate_NormalizesCode(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Create(context.Background(), taxdomain.CreateRequest{
		Code: "  vat18 ",
		Name: "Standard VAT",
		Rate: decimal.NewFromInt(18),
	})
	require.NoError(t, err)

	assert.Equal(t, "VAT18", resp.Code)
	assert.True(t, resp.IsActive)
}

func TestCreate_RejectsDuplicateCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, taxdomain.CreateRequest{
		Code: "VAT18",
		Name: "Standard VAT",
		Rate: decimal.NewFromInt(18),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, taxdomain.CreateRequest{
		Code: "vat18",
		Name: "Duplicate",
		Rate: decimal.NewFromInt(18),
	})
	assert.ErrorIs(t, err, taxdomain.ErrCodeExists)
}

func TestResolveRate_ActiveCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, taxdomain.CreateRequest{
		Code: "VAT18",
		Name: "Standard VAT",
		Rate: decimal.NewFromInt(18),
	})
	require.NoError(t, err)

	id, err := snowflake.ParseString(resp.ID)
	require.NoError(t, err)

	rate := svc.ResolveRate(ctx, &id, false)
	assert.True(t, decimal.NewFromInt(18).Equal(rate), "got %s", rate.String())
}

func TestResolveRate_ClassMismatchResolvesToZero(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	vat, err := svc.Create(ctx, taxdomain.CreateRequest{
		Code: "VAT18",
		Name: "Standard VAT",
		Rate: decimal.NewFromInt(18),
	})
	require.NoError(t, err)

	wht, err := svc.Create(ctx, taxdomain.CreateRequest{
		Code:          "WHT3",
		Name:          "Withholding",
		Rate:          decimal.NewFromInt(3),
		IsWithholding: true,
	})
	require.NoError(t, err)

	vatID, err := snowflake.ParseString(vat.ID)
	require.NoError(t, err)
	whtID, err := snowflake.ParseString(wht.ID)
	require.NoError(t, err)

	t.Run("withholding code in the vat slot", func(t *testing.T) {
		assert.True(t, svc.ResolveRate(ctx, &whtID, false).IsZero())
	})

	t.Run("vat code in the withholding slot", func(t *testing.T) {
		assert.True(t, svc.ResolveRate(ctx, &vatID, true).IsZero())
	})

	t.Run("matching classes keep their rates", func(t *testing.T) {
		assert.True(t, decimal.NewFromInt(18).Equal(svc.ResolveRate(ctx, &vatID, false)))
		assert.True(t, decimal.NewFromInt(3).Equal(svc.ResolveRate(ctx, &whtID, true)))
	})
}

func TestResolveRate_DegradesToZero(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("nil reference", func(t *testing.T) {
		assert.True(t, svc.ResolveRate(ctx, nil, false).IsZero())
	})

	t.Run("unknown code", func(t *testing.T) {
		unknown := snowflake.ID(987654321)
		assert.True(t, svc.ResolveRate(ctx, &unknown, false).IsZero())
	})

	t.Run("disabled code", func(t *testing.T) {
		resp, err := svc.Create(ctx, taxdomain.CreateRequest{
			Code: "VAT7",
			Name: "Reduced VAT",
			Rate: decimal.NewFromInt(7),
		})
		require.NoError(t, err)

		_, err = svc.Disable(ctx, resp.ID)
		require.NoError(t, err)

		id, err := snowflake.ParseString(resp.ID)
		require.NoError(t, err)
		assert.True(t, svc.ResolveRate(ctx, &id, false).IsZero())
	})
}
