package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	transferdomain "github.com/retailgrid/orderdesk/internal/transfer/domain"
	transferrepository "github.com/retailgrid/orderdesk/internal/transfer/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	svc  transferdomain.Service
	node *snowflake.Node
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&transferdomain.Transfer{}, &transferdomain.TransferLine{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(serviceParams{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  transferrepository.NewRepository(db),
	})

	return testEnv{svc: svc, node: node}
}

func (e testEnv) createDraft(t *testing.T) *transferdomain.Response {
	t.Helper()

	resp, err := e.svc.Create(context.Background(), transferdomain.CreateRequest{
		FromStoreID: e.node.Generate().String(),
		ToStoreID:   e.node.Generate().String(),
		Lines: []transferdomain.LineRequest{
			{
				ProductID:     e.node.Generate().String(),
				Quantity:      decimal.NewFromInt(5),
				SerialNumbers: []string{"SN-1", " SN-2 ", ""},
			},
		},
	})
	require.NoError(t, err)
	return resp
}

func TestCreate_RequiresDistinctStores(t *testing.T) {
	env := newTestEnv(t)

	storeID := env.node.Generate().String()
	_, err := env.svc.Create(context.Background(), transferdomain.CreateRequest{
		FromStoreID: storeID,
		ToStoreID:   storeID,
		Lines: []transferdomain.LineRequest{
			{ProductID: env.node.Generate().String(), Quantity: decimal.NewFromInt(1)},
		},
	})
	assert.ErrorIs(t, err, transferdomain.ErrSameStore)
}

func TestCreate_RequiresLineItems(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), transferdomain.CreateRequest{
		FromStoreID: env.node.Generate().String(),
		ToStoreID:   env.node.Generate().String(),
	})
	assert.ErrorIs(t, err, transferdomain.ErrNoLineItems)
}

func TestCreate_FiltersSerialNumbers(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createDraft(t)
	assert.True(t, strings.HasPrefix(resp.Number, "TR-"))
	assert.Equal(t, transferdomain.StatusDraft, resp.Status)
	assert.Equal(t, []string{"SN-1", "SN-2"}, resp.Lines[0].SerialNumbers)
}

func TestLifecycle_SendThenReceive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.createDraft(t)

	sent, err := env.svc.Send(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, transferdomain.StatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)

	// A bodyless receive takes every line in full.
	received, err := env.svc.Receive(ctx, transferdomain.ReceiveRequest{ID: resp.ID})
	require.NoError(t, err)
	assert.Equal(t, transferdomain.StatusReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)
	assert.True(t, received.Lines[0].ReceivedQuantity.Equal(received.Lines[0].Quantity))
}

func TestReceive_PartialKeepsTransferInTransit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.createDraft(t)
	_, err := env.svc.Send(ctx, resp.ID)
	require.NoError(t, err)

	lineID := resp.Lines[0].ID

	partial, err := env.svc.Receive(ctx, transferdomain.ReceiveRequest{
		ID: resp.ID,
		Lines: []transferdomain.ReceiveLineRequest{
			{LineID: lineID, ReceivedQuantity: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, transferdomain.StatusSent, partial.Status)
	assert.Nil(t, partial.ReceivedAt)
	assert.True(t, decimal.NewFromInt(2).Equal(partial.Lines[0].ReceivedQuantity),
		"got %s", partial.Lines[0].ReceivedQuantity.String())

	// Receipts accumulate; the remainder closes the transfer.
	final, err := env.svc.Receive(ctx, transferdomain.ReceiveRequest{
		ID: resp.ID,
		Lines: []transferdomain.ReceiveLineRequest{
			{LineID: lineID, ReceivedQuantity: decimal.NewFromInt(3)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, transferdomain.StatusReceived, final.Status)
	require.NotNil(t, final.ReceivedAt)
	assert.True(t, decimal.NewFromInt(5).Equal(final.Lines[0].ReceivedQuantity))

	// Persisted state matches.
	stored, err := env.svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, transferdomain.StatusReceived, stored.Status)
	assert.True(t, decimal.NewFromInt(5).Equal(stored.Lines[0].ReceivedQuantity))
}

func TestReceive_RejectsBadQuantities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.createDraft(t)
	_, err := env.svc.Send(ctx, resp.ID)
	require.NoError(t, err)

	lineID := resp.Lines[0].ID

	t.Run("over-receipt", func(t *testing.T) {
		_, err := env.svc.Receive(ctx, transferdomain.ReceiveRequest{
			ID: resp.ID,
			Lines: []transferdomain.ReceiveLineRequest{
				{LineID: lineID, ReceivedQuantity: decimal.NewFromInt(6)},
			},
		})
		assert.ErrorIs(t, err, transferdomain.ErrInvalidQuantity)
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := env.svc.Receive(ctx, transferdomain.ReceiveRequest{
			ID: resp.ID,
			Lines: []transferdomain.ReceiveLineRequest{
				{LineID: lineID, ReceivedQuantity: decimal.NewFromInt(-1)},
			},
		})
		assert.ErrorIs(t, err, transferdomain.ErrInvalidQuantity)
	})

	t.Run("unknown line", func(t *testing.T) {
		_, err := env.svc.Receive(ctx, transferdomain.ReceiveRequest{
			ID: resp.ID,
			Lines: []transferdomain.ReceiveLineRequest{
				{LineID: env.node.Generate().String(), ReceivedQuantity: decimal.NewFromInt(1)},
			},
		})
		assert.ErrorIs(t, err, transferdomain.ErrInvalidLine)
	})
}

func TestLifecycle_RejectsOutOfOrderMoves(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.createDraft(t)

	// Draft cannot be received before it is sent.
	_, err := env.svc.Receive(ctx, transferdomain.ReceiveRequest{ID: resp.ID})
	assert.ErrorIs(t, err, transferdomain.ErrNotSent)

	_, err = env.svc.Send(ctx, resp.ID)
	require.NoError(t, err)

	// Sent transfers cannot be sent again or deleted.
	_, err = env.svc.Send(ctx, resp.ID)
	assert.ErrorIs(t, err, transferdomain.ErrNotDraft)

	err = env.svc.Delete(ctx, resp.ID)
	assert.ErrorIs(t, err, transferdomain.ErrNotDraft)
}

func TestDelete_DraftOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.createDraft(t)
	require.NoError(t, env.svc.Delete(ctx, resp.ID))

	_, err := env.svc.Get(ctx, resp.ID)
	assert.ErrorIs(t, err, transferdomain.ErrNotFound)
}
