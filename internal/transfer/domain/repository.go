package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, transfer *Transfer) error
	FindByID(ctx context.Context, id snowflake.ID) (*Transfer, error)
	List(ctx context.Context, filter ListRequest) ([]Transfer, error)
	UpdateStatus(ctx context.Context, transfer *Transfer) error

	// UpdateReceipt persists the header status fields together with each
	// line's received quantity in one transaction.
	UpdateReceipt(ctx context.Context, transfer *Transfer) error
	Delete(ctx context.Context, id snowflake.ID) error
}
