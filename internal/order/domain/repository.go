package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id snowflake.ID) (*Order, error)
	List(ctx context.Context, filter ListRequest) ([]Order, error)

	// Replace rewrites the order header and its full line set in one
	// transaction. Drafts only; status transitions go through
	// UpdateStatus.
	Replace(ctx context.Context, order *Order) error

	UpdateStatus(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id snowflake.ID) error
}
