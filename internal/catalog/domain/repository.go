package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id snowflake.ID) (*Product, error)
	FindByCode(ctx context.Context, code string) (*Product, error)
	List(ctx context.Context, filter ListRequest) ([]*Product, error)
	Update(ctx context.Context, product *Product) error
}
