package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, category *PriceCategory) error
	FindByID(ctx context.Context, id snowflake.ID) (*PriceCategory, error)
	List(ctx context.Context, filter ListRequest) ([]PriceCategory, error)
	Update(ctx context.Context, category *PriceCategory) error

	UpsertPrice(ctx context.Context, price *CategoryPrice) error
	FindPrice(ctx context.Context, categoryID, productID snowflake.ID) (*CategoryPrice, error)
	ListPrices(ctx context.Context, categoryID snowflake.ID) ([]CategoryPrice, error)
	DeletePrice(ctx context.Context, categoryID, productID snowflake.ID) error
}
