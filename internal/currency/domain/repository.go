package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, currency *Currency) error
	FindByID(ctx context.Context, id snowflake.ID) (*Currency, error)
	FindByCode(ctx context.Context, code string) (*Currency, error)
	FindBase(ctx context.Context) (*Currency, error)
	List(ctx context.Context, filter ListRequest) ([]Currency, error)
	Update(ctx context.Context, currency *Currency) error

	UpsertRate(ctx context.Context, rate *ExchangeRate) error
	FindRate(ctx context.Context, fromID, toID snowflake.ID) (*ExchangeRate, error)
	ListRates(ctx context.Context, fromID snowflake.ID) ([]ExchangeRate, error)
}
