package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PriceLookup resolves the category price override for a product, or nil
// when the category has no entry for it.
type PriceLookup interface {
	CategoryPriceFor(ctx context.Context, categoryID, productID snowflake.ID) (*decimal.Decimal, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)

	SetPrice(ctx context.Context, req SetPriceRequest) (*PriceResponse, error)
	ListPrices(ctx context.Context, categoryID string) ([]PriceResponse, error)
	RemovePrice(ctx context.Context, categoryID, productID string) error

	PriceLookup
}

type ListRequest struct {
	Name     string
	IsActive *bool
	SortBy   string
	OrderBy  string
}

type CreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type SetPriceRequest struct {
	CategoryID string          `json:"category_id"`
	ProductID  string          `json:"product_id"`
	Price      decimal.Decimal `json:"price"`
}

type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PriceResponse struct {
	CategoryID string          `json:"category_id"`
	ProductID  string          `json:"product_id"`
	Price      decimal.Decimal `json:"price"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
