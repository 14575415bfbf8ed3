package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RateProvider resolves the exchange rate from a currency to the system
// default currency. Missing or non-positive rates resolve to 1.0 so
// order pricing always has a usable multiplier.
type RateProvider interface {
	RateToBase(ctx context.Context, currencyID snowflake.ID) decimal.Decimal
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)

	SetRate(ctx context.Context, req SetRateRequest) (*RateResponse, error)
	ListRates(ctx context.Context, fromCurrencyID string) ([]RateResponse, error)

	RateProvider
}

type ListRequest struct {
	Code     string
	IsActive *bool
	SortBy   string
	OrderBy  string
}

type CreateRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	DecimalPlaces *int   `json:"decimal_places"`
	IsBase        bool   `json:"is_base"`
	IsActive      *bool  `json:"is_active"`
}

type UpdateRequest struct {
	ID            string  `json:"id"`
	Name          *string `json:"name,omitempty"`
	Symbol        *string `json:"symbol,omitempty"`
	DecimalPlaces *int    `json:"decimal_places,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

type SetRateRequest struct {
	FromCurrencyID string          `json:"from_currency_id"`
	ToCurrencyID   string          `json:"to_currency_id"`
	Rate           decimal.Decimal `json:"rate"`
}

type Response struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	DecimalPlaces int       `json:"decimal_places"`
	IsBase        bool      `json:"is_base"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type RateResponse struct {
	FromCurrencyID string          `json:"from_currency_id"`
	ToCurrencyID   string          `json:"to_currency_id"`
	Rate           decimal.Decimal `json:"rate"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
