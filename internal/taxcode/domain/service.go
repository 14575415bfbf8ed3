package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RateResolver resolves a tax code reference to its effective percentage
// rate. Missing, disabled, or unknown codes resolve to zero so pricing
// degrades instead of failing. The withholding flag states which class of
// code the caller expects; a class mismatch also resolves to zero, so a
// withholding code can never be applied as VAT or the other way around.
type RateResolver interface {
	ResolveRate(ctx context.Context, id *snowflake.ID, withholding bool) decimal.Decimal
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Disable(ctx context.Context, id string) (*Response, error)

	RateResolver
}

type ListRequest struct {
	Code          string
	IsWithholding *bool
	IsActive      *bool
	SortBy        string
	OrderBy       string
}

type CreateRequest struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Rate          decimal.Decimal `json:"rate"`
	IsWithholding bool            `json:"is_withholding"`
	IsActive      *bool           `json:"is_active"`
	Description   *string         `json:"description"`
}

type UpdateRequest struct {
	ID          string           `json:"id"`
	Name        *string          `json:"name,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	Description *string          `json:"description,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

type Response struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Rate          decimal.Decimal `json:"rate"`
	IsWithholding bool            `json:"is_withholding"`
	IsActive      bool            `json:"is_active"`
	Description   *string         `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
