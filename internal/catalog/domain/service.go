package domain

import (
	"context"
	"time"

	"github.com/retailgrid/orderdesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Quoter resolves the tax-exclusive unit price and default tax rates for
// adding a product to an order, honoring the optional price category
// override. Order creation prices product-only lines through it.
type Quoter interface {
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Disable(ctx context.Context, id string) (*Response, error)

	Quoter
}

type ListRequest struct {
	Search   string `form:"q"`
	IsActive *bool  `form:"is_active"`
	SortBy   string `form:"sort_by"`
	OrderBy  string `form:"order_by"`

	pagination.Pagination

	// Cursor is decoded from PageToken by the service. Limit is the
	// effective page size plus one row for has-more detection.
	Cursor *pagination.Cursor `form:"-"`
	Limit  int                `form:"-"`
}

type CreateRequest struct {
	Code              string            `json:"code"`
	Name              string            `json:"name"`
	Description       *string           `json:"description"`
	SellingPrice      decimal.Decimal   `json:"selling_price"`
	AverageCost       decimal.Decimal   `json:"average_cost"`
	PriceTaxInclusive bool              `json:"price_tax_inclusive"`
	DefaultTaxCodeID  *string           `json:"default_tax_code_id"`
	DefaultWHTCodeID  *string           `json:"default_wht_code_id"`
	TrackingMode      TrackingMode      `json:"tracking_mode"`
	IsActive          *bool             `json:"is_active"`
	Metadata          datatypes.JSONMap `json:"metadata"`
}

type UpdateRequest struct {
	ID                string           `json:"id"`
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	SellingPrice      *decimal.Decimal `json:"selling_price,omitempty"`
	AverageCost       *decimal.Decimal `json:"average_cost,omitempty"`
	PriceTaxInclusive *bool            `json:"price_tax_inclusive,omitempty"`
	DefaultTaxCodeID  *string          `json:"default_tax_code_id,omitempty"`
	DefaultWHTCodeID  *string          `json:"default_wht_code_id,omitempty"`
	TrackingMode      *TrackingMode    `json:"tracking_mode,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
}

type QuoteRequest struct {
	ProductID       string  `json:"product_id"`
	PriceCategoryID *string `json:"price_category_id,omitempty"`
}

type QuoteResponse struct {
	ProductID string `json:"product_id"`

	// UnitPrice is the normalized tax-exclusive base price.
	UnitPrice decimal.Decimal `json:"unit_price"`

	PriceTaxInclusive bool            `json:"price_tax_inclusive"`
	TaxCodeID         *string         `json:"tax_code_id,omitempty"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	WHTCodeID         *string         `json:"wht_tax_code_id,omitempty"`
	WHTRate           decimal.Decimal `json:"wht_rate"`
	TrackingMode      TrackingMode    `json:"tracking_mode"`
}

type Response struct {
	ID                string            `json:"id"`
	Code              string            `json:"code"`
	Name              string            `json:"name"`
	Description       *string           `json:"description,omitempty"`
	SellingPrice      decimal.Decimal   `json:"selling_price"`
	AverageCost       decimal.Decimal   `json:"average_cost"`
	PriceTaxInclusive bool              `json:"price_tax_inclusive"`
	DefaultTaxCodeID  *string           `json:"default_tax_code_id,omitempty"`
	DefaultWHTCodeID  *string           `json:"default_wht_code_id,omitempty"`
	TrackingMode      TrackingMode      `json:"tracking_mode"`
	IsActive          bool              `json:"is_active"`
	Metadata          datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

type ListResponse struct {
	Products []Response           `json:"products"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}
