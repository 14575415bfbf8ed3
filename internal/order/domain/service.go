package domain

import (
	"context"
	"time"

	"github.com/retailgrid/orderdesk/internal/pricing"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)

	// Update replaces a draft's header and lines and recomputes every
	// derived amount. Submitted orders are immutable.
	Update(ctx context.Context, req UpdateRequest) (*Response, error)

	// Submit runs full validation and freezes the order.
	Submit(ctx context.Context, id string) (*Response, error)

	// Delete removes a draft. Submitted orders cannot be deleted.
	Delete(ctx context.Context, id string) error

	// Preview computes totals for arbitrary inputs without persisting
	// anything.
	Preview(ctx context.Context, req PreviewRequest) (*PreviewResponse, error)
}

type ListRequest struct {
	StoreID string `form:"store_id"`
	Type    string `form:"type"`
	Status  string `form:"status"`
	SortBy  string `form:"sort_by"`
	OrderBy string `form:"order_by"`
}

type LineRequest struct {
	ProductID   string `json:"product_id"`
	Description string `json:"description"`

	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`

	DiscountMode       pricing.DiscountMode `json:"discount_mode"`
	DiscountPercentage decimal.Decimal      `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal      `json:"discount_amount"`

	TaxCodeID *string          `json:"tax_code_id,omitempty"`
	TaxRate   *decimal.Decimal `json:"tax_rate,omitempty"`
	WHTCodeID *string          `json:"wht_tax_code_id,omitempty"`

	PriceTaxInclusive bool `json:"price_tax_inclusive"`

	SerialNumbers []string   `json:"serial_numbers,omitempty"`
	BatchNumber   *string    `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

type CreateRequest struct {
	StoreID          string `json:"store_id"`
	Type             Type   `json:"type"`
	CounterpartyName string `json:"counterparty_name"`

	CurrencyID      *string          `json:"currency_id,omitempty"`
	ExchangeRate    *decimal.Decimal `json:"exchange_rate,omitempty"`
	PriceCategoryID *string          `json:"price_category_id,omitempty"`

	OrderDate       *time.Time `json:"order_date,omitempty"`
	ExpectedDate    *time.Time `json:"expected_date,omitempty"`
	ShippingAddress *string    `json:"shipping_address,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	Terms           *string    `json:"terms,omitempty"`

	Lines []LineRequest `json:"lines"`
}

type UpdateRequest struct {
	ID string `json:"id"`

	CounterpartyName *string          `json:"counterparty_name,omitempty"`
	CurrencyID       *string          `json:"currency_id,omitempty"`
	ExchangeRate     *decimal.Decimal `json:"exchange_rate,omitempty"`
	PriceCategoryID  *string          `json:"price_category_id,omitempty"`
	OrderDate        *time.Time       `json:"order_date,omitempty"`
	ExpectedDate     *time.Time       `json:"expected_date,omitempty"`
	ShippingAddress  *string          `json:"shipping_address,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	Terms            *string          `json:"terms,omitempty"`

	// Lines, when present, replaces the whole line set.
	Lines *[]LineRequest `json:"lines,omitempty"`
}

type PreviewRequest struct {
	ExchangeRate *decimal.Decimal `json:"exchange_rate,omitempty"`
	CurrencyID   *string          `json:"currency_id,omitempty"`
	Lines        []LineRequest    `json:"lines"`
}

type LineResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	Description string `json:"description"`

	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`

	DiscountMode       pricing.DiscountMode `json:"discount_mode"`
	DiscountPercentage decimal.Decimal      `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal      `json:"discount_amount"`

	TaxCodeID *string         `json:"tax_code_id,omitempty"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	WHTCodeID *string         `json:"wht_tax_code_id,omitempty"`
	WHTRate   decimal.Decimal `json:"wht_rate"`

	PriceTaxInclusive bool `json:"price_tax_inclusive"`

	SerialNumbers []string   `json:"serial_numbers,omitempty"`
	BatchNumber   *string    `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	Notes         *string    `json:"notes,omitempty"`

	Subtotal         decimal.Decimal `json:"subtotal"`
	LineDiscount     decimal.Decimal `json:"line_discount"`
	LineTax          decimal.Decimal `json:"line_tax"`
	LineWHT          decimal.Decimal `json:"line_wht"`
	LineTotal        decimal.Decimal `json:"line_total"`
	EquivalentAmount decimal.Decimal `json:"equivalent_amount"`
}

type TotalsResponse struct {
	Subtotal            decimal.Decimal `json:"subtotal"`
	TotalDiscount       decimal.Decimal `json:"total_discount"`
	TotalTax            decimal.Decimal `json:"total_tax"`
	TotalWHT            decimal.Decimal `json:"total_wht"`
	AmountAfterDiscount decimal.Decimal `json:"amount_after_discount"`
	AmountAfterWHT      decimal.Decimal `json:"amount_after_wht"`
	Total               decimal.Decimal `json:"total"`
	EquivalentTotal     decimal.Decimal `json:"equivalent_total"`
	EffectiveVATPercent decimal.Decimal `json:"effective_vat_percent"`
}

type Response struct {
	ID     string `json:"id"`
	Number string `json:"number"`

	StoreID string `json:"store_id"`
	Type    Type   `json:"type"`
	Status  Status `json:"status"`

	CounterpartyName string `json:"counterparty_name"`

	CurrencyID      *string         `json:"currency_id,omitempty"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	PriceCategoryID *string         `json:"price_category_id,omitempty"`

	OrderDate       time.Time  `json:"order_date"`
	ExpectedDate    *time.Time `json:"expected_date,omitempty"`
	ShippingAddress *string    `json:"shipping_address,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	Terms           *string    `json:"terms,omitempty"`

	Lines  []LineResponse `json:"lines"`
	Totals TotalsResponse `json:"totals"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type PreviewResponse struct {
	Lines  []LineResponse `json:"lines"`
	Totals TotalsResponse `json:"totals"`
}
