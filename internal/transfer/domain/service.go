package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)

	// Send moves a draft into transit.
	Send(ctx context.Context, id string) (*Response, error)

	// Receive records received quantities at the destination store. The
	// transfer stays in transit until every line is fully received.
	Receive(ctx context.Context, req ReceiveRequest) (*Response, error)

	// Delete removes a draft.
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	FromStoreID string `form:"from_store_id"`
	ToStoreID   string `form:"to_store_id"`
	Status      string `form:"status"`
	SortBy      string `form:"sort_by"`
	OrderBy     string `form:"order_by"`
}

type LineRequest struct {
	ProductID   string `json:"product_id"`
	Description string `json:"description"`

	Quantity decimal.Decimal `json:"quantity"`

	SerialNumbers []string   `json:"serial_numbers,omitempty"`
	BatchNumber   *string    `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
}

type CreateRequest struct {
	FromStoreID string        `json:"from_store_id"`
	ToStoreID   string        `json:"to_store_id"`
	Notes       *string       `json:"notes,omitempty"`
	Lines       []LineRequest `json:"lines"`
}

type ReceiveLineRequest struct {
	LineID           string          `json:"line_id"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// ReceiveRequest lists the quantities received in this delivery. An empty
// Lines slice receives every outstanding quantity in full.
type ReceiveRequest struct {
	ID    string               `json:"-"`
	Lines []ReceiveLineRequest `json:"lines"`
}

type LineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`

	ReceivedQuantity decimal.Decimal `json:"received_quantity"`

	SerialNumbers []string   `json:"serial_numbers,omitempty"`
	BatchNumber   *string    `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
}

type Response struct {
	ID     string `json:"id"`
	Number string `json:"number"`

	FromStoreID string `json:"from_store_id"`
	ToStoreID   string `json:"to_store_id"`

	Status Status  `json:"status"`
	Notes  *string `json:"notes,omitempty"`

	Lines []LineResponse `json:"lines"`

	SentAt     *time.Time `json:"sent_at,omitempty"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
