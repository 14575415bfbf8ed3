package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status is the transfer lifecycle. DRAFT transfers are editable; SENT
// marks stock in motion; RECEIVED closes the transfer at the
// destination store.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusReceived Status = "RECEIVED"
)

type Transfer struct {
	ID     snowflake.ID `gorm:"primaryKey"`
	Number string       `gorm:"type:text;not null;uniqueIndex"`

	FromStoreID snowflake.ID `gorm:"column:from_store_id;not null;index"`
	ToStoreID   snowflake.ID `gorm:"column:to_store_id;not null;index"`

	Status Status  `gorm:"type:text;not null;default:'DRAFT'"`
	Notes  *string `gorm:"type:text"`

	SentAt     *time.Time `gorm:"column:sent_at"`
	ReceivedAt *time.Time `gorm:"column:received_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Lines []TransferLine `gorm:"foreignKey:TransferID"`
}

func (Transfer) TableName() string { return "transfers" }

type TransferLine struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	TransferID snowflake.ID `gorm:"column:transfer_id;not null;index"`

	ProductID   snowflake.ID    `gorm:"column:product_id;not null"`
	Description string          `gorm:"type:text;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	// ReceivedQuantity accumulates across partial deliveries; the
	// transfer closes once every line reaches its sent quantity.
	ReceivedQuantity decimal.Decimal `gorm:"column:received_quantity;type:decimal(18,4);not null;default:0"`

	SerialNumbers datatypes.JSONSlice[string] `gorm:"column:serial_numbers"`
	BatchNumber   *string                     `gorm:"column:batch_number;type:text"`
	ExpiryDate    *time.Time                  `gorm:"column:expiry_date"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TransferLine) TableName() string { return "transfer_lines" }

func (l *TransferLine) Validate() error {
	if l.ProductID == 0 {
		return ErrInvalidProduct
	}
	if !l.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	return nil
}
