package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TrackingMode declares how inventory for a product is identified.
type TrackingMode string

const (
	TrackingNone   TrackingMode = "NONE"
	TrackingSerial TrackingMode = "SERIAL"
	TrackingBatch  TrackingMode = "BATCH"
)

type Product struct {
	ID snowflake.ID `gorm:"primaryKey"`

	Code        string  `gorm:"type:text;not null;uniqueIndex"`
	Name        string  `gorm:"type:text;not null"`
	Description *string `gorm:"type:text"`

	SellingPrice decimal.Decimal `gorm:"column:selling_price;type:decimal(18,4);not null"`
	AverageCost  decimal.Decimal `gorm:"column:average_cost;type:decimal(18,4);not null"`

	// PriceTaxInclusive marks the selling price as already containing VAT
	// at the default tax code's rate. Order lines always store the
	// tax-exclusive base price; the flag is kept for display and audit.
	PriceTaxInclusive bool `gorm:"column:price_tax_inclusive;not null;default:false"`

	DefaultTaxCodeID *snowflake.ID `gorm:"column:default_tax_code_id"`
	DefaultWHTCodeID *snowflake.ID `gorm:"column:default_wht_code_id"`

	TrackingMode TrackingMode `gorm:"column:tracking_mode;type:text;not null;default:'NONE'"`

	IsActive bool              `gorm:"column:is_active;not null;default:true"`
	Metadata datatypes.JSONMap `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.Code == "" {
		return ErrInvalidCode
	}
	if p.SellingPrice.IsNegative() || p.AverageCost.IsNegative() {
		return ErrInvalidPrice
	}
	switch p.TrackingMode {
	case TrackingNone, TrackingSerial, TrackingBatch:
	default:
		return ErrInvalidTracking
	}
	return nil
}
