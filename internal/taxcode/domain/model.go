package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// TaxCode is a named tax rate applied to order lines. Withholding codes
// are resolved separately from VAT codes so a line can carry both.
//
// NOTE:
// - code is a stable identifier (immutable once created)
// - name/description are UI-facing and editable
type TaxCode struct {
	ID snowflake.ID `gorm:"primaryKey"`

	Code string `gorm:"type:text;not null;uniqueIndex"`
	Name string `gorm:"type:text;not null"`

	// Rate is a percentage (18 means 18%), not a fraction.
	Rate decimal.Decimal `gorm:"type:decimal(8,4);not null"`

	IsWithholding bool `gorm:"column:is_withholding;not null;default:false"`
	IsActive      bool `gorm:"column:is_active;not null;default:true"`

	Description *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TaxCode) TableName() string { return "tax_codes" }

func (t *TaxCode) Validate() error {
	if t.Code == "" {
		return ErrInvalidCode
	}
	if t.Name == "" {
		return ErrInvalidName
	}
	if t.Rate.IsNegative() {
		return ErrInvalidRate
	}
	return nil
}
