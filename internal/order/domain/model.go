package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/retailgrid/orderdesk/internal/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Type distinguishes sales orders from purchasing orders. Both share the
// same pricing semantics.
type Type string

const (
	TypeSales    Type = "SALES"
	TypePurchase Type = "PURCHASE"
)

// Status is the order lifecycle. A DRAFT can be edited freely; a
// SUBMITTED order is immutable.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
)

const maxLineNotesLen = 200

type Order struct {
	ID     snowflake.ID `gorm:"primaryKey"`
	Number string       `gorm:"type:text;not null;uniqueIndex"`

	StoreID snowflake.ID `gorm:"column:store_id;not null;index"`

	Type   Type   `gorm:"type:text;not null"`
	Status Status `gorm:"type:text;not null;default:'DRAFT'"`

	// CounterpartyName is the customer (sales) or supplier (purchase).
	CounterpartyName string `gorm:"column:counterparty_name;type:text;not null"`

	CurrencyID      *snowflake.ID   `gorm:"column:currency_id"`
	ExchangeRate    decimal.Decimal `gorm:"column:exchange_rate;type:decimal(18,8);not null"`
	PriceCategoryID *snowflake.ID   `gorm:"column:price_category_id"`

	OrderDate       time.Time  `gorm:"column:order_date;not null"`
	ExpectedDate    *time.Time `gorm:"column:expected_date"`
	ShippingAddress *string    `gorm:"type:text"`
	Notes           *string    `gorm:"type:text"`
	Terms           *string    `gorm:"type:text"`

	Subtotal            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalDiscount       decimal.Decimal `gorm:"column:total_discount;type:decimal(18,4);not null"`
	TotalTax            decimal.Decimal `gorm:"column:total_tax;type:decimal(18,4);not null"`
	TotalWHT            decimal.Decimal `gorm:"column:total_wht;type:decimal(18,4);not null"`
	AmountAfterDiscount decimal.Decimal `gorm:"column:amount_after_discount;type:decimal(18,4);not null"`
	AmountAfterWHT      decimal.Decimal `gorm:"column:amount_after_wht;type:decimal(18,4);not null"`
	Total               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EquivalentTotal     decimal.Decimal `gorm:"column:equivalent_total;type:decimal(18,4);not null"`

	SubmittedAt *time.Time `gorm:"column:submitted_at"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Lines []LineItem `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// LineItem is one immutable order row. The discount mode, tax code, and
// withholding code live on the line itself; derived amounts are
// recomputed from the inputs on every edit and persisted alongside them.
type LineItem struct {
	ID      snowflake.ID `gorm:"primaryKey"`
	OrderID snowflake.ID `gorm:"column:order_id;not null;index"`

	ProductID   snowflake.ID `gorm:"column:product_id;not null"`
	Description string       `gorm:"type:text;not null"`

	Quantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	// UnitPrice is always the tax-exclusive base price per unit.
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(18,4);not null"`

	DiscountMode       pricing.DiscountMode `gorm:"column:discount_mode;type:text;not null"`
	DiscountPercentage decimal.Decimal      `gorm:"column:discount_percentage;type:decimal(8,4);not null"`
	DiscountAmount     decimal.Decimal      `gorm:"column:discount_amount;type:decimal(18,4);not null"`

	TaxCodeID *snowflake.ID   `gorm:"column:tax_code_id"`
	TaxRate   decimal.Decimal `gorm:"column:tax_rate;type:decimal(8,4);not null"`
	WHTCodeID *snowflake.ID   `gorm:"column:wht_code_id"`
	WHTRate   decimal.Decimal `gorm:"column:wht_rate;type:decimal(8,4);not null"`

	// PriceTaxInclusive records how the product displayed its price when
	// the line was created. Never re-applied in calculation.
	PriceTaxInclusive bool `gorm:"column:price_tax_inclusive;not null;default:false"`

	SerialNumbers datatypes.JSONSlice[string] `gorm:"column:serial_numbers"`
	BatchNumber   *string                     `gorm:"column:batch_number;type:text"`
	ExpiryDate    *time.Time                  `gorm:"column:expiry_date"`
	Notes         *string                     `gorm:"type:text"`

	Subtotal         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Tax              decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WHT              decimal.Decimal `gorm:"column:wht;type:decimal(18,4);not null"`
	Total            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EquivalentAmount decimal.Decimal `gorm:"column:equivalent_amount;type:decimal(18,4);not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LineItem) TableName() string { return "order_line_items" }

// ValidateForSubmit enforces the strict line rules gating submission.
// Drafts tolerate transiently invalid values; submission does not.
func (l *LineItem) ValidateForSubmit() error {
	if l.ProductID == 0 {
		return ErrInvalidProduct
	}
	if !l.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if l.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if l.DiscountPercentage.IsNegative() || l.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidDiscount
	}
	if l.DiscountAmount.IsNegative() || l.DiscountAmount.GreaterThan(l.Quantity.Mul(l.UnitPrice)) {
		return ErrInvalidDiscount
	}
	if l.Notes != nil && len(*l.Notes) > maxLineNotesLen {
		return ErrNotesTooLong
	}
	return nil
}

// FilterSerialNumbers drops empty and whitespace-only entries while
// preserving order.
func FilterSerialNumbers(serials []string) []string {
	filtered := make([]string, 0, len(serials))
	for _, serial := range serials {
		trimmed := strings.TrimSpace(serial)
		if trimmed == "" {
			continue
		}
		filtered = append(filtered, trimmed)
	}
	return filtered
}
