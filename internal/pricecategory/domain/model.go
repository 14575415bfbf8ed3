package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PriceCategory groups customers or channels that buy at a negotiated
// price list (wholesale, walk-in, members).
type PriceCategory struct {
	ID snowflake.ID `gorm:"primaryKey"`

	Name        string  `gorm:"type:text;not null;uniqueIndex"`
	Description *string `gorm:"type:text"`
	IsActive    bool    `gorm:"column:is_active;not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PriceCategory) TableName() string { return "price_categories" }

// CategoryPrice overrides a product's selling price within one category.
type CategoryPrice struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	CategoryID snowflake.ID `gorm:"column:category_id;not null;uniqueIndex:ux_category_prices_cat_product,priority:1"`
	ProductID  snowflake.ID `gorm:"column:product_id;not null;uniqueIndex:ux_category_prices_cat_product,priority:2"`

	Price decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CategoryPrice) TableName() string { return "category_prices" }
