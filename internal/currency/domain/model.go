package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Currency struct {
	ID snowflake.ID `gorm:"primaryKey"`

	// Code is the ISO 4217 alphabetic code.
	Code   string `gorm:"type:text;not null;uniqueIndex"`
	Name   string `gorm:"type:text;not null"`
	Symbol string `gorm:"type:text;not null"`

	DecimalPlaces int `gorm:"column:decimal_places;not null;default:2"`

	// IsBase marks the system default currency. Equivalent amounts are
	// expressed in this currency.
	IsBase   bool `gorm:"column:is_base;not null;default:false"`
	IsActive bool `gorm:"column:is_active;not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Currency) TableName() string { return "currencies" }

type ExchangeRate struct {
	ID snowflake.ID `gorm:"primaryKey"`

	FromCurrencyID snowflake.ID `gorm:"column:from_currency_id;not null;uniqueIndex:ux_exchange_rates_pair,priority:1"`
	ToCurrencyID   snowflake.ID `gorm:"column:to_currency_id;not null;uniqueIndex:ux_exchange_rates_pair,priority:2"`

	Rate decimal.Decimal `gorm:"type:decimal(18,8);not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ExchangeRate) TableName() string { return "exchange_rates" }
