package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	currencydomain "github.com/retailgrid/orderdesk/internal/currency/domain"
	"github.com/retailgrid/orderdesk/pkg/db/option"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) currencydomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, currency *currencydomain.Currency) error {
	return r.db.WithContext(ctx).Create(currency).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*currencydomain.Currency, error) {
	var currency currencydomain.Currency
	err := r.db.WithContext(ctx).First(&currency, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*currencydomain.Currency, error) {
	var currency currencydomain.Currency
	err := r.db.WithContext(ctx).First(&currency, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

func (r *repository) FindBase(ctx context.Context) (*currencydomain.Currency, error) {
	var currency currencydomain.Currency
	err := r.db.WithContext(ctx).First(&currency, "is_base = ?", true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

func (r *repository) List(ctx context.Context, filter currencydomain.ListRequest) ([]currencydomain.Currency, error) {
	var items []currencydomain.Currency
	stmt := r.db.WithContext(ctx).Model(&currencydomain.Currency{})

	if filter.Code != "" {
		stmt = stmt.Where("code = ?", filter.Code)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"code":       true,
		"name":       true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, currency *currencydomain.Currency) error {
	return r.db.WithContext(ctx).
		Model(&currencydomain.Currency{}).
		Where("id = ?", currency.ID).
		Updates(map[string]interface{}{
			"name":           currency.Name,
			"symbol":         currency.Symbol,
			"decimal_places": currency.DecimalPlaces,
			"is_active":      currency.IsActive,
			"updated_at":     currency.UpdatedAt,
		}).Error
}

func (r *repository) UpsertRate(ctx context.Context, rate *currencydomain.ExchangeRate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_currency_id"}, {Name: "to_currency_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
		}).
		Create(rate).Error
}

func (r *repository) FindRate(ctx context.Context, fromID, toID snowflake.ID) (*currencydomain.ExchangeRate, error) {
	var rate currencydomain.ExchangeRate
	err := r.db.WithContext(ctx).
		First(&rate, "from_currency_id = ? AND to_currency_id = ?", fromID, toID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repository) ListRates(ctx context.Context, fromID snowflake.ID) ([]currencydomain.ExchangeRate, error) {
	var items []currencydomain.ExchangeRate
	err := r.db.WithContext(ctx).
		Where("from_currency_id = ?", fromID).
		Order("to_currency_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
