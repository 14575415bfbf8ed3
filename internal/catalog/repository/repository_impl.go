package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/retailgrid/orderdesk/internal/catalog/domain"
	"github.com/retailgrid/orderdesk/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) catalogdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, product *catalogdomain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*catalogdomain.Product, error) {
	var product catalogdomain.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*catalogdomain.Product, error) {
	var product catalogdomain.Product
	err := r.db.WithContext(ctx).First(&product, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filter catalogdomain.ListRequest) ([]*catalogdomain.Product, error) {
	var items []*catalogdomain.Product
	stmt := r.db.WithContext(ctx).Model(&catalogdomain.Product{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		stmt = stmt.Where("name LIKE ? OR code LIKE ?", pattern, pattern)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Cursor != nil && filter.Cursor.ID != "" {
		stmt = stmt.Where("id > ?", filter.Cursor.ID)
	}

	if filter.Limit > 0 {
		// One extra row signals has-more to the pagination helper.
		stmt = stmt.Limit(filter.Limit + 1)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"id":         true,
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

func (r *repository) Update(ctx context.Context, product *catalogdomain.Product) error {
	return r.db.WithContext(ctx).
		Model(&catalogdomain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":                product.Name,
			"description":         product.Description,
			"selling_price":       product.SellingPrice,
			"average_cost":        product.AverageCost,
			"price_tax_inclusive": product.PriceTaxInclusive,
			"default_tax_code_id": product.DefaultTaxCodeID,
			"default_wht_code_id": product.DefaultWHTCodeID,
			"tracking_mode":       product.TrackingMode,
			"is_active":           product.IsActive,
			"updated_at":          product.UpdatedAt,
		}).Error
}
