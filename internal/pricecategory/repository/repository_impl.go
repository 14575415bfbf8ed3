package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	pcdomain "github.com/retailgrid/orderdesk/internal/pricecategory/domain"
	"github.com/retailgrid/orderdesk/pkg/db/option"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) pcdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, category *pcdomain.PriceCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*pcdomain.PriceCategory, error) {
	var category pcdomain.PriceCategory
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) List(ctx context.Context, filter pcdomain.ListRequest) ([]pcdomain.PriceCategory, error) {
	var items []pcdomain.PriceCategory
	stmt := r.db.WithContext(ctx).Model(&pcdomain.PriceCategory{})

	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, category *pcdomain.PriceCategory) error {
	return r.db.WithContext(ctx).
		Model(&pcdomain.PriceCategory{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"description": category.Description,
			"is_active":   category.IsActive,
			"updated_at":  category.UpdatedAt,
		}).Error
}

func (r *repository) UpsertPrice(ctx context.Context, price *pcdomain.CategoryPrice) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
		}).
		Create(price).Error
}

func (r *repository) FindPrice(ctx context.Context, categoryID, productID snowflake.ID) (*pcdomain.CategoryPrice, error) {
	var price pcdomain.CategoryPrice
	err := r.db.WithContext(ctx).
		First(&price, "category_id = ? AND product_id = ?", categoryID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *repository) ListPrices(ctx context.Context, categoryID snowflake.ID) ([]pcdomain.CategoryPrice, error) {
	var items []pcdomain.CategoryPrice
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("product_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) DeletePrice(ctx context.Context, categoryID, productID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("category_id = ? AND product_id = ?", categoryID, productID).
		Delete(&pcdomain.CategoryPrice{}).Error
}
