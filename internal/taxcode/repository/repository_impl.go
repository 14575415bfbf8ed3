package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/retailgrid/orderdesk/internal/taxcode/domain"
	"github.com/retailgrid/orderdesk/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) taxdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, code *taxdomain.TaxCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*taxdomain.TaxCode, error) {
	var code taxdomain.TaxCode
	err := r.db.WithContext(ctx).First(&code, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) FindByCode(ctx context.Context, value string) (*taxdomain.TaxCode, error) {
	var code taxdomain.TaxCode
	err := r.db.WithContext(ctx).First(&code, "code = ?", value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) List(ctx context.Context, filter taxdomain.ListRequest) ([]taxdomain.TaxCode, error) {
	var items []taxdomain.TaxCode
	stmt := r.db.WithContext(ctx).Model(&taxdomain.TaxCode{})

	if filter.Code != "" {
		stmt = stmt.Where("code = ?", filter.Code)
	}
	if filter.IsWithholding != nil {
		stmt = stmt.Where("is_withholding = ?", *filter.IsWithholding)
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

func (r *repository) Update(ctx context.Context, code *taxdomain.TaxCode) error {
	return r.db.WithContext(ctx).
		Model(&taxdomain.TaxCode{}).
		Where("id = ?", code.ID).
		Updates(map[string]interface{}{
			"name":        code.Name,
			"rate":        code.Rate,
			"description": code.Description,
			"is_active":   code.IsActive,
			"updated_at":  code.UpdatedAt,
		}).Error
}
