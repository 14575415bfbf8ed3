package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/retailgrid/orderdesk/internal/order/domain"
	"github.com/retailgrid/orderdesk/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) orderdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, order *orderdomain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(stmt *gorm.DB) *gorm.DB {
			return stmt.Order("id ASC")
		}).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter orderdomain.ListRequest) ([]orderdomain.Order, error) {
	var items []orderdomain.Order
	stmt := r.db.WithContext(ctx).Model(&orderdomain.Order{})

	if filter.StoreID != "" {
		stmt = stmt.Where("store_id = ?", filter.StoreID)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"order_date": true,
		"number":     true,
		"total":      true,
	})).Apply(stmt)

	if err := stmt.Preload("Lines").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Replace(ctx context.Context, order *orderdomain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&orderdomain.LineItem{}).Error; err != nil {
			return err
		}

		lines := order.Lines
		order.Lines = nil
		if err := tx.Model(&orderdomain.Order{}).
			Where("id = ?", order.ID).
			Select("*").
			Omit("id", "number", "created_at").
			Updates(order).Error; err != nil {
			return err
		}
		order.Lines = lines

		if len(order.Lines) > 0 {
			if err := tx.Create(&order.Lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) UpdateStatus(ctx context.Context, order *orderdomain.Order) error {
	return r.db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"submitted_at": order.SubmittedAt,
			"updated_at":   order.UpdatedAt,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&orderdomain.LineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&orderdomain.Order{}, "id = ?", id).Error
	})
}
