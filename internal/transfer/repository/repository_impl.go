package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	transferdomain "github.com/retailgrid/orderdesk/internal/transfer/domain"
	"github.com/retailgrid/orderdesk/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) transferdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, transfer *transferdomain.Transfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*transferdomain.Transfer, error) {
	var transfer transferdomain.Transfer
	err := r.db.WithContext(ctx).
		Preload("Lines", func(stmt *gorm.DB) *gorm.DB {
			return stmt.Order("id ASC")
		}).
		First(&transfer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *repository) List(ctx context.Context, filter transferdomain.ListRequest) ([]transferdomain.Transfer, error) {
	var items []transferdomain.Transfer
	stmt := r.db.WithContext(ctx).Model(&transferdomain.Transfer{})

	if filter.FromStoreID != "" {
		stmt = stmt.Where("from_store_id = ?", filter.FromStoreID)
	}
	if filter.ToStoreID != "" {
		stmt = stmt.Where("to_store_id = ?", filter.ToStoreID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"number":     true,
	})).Apply(stmt)

	if err := stmt.Preload("Lines").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateStatus(ctx context.Context, transfer *transferdomain.Transfer) error {
	return r.db.WithContext(ctx).
		Model(&transferdomain.Transfer{}).
		Where("id = ?", transfer.ID).
		Updates(map[string]interface{}{
			"status":      transfer.Status,
			"sent_at":     transfer.SentAt,
			"received_at": transfer.ReceivedAt,
			"updated_at":  transfer.UpdatedAt,
		}).Error
}

func (r *repository) UpdateReceipt(ctx context.Context, transfer *transferdomain.Transfer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&transferdomain.Transfer{}).
			Where("id = ?", transfer.ID).
			Updates(map[string]interface{}{
				"status":      transfer.Status,
				"received_at": transfer.ReceivedAt,
				"updated_at":  transfer.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		for i := range transfer.Lines {
			line := &transfer.Lines[i]
			if err := tx.Model(&transferdomain.TransferLine{}).
				Where("id = ?", line.ID).
				Updates(map[string]interface{}{
					"received_quantity": line.ReceivedQuantity,
					"updated_at":        line.UpdatedAt,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transfer_id = ?", id).Delete(&transferdomain.TransferLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&transferdomain.Transfer{}, "id = ?", id).Error
	})
}
