package repository

import (
	"context"
	"fmt"
	"time"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FinancialStatusRepository interface {
	Create(ctx context.Context, status *model.FinancialStatus) error
	Save(ctx context.Context, status *model.FinancialStatus) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FinancialStatus, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FinancialStatus, error)
	FindByOrder(ctx context.Context, kind string, orderID uuid.UUID) (*model.FinancialStatus, error)
	List(ctx context.Context, state string, page, limit int) ([]model.FinancialStatus, int64, error)
	// ListCollectedBetween returns statuses collected inside [start, end]
	// (dates, inclusive), orders preloaded.
	ListCollectedBetween(ctx context.Context, start, end time.Time) ([]model.FinancialStatus, error)
	SumCollectedBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
}

type financialStatusRepository struct {
	db *gorm.DB
}

func NewFinancialStatusRepository(db *gorm.DB) FinancialStatusRepository {
	return &financialStatusRepository{db: db}
}

func (r *financialStatusRepository) Create(ctx context.Context, status *model.FinancialStatus) error {
	return GetDB(ctx, r.db).Create(status).Error
}

func (r *financialStatusRepository) Save(ctx context.Context, status *model.FinancialStatus) error {
	return GetDB(ctx, r.db).Save(status).Error
}

func (r *financialStatusRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FinancialStatus, error) {
	var status model.FinancialStatus
	if err := GetDB(ctx, r.db).
		Preload("Order").Preload("Order.Items").Preload("Order.Items.Variant").
		Preload("InternalOrder").Preload("InternalOrder.Items").Preload("InternalOrder.Items.Variant").
		First(&status, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *financialStatusRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FinancialStatus, error) {
	var status model.FinancialStatus
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&status, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *financialStatusRepository) FindByOrder(ctx context.Context, kind string, orderID uuid.UUID) (*model.FinancialStatus, error) {
	var status model.FinancialStatus
	db := GetDB(ctx, r.db)
	var err error
	switch kind {
	case model.OrderKindCatalog:
		err = db.First(&status, "order_id = ?", orderID).Error
	case model.OrderKindInternal:
		err = db.First(&status, "internal_order_id = ?", orderID).Error
	default:
		return nil, fmt.Errorf("unknown order kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *financialStatusRepository) List(ctx context.Context, state string, page, limit int) ([]model.FinancialStatus, int64, error) {
	var statuses []model.FinancialStatus
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.FinancialStatus{})
	if state != "" {
		query = query.Where("state = ?", state)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Preload("Order").Preload("InternalOrder")
	if state != "" {
		fetch = fetch.Where("state = ?", state)
	}
	if err := fetch.Order("created_at desc").Offset(offset).Limit(limit).Find(&statuses).Error; err != nil {
		return nil, 0, err
	}

	return statuses, total, nil
}

func (r *financialStatusRepository) ListCollectedBetween(ctx context.Context, start, end time.Time) ([]model.FinancialStatus, error) {
	var statuses []model.FinancialStatus
	if err := GetDB(ctx, r.db).
		Preload("Order").Preload("InternalOrder").
		Where("state = ?", model.StateCollected).
		Where("collected_at >= ? AND collected_at < ?", start, end.AddDate(0, 0, 1)).
		Order("collected_at").
		Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *financialStatusRepository) SumCollectedBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.FinancialStatus{}).
		Select("COALESCE(SUM(sale_amount), 0) AS total").
		Where("state = ?", model.StateCollected).
		Where("collected_at >= ? AND collected_at < ?", start, end.AddDate(0, 0, 1)).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
