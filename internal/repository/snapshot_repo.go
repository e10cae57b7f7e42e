package repository

import (
	"context"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *model.OrderFinancialSnapshot) error
	// ExistsForStatus is the double-counting guard: a FinancialStatus gets at
	// most one snapshot ever, regardless of which week tries to claim it.
	ExistsForStatus(ctx context.Context, statusID uuid.UUID) (bool, error)
	ListByWeek(ctx context.Context, weekID uuid.UUID) ([]model.OrderFinancialSnapshot, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *model.OrderFinancialSnapshot) error {
	return GetDB(ctx, r.db).Create(snapshot).Error
}

func (r *snapshotRepository) ExistsForStatus(ctx context.Context, statusID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.OrderFinancialSnapshot{}).
		Where("financial_status_id = ?", statusID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *snapshotRepository) ListByWeek(ctx context.Context, weekID uuid.UUID) ([]model.OrderFinancialSnapshot, error) {
	var snapshots []model.OrderFinancialSnapshot
	if err := GetDB(ctx, r.db).
		Preload("FinancialStatus").
		Preload("FinancialStatus.Order").
		Preload("FinancialStatus.InternalOrder").
		Where("financial_week_id = ?", weekID).
		Order("created_at").
		Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}
