package repository

import (
	"context"
	"time"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FinancialWeekRepository interface {
	// GetOrCreate finds the (year, week) row or creates it open with the
	// given Monday–Sunday span.
	GetOrCreate(ctx context.Context, year, weekNumber int, start, end time.Time) (*model.FinancialWeek, error)
	FindByYearWeek(ctx context.Context, year, weekNumber int) (*model.FinancialWeek, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FinancialWeek, error)
	Save(ctx context.Context, week *model.FinancialWeek) error
	ListClosed(ctx context.Context, page, limit int) ([]model.FinancialWeek, int64, error)
	SumClosedSavings(ctx context.Context) (decimal.Decimal, error)
}

type financialWeekRepository struct {
	db *gorm.DB
}

func NewFinancialWeekRepository(db *gorm.DB) FinancialWeekRepository {
	return &financialWeekRepository{db: db}
}

func (r *financialWeekRepository) GetOrCreate(ctx context.Context, year, weekNumber int, start, end time.Time) (*model.FinancialWeek, error) {
	var week model.FinancialWeek
	err := GetDB(ctx, r.db).
		Where(model.FinancialWeek{Year: year, WeekNumber: weekNumber}).
		Attrs(model.FinancialWeek{StartDate: start, EndDate: end, Status: model.WeekOpen}).
		FirstOrCreate(&week).Error
	if err != nil {
		return nil, err
	}
	return &week, nil
}

func (r *financialWeekRepository) FindByYearWeek(ctx context.Context, year, weekNumber int) (*model.FinancialWeek, error) {
	var week model.FinancialWeek
	if err := GetDB(ctx, r.db).
		First(&week, "year = ? AND week_number = ?", year, weekNumber).Error; err != nil {
		return nil, err
	}
	return &week, nil
}

func (r *financialWeekRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FinancialWeek, error) {
	var week model.FinancialWeek
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&week, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &week, nil
}

func (r *financialWeekRepository) Save(ctx context.Context, week *model.FinancialWeek) error {
	return GetDB(ctx, r.db).Save(week).Error
}

func (r *financialWeekRepository) ListClosed(ctx context.Context, page, limit int) ([]model.FinancialWeek, int64, error) {
	var weeks []model.FinancialWeek
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.FinancialWeek{}).
		Where("status = ?", model.WeekClosed).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("status = ?", model.WeekClosed).
		Order("year desc, week_number desc").
		Offset(offset).Limit(limit).Find(&weeks).Error; err != nil {
		return nil, 0, err
	}

	return weeks, total, nil
}

func (r *financialWeekRepository) SumClosedSavings(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.FinancialWeek{}).
		Select("COALESCE(SUM(savings_amount), 0) AS total").
		Where("status = ?", model.WeekClosed).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
