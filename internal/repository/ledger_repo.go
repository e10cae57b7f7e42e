package repository

import (
	"context"
	"time"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerRepository interface {
	CreateEntry(ctx context.Context, entry *model.LedgerEntry) error
	ListEntries(ctx context.Context, page, limit int) ([]model.LedgerEntry, int64, error)
	ListEntriesByWeek(ctx context.Context, weekID uuid.UUID) ([]model.LedgerEntry, error)

	CreateCategory(ctx context.Context, category *model.TransactionCategory) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*model.TransactionCategory, error)
	GetOrCreateCategory(ctx context.Context, name, transactionType string) (*model.TransactionCategory, error)
	ListCategories(ctx context.Context) ([]model.TransactionCategory, error)

	// SumFixedCosts totals expense entries in fixed-cost categories with an
	// entry date inside [start, end] (inclusive).
	SumFixedCosts(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateEntry(ctx context.Context, entry *model.LedgerEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *ledgerRepository) ListEntries(ctx context.Context, page, limit int) ([]model.LedgerEntry, int64, error) {
	var entries []model.LedgerEntry
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.LedgerEntry{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Category").Preload("Account").
		Order("entry_date desc, created_at desc").
		Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *ledgerRepository) ListEntriesByWeek(ctx context.Context, weekID uuid.UUID) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	if err := GetDB(ctx, r.db).Preload("Category").Preload("Account").
		Where("financial_week_id = ?", weekID).
		Order("created_at").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ledgerRepository) CreateCategory(ctx context.Context, category *model.TransactionCategory) error {
	return GetDB(ctx, r.db).Create(category).Error
}

func (r *ledgerRepository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*model.TransactionCategory, error) {
	var category model.TransactionCategory
	if err := GetDB(ctx, r.db).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *ledgerRepository) GetOrCreateCategory(ctx context.Context, name, transactionType string) (*model.TransactionCategory, error) {
	var category model.TransactionCategory
	err := GetDB(ctx, r.db).
		Where(model.TransactionCategory{Name: name}).
		Attrs(model.TransactionCategory{TransactionType: transactionType}).
		FirstOrCreate(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *ledgerRepository) ListCategories(ctx context.Context) ([]model.TransactionCategory, error) {
	var categories []model.TransactionCategory
	if err := GetDB(ctx, r.db).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *ledgerRepository) SumFixedCosts(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.LedgerEntry{}).
		Select("COALESCE(SUM(ledger_entries.amount), 0) AS total").
		Joins("JOIN transaction_categories ON transaction_categories.id = ledger_entries.category_id").
		Where("transaction_categories.is_fixed_cost = ?", true).
		Where("transaction_categories.transaction_type = ?", model.CategoryTypeExpense).
		Where("ledger_entries.entry_date BETWEEN ? AND ?", start, end).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
