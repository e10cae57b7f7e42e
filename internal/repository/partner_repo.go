package repository

import (
	"context"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PartnerRepository interface {
	Create(ctx context.Context, partner *model.Partner) error
	Save(ctx context.Context, partner *model.Partner) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Partner, error)
	List(ctx context.Context) ([]model.Partner, error)
	ListActive(ctx context.Context) ([]model.Partner, error)
	SumActiveShares(ctx context.Context) (decimal.Decimal, error)
}

type partnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) Create(ctx context.Context, partner *model.Partner) error {
	return GetDB(ctx, r.db).Create(partner).Error
}

func (r *partnerRepository) Save(ctx context.Context, partner *model.Partner) error {
	return GetDB(ctx, r.db).Save(partner).Error
}

func (r *partnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	var partner model.Partner
	if err := GetDB(ctx, r.db).First(&partner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) List(ctx context.Context) ([]model.Partner, error) {
	var partners []model.Partner
	if err := GetDB(ctx, r.db).Order("name").Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *partnerRepository) ListActive(ctx context.Context) ([]model.Partner, error) {
	var partners []model.Partner
	if err := GetDB(ctx, r.db).
		Where("is_active = ?", true).
		Order("name").Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *partnerRepository) SumActiveShares(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.Partner{}).
		Select("COALESCE(SUM(share_percentage), 0) AS total").
		Where("is_active = ?", true).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

type DistributionRepository interface {
	// GetOrCreate keeps week closing idempotent per (week, partner).
	GetOrCreate(ctx context.Context, distribution *model.PartnerDistribution) (*model.PartnerDistribution, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PartnerDistribution, error)
	Save(ctx context.Context, distribution *model.PartnerDistribution) error
	ListByWeek(ctx context.Context, weekID uuid.UUID) ([]model.PartnerDistribution, error)
}

type distributionRepository struct {
	db *gorm.DB
}

func NewDistributionRepository(db *gorm.DB) DistributionRepository {
	return &distributionRepository{db: db}
}

func (r *distributionRepository) GetOrCreate(ctx context.Context, distribution *model.PartnerDistribution) (*model.PartnerDistribution, error) {
	var existing model.PartnerDistribution
	err := GetDB(ctx, r.db).
		Where(model.PartnerDistribution{
			FinancialWeekID: distribution.FinancialWeekID,
			PartnerID:       distribution.PartnerID,
		}).
		Attrs(model.PartnerDistribution{
			SharePercentage: distribution.SharePercentage,
			GrossAmount:     distribution.GrossAmount,
			Status:          model.DistributionPending,
		}).
		FirstOrCreate(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *distributionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PartnerDistribution, error) {
	var distribution model.PartnerDistribution
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Partner").Preload("FinancialWeek").
		First(&distribution, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &distribution, nil
}

func (r *distributionRepository) Save(ctx context.Context, distribution *model.PartnerDistribution) error {
	return GetDB(ctx, r.db).Save(distribution).Error
}

func (r *distributionRepository) ListByWeek(ctx context.Context, weekID uuid.UUID) ([]model.PartnerDistribution, error) {
	var distributions []model.PartnerDistribution
	if err := GetDB(ctx, r.db).
		Preload("Partner").
		Where("financial_week_id = ?", weekID).
		Order("created_at").
		Find(&distributions).Error; err != nil {
		return nil, err
	}
	return distributions, nil
}
