package repository

import (
	"context"
	"fmt"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CostingRepository interface {
	CreateCostType(ctx context.Context, costType *model.CostType) error
	FindCostTypeByID(ctx context.Context, id uuid.UUID) (*model.CostType, error)
	ListCostTypes(ctx context.Context) ([]model.CostType, error)

	CreateRule(ctx context.Context, rule *model.ProductCostRule) error
	// ListRulesForProductType returns active-cost-type rules in display
	// order, cost types preloaded.
	ListRulesForProductType(ctx context.Context, productType string) ([]model.ProductCostRule, error)
	ListRules(ctx context.Context) ([]model.ProductCostRule, error)

	CreateBreakdown(ctx context.Context, breakdown *model.OrderCostBreakdown) error
	FindBreakdownByID(ctx context.Context, id uuid.UUID) (*model.OrderCostBreakdown, error)
	SaveBreakdown(ctx context.Context, breakdown *model.OrderCostBreakdown) error
	ListBreakdownsForOrder(ctx context.Context, kind string, orderID uuid.UUID) ([]model.OrderCostBreakdown, error)
	// DeleteAutoBreakdowns removes non-manual lines ahead of a recompute;
	// manual lines are never touched.
	DeleteAutoBreakdowns(ctx context.Context, kind string, orderID uuid.UUID) error
	SumBreakdownsForOrder(ctx context.Context, kind string, orderID uuid.UUID) (decimal.Decimal, error)
	SumManualBreakdownsForOrder(ctx context.Context, kind string, orderID uuid.UUID) (decimal.Decimal, error)
}

type costingRepository struct {
	db *gorm.DB
}

func NewCostingRepository(db *gorm.DB) CostingRepository {
	return &costingRepository{db: db}
}

func (r *costingRepository) CreateCostType(ctx context.Context, costType *model.CostType) error {
	return GetDB(ctx, r.db).Create(costType).Error
}

func (r *costingRepository) FindCostTypeByID(ctx context.Context, id uuid.UUID) (*model.CostType, error) {
	var costType model.CostType
	if err := GetDB(ctx, r.db).First(&costType, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &costType, nil
}

func (r *costingRepository) ListCostTypes(ctx context.Context) ([]model.CostType, error) {
	var costTypes []model.CostType
	if err := GetDB(ctx, r.db).Order("name").Find(&costTypes).Error; err != nil {
		return nil, err
	}
	return costTypes, nil
}

func (r *costingRepository) CreateRule(ctx context.Context, rule *model.ProductCostRule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *costingRepository) ListRulesForProductType(ctx context.Context, productType string) ([]model.ProductCostRule, error) {
	var rules []model.ProductCostRule
	if err := GetDB(ctx, r.db).
		Preload("CostType").
		Joins("JOIN cost_types ON cost_types.id = product_cost_rules.cost_type_id").
		Where("product_cost_rules.product_type = ?", productType).
		Where("cost_types.is_active = ?", true).
		Order("product_cost_rules.position").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *costingRepository) ListRules(ctx context.Context) ([]model.ProductCostRule, error) {
	var rules []model.ProductCostRule
	if err := GetDB(ctx, r.db).
		Preload("CostType").
		Order("product_type, position").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *costingRepository) CreateBreakdown(ctx context.Context, breakdown *model.OrderCostBreakdown) error {
	return GetDB(ctx, r.db).Create(breakdown).Error
}

func (r *costingRepository) FindBreakdownByID(ctx context.Context, id uuid.UUID) (*model.OrderCostBreakdown, error) {
	var breakdown model.OrderCostBreakdown
	if err := GetDB(ctx, r.db).
		Preload("CostType").
		First(&breakdown, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &breakdown, nil
}

func (r *costingRepository) SaveBreakdown(ctx context.Context, breakdown *model.OrderCostBreakdown) error {
	return GetDB(ctx, r.db).Save(breakdown).Error
}

func orderScope(kind string, orderID uuid.UUID) (string, interface{}, error) {
	switch kind {
	case model.OrderKindCatalog:
		return "order_id = ?", orderID, nil
	case model.OrderKindInternal:
		return "internal_order_id = ?", orderID, nil
	default:
		return "", nil, fmt.Errorf("unknown order kind %q", kind)
	}
}

func (r *costingRepository) ListBreakdownsForOrder(ctx context.Context, kind string, orderID uuid.UUID) ([]model.OrderCostBreakdown, error) {
	cond, arg, err := orderScope(kind, orderID)
	if err != nil {
		return nil, err
	}
	var breakdowns []model.OrderCostBreakdown
	if err := GetDB(ctx, r.db).
		Preload("CostType").
		Where(cond, arg).
		Order("product_type, created_at").
		Find(&breakdowns).Error; err != nil {
		return nil, err
	}
	return breakdowns, nil
}

func (r *costingRepository) DeleteAutoBreakdowns(ctx context.Context, kind string, orderID uuid.UUID) error {
	cond, arg, err := orderScope(kind, orderID)
	if err != nil {
		return err
	}
	return GetDB(ctx, r.db).
		Where(cond, arg).
		Where("is_manual = ?", false).
		Delete(&model.OrderCostBreakdown{}).Error
}

func (r *costingRepository) SumBreakdownsForOrder(ctx context.Context, kind string, orderID uuid.UUID) (decimal.Decimal, error) {
	return r.sumBreakdowns(ctx, kind, orderID, nil)
}

func (r *costingRepository) SumManualBreakdownsForOrder(ctx context.Context, kind string, orderID uuid.UUID) (decimal.Decimal, error) {
	manual := true
	return r.sumBreakdowns(ctx, kind, orderID, &manual)
}

func (r *costingRepository) sumBreakdowns(ctx context.Context, kind string, orderID uuid.UUID, manual *bool) (decimal.Decimal, error) {
	cond, arg, err := orderScope(kind, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	query := GetDB(ctx, r.db).Model(&model.OrderCostBreakdown{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Where(cond, arg)
	if manual != nil {
		query = query.Where("is_manual = ?", *manual)
	}
	var row struct {
		Total decimal.Decimal
	}
	if err := query.Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
