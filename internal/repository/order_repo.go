package repository

import (
	"context"
	"fmt"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository reads and writes both order variants. The job costing core
// only consumes them through model.CostedOrder.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	CreateInternal(ctx context.Context, order *model.InternalOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindInternalByID(ctx context.Context, id uuid.UUID) (*model.InternalOrder, error)
	// FindCosted resolves (kind, id) to the capability interface.
	FindCosted(ctx context.Context, kind string, id uuid.UUID) (model.CostedOrder, error)
	MarkPaid(ctx context.Context, kind string, id uuid.UUID) error
	UpdateStatus(ctx context.Context, kind string, id uuid.UUID, status string) error

	CreateVariant(ctx context.Context, variant *model.ProductVariant) error
	FindVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)
	ListVariants(ctx context.Context) ([]model.ProductVariant, error)
	ListOrders(ctx context.Context, kind string, page, limit int) ([]model.CostedOrder, int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) CreateInternal(ctx context.Context, order *model.InternalOrder) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.Variant").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindInternalByID(ctx context.Context, id uuid.UUID) (*model.InternalOrder, error) {
	var order model.InternalOrder
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.Variant").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindCosted(ctx context.Context, kind string, id uuid.UUID) (model.CostedOrder, error) {
	switch kind {
	case model.OrderKindCatalog:
		return r.FindByID(ctx, id)
	case model.OrderKindInternal:
		return r.FindInternalByID(ctx, id)
	default:
		return nil, fmt.Errorf("unknown order kind %q", kind)
	}
}

func (r *orderRepository) MarkPaid(ctx context.Context, kind string, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	switch kind {
	case model.OrderKindCatalog:
		return db.Model(&model.Order{}).Where("id = ?", id).Update("is_paid", true).Error
	case model.OrderKindInternal:
		return db.Model(&model.InternalOrder{}).Where("id = ?", id).Update("is_paid", true).Error
	default:
		return fmt.Errorf("unknown order kind %q", kind)
	}
}

func (r *orderRepository) UpdateStatus(ctx context.Context, kind string, id uuid.UUID, status string) error {
	db := GetDB(ctx, r.db)
	switch kind {
	case model.OrderKindCatalog:
		return db.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
	case model.OrderKindInternal:
		return db.Model(&model.InternalOrder{}).Where("id = ?", id).Update("status", status).Error
	default:
		return fmt.Errorf("unknown order kind %q", kind)
	}
}

func (r *orderRepository) CreateVariant(ctx context.Context, variant *model.ProductVariant) error {
	return GetDB(ctx, r.db).Create(variant).Error
}

func (r *orderRepository) FindVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := GetDB(ctx, r.db).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *orderRepository) ListVariants(ctx context.Context) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	if err := GetDB(ctx, r.db).Order("product_name").Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *orderRepository) ListOrders(ctx context.Context, kind string, page, limit int) ([]model.CostedOrder, int64, error) {
	db := GetDB(ctx, r.db)
	offset := (page - 1) * limit

	switch kind {
	case model.OrderKindCatalog:
		var total int64
		if err := db.Model(&model.Order{}).Count(&total).Error; err != nil {
			return nil, 0, err
		}
		var orders []model.Order
		if err := db.Preload("Items").Preload("Items.Variant").
			Order("created_at desc").
			Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
			return nil, 0, err
		}
		result := make([]model.CostedOrder, 0, len(orders))
		for i := range orders {
			result = append(result, &orders[i])
		}
		return result, total, nil
	case model.OrderKindInternal:
		var total int64
		if err := db.Model(&model.InternalOrder{}).Count(&total).Error; err != nil {
			return nil, 0, err
		}
		var orders []model.InternalOrder
		if err := db.Preload("Items").Preload("Items.Variant").
			Order("created_at desc").
			Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
			return nil, 0, err
		}
		result := make([]model.CostedOrder, 0, len(orders))
		for i := range orders {
			result = append(result, &orders[i])
		}
		return result, total, nil
	default:
		return nil, 0, fmt.Errorf("unknown order kind %q", kind)
	}
}
