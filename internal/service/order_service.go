package service

import (
	"context"
	"fmt"

	"stickerops/internal/model"
	"stickerops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateVariantRequest struct {
	ProductName       string `json:"product_name" binding:"required"`
	ProductType       string `json:"product_type" binding:"required"`
	SizeName          string `json:"size_name"`
	HeightCm          string `json:"height_cm"`
	WidthCm           string `json:"width_cm"`
	MaterialName      string `json:"material_name"`
	MaterialIsSpecial bool   `json:"material_is_special"`
	Price             string `json:"price"`
}

type OrderItemRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

type CreateOrderRequest struct {
	OrderCode    string             `json:"order_code" binding:"required"`
	CustomerName string             `json:"customer_name"`
	ShippingCost string             `json:"shipping_cost"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateInternalOrderRequest struct {
	Name           string             `json:"name" binding:"required"`
	Description    string             `json:"description"`
	ShippingCost   string             `json:"shipping_cost"`
	DiscountAmount string             `json:"discount_amount"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- Interface ---

type OrderService interface {
	CreateVariant(ctx context.Context, req CreateVariantRequest) (*model.ProductVariant, error)
	ListVariants(ctx context.Context) ([]model.ProductVariant, error)

	// CreateOrder creates a catalog order and immediately attaches a
	// financial status to it.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error)
	CreateInternalOrder(ctx context.Context, req CreateInternalOrderRequest, createdBy *uuid.UUID) (*model.InternalOrder, error)
	GetOrder(ctx context.Context, kind string, orderID uuid.UUID) (model.CostedOrder, error)
	ListOrders(ctx context.Context, kind string, page, limit int) ([]model.CostedOrder, int64, error)

	// UpdateStatus changes the order's operational status and syncs the
	// financial state from it.
	UpdateStatus(ctx context.Context, kind string, orderID uuid.UUID, status string) (TransitionResult, error)
}

type orderService struct {
	orderRepo  repository.OrderRepository
	statusRepo repository.FinancialStatusRepository
	states     FinancialStateService
	txManager  repository.TransactionManager
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	statusRepo repository.FinancialStatusRepository,
	states FinancialStateService,
	txManager repository.TransactionManager,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		statusRepo: statusRepo,
		states:     states,
		txManager:  txManager,
	}
}

// --- Implementation ---

func (s *orderService) CreateVariant(ctx context.Context, req CreateVariantRequest) (*model.ProductVariant, error) {
	height, err := parseOptionalDecimal(req.HeightCm)
	if err != nil {
		return nil, fmt.Errorf("invalid height: %w", err)
	}
	width, err := parseOptionalDecimal(req.WidthCm)
	if err != nil {
		return nil, fmt.Errorf("invalid width: %w", err)
	}
	price, err := parseOptionalDecimal(req.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	variant := &model.ProductVariant{
		ProductName:       req.ProductName,
		ProductType:       req.ProductType,
		SizeName:          req.SizeName,
		HeightCm:          height,
		WidthCm:           width,
		MaterialName:      req.MaterialName,
		MaterialIsSpecial: req.MaterialIsSpecial,
		Price:             price,
	}
	if err := s.orderRepo.CreateVariant(ctx, variant); err != nil {
		return nil, fmt.Errorf("failed to create product variant: %w", err)
	}
	return variant, nil
}

func (s *orderService) ListVariants(ctx context.Context) ([]model.ProductVariant, error) {
	return s.orderRepo.ListVariants(ctx)
}

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	shipping, err := parseOptionalDecimal(req.ShippingCost)
	if err != nil {
		return nil, fmt.Errorf("invalid shipping cost: %w", err)
	}
	items, total, err := s.buildOrderItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderCode:    req.OrderCode,
		CustomerName: req.CustomerName,
		Status:       model.OrderStatusPending,
		Total:        total,
		ShippingCost: shipping,
		Items:        items,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if _, err := s.states.EnsureForOrder(ctx, model.OrderKindCatalog, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) CreateInternalOrder(ctx context.Context, req CreateInternalOrderRequest, createdBy *uuid.UUID) (*model.InternalOrder, error) {
	shipping, err := parseOptionalDecimal(req.ShippingCost)
	if err != nil {
		return nil, fmt.Errorf("invalid shipping cost: %w", err)
	}
	discount, err := parseOptionalDecimal(req.DiscountAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid discount amount: %w", err)
	}
	items, total, err := s.buildOrderItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	internalItems := make([]model.InternalOrderItem, 0, len(items))
	for _, item := range items {
		internalItems = append(internalItems, model.InternalOrderItem{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order := &model.InternalOrder{
		Name:           req.Name,
		Description:    req.Description,
		Status:         model.InternalStatusDraft,
		TotalEstimated: total.Sub(discount),
		ShippingCost:   shipping,
		DiscountAmount: discount,
		Items:          internalItems,
		CreatedByID:    createdBy,
	}
	if err := s.orderRepo.CreateInternal(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create internal order: %w", err)
	}
	if _, err := s.states.EnsureForOrder(ctx, model.OrderKindInternal, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) buildOrderItems(ctx context.Context, reqs []OrderItemRequest) ([]model.OrderItem, decimal.Decimal, error) {
	items := make([]model.OrderItem, 0, len(reqs))
	total := decimal.Zero
	for _, req := range reqs {
		variantID, err := uuid.Parse(req.VariantID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("invalid variant id: %w", err)
		}
		if _, err := s.orderRepo.FindVariantByID(ctx, variantID); err != nil {
			return nil, decimal.Zero, fmt.Errorf("variant %s not found: %w", variantID, err)
		}
		unitPrice, err := decimal.NewFromString(req.UnitPrice)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("invalid unit price: %w", err)
		}

		items = append(items, model.OrderItem{
			VariantID: variantID,
			Quantity:  req.Quantity,
			UnitPrice: unitPrice,
		})
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))))
	}
	return items, total, nil
}

func (s *orderService) GetOrder(ctx context.Context, kind string, orderID uuid.UUID) (model.CostedOrder, error) {
	return s.orderRepo.FindCosted(ctx, kind, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, kind string, page, limit int) ([]model.CostedOrder, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.orderRepo.ListOrders(ctx, kind, page, limit)
}

func (s *orderService) UpdateStatus(ctx context.Context, kind string, orderID uuid.UUID, status string) (TransitionResult, error) {
	if !validOperationalStatus(kind, status) {
		return TransitionResult{OK: false, Message: fmt.Sprintf("unknown status %q for %s orders", status, kind)}, nil
	}

	if err := s.orderRepo.UpdateStatus(ctx, kind, orderID, status); err != nil {
		return TransitionResult{}, fmt.Errorf("failed to update order status: %w", err)
	}

	financial, err := s.states.EnsureForOrder(ctx, kind, orderID)
	if err != nil {
		return TransitionResult{}, err
	}
	return s.states.SyncFromOperational(ctx, financial.ID, false)
}

func validOperationalStatus(kind, status string) bool {
	_, ok := operationalStateTargets[kind][status]
	return ok
}

func parseOptionalDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
