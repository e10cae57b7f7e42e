package service

import (
	"context"
	"testing"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderService(orderRepo *mockOrderRepo, statusRepo *mockStatusRepo) OrderService {
	states := NewFinancialStateService(statusRepo, orderRepo, passthroughTxManager{}, &recordingPublisher{})
	return NewOrderService(orderRepo, statusRepo, states, passthroughTxManager{})
}

func TestCreateOrderTotalsItsItems(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	statusRepo := new(mockStatusRepo)
	svc := newOrderService(orderRepo, statusRepo)

	variantA := uuid.New()
	variantB := uuid.New()
	orderRepo.On("FindVariantByID", mock.Anything, variantA).Return(&model.ProductVariant{ID: variantA}, nil)
	orderRepo.On("FindVariantByID", mock.Anything, variantB).Return(&model.ProductVariant{ID: variantB}, nil)

	var created *model.Order
	orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Order)
			created.ID = uuid.New()
		}).Return(nil)
	orderRepo.On("FindCosted", mock.Anything, model.OrderKindCatalog, mock.Anything).
		Return(&model.Order{Status: model.OrderStatusPending}, nil)
	statusRepo.On("FindByOrder", mock.Anything, model.OrderKindCatalog, mock.Anything).Return(nil, assert.AnError)
	statusRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.FinancialStatus")).Return(nil)

	order, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OrderCode: "ORD-001",
		Items: []OrderItemRequest{
			{VariantID: variantA.String(), Quantity: 3, UnitPrice: "1500"},
			{VariantID: variantB.String(), Quantity: 1, UnitPrice: "2000"},
		},
	})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(d("6500")), "total %s", order.Total)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	// a financial status record is opened alongside the order
	statusRepo.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*model.FinancialStatus"))
}

func TestCreateOrderRejectsUnknownVariant(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	statusRepo := new(mockStatusRepo)
	svc := newOrderService(orderRepo, statusRepo)

	missing := uuid.New()
	orderRepo.On("FindVariantByID", mock.Anything, missing).Return(nil, assert.AnError)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OrderCode: "ORD-002",
		Items:     []OrderItemRequest{{VariantID: missing.String(), Quantity: 1, UnitPrice: "1000"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateInternalOrderAppliesDiscount(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	statusRepo := new(mockStatusRepo)
	svc := newOrderService(orderRepo, statusRepo)

	variant := uuid.New()
	orderRepo.On("FindVariantByID", mock.Anything, variant).Return(&model.ProductVariant{ID: variant}, nil)
	orderRepo.On("CreateInternal", mock.Anything, mock.AnythingOfType("*model.InternalOrder")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.InternalOrder).ID = uuid.New() }).Return(nil)
	orderRepo.On("FindCosted", mock.Anything, model.OrderKindInternal, mock.Anything).
		Return(&model.InternalOrder{Status: model.InternalStatusDraft}, nil)
	statusRepo.On("FindByOrder", mock.Anything, model.OrderKindInternal, mock.Anything).Return(nil, assert.AnError)
	statusRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.FinancialStatus")).Return(nil)

	order, err := svc.CreateInternalOrder(context.Background(), CreateInternalOrderRequest{
		Name:           "Feria stand stock",
		DiscountAmount: "500",
		Items:          []OrderItemRequest{{VariantID: variant.String(), Quantity: 2, UnitPrice: "3000"}},
	}, nil)
	require.NoError(t, err)
	assert.True(t, order.TotalEstimated.Equal(d("5500")), "total %s", order.TotalEstimated)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	orderRepo := new(mockOrderRepo)
	statusRepo := new(mockStatusRepo)
	svc := newOrderService(orderRepo, statusRepo)

	result, err := svc.UpdateStatus(context.Background(), model.OrderKindCatalog, uuid.New(), "in_production")
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "unknown status")
	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestValidOperationalStatusPerKind(t *testing.T) {
	assert.True(t, validOperationalStatus(model.OrderKindCatalog, model.OrderStatusShipped))
	assert.True(t, validOperationalStatus(model.OrderKindInternal, model.InternalStatusInProduction))
	assert.False(t, validOperationalStatus(model.OrderKindCatalog, model.InternalStatusInProduction))
	assert.False(t, validOperationalStatus(model.OrderKindInternal, model.OrderStatusShipped))
}
