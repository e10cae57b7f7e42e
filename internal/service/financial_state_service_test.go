package service

import (
	"context"
	"testing"
	"time"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{model.StateCreated, model.StateMaterialPurchased, true},
		{model.StateCreated, model.StateCancelled, true},
		{model.StateCreated, model.StateInProduction, false},
		{model.StateCreated, model.StateCollected, false},
		{model.StateMaterialPurchased, model.StateInProduction, true},
		{model.StateMaterialPurchased, model.StateDelivered, false},
		{model.StateInProduction, model.StateDelivered, true},
		{model.StateInProduction, model.StateCreated, false},
		{model.StateDelivered, model.StateCollected, true},
		{model.StateDelivered, model.StateMaterialPurchased, false},
		{model.StateCollected, model.StateCancelled, true},
		{model.StateCollected, model.StateDelivered, false},
		{model.StateCancelled, model.StateCreated, false},
		{model.StateCancelled, model.StateCancelled, false},
	}

	for _, tt := range tests {
		got := transitionAllowed(tt.from, tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestCanonicalStateAlias(t *testing.T) {
	assert.Equal(t, model.StateDelivered, model.CanonicalState(model.StateSent))
	assert.Equal(t, model.StateCreated, model.CanonicalState(model.StateCreated))

	// "sent" behaves exactly like "delivered" in the table
	assert.True(t, transitionAllowed(model.CanonicalState(model.StateSent), model.StateCollected))
}

func timeNowMinusHours(h int) time.Time {
	return time.Now().Add(-time.Duration(h) * time.Hour)
}

func newStateService(statusRepo *mockStatusRepo, orderRepo *mockOrderRepo, pub *recordingPublisher) FinancialStateService {
	return NewFinancialStateService(statusRepo, orderRepo, passthroughTxManager{}, pub)
}

func TestTransitionToCollectedMarksOrderPaid(t *testing.T) {
	statusRepo := new(mockStatusRepo)
	orderRepo := new(mockOrderRepo)
	pub := &recordingPublisher{}
	svc := newStateService(statusRepo, orderRepo, pub)

	orderID := uuid.New()
	status := &model.FinancialStatus{
		ID:      uuid.New(),
		OrderID: &orderID,
		State:   model.StateDelivered,
	}

	statusRepo.On("FindByIDForUpdate", mock.Anything, status.ID).Return(status, nil)
	orderRepo.On("MarkPaid", mock.Anything, model.OrderKindCatalog, orderID).Return(nil)
	statusRepo.On("Save", mock.Anything, status).Return(nil)

	result, err := svc.Transition(context.Background(), status.ID, model.StateCollected)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, model.StateCollected, status.State)
	assert.NotNil(t, status.CollectedAt)
	orderRepo.AssertCalled(t, "MarkPaid", mock.Anything, model.OrderKindCatalog, orderID)
	assert.Contains(t, pub.events, EventStateChanged)
}

func TestTransitionRejectedIsResultNotError(t *testing.T) {
	statusRepo := new(mockStatusRepo)
	orderRepo := new(mockOrderRepo)
	svc := newStateService(statusRepo, orderRepo, &recordingPublisher{})

	orderID := uuid.New()
	status := &model.FinancialStatus{ID: uuid.New(), OrderID: &orderID, State: model.StateCreated}
	statusRepo.On("FindByIDForUpdate", mock.Anything, status.ID).Return(status, nil)

	result, err := svc.Transition(context.Background(), status.ID, model.StateCollected)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, model.StateCreated, status.State)
	statusRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTransitionTimestampSetOnlyOnce(t *testing.T) {
	statusRepo := new(mockStatusRepo)
	orderRepo := new(mockOrderRepo)
	svc := newStateService(statusRepo, orderRepo, &recordingPublisher{})

	orderID := uuid.New()
	earlier := timeNowMinusHours(5)
	status := &model.FinancialStatus{
		ID:      uuid.New(),
		OrderID: &orderID,
		State:   model.StateInProduction,
		SentAt:  &earlier,
	}
	statusRepo.On("FindByIDForUpdate", mock.Anything, status.ID).Return(status, nil)
	statusRepo.On("Save", mock.Anything, status).Return(nil)

	result, err := svc.Transition(context.Background(), status.ID, model.StateDelivered)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, earlier, *status.SentAt)
}

func TestSyncFromOperationalNeverDowngrades(t *testing.T) {
	statusRepo := new(mockStatusRepo)
	orderRepo := new(mockOrderRepo)
	svc := newStateService(statusRepo, orderRepo, &recordingPublisher{})

	orderID := uuid.New()
	status := &model.FinancialStatus{
		ID:      uuid.New(),
		OrderID: &orderID,
		State:   model.StateDelivered,
	}
	// operational status maps to "created", which ranks below "delivered"
	order := &model.Order{ID: orderID, Status: model.OrderStatusConfirmed}

	statusRepo.On("FindByIDForUpdate", mock.Anything, status.ID).Return(status, nil)
	orderRepo.On("FindCosted", mock.Anything, model.OrderKindCatalog, orderID).Return(order, nil)

	result, err := svc.SyncFromOperational(context.Background(), status.ID, false)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, model.StateDelivered, status.State)
}

func TestSyncFromOperationalAdvances(t *testing.T) {
	statusRepo := new(mockStatusRepo)
	orderRepo := new(mockOrderRepo)
	svc := newStateService(statusRepo, orderRepo, &recordingPublisher{})

	orderID := uuid.New()
	status := &model.FinancialStatus{ID: uuid.New(), OrderID: &orderID, State: model.StateCreated}
	order := &model.Order{ID: orderID, Status: model.OrderStatusShipped}

	statusRepo.On("FindByIDForUpdate", mock.Anything, status.ID).Return(status, nil)
	orderRepo.On("FindCosted", mock.Anything, model.OrderKindCatalog, orderID).Return(order, nil)
	statusRepo.On("Save", mock.Anything, status).Return(nil)

	result, err := svc.SyncFromOperational(context.Background(), status.ID, false)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, model.StateDelivered, status.State)
	assert.NotNil(t, status.SentAt)
}

func TestSyncCollectedOnlyRegressesToCancelled(t *testing.T) {
	statusRepo := new(mockStatusRepo)
	orderRepo := new(mockOrderRepo)
	svc := newStateService(statusRepo, orderRepo, &recordingPublisher{})

	orderID := uuid.New()
	status := &model.FinancialStatus{ID: uuid.New(), OrderID: &orderID, State: model.StateCollected}

	// even an explicit downgrade request cannot drag a collected record back
	order := &model.Order{ID: orderID, Status: model.OrderStatusShipped}
	statusRepo.On("FindByIDForUpdate", mock.Anything, status.ID).Return(status, nil)
	orderRepo.On("FindCosted", mock.Anything, model.OrderKindCatalog, orderID).Return(order, nil)

	result, err := svc.SyncFromOperational(context.Background(), status.ID, true)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, model.StateCollected, status.State)

	// but cancellation goes through
	order.Status = model.OrderStatusCancelled
	statusRepo.On("Save", mock.Anything, status).Return(nil)
	result, err = svc.SyncFromOperational(context.Background(), status.ID, false)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, model.StateCancelled, status.State)
}

func TestEnsureForOrderIsIdempotent(t *testing.T) {
	statusRepo := new(mockStatusRepo)
	orderRepo := new(mockOrderRepo)
	svc := newStateService(statusRepo, orderRepo, &recordingPublisher{})

	orderID := uuid.New()
	order := &model.Order{ID: orderID, Status: model.OrderStatusPending, Total: decimal.NewFromInt(5000)}
	existing := &model.FinancialStatus{
		ID:         uuid.New(),
		OrderID:    &orderID,
		State:      model.StateCreated,
		SaleAmount: decimal.NewFromInt(5000),
	}

	orderRepo.On("FindCosted", mock.Anything, model.OrderKindCatalog, orderID).Return(order, nil)
	statusRepo.On("FindByOrder", mock.Anything, model.OrderKindCatalog, orderID).Return(existing, nil)

	got, err := svc.EnsureForOrder(context.Background(), model.OrderKindCatalog, orderID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	statusRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	statusRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestEnsureForOrderReconcilesSaleAmount(t *testing.T) {
	statusRepo := new(mockStatusRepo)
	orderRepo := new(mockOrderRepo)
	svc := newStateService(statusRepo, orderRepo, &recordingPublisher{})

	orderID := uuid.New()
	order := &model.Order{ID: orderID, Status: model.OrderStatusPending, Total: decimal.NewFromInt(7500)}
	existing := &model.FinancialStatus{
		ID:         uuid.New(),
		OrderID:    &orderID,
		State:      model.StateCreated,
		SaleAmount: decimal.NewFromInt(5000),
	}

	orderRepo.On("FindCosted", mock.Anything, model.OrderKindCatalog, orderID).Return(order, nil)
	statusRepo.On("FindByOrder", mock.Anything, model.OrderKindCatalog, orderID).Return(existing, nil)
	statusRepo.On("Save", mock.Anything, existing).Return(nil)

	got, err := svc.EnsureForOrder(context.Background(), model.OrderKindCatalog, orderID)
	require.NoError(t, err)
	assert.True(t, got.SaleAmount.Equal(decimal.NewFromInt(7500)))
}

func TestEnsureForOrderCreatesFromOperationalState(t *testing.T) {
	statusRepo := new(mockStatusRepo)
	orderRepo := new(mockOrderRepo)
	svc := newStateService(statusRepo, orderRepo, &recordingPublisher{})

	orderID := uuid.New()
	order := &model.InternalOrder{
		ID:             orderID,
		Status:         model.InternalStatusInProduction,
		TotalEstimated: decimal.NewFromInt(12000),
	}

	orderRepo.On("FindCosted", mock.Anything, model.OrderKindInternal, orderID).Return(order, nil)
	statusRepo.On("FindByOrder", mock.Anything, model.OrderKindInternal, orderID).
		Return(nil, assert.AnError)
	statusRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.FinancialStatus")).Return(nil)

	got, err := svc.EnsureForOrder(context.Background(), model.OrderKindInternal, orderID)
	require.NoError(t, err)
	assert.Equal(t, model.StateInProduction, got.State)
	assert.True(t, got.SaleAmount.Equal(decimal.NewFromInt(12000)))
	require.NotNil(t, got.InternalOrderID)
	assert.Equal(t, orderID, *got.InternalOrderID)
}
