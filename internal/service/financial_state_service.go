package service

import (
	"context"
	"fmt"
	"time"

	"stickerops/internal/model"
	"stickerops/internal/repository"

	"github.com/google/uuid"
)

// validTransitions is the explicit table of operator-requested moves.
// Forward motion is strictly sequential; cancellation is reachable from
// everywhere except a record that is already cancelled. States are looked up
// in canonical form, so the legacy "sent" alias lands on "delivered".
var validTransitions = map[string][]string{
	model.StateCreated:           {model.StateMaterialPurchased, model.StateCancelled},
	model.StateMaterialPurchased: {model.StateInProduction, model.StateCancelled},
	model.StateInProduction:      {model.StateDelivered, model.StateCancelled},
	model.StateDelivered:         {model.StateCollected, model.StateCancelled},
	model.StateCollected:         {model.StateCancelled},
	model.StateCancelled:         {},
}

// operationalStateTargets maps an order's operational status to the
// financial state it implies, per order kind.
var operationalStateTargets = map[string]map[string]string{
	model.OrderKindCatalog: {
		model.OrderStatusPending:   model.StateCreated,
		model.OrderStatusConfirmed: model.StateCreated,
		model.OrderStatusShipped:   model.StateDelivered,
		model.OrderStatusCompleted: model.StateCollected,
		model.OrderStatusCancelled: model.StateCancelled,
	},
	model.OrderKindInternal: {
		model.InternalStatusDraft:        model.StateCreated,
		model.InternalStatusConfirmed:    model.StateMaterialPurchased,
		model.InternalStatusInProduction: model.StateInProduction,
		model.InternalStatusCompleted:    model.StateCollected,
		model.InternalStatusCancelled:    model.StateCancelled,
	},
}

// --- DTOs ---

// TransitionResult is the business outcome of a transition request. A
// rejected transition is a normal result, not an error; errors are reserved
// for persistence failures.
type TransitionResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	State   string `json:"state"`
}

type FinancialStatusResponse struct {
	ID          string  `json:"id"`
	OrderKind   string  `json:"order_kind"`
	OrderRef    string  `json:"order_ref"`
	State       string  `json:"state"`
	SaleAmount  string  `json:"sale_amount"`
	SentAt      *string `json:"sent_at"`
	CollectedAt *string `json:"collected_at"`
	CancelledAt *string `json:"cancelled_at"`
	Notes       string  `json:"notes"`
	CreatedAt   string  `json:"created_at"`
}

// --- Interface ---

type FinancialStateService interface {
	// EnsureForOrder is idempotent get-or-create plus reconcile: the sale
	// amount follows the order's current total, and an order already marked
	// paid is fast-forwarded to collected.
	EnsureForOrder(ctx context.Context, kind string, orderID uuid.UUID) (*model.FinancialStatus, error)
	Transition(ctx context.Context, statusID uuid.UUID, newState string) (TransitionResult, error)
	// SyncFromOperational infers the financial state from the order's own
	// operational status. It only moves the state up the rank order unless
	// allowDowngrade is set, and a collected record is never regressed to
	// anything but cancelled.
	SyncFromOperational(ctx context.Context, statusID uuid.UUID, allowDowngrade bool) (TransitionResult, error)
	ListStatuses(ctx context.Context, state string, page, limit int) ([]FinancialStatusResponse, int64, error)
	GetStatus(ctx context.Context, statusID uuid.UUID) (*model.FinancialStatus, error)
}

type financialStateService struct {
	statusRepo repository.FinancialStatusRepository
	orderRepo  repository.OrderRepository
	txManager  repository.TransactionManager
	events     EventPublisher
}

func NewFinancialStateService(
	statusRepo repository.FinancialStatusRepository,
	orderRepo repository.OrderRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) FinancialStateService {
	return &financialStateService{
		statusRepo: statusRepo,
		orderRepo:  orderRepo,
		txManager:  txManager,
		events:     events,
	}
}

// --- Implementation ---

func (s *financialStateService) EnsureForOrder(ctx context.Context, kind string, orderID uuid.UUID) (*model.FinancialStatus, error) {
	order, err := s.orderRepo.FindCosted(ctx, kind, orderID)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	var status *model.FinancialStatus
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.statusRepo.FindByOrder(txCtx, kind, orderID)
		if findErr == nil {
			status = existing
			return s.reconcile(txCtx, status, order)
		}

		status = &model.FinancialStatus{
			State:      model.StateCreated,
			SaleAmount: order.SaleTotal(),
		}
		if kind == model.OrderKindCatalog {
			status.OrderID = &orderID
		} else {
			status.InternalOrderID = &orderID
		}
		s.applyInitialState(status, order)
		return s.statusRepo.Create(txCtx, status)
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// applyInitialState seeds a fresh record from the order's operational
// status, with the paid flag taking precedence.
func (s *financialStateService) applyInitialState(status *model.FinancialStatus, order model.CostedOrder) {
	target := model.StateCreated
	if mapped, ok := operationalStateTargets[order.Kind()][order.OperationalStatus()]; ok {
		target = mapped
	}
	if order.Paid() && target != model.StateCancelled {
		target = model.StateCollected
	}
	now := time.Now()
	status.State = target
	switch target {
	case model.StateDelivered:
		status.SentAt = &now
	case model.StateCollected:
		status.CollectedAt = &now
	case model.StateCancelled:
		status.CancelledAt = &now
	}
}

func (s *financialStateService) reconcile(ctx context.Context, status *model.FinancialStatus, order model.CostedOrder) error {
	changed := false
	if !status.SaleAmount.Equal(order.SaleTotal()) {
		status.SaleAmount = order.SaleTotal()
		changed = true
	}

	current := model.CanonicalState(status.State)
	if order.Paid() && current != model.StateCollected && current != model.StateCancelled {
		now := time.Now()
		status.State = model.StateCollected
		if status.CollectedAt == nil {
			status.CollectedAt = &now
		}
		changed = true
	}

	if !changed {
		return nil
	}
	return s.statusRepo.Save(ctx, status)
}

func (s *financialStateService) Transition(ctx context.Context, statusID uuid.UUID, newState string) (TransitionResult, error) {
	target := model.CanonicalState(newState)
	if _, known := model.StateRank[target]; !known {
		return TransitionResult{OK: false, Message: fmt.Sprintf("unknown state %q", newState)}, nil
	}

	var result TransitionResult
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		status, err := s.statusRepo.FindByIDForUpdate(txCtx, statusID)
		if err != nil {
			return fmt.Errorf("financial status not found: %w", err)
		}

		current := model.CanonicalState(status.State)
		if !transitionAllowed(current, target) {
			result = TransitionResult{
				OK:      false,
				Message: fmt.Sprintf("cannot move from %q to %q", status.State, newState),
				State:   status.State,
			}
			return nil
		}

		if err := s.applyTransition(txCtx, status, target); err != nil {
			return err
		}
		result = TransitionResult{
			OK:      true,
			Message: fmt.Sprintf("state changed to %q", target),
			State:   status.State,
		}
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}

	if result.OK {
		emit(s.events, EventStateChanged, map[string]string{
			"financial_status_id": statusID.String(),
			"state":               result.State,
		})
	}
	return result, nil
}

func transitionAllowed(current, target string) bool {
	for _, allowed := range validTransitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// applyTransition mutates state and timestamps (each set only once) and
// propagates the paid flag to the underlying order on collection.
func (s *financialStateService) applyTransition(ctx context.Context, status *model.FinancialStatus, target string) error {
	now := time.Now()
	status.State = target

	switch target {
	case model.StateDelivered:
		if status.SentAt == nil {
			status.SentAt = &now
		}
	case model.StateCollected:
		if status.CollectedAt == nil {
			status.CollectedAt = &now
		}
		var orderID uuid.UUID
		if status.OrderID != nil {
			orderID = *status.OrderID
		} else if status.InternalOrderID != nil {
			orderID = *status.InternalOrderID
		}
		if orderID != uuid.Nil {
			if err := s.orderRepo.MarkPaid(ctx, status.OrderKind(), orderID); err != nil {
				return fmt.Errorf("failed to mark order paid: %w", err)
			}
		}
	case model.StateCancelled:
		if status.CancelledAt == nil {
			status.CancelledAt = &now
		}
	}

	return s.statusRepo.Save(ctx, status)
}

func (s *financialStateService) SyncFromOperational(ctx context.Context, statusID uuid.UUID, allowDowngrade bool) (TransitionResult, error) {
	var result TransitionResult
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		status, err := s.statusRepo.FindByIDForUpdate(txCtx, statusID)
		if err != nil {
			return fmt.Errorf("financial status not found: %w", err)
		}

		var orderID uuid.UUID
		if status.OrderID != nil {
			orderID = *status.OrderID
		} else if status.InternalOrderID != nil {
			orderID = *status.InternalOrderID
		}
		order, err := s.orderRepo.FindCosted(txCtx, status.OrderKind(), orderID)
		if err != nil {
			return fmt.Errorf("order not found: %w", err)
		}

		target, ok := operationalStateTargets[order.Kind()][order.OperationalStatus()]
		if !ok {
			result = TransitionResult{
				OK:      false,
				Message: fmt.Sprintf("no financial state mapped for operational status %q", order.OperationalStatus()),
				State:   status.State,
			}
			return nil
		}

		current := model.CanonicalState(status.State)
		if target == current {
			result = TransitionResult{OK: true, Message: "state already in sync", State: status.State}
			return nil
		}

		// A collected record only ever regresses to cancelled.
		if current == model.StateCollected && target != model.StateCancelled {
			result = TransitionResult{
				OK:      false,
				Message: "collected records are terminal; only cancellation can change them",
				State:   status.State,
			}
			return nil
		}
		if model.StateRank[target] < model.StateRank[current] && !allowDowngrade {
			result = TransitionResult{
				OK:      false,
				Message: fmt.Sprintf("refusing to downgrade from %q to %q without an explicit request", status.State, target),
				State:   status.State,
			}
			return nil
		}

		if err := s.applyTransition(txCtx, status, target); err != nil {
			return err
		}
		result = TransitionResult{
			OK:      true,
			Message: fmt.Sprintf("state synced to %q", target),
			State:   status.State,
		}
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}

	if result.OK {
		emit(s.events, EventStateChanged, map[string]string{
			"financial_status_id": statusID.String(),
			"state":               result.State,
		})
	}
	return result, nil
}

func (s *financialStateService) ListStatuses(ctx context.Context, state string, page, limit int) ([]FinancialStatusResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	statuses, total, err := s.statusRepo.List(ctx, state, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch financial statuses: %w", err)
	}

	result := make([]FinancialStatusResponse, 0, len(statuses))
	for i := range statuses {
		result = append(result, toFinancialStatusResponse(&statuses[i]))
	}
	return result, total, nil
}

func (s *financialStateService) GetStatus(ctx context.Context, statusID uuid.UUID) (*model.FinancialStatus, error) {
	return s.statusRepo.FindByID(ctx, statusID)
}

// --- Mapping ---

func toFinancialStatusResponse(fs *model.FinancialStatus) FinancialStatusResponse {
	resp := FinancialStatusResponse{
		ID:         fs.ID.String(),
		OrderKind:  fs.OrderKind(),
		OrderRef:   fs.OrderRef(),
		State:      fs.State,
		SaleAmount: fs.SaleAmount.StringFixed(2),
		Notes:      fs.Notes,
		CreatedAt:  fs.CreatedAt.Format(time.RFC3339),
	}
	if fs.SentAt != nil {
		v := fs.SentAt.Format(time.RFC3339)
		resp.SentAt = &v
	}
	if fs.CollectedAt != nil {
		v := fs.CollectedAt.Format(time.RFC3339)
		resp.CollectedAt = &v
	}
	if fs.CancelledAt != nil {
		v := fs.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &v
	}
	return resp
}
