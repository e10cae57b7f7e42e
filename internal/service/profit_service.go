package service

import (
	"context"
	"fmt"

	"stickerops/internal/model"
	"stickerops/internal/repository"
	"stickerops/pkg/money"

	"github.com/shopspring/decimal"
)

// ProfitBreakdown is one order's profitability under a given overhead rate.
type ProfitBreakdown struct {
	SaleAmount         decimal.Decimal `json:"sale_amount"`
	DirectCosts        decimal.Decimal `json:"direct_costs"`
	ShippingCost       decimal.Decimal `json:"shipping_cost"`
	OverheadPercentage decimal.Decimal `json:"overhead_percentage"`
	OverheadAmount     decimal.Decimal `json:"overhead_amount"`
	NetProfit          decimal.Decimal `json:"net_profit"`
}

type ProfitService interface {
	// ComputeProfit is the pure calculation:
	// net = sale - direct - shipping - round(sale * overheadPct / 100).
	ComputeProfit(sale, directCosts, shipping, overheadPct decimal.Decimal) ProfitBreakdown

	// ForStatus computes the breakdown for one financial status using its
	// order's recorded cost breakdown lines as direct costs.
	ForStatus(ctx context.Context, status *model.FinancialStatus, overheadPct decimal.Decimal) (ProfitBreakdown, error)
}

type profitService struct {
	costingRepo repository.CostingRepository
	orderRepo   repository.OrderRepository
}

func NewProfitService(costingRepo repository.CostingRepository, orderRepo repository.OrderRepository) ProfitService {
	return &profitService{costingRepo: costingRepo, orderRepo: orderRepo}
}

func (s *profitService) ComputeProfit(sale, directCosts, shipping, overheadPct decimal.Decimal) ProfitBreakdown {
	overheadAmount := money.ApplyPercent(sale, overheadPct)
	return ProfitBreakdown{
		SaleAmount:         sale,
		DirectCosts:        directCosts,
		ShippingCost:       shipping,
		OverheadPercentage: overheadPct,
		OverheadAmount:     overheadAmount,
		NetProfit:          sale.Sub(directCosts).Sub(shipping).Sub(overheadAmount),
	}
}

func (s *profitService) ForStatus(ctx context.Context, status *model.FinancialStatus, overheadPct decimal.Decimal) (ProfitBreakdown, error) {
	kind := status.OrderKind()
	var orderID = status.OrderID
	if kind == model.OrderKindInternal {
		orderID = status.InternalOrderID
	}
	if orderID == nil {
		return ProfitBreakdown{}, fmt.Errorf("financial status %s has no linked order", status.ID)
	}

	directCosts, err := s.costingRepo.SumBreakdownsForOrder(ctx, kind, *orderID)
	if err != nil {
		return ProfitBreakdown{}, fmt.Errorf("failed to sum direct costs: %w", err)
	}

	shipping := decimal.Zero
	if attached := status.Attached(); attached != nil {
		shipping = attached.Shipping()
	} else {
		order, findErr := s.orderRepo.FindCosted(ctx, kind, *orderID)
		if findErr != nil {
			return ProfitBreakdown{}, fmt.Errorf("order not found: %w", findErr)
		}
		shipping = order.Shipping()
	}

	return s.ComputeProfit(status.SaleAmount, directCosts, shipping, overheadPct), nil
}
