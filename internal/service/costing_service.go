package service

import (
	"context"
	"fmt"
	"time"

	"stickerops/internal/model"
	"stickerops/internal/repository"
	"stickerops/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// --- DTOs ---

type CreateCostTypeRequest struct {
	Name                 string `json:"name" binding:"required"`
	Unit                 string `json:"unit" binding:"required,oneof=unit linear_meter square_meter fixed"`
	DefaultUnitPrice     string `json:"default_unit_price" binding:"required"`
	SpecialMaterialPrice string `json:"special_material_price"`
	Description          string `json:"description"`
}

type CreateCostRuleRequest struct {
	ProductType       string `json:"product_type" binding:"required"`
	CostTypeID        string `json:"cost_type_id" binding:"required"`
	CalculationMethod string `json:"calculation_method" binding:"required,oneof=per_unit linear_meters square_meters manual"`
	MaterialWidthCm   string `json:"material_width_cm"`
	Position          int    `json:"position"`
}

type ManualCostRequest struct {
	CostTypeID  string `json:"cost_type_id" binding:"required"`
	Description string `json:"description" binding:"required"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
	Notes       string `json:"notes"`
}

type CostingResult struct {
	OK              bool                       `json:"ok"`
	Message         string                     `json:"message"`
	Lines           []model.OrderCostBreakdown `json:"lines"`
	TotalDirectCost decimal.Decimal            `json:"total_direct_cost"`
}

type PostBreakdownResult struct {
	OK        bool                      `json:"ok"`
	Message   string                    `json:"message"`
	Breakdown *model.OrderCostBreakdown `json:"breakdown,omitempty"`
}

// --- Interface ---

type CostingService interface {
	CreateCostType(ctx context.Context, req CreateCostTypeRequest) (*model.CostType, error)
	ListCostTypes(ctx context.Context) ([]model.CostType, error)
	CreateCostRule(ctx context.Context, req CreateCostRuleRequest) (*model.ProductCostRule, error)
	ListCostRules(ctx context.Context) ([]model.ProductCostRule, error)

	// CalculateOrderCosts rebuilds the estimated cost lines for one order
	// from its items and the product cost rules. Manual lines are left
	// alone; only auto-generated lines are wiped and regenerated.
	CalculateOrderCosts(ctx context.Context, kind string, orderID uuid.UUID) (CostingResult, error)

	ListOrderCosts(ctx context.Context, kind string, orderID uuid.UUID) ([]model.OrderCostBreakdown, decimal.Decimal, error)
	CreateManualCost(ctx context.Context, kind string, orderID uuid.UUID, req ManualCostRequest) (*model.OrderCostBreakdown, error)
	UpdateManualCost(ctx context.Context, breakdownID uuid.UUID, req ManualCostRequest) (*model.OrderCostBreakdown, error)

	// PostBreakdownToAccounting turns one cost line into a real expense
	// ledger entry and locks the line. Posting is one-way.
	PostBreakdownToAccounting(ctx context.Context, breakdownID uuid.UUID) (PostBreakdownResult, error)
}

type costingService struct {
	costingRepo repository.CostingRepository
	orderRepo   repository.OrderRepository
	configRepo  repository.ConfigRepository
	ledgerRepo  repository.LedgerRepository
	ledger      LedgerService
	txManager   repository.TransactionManager
	events      EventPublisher
	log         *logrus.Logger
}

func NewCostingService(
	costingRepo repository.CostingRepository,
	orderRepo repository.OrderRepository,
	configRepo repository.ConfigRepository,
	ledgerRepo repository.LedgerRepository,
	ledger LedgerService,
	txManager repository.TransactionManager,
	events EventPublisher,
	log *logrus.Logger,
) CostingService {
	return &costingService{
		costingRepo: costingRepo,
		orderRepo:   orderRepo,
		configRepo:  configRepo,
		ledgerRepo:  ledgerRepo,
		ledger:      ledger,
		txManager:   txManager,
		events:      events,
		log:         log,
	}
}

// --- Cost type and rule management ---

func (s *costingService) CreateCostType(ctx context.Context, req CreateCostTypeRequest) (*model.CostType, error) {
	defaultPrice, err := decimal.NewFromString(req.DefaultUnitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid default unit price: %w", err)
	}
	specialPrice := decimal.Zero
	if req.SpecialMaterialPrice != "" {
		specialPrice, err = decimal.NewFromString(req.SpecialMaterialPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid special material price: %w", err)
		}
	}

	costType := &model.CostType{
		Name:                 req.Name,
		Unit:                 req.Unit,
		DefaultUnitPrice:     defaultPrice,
		SpecialMaterialPrice: specialPrice,
		Description:          req.Description,
		IsActive:             true,
	}
	if err := s.costingRepo.CreateCostType(ctx, costType); err != nil {
		return nil, fmt.Errorf("failed to create cost type: %w", err)
	}
	return costType, nil
}

func (s *costingService) ListCostTypes(ctx context.Context) ([]model.CostType, error) {
	return s.costingRepo.ListCostTypes(ctx)
}

func (s *costingService) CreateCostRule(ctx context.Context, req CreateCostRuleRequest) (*model.ProductCostRule, error) {
	costTypeID, err := uuid.Parse(req.CostTypeID)
	if err != nil {
		return nil, fmt.Errorf("invalid cost type id: %w", err)
	}
	if _, err := s.costingRepo.FindCostTypeByID(ctx, costTypeID); err != nil {
		return nil, fmt.Errorf("cost type not found: %w", err)
	}

	rule := &model.ProductCostRule{
		ProductType:       req.ProductType,
		CostTypeID:        costTypeID,
		CalculationMethod: req.CalculationMethod,
		Position:          req.Position,
	}
	if req.MaterialWidthCm != "" {
		width, parseErr := decimal.NewFromString(req.MaterialWidthCm)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid material width: %w", parseErr)
		}
		rule.MaterialWidthCm = &width
	}
	if rule.CalculationMethod == model.MethodLinearMeters && rule.MaterialWidthCm == nil {
		return nil, fmt.Errorf("linear_meters rules require a material width")
	}

	if err := s.costingRepo.CreateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create cost rule: %w", err)
	}
	return rule, nil
}

func (s *costingService) ListCostRules(ctx context.Context) ([]model.ProductCostRule, error) {
	return s.costingRepo.ListRules(ctx)
}

// --- Recalculation ---

func (s *costingService) CalculateOrderCosts(ctx context.Context, kind string, orderID uuid.UUID) (CostingResult, error) {
	order, err := s.orderRepo.FindCosted(ctx, kind, orderID)
	if err != nil {
		return CostingResult{}, fmt.Errorf("order not found: %w", err)
	}

	var result CostingResult
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.costingRepo.DeleteAutoBreakdowns(txCtx, kind, orderID); err != nil {
			return fmt.Errorf("failed to clear estimated cost lines: %w", err)
		}

		byProductType := groupItemsByProductType(order.CostingItems())
		for productType, items := range byProductType {
			rules, rulesErr := s.costingRepo.ListRulesForProductType(txCtx, productType)
			if rulesErr != nil {
				return fmt.Errorf("failed to load cost rules: %w", rulesErr)
			}
			for i := range rules {
				lines := s.linesForRule(&rules[i], productType, items)
				for j := range lines {
					line := lines[j]
					if kind == model.OrderKindCatalog {
						line.OrderID = &orderID
					} else {
						line.InternalOrderID = &orderID
					}
					if createErr := s.costingRepo.CreateBreakdown(txCtx, &line); createErr != nil {
						return fmt.Errorf("failed to create cost line: %w", createErr)
					}
				}
			}
		}

		all, listErr := s.costingRepo.ListBreakdownsForOrder(txCtx, kind, orderID)
		if listErr != nil {
			return fmt.Errorf("failed to list cost lines: %w", listErr)
		}
		total, sumErr := s.costingRepo.SumBreakdownsForOrder(txCtx, kind, orderID)
		if sumErr != nil {
			return fmt.Errorf("failed to sum cost lines: %w", sumErr)
		}

		result = CostingResult{
			OK:              true,
			Message:         fmt.Sprintf("recalculated %d cost lines", len(all)),
			Lines:           all,
			TotalDirectCost: total,
		}
		return nil
	})
	if err != nil {
		return CostingResult{}, err
	}

	emit(s.events, EventCostsRecalculated, map[string]string{
		"order_kind": kind,
		"order_id":   orderID.String(),
		"total":      result.TotalDirectCost.StringFixed(2),
	})
	return result, nil
}

func groupItemsByProductType(items []model.CostingItem) map[string][]model.CostingItem {
	grouped := make(map[string][]model.CostingItem)
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		grouped[item.Variant.ProductType] = append(grouped[item.Variant.ProductType], item)
	}
	return grouped
}

// linesForRule applies one rule to the items of its product type. When the
// cost type carries a special-material price, the items split into a normal
// line and a special line priced separately.
func (s *costingService) linesForRule(rule *model.ProductCostRule, productType string, items []model.CostingItem) []model.OrderCostBreakdown {
	if rule.CostType == nil {
		return nil
	}
	if rule.CalculationMethod == model.MethodManual {
		// Placeholder at zero cost until someone enters the real figure.
		return []model.OrderCostBreakdown{{
			CostTypeID:         rule.CostTypeID,
			ProductType:        productType,
			Description:        rule.CostType.Name + " (pending manual entry)",
			CalculatedQuantity: decimal.Zero,
			UnitPrice:          rule.CostType.DefaultUnitPrice,
			Total:              decimal.Zero,
			IsManual:           false,
			AccountingStatus:   model.BreakdownPending,
		}}
	}

	normal := items
	var special []model.CostingItem
	if rule.CostType.SpecialMaterialPrice.IsPositive() {
		normal = normal[:0:0]
		for _, item := range items {
			if item.Variant.MaterialIsSpecial {
				special = append(special, item)
			} else {
				normal = append(normal, item)
			}
		}
	}

	var lines []model.OrderCostBreakdown
	if line := s.lineForItems(rule, productType, normal, rule.CostType.DefaultUnitPrice, ""); line != nil {
		lines = append(lines, *line)
	}
	if line := s.lineForItems(rule, productType, special, rule.CostType.SpecialMaterialPrice, " (special material)"); line != nil {
		lines = append(lines, *line)
	}
	return lines
}

func (s *costingService) lineForItems(rule *model.ProductCostRule, productType string, items []model.CostingItem, unitPrice decimal.Decimal, suffix string) *model.OrderCostBreakdown {
	if len(items) == 0 {
		return nil
	}

	var quantity decimal.Decimal
	switch rule.CalculationMethod {
	case model.MethodPerUnit:
		total := 0
		for _, item := range items {
			total += item.Quantity
		}
		quantity = decimal.NewFromInt(int64(total))
	case model.MethodLinearMeters:
		if rule.MaterialWidthCm == nil || !rule.MaterialWidthCm.IsPositive() {
			s.log.WithFields(logrus.Fields{
				"cost_type":    rule.CostType.Name,
				"product_type": productType,
			}).Warn("linear_meters rule has no material width, skipping")
			return nil
		}
		quantity = linearMeters(*rule.MaterialWidthCm, items)
	case model.MethodSquareMeters:
		quantity = squareMeters(items)
	default:
		return nil
	}

	if !quantity.IsPositive() {
		return nil
	}

	return &model.OrderCostBreakdown{
		CostTypeID:         rule.CostTypeID,
		ProductType:        productType,
		Description:        rule.CostType.Name + suffix,
		CalculatedQuantity: quantity,
		UnitPrice:          unitPrice,
		Total:              money.RoundAmount(quantity.Mul(unitPrice)),
		IsManual:           false,
		AccountingStatus:   model.BreakdownPending,
	}
}

// linearMeters estimates roll consumption with a single-row-per-column
// layout: same-sized pieces are pooled across order lines, placed side by
// side across the roll width, and each full row advances the roll by the
// piece height. Items without usable dimensions are skipped.
func linearMeters(materialWidth decimal.Decimal, items []model.CostingItem) decimal.Decimal {
	type pieceGroup struct {
		width, height decimal.Decimal
		quantity      int64
	}
	groups := make(map[string]*pieceGroup)
	for _, item := range items {
		width := item.Variant.WidthCm
		height := item.Variant.HeightCm
		if !width.IsPositive() || !height.IsPositive() {
			continue
		}
		key := width.StringFixed(2) + "x" + height.StringFixed(2)
		group, ok := groups[key]
		if !ok {
			group = &pieceGroup{width: width, height: height}
			groups[key] = group
		}
		group.quantity += int64(item.Quantity)
	}

	totalCm := decimal.Zero
	for _, group := range groups {
		columns := materialWidth.Div(group.width).Floor()
		if columns.LessThan(decimal.NewFromInt(1)) {
			columns = decimal.NewFromInt(1)
		}
		rows := decimal.NewFromInt(group.quantity).Div(columns).Ceil()
		totalCm = totalCm.Add(rows.Mul(group.height))
	}
	// centimeters of roll to meters, kept at 4 places
	return totalCm.Shift(-2).Round(4)
}

func squareMeters(items []model.CostingItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		width := item.Variant.WidthCm
		height := item.Variant.HeightCm
		if !width.IsPositive() || !height.IsPositive() {
			continue
		}
		area := width.Mul(height).Shift(-4) // cm² to m²
		total = total.Add(area.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(4)
}

// --- Manual lines ---

func (s *costingService) ListOrderCosts(ctx context.Context, kind string, orderID uuid.UUID) ([]model.OrderCostBreakdown, decimal.Decimal, error) {
	lines, err := s.costingRepo.ListBreakdownsForOrder(ctx, kind, orderID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to list cost lines: %w", err)
	}
	total, err := s.costingRepo.SumBreakdownsForOrder(ctx, kind, orderID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to sum cost lines: %w", err)
	}
	return lines, total, nil
}

func (s *costingService) CreateManualCost(ctx context.Context, kind string, orderID uuid.UUID, req ManualCostRequest) (*model.OrderCostBreakdown, error) {
	if _, err := s.orderRepo.FindCosted(ctx, kind, orderID); err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	line, err := s.manualLineFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if kind == model.OrderKindCatalog {
		line.OrderID = &orderID
	} else {
		line.InternalOrderID = &orderID
	}

	if err := s.costingRepo.CreateBreakdown(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to create manual cost line: %w", err)
	}
	return line, nil
}

func (s *costingService) UpdateManualCost(ctx context.Context, breakdownID uuid.UUID, req ManualCostRequest) (*model.OrderCostBreakdown, error) {
	existing, err := s.costingRepo.FindBreakdownByID(ctx, breakdownID)
	if err != nil {
		return nil, fmt.Errorf("cost line not found: %w", err)
	}
	if !existing.IsManual {
		return nil, fmt.Errorf("only manual cost lines can be edited")
	}
	if existing.AccountingStatus == model.BreakdownPosted {
		return nil, fmt.Errorf("cost line is already posted to accounting")
	}

	updated, err := s.manualLineFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	existing.CostTypeID = updated.CostTypeID
	existing.Description = updated.Description
	existing.CalculatedQuantity = updated.CalculatedQuantity
	existing.UnitPrice = updated.UnitPrice
	existing.Total = updated.Total
	existing.Notes = updated.Notes

	if err := s.costingRepo.SaveBreakdown(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to save manual cost line: %w", err)
	}
	return existing, nil
}

func (s *costingService) manualLineFromRequest(ctx context.Context, req ManualCostRequest) (*model.OrderCostBreakdown, error) {
	costTypeID, err := uuid.Parse(req.CostTypeID)
	if err != nil {
		return nil, fmt.Errorf("invalid cost type id: %w", err)
	}
	costType, err := s.costingRepo.FindCostTypeByID(ctx, costTypeID)
	if err != nil {
		return nil, fmt.Errorf("cost type not found: %w", err)
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %w", err)
	}
	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid unit price: %w", err)
	}
	if !quantity.IsPositive() || unitPrice.IsNegative() {
		return nil, fmt.Errorf("quantity must be positive and unit price non-negative")
	}

	return &model.OrderCostBreakdown{
		CostTypeID:         costType.ID,
		Description:        req.Description,
		CalculatedQuantity: quantity,
		UnitPrice:          unitPrice,
		Total:              money.RoundAmount(quantity.Mul(unitPrice)),
		IsManual:           true,
		AccountingStatus:   model.BreakdownPending,
		Notes:              req.Notes,
	}, nil
}

// --- Posting to accounting ---

func (s *costingService) PostBreakdownToAccounting(ctx context.Context, breakdownID uuid.UUID) (PostBreakdownResult, error) {
	var result PostBreakdownResult

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		breakdown, err := s.costingRepo.FindBreakdownByID(txCtx, breakdownID)
		if err != nil {
			return fmt.Errorf("cost line not found: %w", err)
		}
		if breakdown.AccountingStatus == model.BreakdownPosted {
			result = PostBreakdownResult{
				OK:        false,
				Message:   "cost line is already posted",
				Breakdown: breakdown,
			}
			return nil
		}

		config, err := s.configRepo.Get(txCtx)
		if err != nil {
			return fmt.Errorf("failed to load job costing config: %w", err)
		}
		if config.CostReserveAccountID == nil {
			result = PostBreakdownResult{
				OK:      false,
				Message: "no cost reserve account configured",
			}
			return nil
		}

		categoryName := breakdown.Description
		if breakdown.CostType != nil {
			categoryName = breakdown.CostType.Name
		}
		category, err := s.ledgerRepo.GetOrCreateCategory(txCtx, categoryName, model.CategoryTypeExpense)
		if err != nil {
			return fmt.Errorf("failed to resolve expense category: %w", err)
		}

		entry, err := s.ledger.PostEntry(txCtx, PostEntryInput{
			AccountID:   *config.CostReserveAccountID,
			Category:    category,
			Amount:      breakdown.Total,
			Description: breakdown.Description,
			EntryDate:   time.Now(),
		})
		if err != nil {
			return err
		}

		breakdown.AccountingStatus = model.BreakdownPosted
		breakdown.LedgerEntryID = &entry.ID
		if err := s.costingRepo.SaveBreakdown(txCtx, breakdown); err != nil {
			return fmt.Errorf("failed to save cost line: %w", err)
		}

		result = PostBreakdownResult{
			OK:        true,
			Message:   "cost line posted to accounting",
			Breakdown: breakdown,
		}
		return nil
	})
	if err != nil {
		return PostBreakdownResult{}, err
	}
	return result, nil
}
