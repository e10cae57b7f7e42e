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

// Category names for the ledger entries the closing generates.
const (
	categorySavings       = "Weekly savings"
	categoryDistribution  = "Weekly distribution"
	categoryPartnerPayout = "Partner distribution payout"
)

// --- DTOs ---

type CloseWeekResult struct {
	OK            bool                        `json:"ok"`
	Message       string                      `json:"message"`
	Week          *model.FinancialWeek        `json:"week,omitempty"`
	Distributions []model.PartnerDistribution `json:"distributions,omitempty"`
	SkippedOrders int                         `json:"skipped_orders"`
}

type PayDistributionResult struct {
	OK           bool                       `json:"ok"`
	Message      string                     `json:"message"`
	Distribution *model.PartnerDistribution `json:"distribution,omitempty"`
}

// --- Interface ---

type ClosingService interface {
	// CloseWeek freezes a week: snapshots every collected order, computes
	// the week totals, splits the distributable profit into savings and the
	// partner pool, records the per-partner distributions and the ledger
	// postings. Everything happens in one transaction; a failure anywhere
	// leaves the week untouched.
	CloseWeek(ctx context.Context, year, weekNumber int, closedBy *uuid.UUID) (CloseWeekResult, error)

	// PayDistribution marks one partner distribution paid and posts the
	// payout expense from the given account, falling back to the configured
	// distribution account. Paying is one-way and is refused when no account
	// can receive the posting.
	PayDistribution(ctx context.Context, distributionID uuid.UUID, accountID *uuid.UUID) (PayDistributionResult, error)

	ListClosedWeeks(ctx context.Context, page, limit int) ([]model.FinancialWeek, int64, error)
	TotalSavings(ctx context.Context) (decimal.Decimal, error)
	WeekDistributions(ctx context.Context, weekID uuid.UUID) ([]model.PartnerDistribution, error)
}

type closingService struct {
	weekRepo    repository.FinancialWeekRepository
	statusRepo  repository.FinancialStatusRepository
	snapRepo    repository.SnapshotRepository
	partnerRepo repository.PartnerRepository
	distRepo    repository.DistributionRepository
	configRepo  repository.ConfigRepository
	ledgerRepo  repository.LedgerRepository
	overhead    OverheadService
	profit      ProfitService
	ledger      LedgerService
	txManager   repository.TransactionManager
	events      EventPublisher
	log         *logrus.Logger
}

func NewClosingService(
	weekRepo repository.FinancialWeekRepository,
	statusRepo repository.FinancialStatusRepository,
	snapRepo repository.SnapshotRepository,
	partnerRepo repository.PartnerRepository,
	distRepo repository.DistributionRepository,
	configRepo repository.ConfigRepository,
	ledgerRepo repository.LedgerRepository,
	overhead OverheadService,
	profit ProfitService,
	ledger LedgerService,
	txManager repository.TransactionManager,
	events EventPublisher,
	log *logrus.Logger,
) ClosingService {
	return &closingService{
		weekRepo:    weekRepo,
		statusRepo:  statusRepo,
		snapRepo:    snapRepo,
		partnerRepo: partnerRepo,
		distRepo:    distRepo,
		configRepo:  configRepo,
		ledgerRepo:  ledgerRepo,
		overhead:    overhead,
		profit:      profit,
		ledger:      ledger,
		txManager:   txManager,
		events:      events,
		log:         log,
	}
}

// --- Implementation ---

func (s *closingService) CloseWeek(ctx context.Context, year, weekNumber int, closedBy *uuid.UUID) (CloseWeekResult, error) {
	var result CloseWeekResult

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		start, end, err := boundsForISOWeek(year, weekNumber)
		if err != nil {
			result = CloseWeekResult{OK: false, Message: err.Error()}
			return nil
		}
		created, err := s.weekRepo.GetOrCreate(txCtx, year, weekNumber, start, end)
		if err != nil {
			return fmt.Errorf("failed to resolve financial week: %w", err)
		}
		week, err := s.weekRepo.FindByIDForUpdate(txCtx, created.ID)
		if err != nil {
			return fmt.Errorf("failed to lock financial week: %w", err)
		}

		if week.Status == model.WeekClosed {
			result = CloseWeekResult{
				OK:      false,
				Message: fmt.Sprintf("week %s is already closed", week.Label()),
				Week:    week,
			}
			return nil
		}

		config, err := s.configRepo.Get(txCtx)
		if err != nil {
			return fmt.Errorf("failed to load job costing config: %w", err)
		}

		overheadResult, err := s.overhead.ComputeForWeek(txCtx, week, nil)
		if err != nil {
			return err
		}

		statuses, err := s.statusRepo.ListCollectedBetween(txCtx, week.StartDate, week.EndDate)
		if err != nil {
			return fmt.Errorf("failed to list collected orders: %w", err)
		}

		totals := struct {
			direct, overheadApplied, net decimal.Decimal
		}{decimal.Zero, decimal.Zero, decimal.Zero}
		count := 0
		skipped := 0

		for i := range statuses {
			status := &statuses[i]

			// An order snapshotted by an earlier closing stays counted
			// there, never here.
			exists, existsErr := s.snapRepo.ExistsForStatus(txCtx, status.ID)
			if existsErr != nil {
				return fmt.Errorf("failed to check snapshot guard: %w", existsErr)
			}
			if exists {
				skipped++
				continue
			}

			breakdown, profitErr := s.profit.ForStatus(txCtx, status, overheadResult.OverheadPercentage)
			if profitErr != nil {
				return profitErr
			}

			snapshot := &model.OrderFinancialSnapshot{
				FinancialWeekID:    week.ID,
				FinancialStatusID:  status.ID,
				SaleAmount:         breakdown.SaleAmount,
				DirectCosts:        breakdown.DirectCosts,
				ShippingCost:       breakdown.ShippingCost,
				OverheadPercentage: breakdown.OverheadPercentage,
				OverheadAmount:     breakdown.OverheadAmount,
				NetProfit:          breakdown.NetProfit,
			}
			if createErr := s.snapRepo.Create(txCtx, snapshot); createErr != nil {
				return fmt.Errorf("failed to create order snapshot: %w", createErr)
			}

			totals.direct = totals.direct.Add(breakdown.DirectCosts).Add(breakdown.ShippingCost)
			totals.overheadApplied = totals.overheadApplied.Add(breakdown.OverheadAmount)
			totals.net = totals.net.Add(breakdown.NetProfit)
			count++
		}

		// A losing week distributes nothing; the loss shows in the stored
		// net profit but never produces negative payouts.
		clamped := totals.net
		if clamped.IsNegative() {
			clamped = decimal.Zero
		}
		savings := money.ApplyPercent(clamped, config.SavingsPercentage)
		pool := money.ApplyPercent(clamped, config.DistributionPercentage)

		now := time.Now()
		week.Status = model.WeekClosed
		week.TotalSales = overheadResult.TotalCollected
		week.TotalDirectCosts = totals.direct
		week.TotalFixedCosts = overheadResult.TotalFixedCosts
		week.OverheadPercentage = overheadResult.OverheadPercentage
		week.TotalOverheadApplied = totals.overheadApplied
		week.TotalNetProfit = totals.net
		week.SavingsAmount = savings
		week.DistributableAmount = pool
		week.OrdersCount = count
		week.ClosedAt = &now
		week.ClosedByID = closedBy
		if err := s.weekRepo.Save(txCtx, week); err != nil {
			return fmt.Errorf("failed to save closed week: %w", err)
		}

		if err := s.postClosingEntries(txCtx, week, config, savings, pool); err != nil {
			return err
		}

		distributions, err := s.createDistributions(txCtx, week, pool)
		if err != nil {
			return err
		}

		result = CloseWeekResult{
			OK:            true,
			Message:       fmt.Sprintf("week %s closed with %d orders", week.Label(), count),
			Week:          week,
			Distributions: distributions,
			SkippedOrders: skipped,
		}
		return nil
	})
	if err != nil {
		return CloseWeekResult{}, err
	}

	if result.OK {
		s.log.WithFields(logrus.Fields{
			"week":       result.Week.Label(),
			"orders":     result.Week.OrdersCount,
			"net_profit": result.Week.TotalNetProfit.StringFixed(2),
		}).Info("financial week closed")
		emit(s.events, EventWeekClosed, map[string]interface{}{
			"week_id":    result.Week.ID.String(),
			"week":       result.Week.Label(),
			"net_profit": result.Week.TotalNetProfit.StringFixed(2),
		})
	}
	return result, nil
}

// postClosingEntries writes the savings and distribution-pool movements when
// the config names accounts for them. A config without accounts still closes
// the week, just without ledger postings. Both postings are expenses: the
// close sets profit aside, it does not earn it again.
func (s *closingService) postClosingEntries(ctx context.Context, week *model.FinancialWeek, config *model.JobCostingConfig, savings, pool decimal.Decimal) error {
	if config.SavingsAccountID != nil && savings.IsPositive() {
		category, err := s.ledgerRepo.GetOrCreateCategory(ctx, categorySavings, model.CategoryTypeExpense)
		if err != nil {
			return fmt.Errorf("failed to resolve savings category: %w", err)
		}
		if _, err := s.ledger.PostEntry(ctx, PostEntryInput{
			AccountID:       *config.SavingsAccountID,
			Category:        category,
			Amount:          savings,
			Description:     fmt.Sprintf("Savings for week %s", week.Label()),
			EntryDate:       week.EndDate,
			FinancialWeekID: &week.ID,
		}); err != nil {
			return err
		}
	}

	if config.DistributionAccountID != nil && pool.IsPositive() {
		category, err := s.ledgerRepo.GetOrCreateCategory(ctx, categoryDistribution, model.CategoryTypeExpense)
		if err != nil {
			return fmt.Errorf("failed to resolve distribution category: %w", err)
		}
		if _, err := s.ledger.PostEntry(ctx, PostEntryInput{
			AccountID:       *config.DistributionAccountID,
			Category:        category,
			Amount:          pool,
			Description:     fmt.Sprintf("Distribution pool for week %s", week.Label()),
			EntryDate:       week.EndDate,
			FinancialWeekID: &week.ID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *closingService) createDistributions(ctx context.Context, week *model.FinancialWeek, pool decimal.Decimal) ([]model.PartnerDistribution, error) {
	partners, err := s.partnerRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active partners: %w", err)
	}

	distributions := make([]model.PartnerDistribution, 0, len(partners))
	for i := range partners {
		partner := &partners[i]
		gross := money.ApplyPercent(pool, partner.SharePercentage)
		dist, createErr := s.distRepo.GetOrCreate(ctx, &model.PartnerDistribution{
			FinancialWeekID: week.ID,
			PartnerID:       partner.ID,
			SharePercentage: partner.SharePercentage,
			GrossAmount:     gross,
			Status:          model.DistributionPending,
		})
		if createErr != nil {
			return nil, fmt.Errorf("failed to create distribution for partner %s: %w", partner.Name, createErr)
		}
		distributions = append(distributions, *dist)
	}
	return distributions, nil
}

func (s *closingService) PayDistribution(ctx context.Context, distributionID uuid.UUID, accountID *uuid.UUID) (PayDistributionResult, error) {
	var result PayDistributionResult

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		dist, err := s.distRepo.FindByIDForUpdate(txCtx, distributionID)
		if err != nil {
			return fmt.Errorf("distribution not found: %w", err)
		}

		if dist.Status == model.DistributionPaid {
			result = PayDistributionResult{
				OK:           false,
				Message:      "distribution is already paid",
				Distribution: dist,
			}
			return nil
		}

		payoutAccountID := accountID
		if payoutAccountID == nil {
			config, cfgErr := s.configRepo.Get(txCtx)
			if cfgErr != nil {
				return fmt.Errorf("failed to load job costing config: %w", cfgErr)
			}
			payoutAccountID = config.DistributionAccountID
		}
		if payoutAccountID == nil {
			result = PayDistributionResult{
				OK:           false,
				Message:      "no account to pay the distribution from",
				Distribution: dist,
			}
			return nil
		}

		if dist.GrossAmount.IsPositive() {
			category, catErr := s.ledgerRepo.GetOrCreateCategory(txCtx, categoryPartnerPayout, model.CategoryTypeExpense)
			if catErr != nil {
				return fmt.Errorf("failed to resolve payout category: %w", catErr)
			}
			partnerName := ""
			if dist.Partner != nil {
				partnerName = dist.Partner.Name
			}
			weekLabel := ""
			if dist.FinancialWeek != nil {
				weekLabel = dist.FinancialWeek.Label()
			}
			entry, postErr := s.ledger.PostEntry(txCtx, PostEntryInput{
				AccountID:       *payoutAccountID,
				Category:        category,
				Amount:          dist.GrossAmount,
				Description:     fmt.Sprintf("Payout to %s for week %s", partnerName, weekLabel),
				EntryDate:       time.Now(),
				FinancialWeekID: &dist.FinancialWeekID,
			})
			if postErr != nil {
				return postErr
			}
			dist.LedgerEntryID = &entry.ID
		}

		now := time.Now()
		dist.Status = model.DistributionPaid
		dist.PaidAt = &now
		if err := s.distRepo.Save(txCtx, dist); err != nil {
			return fmt.Errorf("failed to save distribution: %w", err)
		}

		result = PayDistributionResult{
			OK:           true,
			Message:      "distribution paid",
			Distribution: dist,
		}
		return nil
	})
	if err != nil {
		return PayDistributionResult{}, err
	}

	if result.OK {
		emit(s.events, EventDistributionPaid, map[string]string{
			"distribution_id": distributionID.String(),
			"amount":          result.Distribution.GrossAmount.StringFixed(2),
		})
	}
	return result, nil
}

func (s *closingService) ListClosedWeeks(ctx context.Context, page, limit int) ([]model.FinancialWeek, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.weekRepo.ListClosed(ctx, page, limit)
}

func (s *closingService) TotalSavings(ctx context.Context) (decimal.Decimal, error) {
	return s.weekRepo.SumClosedSavings(ctx)
}

func (s *closingService) WeekDistributions(ctx context.Context, weekID uuid.UUID) ([]model.PartnerDistribution, error) {
	return s.distRepo.ListByWeek(ctx, weekID)
}
