package service

import (
	"context"
	"fmt"
	"time"

	"stickerops/internal/model"
	"stickerops/internal/repository"
	"stickerops/pkg/money"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

// OverheadResult is the weekly overhead rate plus the figures it came from.
type OverheadResult struct {
	Year               int             `json:"year"`
	WeekNumber         int             `json:"week_number"`
	StartDate          string          `json:"start_date"`
	EndDate            string          `json:"end_date"`
	TotalFixedCosts    decimal.Decimal `json:"total_fixed_costs"`
	TotalCollected     decimal.Decimal `json:"total_collected"`
	OverheadPercentage decimal.Decimal `json:"overhead_percentage"`
	Frozen             bool            `json:"frozen"`
}

// WeekPreviewOrder is one collected order's live profitability inside a
// week preview.
type WeekPreviewOrder struct {
	FinancialStatusID string          `json:"financial_status_id"`
	OrderRef          string          `json:"order_ref"`
	OrderKind         string          `json:"order_kind"`
	SaleAmount        decimal.Decimal `json:"sale_amount"`
	DirectCosts       decimal.Decimal `json:"direct_costs"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	OverheadAmount    decimal.Decimal `json:"overhead_amount"`
	NetProfit         decimal.Decimal `json:"net_profit"`
}

// WeekPreview is the live (or frozen) view of a week's numbers.
type WeekPreview struct {
	Overhead       OverheadResult     `json:"overhead"`
	Orders         []WeekPreviewOrder `json:"orders"`
	TotalNetProfit decimal.Decimal    `json:"total_net_profit"`
	OrdersCount    int                `json:"orders_count"`
	WeekStatus     string             `json:"week_status"`
}

// --- Interface ---

type OverheadService interface {
	// WeekForDate resolves (and creates if missing) the financial week
	// containing the given date.
	WeekForDate(ctx context.Context, date time.Time) (*model.FinancialWeek, error)
	CurrentWeek(ctx context.Context) (*model.FinancialWeek, error)

	// ComputeForWeek calculates fixed costs / collected sales for the week's
	// window. A non-nil cutoff shortens the window end, which keeps a live
	// preview from counting entries newer than the moment being previewed.
	ComputeForWeek(ctx context.Context, week *model.FinancialWeek, cutoff *time.Time) (OverheadResult, error)

	// LivePreview returns a closed week's frozen numbers as stored, or an
	// open week's numbers computed on the fly from current data.
	LivePreview(ctx context.Context, year, weekNumber int) (WeekPreview, error)
}

type overheadService struct {
	weekRepo   repository.FinancialWeekRepository
	statusRepo repository.FinancialStatusRepository
	ledgerRepo repository.LedgerRepository
	snapRepo   repository.SnapshotRepository
	profit     ProfitService
}

func NewOverheadService(
	weekRepo repository.FinancialWeekRepository,
	statusRepo repository.FinancialStatusRepository,
	ledgerRepo repository.LedgerRepository,
	snapRepo repository.SnapshotRepository,
	profit ProfitService,
) OverheadService {
	return &overheadService{
		weekRepo:   weekRepo,
		statusRepo: statusRepo,
		ledgerRepo: ledgerRepo,
		snapRepo:   snapRepo,
		profit:     profit,
	}
}

// --- Week window math ---

// weekBounds returns the Monday 00:00 and Sunday 00:00 dates of the ISO week
// containing t, plus the ISO year and week number.
func weekBounds(t time.Time) (year, weekNumber int, start, end time.Time) {
	year, weekNumber = t.ISOWeek()

	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start = day.AddDate(0, 0, -(weekday - 1))
	end = start.AddDate(0, 0, 6)
	return year, weekNumber, start, end
}

// --- Implementation ---

func (s *overheadService) WeekForDate(ctx context.Context, date time.Time) (*model.FinancialWeek, error) {
	year, weekNumber, start, end := weekBounds(date)
	week, err := s.weekRepo.GetOrCreate(ctx, year, weekNumber, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve financial week: %w", err)
	}
	return week, nil
}

func (s *overheadService) CurrentWeek(ctx context.Context) (*model.FinancialWeek, error) {
	return s.WeekForDate(ctx, time.Now())
}

func (s *overheadService) ComputeForWeek(ctx context.Context, week *model.FinancialWeek, cutoff *time.Time) (OverheadResult, error) {
	result := OverheadResult{
		Year:       week.Year,
		WeekNumber: week.WeekNumber,
		StartDate:  week.StartDate.Format("2006-01-02"),
		EndDate:    week.EndDate.Format("2006-01-02"),
	}

	if week.Status == model.WeekClosed {
		result.TotalFixedCosts = week.TotalFixedCosts
		result.TotalCollected = week.TotalSales
		result.OverheadPercentage = week.OverheadPercentage
		result.Frozen = true
		return result, nil
	}

	end := week.EndDate
	if cutoff != nil && cutoff.Before(end) {
		end = *cutoff
	}

	fixedCosts, err := s.ledgerRepo.SumFixedCosts(ctx, week.StartDate, end)
	if err != nil {
		return OverheadResult{}, fmt.Errorf("failed to sum fixed costs: %w", err)
	}
	collected, err := s.statusRepo.SumCollectedBetween(ctx, week.StartDate, end)
	if err != nil {
		return OverheadResult{}, fmt.Errorf("failed to sum collected sales: %w", err)
	}

	result.TotalFixedCosts = fixedCosts
	result.TotalCollected = collected
	// Zero collected sales means a zero rate, never a division error.
	result.OverheadPercentage = money.Ratio(fixedCosts, collected)
	return result, nil
}

func (s *overheadService) LivePreview(ctx context.Context, year, weekNumber int) (WeekPreview, error) {
	week, err := s.weekRepo.FindByYearWeek(ctx, year, weekNumber)
	if err != nil {
		// Previewing a week nobody touched yet: derive its bounds and show
		// zeros without persisting anything.
		start, end, boundsErr := boundsForISOWeek(year, weekNumber)
		if boundsErr != nil {
			return WeekPreview{}, boundsErr
		}
		week = &model.FinancialWeek{
			Year:       year,
			WeekNumber: weekNumber,
			StartDate:  start,
			EndDate:    end,
			Status:     model.WeekOpen,
		}
	}

	if week.Status == model.WeekClosed {
		return s.frozenPreview(ctx, week)
	}

	overhead, err := s.ComputeForWeek(ctx, week, nil)
	if err != nil {
		return WeekPreview{}, err
	}

	statuses, err := s.statusRepo.ListCollectedBetween(ctx, week.StartDate, week.EndDate)
	if err != nil {
		return WeekPreview{}, fmt.Errorf("failed to list collected orders: %w", err)
	}

	preview := WeekPreview{
		Overhead:       overhead,
		Orders:         make([]WeekPreviewOrder, 0, len(statuses)),
		TotalNetProfit: decimal.Zero,
		WeekStatus:     week.Status,
	}
	for i := range statuses {
		status := &statuses[i]
		breakdown, profitErr := s.profit.ForStatus(ctx, status, overhead.OverheadPercentage)
		if profitErr != nil {
			return WeekPreview{}, profitErr
		}
		preview.Orders = append(preview.Orders, WeekPreviewOrder{
			FinancialStatusID: status.ID.String(),
			OrderRef:          status.OrderRef(),
			OrderKind:         status.OrderKind(),
			SaleAmount:        breakdown.SaleAmount,
			DirectCosts:       breakdown.DirectCosts,
			ShippingCost:      breakdown.ShippingCost,
			OverheadAmount:    breakdown.OverheadAmount,
			NetProfit:         breakdown.NetProfit,
		})
		preview.TotalNetProfit = preview.TotalNetProfit.Add(breakdown.NetProfit)
	}
	preview.OrdersCount = len(preview.Orders)
	return preview, nil
}

// frozenPreview rebuilds the preview from the stored snapshots so closed
// weeks always report the numbers they closed with.
func (s *overheadService) frozenPreview(ctx context.Context, week *model.FinancialWeek) (WeekPreview, error) {
	snapshots, err := s.snapRepo.ListByWeek(ctx, week.ID)
	if err != nil {
		return WeekPreview{}, fmt.Errorf("failed to list week snapshots: %w", err)
	}

	preview := WeekPreview{
		Overhead: OverheadResult{
			Year:               week.Year,
			WeekNumber:         week.WeekNumber,
			StartDate:          week.StartDate.Format("2006-01-02"),
			EndDate:            week.EndDate.Format("2006-01-02"),
			TotalFixedCosts:    week.TotalFixedCosts,
			TotalCollected:     week.TotalSales,
			OverheadPercentage: week.OverheadPercentage,
			Frozen:             true,
		},
		Orders:         make([]WeekPreviewOrder, 0, len(snapshots)),
		TotalNetProfit: week.TotalNetProfit,
		OrdersCount:    week.OrdersCount,
		WeekStatus:     week.Status,
	}
	for i := range snapshots {
		snap := &snapshots[i]
		row := WeekPreviewOrder{
			FinancialStatusID: snap.FinancialStatusID.String(),
			SaleAmount:        snap.SaleAmount,
			DirectCosts:       snap.DirectCosts,
			ShippingCost:      snap.ShippingCost,
			OverheadAmount:    snap.OverheadAmount,
			NetProfit:         snap.NetProfit,
		}
		if snap.FinancialStatus != nil {
			row.OrderRef = snap.FinancialStatus.OrderRef()
			row.OrderKind = snap.FinancialStatus.OrderKind()
		}
		preview.Orders = append(preview.Orders, row)
	}
	return preview, nil
}

// boundsForISOWeek finds the Monday and Sunday of an ISO (year, week) pair by
// walking from January 4th, which is always inside week 1.
func boundsForISOWeek(year, weekNumber int) (time.Time, time.Time, error) {
	if weekNumber < 1 || weekNumber > 53 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid week number %d", weekNumber)
	}
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	_, _, week1Start, _ := weekBounds(jan4)
	start := week1Start.AddDate(0, 0, (weekNumber-1)*7)
	if y, w := start.ISOWeek(); y != year || w != weekNumber {
		return time.Time{}, time.Time{}, fmt.Errorf("year %d has no week %d", year, weekNumber)
	}
	return start, start.AddDate(0, 0, 6), nil
}
