package service

import (
	"context"
	"testing"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type overheadFixture struct {
	weekRepo    *mockWeekRepo
	statusRepo  *mockStatusRepo
	ledgerRepo  *mockLedgerRepo
	snapRepo    *mockSnapshotRepo
	costingRepo *mockCostingRepo
	orderRepo   *mockOrderRepo
	svc         OverheadService
}

func newOverheadFixture() *overheadFixture {
	f := &overheadFixture{
		weekRepo:    new(mockWeekRepo),
		statusRepo:  new(mockStatusRepo),
		ledgerRepo:  new(mockLedgerRepo),
		snapRepo:    new(mockSnapshotRepo),
		costingRepo: new(mockCostingRepo),
		orderRepo:   new(mockOrderRepo),
	}
	profit := NewProfitService(f.costingRepo, f.orderRepo)
	f.svc = NewOverheadService(f.weekRepo, f.statusRepo, f.ledgerRepo, f.snapRepo, profit)
	return f
}

func TestComputeForWeekOpenWeek(t *testing.T) {
	f := newOverheadFixture()
	week := openWeek(2025, 10)

	f.ledgerRepo.On("SumFixedCosts", mock.Anything, week.StartDate, week.EndDate).Return(d("20000"), nil)
	f.statusRepo.On("SumCollectedBetween", mock.Anything, week.StartDate, week.EndDate).Return(d("100000"), nil)

	result, err := f.svc.ComputeForWeek(context.Background(), week, nil)
	require.NoError(t, err)
	assert.False(t, result.Frozen)
	assert.True(t, result.OverheadPercentage.Equal(d("20")), "pct %s", result.OverheadPercentage)
	assert.Equal(t, "2025-03-03", result.StartDate)
	assert.Equal(t, "2025-03-09", result.EndDate)
}

func TestComputeForWeekZeroCollectedMeansZeroRate(t *testing.T) {
	f := newOverheadFixture()
	week := openWeek(2025, 10)

	f.ledgerRepo.On("SumFixedCosts", mock.Anything, week.StartDate, week.EndDate).Return(d("20000"), nil)
	f.statusRepo.On("SumCollectedBetween", mock.Anything, week.StartDate, week.EndDate).Return(decimal.Zero, nil)

	result, err := f.svc.ComputeForWeek(context.Background(), week, nil)
	require.NoError(t, err)
	assert.True(t, result.OverheadPercentage.IsZero())
}

func TestComputeForWeekClosedWeekReturnsStoredNumbers(t *testing.T) {
	f := newOverheadFixture()
	week := openWeek(2025, 10)
	week.Status = model.WeekClosed
	week.TotalFixedCosts = d("20000")
	week.TotalSales = d("100000")
	week.OverheadPercentage = d("20")

	result, err := f.svc.ComputeForWeek(context.Background(), week, nil)
	require.NoError(t, err)
	assert.True(t, result.Frozen)
	assert.True(t, result.OverheadPercentage.Equal(d("20")))
	// frozen weeks never touch current data
	f.ledgerRepo.AssertNotCalled(t, "SumFixedCosts", mock.Anything, mock.Anything, mock.Anything)
	f.statusRepo.AssertNotCalled(t, "SumCollectedBetween", mock.Anything, mock.Anything, mock.Anything)
}

func TestLivePreviewUntouchedWeekDoesNotPersist(t *testing.T) {
	f := newOverheadFixture()

	f.weekRepo.On("FindByYearWeek", mock.Anything, 2025, 20).Return(nil, assert.AnError)
	f.ledgerRepo.On("SumFixedCosts", mock.Anything, mock.Anything, mock.Anything).Return(decimal.Zero, nil)
	f.statusRepo.On("SumCollectedBetween", mock.Anything, mock.Anything, mock.Anything).Return(decimal.Zero, nil)
	f.statusRepo.On("ListCollectedBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.FinancialStatus{}, nil)

	preview, err := f.svc.LivePreview(context.Background(), 2025, 20)
	require.NoError(t, err)
	assert.Equal(t, model.WeekOpen, preview.WeekStatus)
	assert.Equal(t, 0, preview.OrdersCount)
	assert.Equal(t, "2025-05-12", preview.Overhead.StartDate)
	f.weekRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLivePreviewClosedWeekReadsSnapshots(t *testing.T) {
	f := newOverheadFixture()
	week := openWeek(2025, 10)
	week.Status = model.WeekClosed
	week.TotalNetProfit = d("60000")
	week.OrdersCount = 1

	f.weekRepo.On("FindByYearWeek", mock.Anything, 2025, 10).Return(week, nil)
	f.snapRepo.On("ListByWeek", mock.Anything, week.ID).Return([]model.OrderFinancialSnapshot{
		{
			FinancialStatusID: uuid.New(),
			SaleAmount:        d("100000"),
			DirectCosts:       d("15000"),
			ShippingCost:      d("5000"),
			OverheadAmount:    d("20000"),
			NetProfit:         d("60000"),
		},
	}, nil)

	preview, err := f.svc.LivePreview(context.Background(), 2025, 10)
	require.NoError(t, err)
	assert.True(t, preview.Overhead.Frozen)
	require.Len(t, preview.Orders, 1)
	assert.True(t, preview.TotalNetProfit.Equal(d("60000")))
	// frozen previews come from the snapshots, not live profit math
	f.costingRepo.AssertNotCalled(t, "SumBreakdownsForOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestLivePreviewOpenWeekComputesPerOrder(t *testing.T) {
	f := newOverheadFixture()
	week := openWeek(2025, 10)

	f.weekRepo.On("FindByYearWeek", mock.Anything, 2025, 10).Return(week, nil)
	f.ledgerRepo.On("SumFixedCosts", mock.Anything, mock.Anything, mock.Anything).Return(d("20000"), nil)
	f.statusRepo.On("SumCollectedBetween", mock.Anything, mock.Anything, mock.Anything).Return(d("100000"), nil)

	status := collectedCatalogStatus("100000", "5000")
	f.statusRepo.On("ListCollectedBetween", mock.Anything, week.StartDate, week.EndDate).Return([]model.FinancialStatus{status}, nil)
	f.costingRepo.On("SumBreakdownsForOrder", mock.Anything, model.OrderKindCatalog, *status.OrderID).Return(d("15000"), nil)

	preview, err := f.svc.LivePreview(context.Background(), 2025, 10)
	require.NoError(t, err)
	require.Len(t, preview.Orders, 1)
	assert.True(t, preview.Orders[0].NetProfit.Equal(d("60000")), "net %s", preview.Orders[0].NetProfit)
	assert.True(t, preview.TotalNetProfit.Equal(d("60000")))
	assert.Equal(t, 1, preview.OrdersCount)
}
