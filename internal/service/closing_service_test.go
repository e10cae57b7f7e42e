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

// closingFixture wires a ClosingService over mocked repositories with the
// real profit, overhead and ledger services in between, so the tests exercise
// the full closing math rather than stubbed intermediate numbers.
type closingFixture struct {
	weekRepo    *mockWeekRepo
	statusRepo  *mockStatusRepo
	snapRepo    *mockSnapshotRepo
	partnerRepo *mockPartnerRepo
	distRepo    *mockDistRepo
	configRepo  *mockConfigRepo
	ledgerRepo  *mockLedgerRepo
	accountRepo *mockAccountRepo
	costingRepo *mockCostingRepo
	orderRepo   *mockOrderRepo
	events      *recordingPublisher
	svc         ClosingService
}

func newClosingFixture() *closingFixture {
	f := &closingFixture{
		weekRepo:    new(mockWeekRepo),
		statusRepo:  new(mockStatusRepo),
		snapRepo:    new(mockSnapshotRepo),
		partnerRepo: new(mockPartnerRepo),
		distRepo:    new(mockDistRepo),
		configRepo:  new(mockConfigRepo),
		ledgerRepo:  new(mockLedgerRepo),
		accountRepo: new(mockAccountRepo),
		costingRepo: new(mockCostingRepo),
		orderRepo:   new(mockOrderRepo),
		events:      &recordingPublisher{},
	}
	profit := NewProfitService(f.costingRepo, f.orderRepo)
	overhead := NewOverheadService(f.weekRepo, f.statusRepo, f.ledgerRepo, f.snapRepo, profit)
	ledger := NewLedgerService(f.ledgerRepo, f.accountRepo, passthroughTxManager{})
	f.svc = NewClosingService(
		f.weekRepo, f.statusRepo, f.snapRepo, f.partnerRepo, f.distRepo,
		f.configRepo, f.ledgerRepo, overhead, profit, ledger,
		passthroughTxManager{}, f.events, testLogger(),
	)
	return f
}

func openWeek(year, weekNumber int) *model.FinancialWeek {
	start, end, err := boundsForISOWeek(year, weekNumber)
	if err != nil {
		panic(err)
	}
	return &model.FinancialWeek{
		ID:         uuid.New(),
		Year:       year,
		WeekNumber: weekNumber,
		StartDate:  start,
		EndDate:    end,
		Status:     model.WeekOpen,
	}
}

func (f *closingFixture) expectWeek(week *model.FinancialWeek) {
	f.weekRepo.On("GetOrCreate", mock.Anything, week.Year, week.WeekNumber, mock.Anything, mock.Anything).Return(week, nil)
	f.weekRepo.On("FindByIDForUpdate", mock.Anything, week.ID).Return(week, nil)
}

func collectedCatalogStatus(sale, shipping string) model.FinancialStatus {
	orderID := uuid.New()
	return model.FinancialStatus{
		ID:         uuid.New(),
		OrderID:    &orderID,
		State:      model.StateCollected,
		SaleAmount: d(sale),
		Order:      &model.Order{ID: orderID, ShippingCost: d(shipping)},
	}
}

func TestCloseWeekHappyPath(t *testing.T) {
	f := newClosingFixture()
	week := openWeek(2025, 10)
	f.expectWeek(week)

	savingsAccount := &model.Account{ID: uuid.New(), Name: "Savings"}
	distributionAccount := &model.Account{ID: uuid.New(), Name: "Distribution"}
	f.configRepo.On("Get", mock.Anything).Return(&model.JobCostingConfig{
		SavingsPercentage:      d("5"),
		DistributionPercentage: d("95"),
		SavingsAccountID:       &savingsAccount.ID,
		DistributionAccountID:  &distributionAccount.ID,
	}, nil)

	// fixed costs 20,000 against 100,000 collected: 20% overhead
	f.ledgerRepo.On("SumFixedCosts", mock.Anything, mock.Anything, mock.Anything).Return(d("20000"), nil)
	f.statusRepo.On("SumCollectedBetween", mock.Anything, mock.Anything, mock.Anything).Return(d("100000"), nil)

	status := collectedCatalogStatus("100000", "5000")
	f.statusRepo.On("ListCollectedBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.FinancialStatus{status}, nil)
	f.snapRepo.On("ExistsForStatus", mock.Anything, status.ID).Return(false, nil)
	f.costingRepo.On("SumBreakdownsForOrder", mock.Anything, model.OrderKindCatalog, *status.OrderID).Return(d("15000"), nil)

	var snapshot *model.OrderFinancialSnapshot
	f.snapRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.OrderFinancialSnapshot")).
		Run(func(args mock.Arguments) { snapshot = args.Get(1).(*model.OrderFinancialSnapshot) }).Return(nil)

	f.weekRepo.On("Save", mock.Anything, week).Return(nil)

	f.ledgerRepo.On("GetOrCreateCategory", mock.Anything, "Weekly savings", model.CategoryTypeExpense).
		Return(&model.TransactionCategory{ID: uuid.New(), Name: "Weekly savings", TransactionType: model.CategoryTypeExpense}, nil)
	f.ledgerRepo.On("GetOrCreateCategory", mock.Anything, "Weekly distribution", model.CategoryTypeExpense).
		Return(&model.TransactionCategory{ID: uuid.New(), Name: "Weekly distribution", TransactionType: model.CategoryTypeExpense}, nil)
	f.accountRepo.On("FindByIDForUpdate", mock.Anything, savingsAccount.ID).Return(savingsAccount, nil)
	f.accountRepo.On("FindByIDForUpdate", mock.Anything, distributionAccount.ID).Return(distributionAccount, nil)
	f.accountRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.Account")).Return(nil)
	f.ledgerRepo.On("CreateEntry", mock.Anything, mock.AnythingOfType("*model.LedgerEntry")).Return(nil)

	partnerA := model.Partner{ID: uuid.New(), Name: "Ana", SharePercentage: d("50"), IsActive: true}
	partnerB := model.Partner{ID: uuid.New(), Name: "Bruno", SharePercentage: d("50"), IsActive: true}
	f.partnerRepo.On("ListActive", mock.Anything).Return([]model.Partner{partnerA, partnerB}, nil)
	f.distRepo.On("GetOrCreate", mock.Anything, mock.MatchedBy(func(dist *model.PartnerDistribution) bool {
		return dist.PartnerID == partnerA.ID
	})).Return(&model.PartnerDistribution{ID: uuid.New(), PartnerID: partnerA.ID, GrossAmount: d("28500")}, nil)
	f.distRepo.On("GetOrCreate", mock.Anything, mock.MatchedBy(func(dist *model.PartnerDistribution) bool {
		return dist.PartnerID == partnerB.ID
	})).Return(&model.PartnerDistribution{ID: uuid.New(), PartnerID: partnerB.ID, GrossAmount: d("28500")}, nil)

	result, err := f.svc.CloseWeek(context.Background(), 2025, 10, nil)
	require.NoError(t, err)
	require.True(t, result.OK, result.Message)

	// sale 100,000 - direct 15,000 - shipping 5,000 - overhead 20,000 = 60,000
	require.NotNil(t, snapshot)
	assert.True(t, snapshot.NetProfit.Equal(d("60000")), "net %s", snapshot.NetProfit)
	assert.True(t, snapshot.OverheadAmount.Equal(d("20000")))

	assert.Equal(t, model.WeekClosed, week.Status)
	assert.True(t, week.TotalSales.Equal(d("100000")))
	assert.True(t, week.TotalNetProfit.Equal(d("60000")))
	assert.True(t, week.SavingsAmount.Equal(d("3000")))
	// the stored distributable is the 95% pool, matching the payouts
	assert.True(t, week.DistributableAmount.Equal(d("57000")), "distributable %s", week.DistributableAmount)
	assert.Equal(t, 1, week.OrdersCount)
	assert.NotNil(t, week.ClosedAt)

	// both closing postings are expenses that draw the accounts down
	assert.True(t, savingsAccount.CurrentBalance.Equal(d("-3000")), "savings balance %s", savingsAccount.CurrentBalance)
	assert.True(t, distributionAccount.CurrentBalance.Equal(d("-57000")), "distribution balance %s", distributionAccount.CurrentBalance)
	require.Len(t, result.Distributions, 2)
	assert.Equal(t, 0, result.SkippedOrders)

	gross := decimal.Zero
	for _, dist := range result.Distributions {
		gross = gross.Add(dist.GrossAmount)
	}
	assert.True(t, gross.Equal(d("57000")))

	assert.Contains(t, f.events.events, EventWeekClosed)
}

func TestCloseWeekAlreadyClosed(t *testing.T) {
	f := newClosingFixture()
	week := openWeek(2025, 10)
	week.Status = model.WeekClosed
	f.expectWeek(week)

	result, err := f.svc.CloseWeek(context.Background(), 2025, 10, nil)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "already closed")
	f.weekRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, f.events.events)
}

func TestCloseWeekInvalidWeekNumber(t *testing.T) {
	f := newClosingFixture()

	result, err := f.svc.CloseWeek(context.Background(), 2025, 60, nil)
	require.NoError(t, err)
	assert.False(t, result.OK)
	f.weekRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCloseWeekLossDistributesNothing(t *testing.T) {
	f := newClosingFixture()
	week := openWeek(2025, 11)
	f.expectWeek(week)

	f.configRepo.On("Get", mock.Anything).Return(&model.JobCostingConfig{
		SavingsPercentage:      d("5"),
		DistributionPercentage: d("95"),
	}, nil)

	// 50% overhead on a sale whose direct costs already exceed it
	f.ledgerRepo.On("SumFixedCosts", mock.Anything, mock.Anything, mock.Anything).Return(d("5000"), nil)
	f.statusRepo.On("SumCollectedBetween", mock.Anything, mock.Anything, mock.Anything).Return(d("10000"), nil)

	status := collectedCatalogStatus("10000", "0")
	f.statusRepo.On("ListCollectedBetween", mock.Anything, mock.Anything, mock.Anything).Return([]model.FinancialStatus{status}, nil)
	f.snapRepo.On("ExistsForStatus", mock.Anything, status.ID).Return(false, nil)
	f.snapRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.OrderFinancialSnapshot")).Return(nil)
	f.costingRepo.On("SumBreakdownsForOrder", mock.Anything, model.OrderKindCatalog, *status.OrderID).Return(d("15000"), nil)

	f.weekRepo.On("Save", mock.Anything, week).Return(nil)
	f.partnerRepo.On("ListActive", mock.Anything).Return([]model.Partner{}, nil)

	result, err := f.svc.CloseWeek(context.Background(), 2025, 11, nil)
	require.NoError(t, err)
	require.True(t, result.OK, result.Message)

	// the loss is recorded, the payouts are not
	assert.True(t, week.TotalNetProfit.Equal(d("-10000")), "net %s", week.TotalNetProfit)
	assert.True(t, week.SavingsAmount.IsZero())
	assert.True(t, week.DistributableAmount.IsZero())
	assert.Empty(t, result.Distributions)
	f.ledgerRepo.AssertNotCalled(t, "GetOrCreateCategory", mock.Anything, mock.Anything, mock.Anything)
	f.ledgerRepo.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
}

func TestCloseWeekSkipsAlreadySnapshottedOrders(t *testing.T) {
	f := newClosingFixture()
	week := openWeek(2025, 12)
	f.expectWeek(week)

	f.configRepo.On("Get", mock.Anything).Return(&model.JobCostingConfig{
		SavingsPercentage:      d("5"),
		DistributionPercentage: d("95"),
	}, nil)
	f.ledgerRepo.On("SumFixedCosts", mock.Anything, mock.Anything, mock.Anything).Return(decimal.Zero, nil)
	f.statusRepo.On("SumCollectedBetween", mock.Anything, mock.Anything, mock.Anything).Return(d("30000"), nil)

	snapshotted := collectedCatalogStatus("10000", "0")
	fresh := collectedCatalogStatus("20000", "0")
	f.statusRepo.On("ListCollectedBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.FinancialStatus{snapshotted, fresh}, nil)
	f.snapRepo.On("ExistsForStatus", mock.Anything, snapshotted.ID).Return(true, nil)
	f.snapRepo.On("ExistsForStatus", mock.Anything, fresh.ID).Return(false, nil)
	f.snapRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.OrderFinancialSnapshot")).Return(nil)
	f.costingRepo.On("SumBreakdownsForOrder", mock.Anything, model.OrderKindCatalog, *fresh.OrderID).Return(d("4000"), nil)

	f.weekRepo.On("Save", mock.Anything, week).Return(nil)
	f.partnerRepo.On("ListActive", mock.Anything).Return([]model.Partner{}, nil)

	result, err := f.svc.CloseWeek(context.Background(), 2025, 12, nil)
	require.NoError(t, err)
	require.True(t, result.OK, result.Message)

	assert.Equal(t, 1, result.SkippedOrders)
	assert.Equal(t, 1, week.OrdersCount)
	// total sales is the overhead window figure, skipped orders included
	assert.True(t, week.TotalSales.Equal(d("30000")), "sales %s", week.TotalSales)
	f.costingRepo.AssertNotCalled(t, "SumBreakdownsForOrder", mock.Anything, model.OrderKindCatalog, *snapshotted.OrderID)
}

func TestPayDistribution(t *testing.T) {
	f := newClosingFixture()

	week := openWeek(2025, 10)
	week.Status = model.WeekClosed
	partner := &model.Partner{ID: uuid.New(), Name: "Ana"}
	dist := &model.PartnerDistribution{
		ID:              uuid.New(),
		FinancialWeekID: week.ID,
		FinancialWeek:   week,
		PartnerID:       partner.ID,
		Partner:         partner,
		GrossAmount:     d("28500"),
		Status:          model.DistributionPending,
	}
	f.distRepo.On("FindByIDForUpdate", mock.Anything, dist.ID).Return(dist, nil)

	account := &model.Account{ID: uuid.New(), Name: "Distribution", CurrentBalance: d("57000")}
	f.configRepo.On("Get", mock.Anything).Return(&model.JobCostingConfig{DistributionAccountID: &account.ID}, nil)
	f.ledgerRepo.On("GetOrCreateCategory", mock.Anything, "Partner distribution payout", model.CategoryTypeExpense).
		Return(&model.TransactionCategory{ID: uuid.New(), TransactionType: model.CategoryTypeExpense}, nil)
	f.accountRepo.On("FindByIDForUpdate", mock.Anything, account.ID).Return(account, nil)
	f.accountRepo.On("Save", mock.Anything, account).Return(nil)

	var entry *model.LedgerEntry
	f.ledgerRepo.On("CreateEntry", mock.Anything, mock.AnythingOfType("*model.LedgerEntry")).
		Run(func(args mock.Arguments) { entry = args.Get(1).(*model.LedgerEntry) }).Return(nil)
	f.distRepo.On("Save", mock.Anything, dist).Return(nil)

	result, err := f.svc.PayDistribution(context.Background(), dist.ID, nil)
	require.NoError(t, err)
	require.True(t, result.OK, result.Message)

	assert.Equal(t, model.DistributionPaid, dist.Status)
	assert.NotNil(t, dist.PaidAt)
	// an expense payout draws the pool account down
	assert.True(t, account.CurrentBalance.Equal(d("28500")), "balance %s", account.CurrentBalance)
	require.NotNil(t, entry)
	assert.True(t, entry.Amount.Equal(d("28500")))
	assert.Contains(t, entry.Description, "Ana")
	assert.Contains(t, f.events.events, EventDistributionPaid)
}

func TestPayDistributionFromExplicitAccount(t *testing.T) {
	f := newClosingFixture()

	dist := &model.PartnerDistribution{
		ID:          uuid.New(),
		GrossAmount: d("10000"),
		Status:      model.DistributionPending,
	}
	f.distRepo.On("FindByIDForUpdate", mock.Anything, dist.ID).Return(dist, nil)

	account := &model.Account{ID: uuid.New(), Name: "Caja chica", CurrentBalance: d("15000")}
	f.ledgerRepo.On("GetOrCreateCategory", mock.Anything, "Partner distribution payout", model.CategoryTypeExpense).
		Return(&model.TransactionCategory{ID: uuid.New(), TransactionType: model.CategoryTypeExpense}, nil)
	f.accountRepo.On("FindByIDForUpdate", mock.Anything, account.ID).Return(account, nil)
	f.accountRepo.On("Save", mock.Anything, account).Return(nil)
	f.ledgerRepo.On("CreateEntry", mock.Anything, mock.AnythingOfType("*model.LedgerEntry")).Return(nil)
	f.distRepo.On("Save", mock.Anything, dist).Return(nil)

	result, err := f.svc.PayDistribution(context.Background(), dist.ID, &account.ID)
	require.NoError(t, err)
	require.True(t, result.OK, result.Message)

	assert.True(t, account.CurrentBalance.Equal(d("5000")), "balance %s", account.CurrentBalance)
	// an explicit account skips the config fallback entirely
	f.configRepo.AssertNotCalled(t, "Get", mock.Anything)
}

func TestPayDistributionIsOneWay(t *testing.T) {
	f := newClosingFixture()

	dist := &model.PartnerDistribution{
		ID:          uuid.New(),
		GrossAmount: d("28500"),
		Status:      model.DistributionPaid,
	}
	f.distRepo.On("FindByIDForUpdate", mock.Anything, dist.ID).Return(dist, nil)

	result, err := f.svc.PayDistribution(context.Background(), dist.ID, nil)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "already paid")
	f.distRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.ledgerRepo.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
}

func TestPayDistributionRequiresAnAccount(t *testing.T) {
	f := newClosingFixture()

	dist := &model.PartnerDistribution{
		ID:          uuid.New(),
		GrossAmount: d("28500"),
		Status:      model.DistributionPending,
	}
	f.distRepo.On("FindByIDForUpdate", mock.Anything, dist.ID).Return(dist, nil)
	f.configRepo.On("Get", mock.Anything).Return(&model.JobCostingConfig{}, nil)

	result, err := f.svc.PayDistribution(context.Background(), dist.ID, nil)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Contains(t, result.Message, "no account")

	// without an account to post the payout, nothing is marked paid
	assert.Equal(t, model.DistributionPending, dist.Status)
	f.distRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.ledgerRepo.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything)
}

func TestWeekBounds(t *testing.T) {
	// a Wednesday
	year, weekNumber, start, end := weekBounds(time.Date(2025, time.March, 5, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, 2025, year)
	assert.Equal(t, 10, weekNumber)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), end)

	// Sunday still belongs to the week that started the previous Monday
	_, weekNumber, start, _ = weekBounds(time.Date(2025, time.March, 9, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, 10, weekNumber)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), start)

	// Monday starts a new week
	_, weekNumber, _, _ = weekBounds(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 11, weekNumber)
}

func TestBoundsForISOWeek(t *testing.T) {
	start, end, err := boundsForISOWeek(2025, 10)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), end)

	// 2020 had 53 ISO weeks, 2025 does not
	_, _, err = boundsForISOWeek(2020, 53)
	assert.NoError(t, err)
	_, _, err = boundsForISOWeek(2025, 53)
	assert.Error(t, err)

	_, _, err = boundsForISOWeek(2025, 0)
	assert.Error(t, err)
}
