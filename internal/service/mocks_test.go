package service

import (
	"context"
	"time"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// passthroughTxManager runs the callback directly; the tests assert business
// behavior, not SQL transactionality.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// recordingPublisher captures emitted events for assertions.
type recordingPublisher struct {
	events []string
}

func (r *recordingPublisher) Publish(event string, payload interface{}) {
	r.events = append(r.events, event)
}

// --- repository mocks ---

type mockStatusRepo struct{ mock.Mock }

func (m *mockStatusRepo) Create(ctx context.Context, status *model.FinancialStatus) error {
	return m.Called(ctx, status).Error(0)
}
func (m *mockStatusRepo) Save(ctx context.Context, status *model.FinancialStatus) error {
	return m.Called(ctx, status).Error(0)
}
func (m *mockStatusRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FinancialStatus, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.FinancialStatus), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStatusRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FinancialStatus, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.FinancialStatus), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStatusRepo) FindByOrder(ctx context.Context, kind string, orderID uuid.UUID) (*model.FinancialStatus, error) {
	args := m.Called(ctx, kind, orderID)
	if v := args.Get(0); v != nil {
		return v.(*model.FinancialStatus), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStatusRepo) List(ctx context.Context, state string, page, limit int) ([]model.FinancialStatus, int64, error) {
	args := m.Called(ctx, state, page, limit)
	return args.Get(0).([]model.FinancialStatus), args.Get(1).(int64), args.Error(2)
}
func (m *mockStatusRepo) ListCollectedBetween(ctx context.Context, start, end time.Time) ([]model.FinancialStatus, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]model.FinancialStatus), args.Error(1)
}
func (m *mockStatusRepo) SumCollectedBetween(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) Create(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}
func (m *mockOrderRepo) CreateInternal(ctx context.Context, order *model.InternalOrder) error {
	return m.Called(ctx, order).Error(0)
}
func (m *mockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOrderRepo) FindInternalByID(ctx context.Context, id uuid.UUID) (*model.InternalOrder, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.InternalOrder), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOrderRepo) FindCosted(ctx context.Context, kind string, id uuid.UUID) (model.CostedOrder, error) {
	args := m.Called(ctx, kind, id)
	if v := args.Get(0); v != nil {
		return v.(model.CostedOrder), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOrderRepo) MarkPaid(ctx context.Context, kind string, id uuid.UUID) error {
	return m.Called(ctx, kind, id).Error(0)
}
func (m *mockOrderRepo) UpdateStatus(ctx context.Context, kind string, id uuid.UUID, status string) error {
	return m.Called(ctx, kind, id, status).Error(0)
}
func (m *mockOrderRepo) CreateVariant(ctx context.Context, variant *model.ProductVariant) error {
	return m.Called(ctx, variant).Error(0)
}
func (m *mockOrderRepo) FindVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.ProductVariant), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOrderRepo) ListVariants(ctx context.Context) ([]model.ProductVariant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.ProductVariant), args.Error(1)
}
func (m *mockOrderRepo) ListOrders(ctx context.Context, kind string, page, limit int) ([]model.CostedOrder, int64, error) {
	args := m.Called(ctx, kind, page, limit)
	return args.Get(0).([]model.CostedOrder), args.Get(1).(int64), args.Error(2)
}

type mockWeekRepo struct{ mock.Mock }

func (m *mockWeekRepo) GetOrCreate(ctx context.Context, year, weekNumber int, start, end time.Time) (*model.FinancialWeek, error) {
	args := m.Called(ctx, year, weekNumber, start, end)
	if v := args.Get(0); v != nil {
		return v.(*model.FinancialWeek), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockWeekRepo) FindByYearWeek(ctx context.Context, year, weekNumber int) (*model.FinancialWeek, error) {
	args := m.Called(ctx, year, weekNumber)
	if v := args.Get(0); v != nil {
		return v.(*model.FinancialWeek), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockWeekRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FinancialWeek, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.FinancialWeek), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockWeekRepo) Save(ctx context.Context, week *model.FinancialWeek) error {
	return m.Called(ctx, week).Error(0)
}
func (m *mockWeekRepo) ListClosed(ctx context.Context, page, limit int) ([]model.FinancialWeek, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]model.FinancialWeek), args.Get(1).(int64), args.Error(2)
}
func (m *mockWeekRepo) SumClosedSavings(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockSnapshotRepo struct{ mock.Mock }

func (m *mockSnapshotRepo) Create(ctx context.Context, snapshot *model.OrderFinancialSnapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}
func (m *mockSnapshotRepo) ExistsForStatus(ctx context.Context, statusID uuid.UUID) (bool, error) {
	args := m.Called(ctx, statusID)
	return args.Bool(0), args.Error(1)
}
func (m *mockSnapshotRepo) ListByWeek(ctx context.Context, weekID uuid.UUID) ([]model.OrderFinancialSnapshot, error) {
	args := m.Called(ctx, weekID)
	return args.Get(0).([]model.OrderFinancialSnapshot), args.Error(1)
}

type mockPartnerRepo struct{ mock.Mock }

func (m *mockPartnerRepo) Create(ctx context.Context, partner *model.Partner) error {
	return m.Called(ctx, partner).Error(0)
}
func (m *mockPartnerRepo) Save(ctx context.Context, partner *model.Partner) error {
	return m.Called(ctx, partner).Error(0)
}
func (m *mockPartnerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Partner), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPartnerRepo) List(ctx context.Context) ([]model.Partner, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Partner), args.Error(1)
}
func (m *mockPartnerRepo) ListActive(ctx context.Context) ([]model.Partner, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Partner), args.Error(1)
}
func (m *mockPartnerRepo) SumActiveShares(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockDistRepo struct{ mock.Mock }

func (m *mockDistRepo) GetOrCreate(ctx context.Context, distribution *model.PartnerDistribution) (*model.PartnerDistribution, error) {
	args := m.Called(ctx, distribution)
	if v := args.Get(0); v != nil {
		return v.(*model.PartnerDistribution), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDistRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PartnerDistribution, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.PartnerDistribution), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDistRepo) Save(ctx context.Context, distribution *model.PartnerDistribution) error {
	return m.Called(ctx, distribution).Error(0)
}
func (m *mockDistRepo) ListByWeek(ctx context.Context, weekID uuid.UUID) ([]model.PartnerDistribution, error) {
	args := m.Called(ctx, weekID)
	return args.Get(0).([]model.PartnerDistribution), args.Error(1)
}

type mockConfigRepo struct{ mock.Mock }

func (m *mockConfigRepo) Get(ctx context.Context) (*model.JobCostingConfig, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*model.JobCostingConfig), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockConfigRepo) Save(ctx context.Context, config *model.JobCostingConfig) error {
	return m.Called(ctx, config).Error(0)
}

type mockLedgerRepo struct{ mock.Mock }

func (m *mockLedgerRepo) CreateEntry(ctx context.Context, entry *model.LedgerEntry) error {
	return m.Called(ctx, entry).Error(0)
}
func (m *mockLedgerRepo) ListEntries(ctx context.Context, page, limit int) ([]model.LedgerEntry, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]model.LedgerEntry), args.Get(1).(int64), args.Error(2)
}
func (m *mockLedgerRepo) ListEntriesByWeek(ctx context.Context, weekID uuid.UUID) ([]model.LedgerEntry, error) {
	args := m.Called(ctx, weekID)
	return args.Get(0).([]model.LedgerEntry), args.Error(1)
}
func (m *mockLedgerRepo) CreateCategory(ctx context.Context, category *model.TransactionCategory) error {
	return m.Called(ctx, category).Error(0)
}
func (m *mockLedgerRepo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*model.TransactionCategory, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.TransactionCategory), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockLedgerRepo) GetOrCreateCategory(ctx context.Context, name, transactionType string) (*model.TransactionCategory, error) {
	args := m.Called(ctx, name, transactionType)
	if v := args.Get(0); v != nil {
		return v.(*model.TransactionCategory), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockLedgerRepo) ListCategories(ctx context.Context) ([]model.TransactionCategory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.TransactionCategory), args.Error(1)
}
func (m *mockLedgerRepo) SumFixedCosts(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockAccountRepo struct{ mock.Mock }

func (m *mockAccountRepo) Create(ctx context.Context, account *model.Account) error {
	return m.Called(ctx, account).Error(0)
}
func (m *mockAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Account), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Account), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountRepo) Save(ctx context.Context, account *model.Account) error {
	return m.Called(ctx, account).Error(0)
}
func (m *mockAccountRepo) List(ctx context.Context) ([]model.Account, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Account), args.Error(1)
}

type mockCostingRepo struct{ mock.Mock }

func (m *mockCostingRepo) CreateCostType(ctx context.Context, costType *model.CostType) error {
	return m.Called(ctx, costType).Error(0)
}
func (m *mockCostingRepo) FindCostTypeByID(ctx context.Context, id uuid.UUID) (*model.CostType, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.CostType), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCostingRepo) ListCostTypes(ctx context.Context) ([]model.CostType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.CostType), args.Error(1)
}
func (m *mockCostingRepo) CreateRule(ctx context.Context, rule *model.ProductCostRule) error {
	return m.Called(ctx, rule).Error(0)
}
func (m *mockCostingRepo) ListRulesForProductType(ctx context.Context, productType string) ([]model.ProductCostRule, error) {
	args := m.Called(ctx, productType)
	return args.Get(0).([]model.ProductCostRule), args.Error(1)
}
func (m *mockCostingRepo) ListRules(ctx context.Context) ([]model.ProductCostRule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.ProductCostRule), args.Error(1)
}
func (m *mockCostingRepo) CreateBreakdown(ctx context.Context, breakdown *model.OrderCostBreakdown) error {
	return m.Called(ctx, breakdown).Error(0)
}
func (m *mockCostingRepo) FindBreakdownByID(ctx context.Context, id uuid.UUID) (*model.OrderCostBreakdown, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.OrderCostBreakdown), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCostingRepo) SaveBreakdown(ctx context.Context, breakdown *model.OrderCostBreakdown) error {
	return m.Called(ctx, breakdown).Error(0)
}
func (m *mockCostingRepo) ListBreakdownsForOrder(ctx context.Context, kind string, orderID uuid.UUID) ([]model.OrderCostBreakdown, error) {
	args := m.Called(ctx, kind, orderID)
	return args.Get(0).([]model.OrderCostBreakdown), args.Error(1)
}
func (m *mockCostingRepo) DeleteAutoBreakdowns(ctx context.Context, kind string, orderID uuid.UUID) error {
	return m.Called(ctx, kind, orderID).Error(0)
}
func (m *mockCostingRepo) SumBreakdownsForOrder(ctx context.Context, kind string, orderID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, kind, orderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *mockCostingRepo) SumManualBreakdownsForOrder(ctx context.Context, kind string, orderID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, kind, orderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
