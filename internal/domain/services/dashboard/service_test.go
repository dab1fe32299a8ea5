package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/events"
	"github.com/treviro/treviro_service/pkg/logger"
)

// Mock implementations for testing

type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) Get(ctx context.Context, userID uuid.UUID) (*entities.DashboardSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DashboardSummary), args.Error(1)
}

func (m *MockDashboardRepository) ApplyDelta(ctx context.Context, userID uuid.UUID, delta entities.SummaryDelta) error {
	args := m.Called(ctx, userID, delta)
	return args.Error(0)
}

func (m *MockDashboardRepository) Replace(ctx context.Context, summary *entities.DashboardSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Create(ctx context.Context, inv *entities.Investment) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvestmentRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Investment, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Investment, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*entities.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) Update(ctx context.Context, inv *entities.Investment) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvestmentRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Transaction, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByInvestment(ctx context.Context, userID, investmentID uuid.UUID) ([]*entities.Transaction, error) {
	args := m.Called(ctx, userID, investmentID)
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockFinancialRecordRepository struct {
	mock.Mock
}

func (m *MockFinancialRecordRepository) Create(ctx context.Context, rec *entities.FinancialRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockFinancialRecordRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.FinancialRecord, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FinancialRecord), args.Error(1)
}

func (m *MockFinancialRecordRepository) ListByUserAndType(ctx context.Context, userID uuid.UUID, recordType entities.RecordType, limit, offset int) ([]*entities.FinancialRecord, error) {
	args := m.Called(ctx, userID, recordType, limit, offset)
	return args.Get(0).([]*entities.FinancialRecord), args.Error(1)
}

func (m *MockFinancialRecordRepository) Update(ctx context.Context, rec *entities.FinancialRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockFinancialRecordRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// memDashboardRepo is an in-memory DashboardRepository whose ApplyDelta is
// atomic, mirroring the upsert-with-increment the SQL implementation uses.
type memDashboardRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entities.DashboardSummary
}

func newMemDashboardRepo() *memDashboardRepo {
	return &memDashboardRepo{rows: make(map[uuid.UUID]*entities.DashboardSummary)}
}

func (r *memDashboardRepo) Get(ctx context.Context, userID uuid.UUID) (*entities.DashboardSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[userID]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (r *memDashboardRepo) ApplyDelta(ctx context.Context, userID uuid.UUID, delta entities.SummaryDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[userID]
	if !ok {
		row = entities.ZeroSummary(userID)
		r.rows[userID] = row
	}
	row.TotalInvested = row.TotalInvested.Add(delta.Invested)
	row.TotalRealizedPnL = row.TotalRealizedPnL.Add(delta.RealizedPnL)
	row.TotalCashBalance = row.TotalCashBalance.Add(delta.CashBalance)
	row.TotalMaturedDebt = row.TotalMaturedDebt.Add(delta.MaturedDebt)
	return nil
}

func (r *memDashboardRepo) Replace(ctx context.Context, summary *entities.DashboardSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *summary
	r.rows[summary.UserID] = &copied
	return nil
}

func newServiceForTest(userID uuid.UUID, repo *MockDashboardRepository) (*Service, *events.Bus) {
	bus := events.NewBus(logger.NewNop())
	svc := NewService(userID, bus,
		repo,
		new(MockInvestmentRepository),
		new(MockTransactionRepository),
		new(MockFinancialRecordRepository),
		nil, logger.NewNop(),
	)
	return svc, bus
}

func TestService_EventAppliesDeltaIncrementally(t *testing.T) {
	userID := uuid.New()
	repo := new(MockDashboardRepository)
	svc, bus := newServiceForTest(userID, repo)
	svc.SetupEventSubscriptions()

	want := entities.SummaryDelta{Invested: dec("1000"), CashBalance: dec("-1000")}
	repo.On("ApplyDelta", mock.Anything, userID, want).Return(nil)

	bus.Publish(context.Background(), events.Event{
		Type:   events.InvestmentAdded,
		UserID: userID,
		Investment: &entities.Investment{
			Type:           entities.InvestmentTypeStocks,
			AmountInvested: dec("1000"),
		},
	})

	repo.AssertExpectations(t)
}

func TestService_IgnoresEventsForOtherUsers(t *testing.T) {
	userID := uuid.New()
	repo := new(MockDashboardRepository)
	svc, bus := newServiceForTest(userID, repo)
	svc.SetupEventSubscriptions()

	bus.Publish(context.Background(), events.Event{
		Type:   events.IncomeAdded,
		UserID: uuid.New(),
		Record: &entities.FinancialRecord{Amount: dec("500")},
	})

	repo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SkipsZeroDeltas(t *testing.T) {
	userID := uuid.New()
	repo := new(MockDashboardRepository)
	svc, bus := newServiceForTest(userID, repo)
	svc.SetupEventSubscriptions()

	bus.Publish(context.Background(), events.Event{
		Type:     events.InvestmentRemoved,
		UserID:   userID,
		RecordID: uuid.New(),
	})

	repo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_AggregateFailureNeverReachesPublisher(t *testing.T) {
	userID := uuid.New()
	repo := new(MockDashboardRepository)
	svc, bus := newServiceForTest(userID, repo)
	svc.SetupEventSubscriptions()

	repo.On("ApplyDelta", mock.Anything, userID, mock.Anything).
		Return(errors.New("connection reset"))

	// The publisher must not observe the failure in any form.
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), events.Event{
			Type:   events.IncomeAdded,
			UserID: userID,
			Record: &entities.FinancialRecord{Amount: dec("500")},
		})
	})
	repo.AssertExpectations(t)
}

func TestService_CleanupStopsAggregateUpdates(t *testing.T) {
	userID := uuid.New()
	repo := new(MockDashboardRepository)
	svc, bus := newServiceForTest(userID, repo)
	svc.SetupEventSubscriptions()
	svc.Cleanup()

	bus.Publish(context.Background(), events.Event{
		Type:   events.IncomeAdded,
		UserID: userID,
		Record: &entities.FinancialRecord{Amount: dec("500")},
	})

	repo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GetSummaryDefaultsToZeroWithoutWriting(t *testing.T) {
	userID := uuid.New()
	repo := new(MockDashboardRepository)
	svc, _ := newServiceForTest(userID, repo)

	repo.On("Get", mock.Anything, userID).Return(nil, nil)

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, userID, summary.UserID)
	assert.True(t, summary.TotalInvested.IsZero())
	assert.True(t, summary.TotalRealizedPnL.IsZero())
	assert.True(t, summary.TotalCashBalance.IsZero())
	assert.True(t, summary.TotalMaturedDebt.IsZero())

	// Reads never create the row.
	repo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

type stubCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]*entities.DashboardSummary
	invalidated int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[uuid.UUID]*entities.DashboardSummary)}
}

func (c *stubCache) Get(ctx context.Context, userID uuid.UUID) (*entities.DashboardSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[userID]
	return s, ok
}

func (c *stubCache) Set(ctx context.Context, summary *entities.DashboardSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[summary.UserID] = summary
}

func (c *stubCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.invalidated++
}

func TestService_GetSummaryServesFromCache(t *testing.T) {
	userID := uuid.New()
	repo := new(MockDashboardRepository)
	cache := newStubCache()
	bus := events.NewBus(logger.NewNop())
	svc := NewService(userID, bus, repo,
		new(MockInvestmentRepository), new(MockTransactionRepository),
		new(MockFinancialRecordRepository), cache, logger.NewNop())

	cached := entities.ZeroSummary(userID)
	cached.TotalInvested = dec("1234")
	cache.Set(context.Background(), cached)

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.TotalInvested.Equal(dec("1234")))
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestService_AggregateUpdateInvalidatesCache(t *testing.T) {
	userID := uuid.New()
	cache := newStubCache()
	bus := events.NewBus(logger.NewNop())
	svc := NewService(userID, bus, newMemDashboardRepo(),
		new(MockInvestmentRepository), new(MockTransactionRepository),
		new(MockFinancialRecordRepository), cache, logger.NewNop())
	svc.SetupEventSubscriptions()

	stale := entities.ZeroSummary(userID)
	cache.Set(context.Background(), stale)

	bus.Publish(context.Background(), events.Event{
		Type:   events.IncomeAdded,
		UserID: userID,
		Record: &entities.FinancialRecord{Amount: dec("500")},
	})

	_, ok := cache.Get(context.Background(), userID)
	assert.False(t, ok, "stale summary must be evicted after an update")
}

func TestComputeSummary(t *testing.T) {
	userID := uuid.New()
	pnl := dec("150")

	investments := []*entities.Investment{
		{Type: entities.InvestmentTypeStocks, AmountInvested: dec("1000")},
		{Type: entities.InvestmentTypeGold, AmountInvested: dec("700")},
		{Type: entities.InvestmentTypeDebt, AmountInvested: dec("5000"), IsMatured: true},
	}
	transactions := []*entities.Transaction{
		{Type: entities.TransactionTypeSell, Amount: dec("450"), ProfitOrLoss: &pnl},
		{Type: entities.TransactionTypeBuy, Amount: dec("300")},
	}
	incomes := []*entities.FinancialRecord{{Amount: dec("500")}}
	expenses := []*entities.FinancialRecord{{Amount: dec("200")}}

	summary := ComputeSummary(userID, investments, transactions, incomes, expenses)

	assert.True(t, summary.TotalInvested.Equal(dec("1700")), "matured debt excluded from invested")
	assert.True(t, summary.TotalMaturedDebt.Equal(dec("5000")))
	assert.True(t, summary.TotalRealizedPnL.Equal(dec("150")))
	// -1000 -700 +5000 -300 (basis released by the sale) +450 +500 -200
	assert.True(t, summary.TotalCashBalance.Equal(dec("3750")), "cash: got %s", summary.TotalCashBalance)
}

func TestService_RecalculateIsIdempotent(t *testing.T) {
	userID := uuid.New()
	dashRepo := newMemDashboardRepo()
	investRepo := new(MockInvestmentRepository)
	txRepo := new(MockTransactionRepository)
	finRepo := new(MockFinancialRecordRepository)

	investRepo.On("ListByUser", mock.Anything, userID, scanPageSize, 0).
		Return([]*entities.Investment{
			{Type: entities.InvestmentTypeStocks, AmountInvested: dec("1000")},
		}, nil)
	txRepo.On("ListByUser", mock.Anything, userID, scanPageSize, 0).
		Return([]*entities.Transaction{}, nil)
	finRepo.On("ListByUserAndType", mock.Anything, userID, entities.RecordTypeIncome, scanPageSize, 0).
		Return([]*entities.FinancialRecord{{Amount: dec("500")}}, nil)
	finRepo.On("ListByUserAndType", mock.Anything, userID, entities.RecordTypeExpense, scanPageSize, 0).
		Return([]*entities.FinancialRecord{}, nil)

	bus := events.NewBus(logger.NewNop())
	svc := NewService(userID, bus, dashRepo, investRepo, txRepo, finRepo, nil, logger.NewNop())

	first, err := svc.Recalculate(context.Background())
	require.NoError(t, err)
	second, err := svc.Recalculate(context.Background())
	require.NoError(t, err)

	assert.True(t, first.TotalInvested.Equal(second.TotalInvested))
	assert.True(t, first.TotalCashBalance.Equal(second.TotalCashBalance))
	assert.True(t, first.TotalInvested.Equal(dec("1000")))
	assert.True(t, first.TotalCashBalance.Equal(dec("-500")))
}

func TestService_Scenarios(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (uuid.UUID, *Service, *events.Bus, *memDashboardRepo) {
		userID := uuid.New()
		dashRepo := newMemDashboardRepo()
		bus := events.NewBus(logger.NewNop())
		svc := NewService(userID, bus, dashRepo,
			new(MockInvestmentRepository), new(MockTransactionRepository),
			new(MockFinancialRecordRepository), nil, logger.NewNop())
		svc.SetupEventSubscriptions()
		return userID, svc, bus, dashRepo
	}

	t.Run("new investment moves cash into invested", func(t *testing.T) {
		userID, svc, bus, _ := setup(t)

		bus.Publish(ctx, events.Event{
			Type:   events.InvestmentAdded,
			UserID: userID,
			Investment: &entities.Investment{
				Type:           entities.InvestmentTypeRealEstate,
				AmountInvested: dec("1000"),
			},
		})

		summary, err := svc.GetSummary(ctx)
		require.NoError(t, err)
		assert.True(t, summary.TotalInvested.Equal(dec("1000")))
		assert.True(t, summary.TotalCashBalance.Equal(dec("-1000")))
	})

	t.Run("income raises cash only", func(t *testing.T) {
		userID, svc, bus, _ := setup(t)

		bus.Publish(ctx, events.Event{
			Type:   events.IncomeAdded,
			UserID: userID,
			Record: &entities.FinancialRecord{Amount: dec("500")},
		})

		summary, err := svc.GetSummary(ctx)
		require.NoError(t, err)
		assert.True(t, summary.TotalCashBalance.Equal(dec("500")))
		assert.True(t, summary.TotalInvested.IsZero())
	})

	t.Run("removal leaves the aggregate until recalculation", func(t *testing.T) {
		userID, svc, bus, _ := setup(t)
		inv := &entities.Investment{
			ID:             uuid.New(),
			Type:           entities.InvestmentTypeStocks,
			AmountInvested: dec("1000"),
		}

		bus.Publish(ctx, events.Event{
			Type: events.InvestmentAdded, UserID: userID, Investment: inv,
		})
		bus.Publish(ctx, events.Event{
			Type: events.InvestmentRemoved, UserID: userID, Investment: inv, RecordID: inv.ID,
		})

		summary, err := svc.GetSummary(ctx)
		require.NoError(t, err)
		assert.True(t, summary.TotalInvested.Equal(dec("1000")),
			"no compensating update on removal")
	})

	t.Run("concurrent first updates both land", func(t *testing.T) {
		userID, svc, bus, _ := setup(t)

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				bus.Publish(ctx, events.Event{
					Type:   events.InvestmentAdded,
					UserID: userID,
					Investment: &entities.Investment{
						Type:           entities.InvestmentTypeGold,
						AmountInvested: dec("100"),
					},
				})
			}()
		}
		wg.Wait()

		summary, err := svc.GetSummary(ctx)
		require.NoError(t, err)
		assert.True(t, summary.TotalInvested.Equal(dec("200")),
			"both initial updates must survive the create race, got %s", summary.TotalInvested)
	})
}
