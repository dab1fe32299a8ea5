package transaction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/events"
	apperrors "github.com/treviro/treviro_service/pkg/errors"
	"github.com/treviro/treviro_service/pkg/logger"
)

// Mock implementations for testing

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

// eventRecorder captures everything a publisher emits on the bus.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) subscribeAll(bus *events.Bus) {
	for _, t := range events.AllTypes {
		bus.Subscribe(t, func(ctx context.Context, evt events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, evt)
			return nil
		})
	}
}

func (r *eventRecorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newServiceForTest(userID uuid.UUID) (*Service, *MockTransactionRepository, *eventRecorder) {
	bus := events.NewBus(logger.NewNop())
	recorder := &eventRecorder{}
	recorder.subscribeAll(bus)

	repo := new(MockTransactionRepository)
	return NewService(userID, bus, repo, logger.NewNop()), repo, recorder
}

func validInput() CreateInput {
	return CreateInput{
		Type:   entities.TransactionTypeDividend,
		Amount: dec("25"),
		Date:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateTransaction_PersistsAndPublishes(t *testing.T) {
	userID := uuid.New()
	svc, repo, recorder := newServiceForTest(userID)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Transaction")).Return(nil)

	tx, err := svc.CreateTransaction(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, userID, tx.UserID)
	assert.Equal(t, entities.TransactionTypeDividend, tx.Type)

	published := recorder.all()
	require.Len(t, published, 1)
	assert.Equal(t, events.TransactionCreated, published[0].Type)
	assert.Equal(t, userID, published[0].UserID)
	assert.Equal(t, tx, published[0].Transaction)
	repo.AssertExpectations(t)
}

func TestCreateTransaction_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"unknown type", func(in *CreateInput) { in.Type = "transfer" }},
		{"non-positive amount", func(in *CreateInput) { in.Amount = decimal.Zero }},
		{"missing date", func(in *CreateInput) { in.Date = time.Time{} }},
		{"negative fees", func(in *CreateInput) { in.Fees = dec("-1") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, recorder := newServiceForTest(uuid.New())

			input := validInput()
			tt.mutate(&input)

			_, err := svc.CreateTransaction(context.Background(), input)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Empty(t, recorder.all(), "nothing published on rejected input")
		})
	}
}

func TestCreateTransaction_NoEventWhenPersistFails(t *testing.T) {
	svc, repo, recorder := newServiceForTest(uuid.New())
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Transaction")).
		Return(apperrors.Internal("db down"))

	_, err := svc.CreateTransaction(context.Background(), validInput())
	require.Error(t, err)
	assert.Empty(t, recorder.all(), "events follow the write, never precede it")
}

func TestUpdateTransaction_PublishesOldVersusNewDelta(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	svc, repo, recorder := newServiceForTest(userID)

	existing := &entities.Transaction{
		ID:     id,
		UserID: userID,
		Type:   entities.TransactionTypeDividend,
		Amount: dec("25"),
		Date:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	repo.On("GetByID", mock.Anything, userID, id).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*entities.Transaction")).Return(nil)

	input := validInput()
	input.Amount = dec("40")

	_, err := svc.UpdateTransaction(context.Background(), id, input)
	require.NoError(t, err)

	published := recorder.all()
	require.Len(t, published, 1)
	assert.Equal(t, events.TransactionUpdated, published[0].Type)
	// Dividend 25 -> 40: the aggregate moves by the 15 difference.
	assert.True(t, published[0].Delta.CashBalance.Equal(dec("15")),
		"delta: got %s", published[0].Delta.CashBalance)
	assert.True(t, published[0].Delta.Invested.IsZero())
}

func TestDeleteTransaction_PublishesCompensatingPayload(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	svc, repo, recorder := newServiceForTest(userID)

	existing := &entities.Transaction{
		ID:     id,
		UserID: userID,
		Type:   entities.TransactionTypeBuy,
		Amount: dec("300"),
		Date:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	repo.On("GetByID", mock.Anything, userID, id).Return(existing, nil)
	repo.On("Delete", mock.Anything, userID, id).Return(nil)

	require.NoError(t, svc.DeleteTransaction(context.Background(), id))

	published := recorder.all()
	require.Len(t, published, 1)
	assert.Equal(t, events.TransactionDeleted, published[0].Type)
	assert.Equal(t, id, published[0].RecordID)
	// The deleted payload rides along so the aggregator can negate it.
	require.NotNil(t, published[0].Transaction)
	assert.True(t, published[0].Transaction.Amount.Equal(dec("300")))
}

func TestDeleteTransaction_MissingRecord(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	svc, repo, recorder := newServiceForTest(userID)

	repo.On("GetByID", mock.Anything, userID, id).Return(nil, apperrors.NotFound("transaction"))

	err := svc.DeleteTransaction(context.Background(), id)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, recorder.all())
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
