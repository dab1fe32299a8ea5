package investment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/treviro/treviro_service/internal/domain/entities"
	apperrors "github.com/treviro/treviro_service/pkg/errors"
	"github.com/treviro/treviro_service/pkg/logger"
)

// Mock implementations for testing

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

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func baseInput(t entities.InvestmentType) CreateInput {
	input := CreateInput{
		Name:           "Test holding",
		Type:           t,
		AmountInvested: dec("1000"),
		Currency:       "EGP",
		PurchaseDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	switch t {
	case entities.InvestmentTypeStocks:
		input.TickerSymbol = "COMI"
		input.NumberOfShares = dec("10")
		input.PurchasePricePerShare = dec("100")
	case entities.InvestmentTypeGold:
		input.GoldType = entities.GoldTypeK21
		input.QuantityInGrams = dec("20")
	case entities.InvestmentTypeCurrencies:
		input.CurrencyCode = "USD"
		input.ForeignCurrencyAmount = dec("20")
		input.ExchangeRateAtPurchase = dec("50")
	case entities.InvestmentTypeRealEstate:
		input.PropertyAddress = "12 Nile St, Cairo"
		input.PropertyType = entities.PropertyTypeResidential
	case entities.InvestmentTypeDebt:
		input.DebtSubType = entities.DebtSubTypeCertificate
		input.Issuer = "Banque Misr"
		input.InterestRate = dec("22.5")
	}
	return input
}

func newServiceForTest(userID uuid.UUID) (*Service, *MockInvestmentRepository, *MockTransactionRepository) {
	repo := new(MockInvestmentRepository)
	txRepo := new(MockTransactionRepository)
	return NewService(userID, repo, txRepo, logger.NewNop()), repo, txRepo
}

func TestCreateInvestment_AllVariants(t *testing.T) {
	userID := uuid.New()

	for _, variant := range entities.AllInvestmentTypes {
		t.Run(string(variant), func(t *testing.T) {
			svc, repo, _ := newServiceForTest(userID)
			repo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Investment")).Return(nil)

			result, err := svc.CreateInvestment(context.Background(), baseInput(variant))
			require.NoError(t, err)
			assert.Equal(t, variant, result.Investment.Type)
			assert.Equal(t, userID, result.Investment.UserID)
			assert.NotEqual(t, uuid.Nil, result.Investment.ID)
			assert.True(t, result.TotalInvested.Equal(dec("1000")))
			repo.AssertExpectations(t)
		})
	}
}

func TestCreateInvestment_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreateInput)
		wantField string
	}{
		{"missing name", func(in *CreateInput) { in.Name = "  " }, "name"},
		{"missing currency", func(in *CreateInput) { in.Currency = "" }, "currency"},
		{"missing purchase date", func(in *CreateInput) { in.PurchaseDate = time.Time{} }, "purchase_date"},
		{"stocks without ticker", func(in *CreateInput) { in.TickerSymbol = "" }, "ticker_symbol"},
		{"stocks without shares", func(in *CreateInput) { in.NumberOfShares = decimal.Zero }, "number_of_shares"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newServiceForTest(uuid.New())

			input := baseInput(entities.InvestmentTypeStocks)
			tt.mutate(&input)

			_, err := svc.CreateInvestment(context.Background(), input)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

			var svcErr *apperrors.ServiceError
			require.ErrorAs(t, err, &svcErr)
			if svcErr.Code == apperrors.ErrCodeMissingField {
				assert.Equal(t, tt.wantField, svcErr.Details["field"])
			}
		})
	}
}

func TestCreateInvestment_VariantFieldsCrossChecked(t *testing.T) {
	tests := []struct {
		name   string
		typ    entities.InvestmentType
		mutate func(*CreateInput)
	}{
		{"gold without type", entities.InvestmentTypeGold, func(in *CreateInput) { in.GoldType = "" }},
		{"gold without quantity", entities.InvestmentTypeGold, func(in *CreateInput) { in.QuantityInGrams = decimal.Zero }},
		{"currencies without code", entities.InvestmentTypeCurrencies, func(in *CreateInput) { in.CurrencyCode = "" }},
		{"real estate without address", entities.InvestmentTypeRealEstate, func(in *CreateInput) { in.PropertyAddress = "" }},
		{"debt without sub type", entities.InvestmentTypeDebt, func(in *CreateInput) { in.DebtSubType = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newServiceForTest(uuid.New())

			input := baseInput(tt.typ)
			tt.mutate(&input)

			_, err := svc.CreateInvestment(context.Background(), input)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestCreateInvestment_RejectsUnknownTypeAndAmount(t *testing.T) {
	svc, _, _ := newServiceForTest(uuid.New())

	input := baseInput(entities.InvestmentTypeGold)
	input.Type = "crypto"
	_, err := svc.CreateInvestment(context.Background(), input)
	assert.True(t, apperrors.IsValidation(err))

	input = baseInput(entities.InvestmentTypeGold)
	input.AmountInvested = dec("-10")
	_, err = svc.CreateInvestment(context.Background(), input)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecordSale_ComputesProfitAgainstAverageCost(t *testing.T) {
	userID := uuid.New()
	investmentID := uuid.New()
	svc, repo, txRepo := newServiceForTest(userID)

	shares := dec("10")
	inv := &entities.Investment{
		ID:             investmentID,
		UserID:         userID,
		Type:           entities.InvestmentTypeStocks,
		AmountInvested: dec("1000"),
		NumberOfShares: &shares,
	}
	repo.On("GetByID", mock.Anything, userID, investmentID).Return(inv, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*entities.Investment")).Return(nil)
	txRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Transaction")).Return(nil)

	// Sell 4 of 10 shares at 150 with 20 fees. Average cost is 100/share:
	// proceeds 580, cost basis 400, profit 180.
	tx, err := svc.RecordSale(context.Background(), investmentID, SaleInput{
		Quantity:     dec("4"),
		PricePerUnit: dec("150"),
		Fees:         dec("20"),
		Date:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, entities.TransactionTypeSell, tx.Type)
	assert.True(t, tx.Amount.Equal(dec("580")))
	require.NotNil(t, tx.ProfitOrLoss)
	assert.True(t, tx.ProfitOrLoss.Equal(dec("180")))

	// The holding shrinks proportionally.
	assert.True(t, inv.NumberOfShares.Equal(dec("6")))
	assert.True(t, inv.AmountInvested.Equal(dec("600")))
	repo.AssertExpectations(t)
	txRepo.AssertExpectations(t)
}

func TestRecordSale_Validation(t *testing.T) {
	userID := uuid.New()
	investmentID := uuid.New()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sale SaleInput
	}{
		{"zero quantity", SaleInput{Quantity: decimal.Zero, PricePerUnit: dec("10"), Date: date}},
		{"zero price", SaleInput{Quantity: dec("1"), PricePerUnit: decimal.Zero, Date: date}},
		{"missing date", SaleInput{Quantity: dec("1"), PricePerUnit: dec("10")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newServiceForTest(userID)

			_, err := svc.RecordSale(context.Background(), investmentID, tt.sale)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRecordSale_RejectsNonStockAndOverselling(t *testing.T) {
	userID := uuid.New()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("non-stock investment", func(t *testing.T) {
		svc, repo, _ := newServiceForTest(userID)
		id := uuid.New()
		repo.On("GetByID", mock.Anything, userID, id).Return(&entities.Investment{
			ID: id, UserID: userID, Type: entities.InvestmentTypeGold, AmountInvested: dec("1000"),
		}, nil)

		_, err := svc.RecordSale(context.Background(), id, SaleInput{
			Quantity: dec("1"), PricePerUnit: dec("10"), Date: date,
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("quantity exceeds holding", func(t *testing.T) {
		svc, repo, txRepo := newServiceForTest(userID)
		id := uuid.New()
		shares := dec("5")
		repo.On("GetByID", mock.Anything, userID, id).Return(&entities.Investment{
			ID: id, UserID: userID, Type: entities.InvestmentTypeStocks,
			AmountInvested: dec("500"), NumberOfShares: &shares,
		}, nil)

		_, err := svc.RecordSale(context.Background(), id, SaleInput{
			Quantity: dec("6"), PricePerUnit: dec("10"), Date: date,
		})
		assert.True(t, apperrors.IsValidation(err))
		txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
