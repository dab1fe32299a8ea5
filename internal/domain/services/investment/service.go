package investment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/repositories"
	apperrors "github.com/treviro/treviro_service/pkg/errors"
	"github.com/treviro/treviro_service/pkg/logger"
)

// Service owns creation and removal of investment records across the five
// variants and computes the invested deltas implied by each operation.
//
// The service does not publish events itself: the dashboard update is the
// wrapping session context's responsibility. This is an explicit coupling
// point, not an internal guarantee.
type Service struct {
	userID uuid.UUID
	repo   repositories.InvestmentRepository
	txRepo repositories.TransactionRepository
	logger *logger.Logger
}

// NewService creates an investment service bound to a single user.
func NewService(
	userID uuid.UUID,
	repo repositories.InvestmentRepository,
	txRepo repositories.TransactionRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		userID: userID,
		repo:   repo,
		txRepo: txRepo,
		logger: log.ForUser(userID.String()),
	}
}

// CreateInput is the payload for creating an investment of any variant.
// Variant-specific fields are validated exhaustively against Type.
type CreateInput struct {
	Name           string
	Type           entities.InvestmentType
	AmountInvested decimal.Decimal
	Currency       string
	PurchaseDate   time.Time

	// Stocks
	TickerSymbol          string
	NumberOfShares        decimal.Decimal
	PurchasePricePerShare decimal.Decimal
	PurchaseFees          decimal.Decimal

	// Gold
	GoldType        entities.GoldType
	QuantityInGrams decimal.Decimal

	// Currencies
	CurrencyCode           string
	ForeignCurrencyAmount  decimal.Decimal
	ExchangeRateAtPurchase decimal.Decimal

	// Real Estate
	PropertyAddress string
	PropertyType    entities.PropertyType

	// Debt Instruments
	DebtSubType  entities.DebtSubType
	Issuer       string
	InterestRate decimal.Decimal
	MaturityDate *time.Time
}

// CreateResult pairs the created record with the signed invested amount
// (positive = cash outflow).
type CreateResult struct {
	Investment    *entities.Investment
	TotalInvested decimal.Decimal
}

// CreateInvestment validates the variant payload, persists the record and
// returns it together with the invested delta.
func (s *Service) CreateInvestment(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv := &entities.Investment{
		ID:             uuid.New(),
		UserID:         s.userID,
		Name:           strings.TrimSpace(input.Name),
		Type:           input.Type,
		AmountInvested: input.AmountInvested,
		Currency:       input.Currency,
		PurchaseDate:   input.PurchaseDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	applyVariantFields(inv, input)

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Infow("investment created",
		"investment_id", inv.ID,
		"type", inv.Type,
		"amount_invested", inv.AmountInvested,
	)

	return &CreateResult{
		Investment:    inv,
		TotalInvested: inv.AmountInvested,
	}, nil
}

// GetInvestment returns one investment or a NOT_FOUND error.
func (s *Service) GetInvestment(ctx context.Context, id uuid.UUID) (*entities.Investment, error) {
	return s.repo.GetByID(ctx, s.userID, id)
}

// ListInvestments returns a page of the user's investments.
func (s *Service) ListInvestments(ctx context.Context, limit, offset int) ([]*entities.Investment, error) {
	return s.repo.ListByUser(ctx, s.userID, limit, offset)
}

// RemoveInvestment deletes the record. Historical transactions referencing
// it are left untouched, and no compensating aggregate adjustment is made;
// the dashboard reflects the removal only after a full recalculation.
func (s *Service) RemoveInvestment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, s.userID, id); err != nil {
		return err
	}
	s.logger.Infow("investment removed", "investment_id", id)
	return nil
}

// SaleInput describes a sale of part or all of a holding.
type SaleInput struct {
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	Fees         decimal.Decimal
	Date         time.Time
}

// RecordSale computes the proceeds and realized profit/loss of selling from
// a stock holding against its average purchase cost, persists the sell
// transaction and reduces the holding's cost basis proportionally.
func (s *Service) RecordSale(ctx context.Context, investmentID uuid.UUID, sale SaleInput) (*entities.Transaction, error) {
	if sale.Quantity.Sign() <= 0 {
		return nil, apperrors.ValidationError("sale quantity must be positive")
	}
	if sale.PricePerUnit.Sign() <= 0 {
		return nil, apperrors.ValidationError("sale price per unit must be positive")
	}
	if sale.Date.IsZero() {
		return nil, apperrors.ValidationError("sale date is required")
	}

	inv, err := s.repo.GetByID(ctx, s.userID, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.Type != entities.InvestmentTypeStocks {
		return nil, apperrors.ValidationError("sales are only supported for stock investments")
	}
	if inv.NumberOfShares == nil || inv.NumberOfShares.Sign() <= 0 {
		return nil, apperrors.ValidationError("investment holds no shares to sell")
	}
	if sale.Quantity.GreaterThan(*inv.NumberOfShares) {
		return nil, apperrors.ValidationError("sale quantity exceeds shares held")
	}

	avgCost := inv.AmountInvested.Div(*inv.NumberOfShares)
	proceeds := sale.Quantity.Mul(sale.PricePerUnit).Sub(sale.Fees)
	costBasis := sale.Quantity.Mul(avgCost)
	profit := proceeds.Sub(costBasis)

	now := time.Now().UTC()
	tx := &entities.Transaction{
		ID:           uuid.New(),
		UserID:       s.userID,
		InvestmentID: &investmentID,
		Type:         entities.TransactionTypeSell,
		Amount:       proceeds,
		Quantity:     &sale.Quantity,
		PricePerUnit: &sale.PricePerUnit,
		Fees:         sale.Fees,
		ProfitOrLoss: &profit,
		Date:         sale.Date,
		CreatedAt:    now,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	remaining := inv.NumberOfShares.Sub(sale.Quantity)
	inv.NumberOfShares = &remaining
	inv.AmountInvested = inv.AmountInvested.Sub(costBasis)
	inv.UpdatedAt = now
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Infow("sale recorded",
		"investment_id", investmentID,
		"proceeds", proceeds,
		"profit_or_loss", profit,
	)
	return tx, nil
}

// validateInput checks common fields, then the variant's required set via
// an exhaustive match over the closed type union.
func validateInput(input CreateInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.MissingField("name")
	}
	if !input.Type.Valid() {
		return apperrors.ValidationError("unknown investment type").
			AddDetail("type", string(input.Type))
	}
	if input.AmountInvested.Sign() <= 0 {
		return apperrors.ValidationError("amount invested must be positive")
	}
	if input.Currency == "" {
		return apperrors.MissingField("currency")
	}
	if input.PurchaseDate.IsZero() {
		return apperrors.MissingField("purchase_date")
	}

	switch input.Type {
	case entities.InvestmentTypeStocks:
		if input.TickerSymbol == "" {
			return apperrors.MissingField("ticker_symbol")
		}
		if input.NumberOfShares.Sign() <= 0 {
			return apperrors.MissingField("number_of_shares")
		}
	case entities.InvestmentTypeGold:
		if input.GoldType == "" {
			return apperrors.MissingField("gold_type")
		}
		if input.QuantityInGrams.Sign() <= 0 {
			return apperrors.MissingField("quantity_in_grams")
		}
	case entities.InvestmentTypeCurrencies:
		if input.CurrencyCode == "" {
			return apperrors.MissingField("currency_code")
		}
		if input.ForeignCurrencyAmount.Sign() <= 0 {
			return apperrors.MissingField("foreign_currency_amount")
		}
		if input.ExchangeRateAtPurchase.Sign() <= 0 {
			return apperrors.MissingField("exchange_rate_at_purchase")
		}
	case entities.InvestmentTypeRealEstate:
		if input.PropertyAddress == "" {
			return apperrors.MissingField("property_address")
		}
	case entities.InvestmentTypeDebt:
		if input.DebtSubType == "" {
			return apperrors.MissingField("debt_sub_type")
		}
		if input.MaturityDate == nil {
			return apperrors.MissingField("maturity_date")
		}
	}
	return nil
}

func applyVariantFields(inv *entities.Investment, input CreateInput) {
	switch input.Type {
	case entities.InvestmentTypeStocks:
		ticker := strings.ToUpper(strings.TrimSpace(input.TickerSymbol))
		inv.TickerSymbol = &ticker
		shares := input.NumberOfShares
		inv.NumberOfShares = &shares
		if input.PurchasePricePerShare.Sign() > 0 {
			price := input.PurchasePricePerShare
			inv.PurchasePricePerShare = &price
		}
		fees := input.PurchaseFees
		inv.PurchaseFees = &fees
	case entities.InvestmentTypeGold:
		goldType := input.GoldType
		inv.GoldType = &goldType
		grams := input.QuantityInGrams
		inv.QuantityInGrams = &grams
	case entities.InvestmentTypeCurrencies:
		code := strings.ToUpper(strings.TrimSpace(input.CurrencyCode))
		inv.CurrencyCode = &code
		amount := input.ForeignCurrencyAmount
		inv.ForeignCurrencyAmount = &amount
		rate := input.ExchangeRateAtPurchase
		inv.ExchangeRateAtPurchase = &rate
	case entities.InvestmentTypeRealEstate:
		address := strings.TrimSpace(input.PropertyAddress)
		inv.PropertyAddress = &address
		if input.PropertyType != "" {
			propType := input.PropertyType
			inv.PropertyType = &propType
		}
	case entities.InvestmentTypeDebt:
		subType := input.DebtSubType
		inv.DebtSubType = &subType
		if input.Issuer != "" {
			issuer := input.Issuer
			inv.Issuer = &issuer
		}
		if input.InterestRate.Sign() > 0 {
			rate := input.InterestRate
			inv.InterestRate = &rate
		}
		inv.MaturityDate = input.MaturityDate
	}
}
