package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/events"
	"github.com/treviro/treviro_service/internal/domain/repositories"
	"github.com/treviro/treviro_service/internal/domain/services/dashboard"
	apperrors "github.com/treviro/treviro_service/pkg/errors"
	"github.com/treviro/treviro_service/pkg/logger"
)

// Service records and retrieves transactions associated with investments
// and publishes the matching domain events on every mutation.
type Service struct {
	userID uuid.UUID
	bus    *events.Bus
	repo   repositories.TransactionRepository
	logger *logger.Logger

	unsubscribes []func()
}

// NewService creates a transaction service bound to a single user.
func NewService(
	userID uuid.UUID,
	bus *events.Bus,
	repo repositories.TransactionRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		userID: userID,
		bus:    bus,
		repo:   repo,
		logger: log.ForUser(userID.String()),
	}
}

// SetupEventSubscriptions exists for lifecycle parity with the dashboard
// service. The transaction service is a producer, not a consumer, and
// registers nothing here.
func (s *Service) SetupEventSubscriptions() {}

// Cleanup releases whatever subscriptions were registered.
func (s *Service) Cleanup() {
	for _, unsub := range s.unsubscribes {
		unsub()
	}
	s.unsubscribes = nil
}

// CreateInput is the payload for recording a transaction.
type CreateInput struct {
	InvestmentID *uuid.UUID
	Type         entities.TransactionType
	Amount       decimal.Decimal
	Quantity     *decimal.Decimal
	PricePerUnit *decimal.Decimal
	Fees         decimal.Decimal
	ProfitOrLoss *decimal.Decimal
	Date         time.Time
}

// CreateTransaction persists the transaction and publishes
// transaction:created carrying its aggregate delta.
func (s *Service) CreateTransaction(ctx context.Context, input CreateInput) (*entities.Transaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	tx := &entities.Transaction{
		ID:           uuid.New(),
		UserID:       s.userID,
		InvestmentID: input.InvestmentID,
		Type:         input.Type,
		Amount:       input.Amount,
		Quantity:     input.Quantity,
		PricePerUnit: input.PricePerUnit,
		Fees:         input.Fees,
		ProfitOrLoss: input.ProfitOrLoss,
		Date:         input.Date,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Infow("transaction created",
		"transaction_id", tx.ID,
		"type", tx.Type,
		"amount", tx.Amount,
	)

	s.bus.Publish(ctx, events.Event{
		Type:        events.TransactionCreated,
		UserID:      s.userID,
		Transaction: tx,
	})
	return tx, nil
}

// GetTransaction returns one transaction or a NOT_FOUND error.
func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	return s.repo.GetByID(ctx, s.userID, id)
}

// ListTransactions returns a page of the user's transactions.
func (s *Service) ListTransactions(ctx context.Context, limit, offset int) ([]*entities.Transaction, error) {
	return s.repo.ListByUser(ctx, s.userID, limit, offset)
}

// ListByInvestment returns the transactions tied to one investment.
func (s *Service) ListByInvestment(ctx context.Context, investmentID uuid.UUID) ([]*entities.Transaction, error) {
	return s.repo.ListByInvestment(ctx, s.userID, investmentID)
}

// UpdateTransaction replaces the mutable fields of an existing transaction
// and publishes transaction:updated carrying the old-vs-new delta.
func (s *Service) UpdateTransaction(ctx context.Context, id uuid.UUID, input CreateInput) (*entities.Transaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, s.userID, id)
	if err != nil {
		return nil, err
	}

	oldDelta := dashboard.DeltaForTransaction(existing)

	existing.InvestmentID = input.InvestmentID
	existing.Type = input.Type
	existing.Amount = input.Amount
	existing.Quantity = input.Quantity
	existing.PricePerUnit = input.PricePerUnit
	existing.Fees = input.Fees
	existing.ProfitOrLoss = input.ProfitOrLoss
	existing.Date = input.Date

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.Event{
		Type:        events.TransactionUpdated,
		UserID:      s.userID,
		Transaction: existing,
		Delta:       dashboard.DeltaForTransaction(existing).Add(oldDelta.Negate()),
	})
	return existing, nil
}

// DeleteTransaction removes the transaction and publishes
// transaction:deleted; the event carries the full payload so the
// aggregator can apply the compensating adjustment.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, s.userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, s.userID, id); err != nil {
		return err
	}

	s.logger.Infow("transaction deleted", "transaction_id", id)

	s.bus.Publish(ctx, events.Event{
		Type:        events.TransactionDeleted,
		UserID:      s.userID,
		Transaction: existing,
		RecordID:    id,
	})
	return nil
}

func validateInput(input CreateInput) error {
	if !input.Type.Valid() {
		return apperrors.ValidationError("unknown transaction type").
			AddDetail("type", string(input.Type))
	}
	if input.Amount.Sign() <= 0 {
		return apperrors.ValidationError("amount must be positive")
	}
	if input.Date.IsZero() {
		return apperrors.MissingField("date")
	}
	if input.Fees.Sign() < 0 {
		return apperrors.ValidationError("fees cannot be negative")
	}
	return nil
}
