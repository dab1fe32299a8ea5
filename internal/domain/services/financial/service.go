package financial

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/events"
	"github.com/treviro/treviro_service/internal/domain/repositories"
	apperrors "github.com/treviro/treviro_service/pkg/errors"
	"github.com/treviro/treviro_service/pkg/logger"
)

// Service manages income, expense and fixed-estimate records independent of
// the investment domain. Every mutation publishes the corresponding event.
type Service struct {
	userID uuid.UUID
	bus    *events.Bus
	repo   repositories.FinancialRecordRepository
	logger *logger.Logger
}

// NewService creates a financial records service bound to a single user.
func NewService(
	userID uuid.UUID,
	bus *events.Bus,
	repo repositories.FinancialRecordRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		userID: userID,
		bus:    bus,
		repo:   repo,
		logger: log.ForUser(userID.String()),
	}
}

// RecordInput is the payload for creating or updating a financial record.
type RecordInput struct {
	Category    string
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	// IsExpense applies to fixed estimates only.
	IsExpense bool
}

// AddIncome persists an income record and publishes income:added.
func (s *Service) AddIncome(ctx context.Context, input RecordInput) (*entities.FinancialRecord, error) {
	return s.addRecord(ctx, entities.RecordTypeIncome, input)
}

// UpdateIncome updates an income record and publishes income:updated with
// the old-vs-new cash delta.
func (s *Service) UpdateIncome(ctx context.Context, id uuid.UUID, input RecordInput) (*entities.FinancialRecord, error) {
	return s.updateRecord(ctx, entities.RecordTypeIncome, id, input)
}

// DeleteIncome removes an income record and publishes income:deleted.
func (s *Service) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	return s.deleteRecord(ctx, entities.RecordTypeIncome, id)
}

// AddExpense persists an expense record and publishes expense:added.
// Credit-card expenses are settled through a statement, not cash, so they
// are persisted without publishing.
func (s *Service) AddExpense(ctx context.Context, input RecordInput) (*entities.FinancialRecord, error) {
	return s.addRecord(ctx, entities.RecordTypeExpense, input)
}

// UpdateExpense updates an expense record and publishes expense:updated.
func (s *Service) UpdateExpense(ctx context.Context, id uuid.UUID, input RecordInput) (*entities.FinancialRecord, error) {
	return s.updateRecord(ctx, entities.RecordTypeExpense, id, input)
}

// DeleteExpense removes an expense record and publishes expense:deleted.
func (s *Service) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return s.deleteRecord(ctx, entities.RecordTypeExpense, id)
}

// AddFixedEstimate persists a fixed-estimate record. Estimates have no cash
// effect until confirmed, so no event is published.
func (s *Service) AddFixedEstimate(ctx context.Context, input RecordInput) (*entities.FinancialRecord, error) {
	return s.addRecord(ctx, entities.RecordTypeFixedEstimate, input)
}

// UpdateFixedEstimate updates a fixed-estimate record.
func (s *Service) UpdateFixedEstimate(ctx context.Context, id uuid.UUID, input RecordInput) (*entities.FinancialRecord, error) {
	return s.updateRecord(ctx, entities.RecordTypeFixedEstimate, id, input)
}

// DeleteFixedEstimate removes a fixed-estimate record.
func (s *Service) DeleteFixedEstimate(ctx context.Context, id uuid.UUID) error {
	return s.deleteRecord(ctx, entities.RecordTypeFixedEstimate, id)
}

// ConfirmFixedEstimate materializes a fixed estimate into the current
// period and publishes fixed_estimate:confirmed so the aggregate picks up
// its cash effect.
func (s *Service) ConfirmFixedEstimate(ctx context.Context, id uuid.UUID) (*entities.FinancialRecord, error) {
	rec, err := s.repo.GetByID(ctx, s.userID, id)
	if err != nil {
		return nil, err
	}
	if rec.RecordType != entities.RecordTypeFixedEstimate {
		return nil, apperrors.ValidationError("record is not a fixed estimate")
	}

	s.bus.Publish(ctx, events.Event{
		Type:   events.FixedEstimateConfirmed,
		UserID: s.userID,
		Record: rec,
	})
	return rec, nil
}

// GetRecord returns one record or a NOT_FOUND error.
func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*entities.FinancialRecord, error) {
	return s.repo.GetByID(ctx, s.userID, id)
}

// ListRecords returns a page of the user's records of one type.
func (s *Service) ListRecords(ctx context.Context, recordType entities.RecordType, limit, offset int) ([]*entities.FinancialRecord, error) {
	if !recordType.Valid() {
		return nil, apperrors.ValidationError("unknown record type").
			AddDetail("record_type", string(recordType))
	}
	return s.repo.ListByUserAndType(ctx, s.userID, recordType, limit, offset)
}

func (s *Service) addRecord(ctx context.Context, recordType entities.RecordType, input RecordInput) (*entities.FinancialRecord, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &entities.FinancialRecord{
		ID:          uuid.New(),
		UserID:      s.userID,
		RecordType:  recordType,
		Category:    strings.TrimSpace(input.Category),
		Amount:      input.Amount,
		Description: input.Description,
		Date:        input.Date,
		IsExpense:   input.IsExpense,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Infow("financial record created",
		"record_id", rec.ID,
		"record_type", rec.RecordType,
		"amount", rec.Amount,
	)

	if t, ok := addedEventFor(rec); ok {
		s.bus.Publish(ctx, events.Event{Type: t, UserID: s.userID, Record: rec})
	}
	return rec, nil
}

func (s *Service) updateRecord(ctx context.Context, recordType entities.RecordType, id uuid.UUID, input RecordInput) (*entities.FinancialRecord, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetByID(ctx, s.userID, id)
	if err != nil {
		return nil, err
	}
	if rec.RecordType != recordType {
		return nil, apperrors.NotFound(string(recordType) + " record")
	}

	oldContribution := cashContribution(rec)

	rec.Category = strings.TrimSpace(input.Category)
	rec.Amount = input.Amount
	rec.Description = input.Description
	rec.Date = input.Date
	rec.IsExpense = input.IsExpense
	rec.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}

	// A category change can move a record into or out of the suppressed
	// set (credit-card expenses), so the published delta is the difference
	// between the old and new cash contributions, each zero while
	// suppressed.
	if diff := cashContribution(rec).Sub(oldContribution); !diff.IsZero() {
		t := events.ExpenseUpdated
		if rec.RecordType == entities.RecordTypeIncome {
			t = events.IncomeUpdated
		}
		s.bus.Publish(ctx, events.Event{
			Type:   t,
			UserID: s.userID,
			Record: rec,
			Delta:  entities.SummaryDelta{CashBalance: diff},
		})
	}
	return rec, nil
}

func (s *Service) deleteRecord(ctx context.Context, recordType entities.RecordType, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, s.userID, id)
	if err != nil {
		return err
	}
	if rec.RecordType != recordType {
		return apperrors.NotFound(string(recordType) + " record")
	}

	if err := s.repo.Delete(ctx, s.userID, id); err != nil {
		return err
	}

	s.logger.Infow("financial record deleted", "record_id", id, "record_type", recordType)

	if t, ok := deletedEventFor(rec); ok {
		s.bus.Publish(ctx, events.Event{Type: t, UserID: s.userID, Record: rec, RecordID: id})
	}
	return nil
}

// publishesEvents reports whether mutations to this record reach the bus.
// Fixed estimates publish only on confirmation, and credit-card expenses
// never publish.
func publishesEvents(rec *entities.FinancialRecord) bool {
	if rec.RecordType == entities.RecordTypeFixedEstimate {
		return false
	}
	if rec.RecordType == entities.RecordTypeExpense && rec.Category == entities.CategoryCreditCard {
		return false
	}
	return true
}

func addedEventFor(rec *entities.FinancialRecord) (events.EventType, bool) {
	if !publishesEvents(rec) {
		return "", false
	}
	if rec.RecordType == entities.RecordTypeIncome {
		return events.IncomeAdded, true
	}
	return events.ExpenseAdded, true
}

func deletedEventFor(rec *entities.FinancialRecord) (events.EventType, bool) {
	if !publishesEvents(rec) {
		return "", false
	}
	if rec.RecordType == entities.RecordTypeIncome {
		return events.IncomeDeleted, true
	}
	return events.ExpenseDeleted, true
}

// cashContribution is the record's standing effect on the cash balance:
// positive for income, negative for expenses, zero while the record is
// suppressed from publication.
func cashContribution(rec *entities.FinancialRecord) decimal.Decimal {
	if !publishesEvents(rec) {
		return decimal.Zero
	}
	if rec.RecordType == entities.RecordTypeExpense {
		return rec.Amount.Neg()
	}
	return rec.Amount
}

func validateInput(input RecordInput) error {
	if input.Amount.Sign() <= 0 {
		return apperrors.ValidationError("amount must be positive")
	}
	if input.Date.IsZero() {
		return apperrors.ValidationError("invalid date")
	}
	if strings.TrimSpace(input.Category) == "" {
		return apperrors.MissingField("category")
	}
	return nil
}
