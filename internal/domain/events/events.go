package events

import (
	"github.com/google/uuid"
	"github.com/treviro/treviro_service/internal/domain/entities"
)

// EventType identifies a domain event. Subscriptions match on the exact string.
type EventType string

const (
	InvestmentAdded   EventType = "investment:added"
	InvestmentUpdated EventType = "investment:updated"
	InvestmentRemoved EventType = "investment:removed"

	TransactionCreated EventType = "transaction:created"
	TransactionUpdated EventType = "transaction:updated"
	TransactionDeleted EventType = "transaction:deleted"

	IncomeAdded   EventType = "income:added"
	IncomeUpdated EventType = "income:updated"
	IncomeDeleted EventType = "income:deleted"

	ExpenseAdded   EventType = "expense:added"
	ExpenseUpdated EventType = "expense:updated"
	ExpenseDeleted EventType = "expense:deleted"

	FixedEstimateConfirmed EventType = "fixed_estimate:confirmed"
)

// AllTypes lists every event type a dashboard aggregator subscribes to.
var AllTypes = []EventType{
	InvestmentAdded, InvestmentUpdated, InvestmentRemoved,
	TransactionCreated, TransactionUpdated, TransactionDeleted,
	IncomeAdded, IncomeUpdated, IncomeDeleted,
	ExpenseAdded, ExpenseUpdated, ExpenseDeleted,
	FixedEstimateConfirmed,
}

// Event is a domain event carried by the bus. Exactly one of the payload
// pointers is set depending on the type; Delta is the event's numeric effect
// on the dashboard aggregate and may be zero for events with no cash impact.
type Event struct {
	Type   EventType
	UserID uuid.UUID

	Investment  *entities.Investment
	Transaction *entities.Transaction
	Record      *entities.FinancialRecord
	// RecordID identifies the subject of deletion events, whose payload
	// no longer exists.
	RecordID uuid.UUID

	Delta entities.SummaryDelta
}
