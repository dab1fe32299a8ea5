package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordType discriminates the financial record kinds sharing one table.
type RecordType string

const (
	RecordTypeIncome        RecordType = "income"
	RecordTypeExpense       RecordType = "expense"
	RecordTypeFixedEstimate RecordType = "fixed_estimate"
)

// Valid reports whether t is a supported record type.
func (t RecordType) Valid() bool {
	switch t {
	case RecordTypeIncome, RecordTypeExpense, RecordTypeFixedEstimate:
		return true
	}
	return false
}

// CategoryCreditCard marks expenses settled through a credit card statement.
// These do not hit the cash balance directly, so no event is published for them.
const CategoryCreditCard = "Credit Card"

// FinancialRecord is an income, expense or fixed-estimate entry owned by
// the Financial Records Service, independent of the investment domain.
type FinancialRecord struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	RecordType  RecordType      `json:"record_type" db:"record_type"`
	Category    string          `json:"category" db:"category"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description,omitempty" db:"description"`
	Date        time.Time       `json:"date" db:"date"`
	// IsExpense applies to fixed estimates only: whether confirming the
	// estimate produces an expense (true) or an income (false).
	IsExpense bool      `json:"is_expense" db:"is_expense"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
