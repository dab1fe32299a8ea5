package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of cash-affecting event a transaction records.
type TransactionType string

const (
	TransactionTypeBuy         TransactionType = "buy"
	TransactionTypeSell        TransactionType = "sell"
	TransactionTypeDividend    TransactionType = "dividend"
	TransactionTypePayment     TransactionType = "payment"
	TransactionTypeIncome      TransactionType = "income"
	TransactionTypeExpense     TransactionType = "expense"
	TransactionTypeInterest    TransactionType = "interest"
	TransactionTypeMaturedDebt TransactionType = "matured_debt"
)

// Valid reports whether t is a supported transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeBuy, TransactionTypeSell, TransactionTypeDividend,
		TransactionTypePayment, TransactionTypeIncome, TransactionTypeExpense,
		TransactionTypeInterest, TransactionTypeMaturedDebt:
		return true
	}
	return false
}

// Transaction records a buy/sell/dividend/payment tied to an investment,
// or a standalone income/expense entry. InvestmentID is a back-reference,
// not ownership: deleting an investment does not cascade to transactions.
type Transaction struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	UserID       uuid.UUID        `json:"user_id" db:"user_id"`
	InvestmentID *uuid.UUID       `json:"investment_id,omitempty" db:"investment_id"`
	Type         TransactionType  `json:"type" db:"type"`
	Amount       decimal.Decimal  `json:"amount" db:"amount"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty" db:"quantity"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit,omitempty" db:"price_per_unit"`
	Fees         decimal.Decimal  `json:"fees" db:"fees"`
	ProfitOrLoss *decimal.Decimal `json:"profit_or_loss,omitempty" db:"profit_or_loss"`
	Date         time.Time        `json:"date" db:"date"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}
