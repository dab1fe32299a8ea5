package dashboard

import (
	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/events"
)

// DeltaFor derives the numeric effect of an event on the aggregate summary.
// An explicit delta on the event wins; otherwise the delta is derived from
// the payload. Deltas commute, so the aggregate converges regardless of the
// order concurrent updates commit in.
func DeltaFor(evt events.Event) entities.SummaryDelta {
	if !evt.Delta.IsZero() {
		return evt.Delta
	}

	switch evt.Type {
	case events.InvestmentAdded:
		if evt.Investment != nil {
			return DeltaForInvestmentAdded(evt.Investment)
		}
	case events.InvestmentRemoved:
		// Removal does not publish a compensating adjustment; the aggregate
		// keeps the removed investment's contribution until a full
		// recalculation runs.
		return entities.SummaryDelta{}
	case events.TransactionCreated:
		if evt.Transaction != nil {
			return DeltaForTransaction(evt.Transaction)
		}
	case events.TransactionDeleted:
		if evt.Transaction != nil {
			return DeltaForTransaction(evt.Transaction).Negate()
		}
	case events.IncomeAdded:
		if evt.Record != nil {
			return entities.SummaryDelta{CashBalance: evt.Record.Amount}
		}
	case events.IncomeDeleted:
		if evt.Record != nil {
			return entities.SummaryDelta{CashBalance: evt.Record.Amount.Neg()}
		}
	case events.ExpenseAdded:
		if evt.Record != nil {
			return entities.SummaryDelta{CashBalance: evt.Record.Amount.Neg()}
		}
	case events.ExpenseDeleted:
		if evt.Record != nil {
			return entities.SummaryDelta{CashBalance: evt.Record.Amount}
		}
	case events.FixedEstimateConfirmed:
		if evt.Record != nil {
			if evt.Record.IsExpense {
				return entities.SummaryDelta{CashBalance: evt.Record.Amount.Neg()}
			}
			return entities.SummaryDelta{CashBalance: evt.Record.Amount}
		}
	}

	// Updated events carry their delta explicitly (old vs new difference);
	// without one there is nothing to apply.
	return entities.SummaryDelta{}
}

// DeltaForInvestmentAdded is the effect of a new investment: the purchase
// cost raises the invested total and is a cash outflow. A matured debt
// instrument instead counts toward matured debt and cash.
func DeltaForInvestmentAdded(inv *entities.Investment) entities.SummaryDelta {
	if inv.IsMaturedDebt() {
		return entities.SummaryDelta{
			MaturedDebt: inv.AmountInvested,
			CashBalance: inv.AmountInvested,
		}
	}
	return entities.SummaryDelta{
		Invested:    inv.AmountInvested,
		CashBalance: inv.AmountInvested.Neg(),
	}
}

// DeltaForTransaction is the effect of a transaction being recorded.
func DeltaForTransaction(tx *entities.Transaction) entities.SummaryDelta {
	switch tx.Type {
	case entities.TransactionTypeBuy:
		return entities.SummaryDelta{
			Invested:    tx.Amount,
			CashBalance: tx.Amount.Neg(),
		}
	case entities.TransactionTypeSell:
		// Amount is the net proceeds; proceeds minus profit is the cost
		// basis the sale releases from the holding, which must leave the
		// invested total so the running aggregate matches a full
		// recalculation over the reduced holding.
		d := entities.SummaryDelta{CashBalance: tx.Amount}
		if tx.ProfitOrLoss != nil {
			d.RealizedPnL = *tx.ProfitOrLoss
			d.Invested = tx.Amount.Sub(*tx.ProfitOrLoss).Neg()
		}
		return d
	case entities.TransactionTypeDividend,
		entities.TransactionTypeIncome,
		entities.TransactionTypeInterest:
		return entities.SummaryDelta{CashBalance: tx.Amount}
	case entities.TransactionTypeExpense,
		entities.TransactionTypePayment:
		return entities.SummaryDelta{CashBalance: tx.Amount.Neg()}
	case entities.TransactionTypeMaturedDebt:
		// Principal returns to cash and stops counting as invested.
		return entities.SummaryDelta{
			Invested:    tx.Amount.Neg(),
			MaturedDebt: tx.Amount,
			CashBalance: tx.Amount,
		}
	}
	return entities.SummaryDelta{}
}
