package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardSummary is the single per-user aggregate document holding the
// running totals. An absent row is equivalent to all-zero; once created the
// row always carries every field.
type DashboardSummary struct {
	UserID           uuid.UUID       `json:"user_id" db:"user_id"`
	TotalInvested    decimal.Decimal `json:"total_invested_across_all_assets" db:"total_invested"`
	TotalRealizedPnL decimal.Decimal `json:"total_realized_pnl" db:"total_realized_pnl"`
	TotalCashBalance decimal.Decimal `json:"total_cash_balance" db:"total_cash_balance"`
	TotalMaturedDebt decimal.Decimal `json:"total_matured_debt" db:"total_matured_debt"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// ZeroSummary returns the all-zero summary for a user with no prior writes.
func ZeroSummary(userID uuid.UUID) *DashboardSummary {
	return &DashboardSummary{
		UserID:           userID,
		TotalInvested:    decimal.Zero,
		TotalRealizedPnL: decimal.Zero,
		TotalCashBalance: decimal.Zero,
		TotalMaturedDebt: decimal.Zero,
	}
}

// SummaryDelta is the numeric effect of a single domain event on the
// aggregate. Deltas commute: applying a set of deltas yields the same
// summary in any order.
type SummaryDelta struct {
	Invested    decimal.Decimal `json:"invested"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	MaturedDebt decimal.Decimal `json:"matured_debt"`
}

// IsZero reports whether the delta would leave the summary unchanged.
func (d SummaryDelta) IsZero() bool {
	return d.Invested.IsZero() && d.RealizedPnL.IsZero() &&
		d.CashBalance.IsZero() && d.MaturedDebt.IsZero()
}

// Add folds another delta into this one.
func (d SummaryDelta) Add(o SummaryDelta) SummaryDelta {
	return SummaryDelta{
		Invested:    d.Invested.Add(o.Invested),
		RealizedPnL: d.RealizedPnL.Add(o.RealizedPnL),
		CashBalance: d.CashBalance.Add(o.CashBalance),
		MaturedDebt: d.MaturedDebt.Add(o.MaturedDebt),
	}
}

// Negate returns the compensating delta.
func (d SummaryDelta) Negate() SummaryDelta {
	return SummaryDelta{
		Invested:    d.Invested.Neg(),
		RealizedPnL: d.RealizedPnL.Neg(),
		CashBalance: d.CashBalance.Neg(),
		MaturedDebt: d.MaturedDebt.Neg(),
	}
}

// Apply returns a copy of the summary with the delta folded in.
func (s *DashboardSummary) Apply(d SummaryDelta) *DashboardSummary {
	return &DashboardSummary{
		UserID:           s.UserID,
		TotalInvested:    s.TotalInvested.Add(d.Invested),
		TotalRealizedPnL: s.TotalRealizedPnL.Add(d.RealizedPnL),
		TotalCashBalance: s.TotalCashBalance.Add(d.CashBalance),
		TotalMaturedDebt: s.TotalMaturedDebt.Add(d.MaturedDebt),
		UpdatedAt:        s.UpdatedAt,
	}
}
