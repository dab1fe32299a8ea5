package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/treviro/treviro_service/internal/domain/entities"
)

// InvestmentRepository persists investment records of any variant.
type InvestmentRepository interface {
	Create(ctx context.Context, inv *entities.Investment) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Investment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Investment, error)
	Update(ctx context.Context, inv *entities.Investment) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// TransactionRepository persists transaction records.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error)
	ListByInvestment(ctx context.Context, userID, investmentID uuid.UUID) ([]*entities.Transaction, error)
	Update(ctx context.Context, tx *entities.Transaction) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// FinancialRecordRepository persists income, expense and fixed-estimate records.
type FinancialRecordRepository interface {
	Create(ctx context.Context, rec *entities.FinancialRecord) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.FinancialRecord, error)
	ListByUserAndType(ctx context.Context, userID uuid.UUID, recordType entities.RecordType, limit, offset int) ([]*entities.FinancialRecord, error)
	Update(ctx context.Context, rec *entities.FinancialRecord) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// DashboardRepository owns the per-user aggregate summary row.
//
// ApplyDelta must be atomic with respect to concurrent callers: two deltas
// applied concurrently before the row exists must both land (the
// create-vs-increment race is closed inside the storage layer, not above it).
type DashboardRepository interface {
	// Get returns nil, nil when no summary row exists for the user.
	// A read never creates the row.
	Get(ctx context.Context, userID uuid.UUID) (*entities.DashboardSummary, error)
	// ApplyDelta folds the delta into the user's summary, creating the row
	// with the delta as its initial value when absent.
	ApplyDelta(ctx context.Context, userID uuid.UUID, delta entities.SummaryDelta) error
	// Replace overwrites the summary wholesale. Used by full recalculation.
	Replace(ctx context.Context, summary *entities.DashboardSummary) error
}

// MarketDataRepository owns the reference tables written by ingestion workers.
type MarketDataRepository interface {
	UpsertSecurities(ctx context.Context, securities []*entities.ListedSecurity) error
	ListSecurities(ctx context.Context, limit, offset int) ([]*entities.ListedSecurity, error)
	UpsertExchangeRates(ctx context.Context, rates []*entities.ExchangeRate, asOf time.Time) error
	ListExchangeRates(ctx context.Context) ([]*entities.ExchangeRate, error)
	UpsertGoldPrices(ctx context.Context, prices *entities.GoldMarketPrices) error
	GetGoldPrices(ctx context.Context) (*entities.GoldMarketPrices, error)
}
