package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/events"
	"github.com/treviro/treviro_service/internal/domain/repositories"
	apperrors "github.com/treviro/treviro_service/pkg/errors"
	"github.com/treviro/treviro_service/pkg/logger"
	"github.com/treviro/treviro_service/pkg/metrics"
)

// SummaryCache caches dashboard summaries keyed by user. Implementations
// must tolerate a nil-op (cache misses are served from the repository).
type SummaryCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*entities.DashboardSummary, bool)
	Set(ctx context.Context, summary *entities.DashboardSummary)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// Service maintains the eventually consistent per-user aggregate summary.
//
// The aggregate is a best-effort cache reconstructible from source records:
// a failed incremental update is logged and swallowed, never rolled into the
// originating record write, and is recoverable via Recalculate.
type Service struct {
	userID     uuid.UUID
	bus        *events.Bus
	repo       repositories.DashboardRepository
	investRepo repositories.InvestmentRepository
	txRepo     repositories.TransactionRepository
	finRepo    repositories.FinancialRecordRepository
	cache      SummaryCache
	logger     *logger.Logger

	unsubscribes []func()
}

// NewService creates a dashboard service bound to a single user.
func NewService(
	userID uuid.UUID,
	bus *events.Bus,
	repo repositories.DashboardRepository,
	investRepo repositories.InvestmentRepository,
	txRepo repositories.TransactionRepository,
	finRepo repositories.FinancialRecordRepository,
	cache SummaryCache,
	log *logger.Logger,
) *Service {
	return &Service{
		userID:     userID,
		bus:        bus,
		repo:       repo,
		investRepo: investRepo,
		txRepo:     txRepo,
		finRepo:    finRepo,
		cache:      cache,
		logger:     log.ForUser(userID.String()),
	}
}

// SetupEventSubscriptions registers the aggregate-maintenance handler for
// every investment, transaction and financial-record event type.
func (s *Service) SetupEventSubscriptions() {
	for _, t := range events.AllTypes {
		unsub := s.bus.Subscribe(t, s.handleEvent)
		s.unsubscribes = append(s.unsubscribes, unsub)
	}
}

// Cleanup releases all event subscriptions. Must be called on logout or
// user switch; afterwards no further events reach this service's handlers.
func (s *Service) Cleanup() {
	for _, unsub := range s.unsubscribes {
		unsub()
	}
	s.unsubscribes = nil
}

// handleEvent applies the event's numeric effect to the stored summary.
// Errors are swallowed at this boundary: the record write already committed,
// and the aggregate is recoverable via Recalculate.
func (s *Service) handleEvent(ctx context.Context, evt events.Event) error {
	if evt.UserID != s.userID {
		// The bus is session-scoped, but events still carry tenancy and
		// handlers discriminate by payload.
		return nil
	}

	delta := DeltaFor(evt)
	if delta.IsZero() {
		metrics.AggregateUpdatesTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	if err := s.repo.ApplyDelta(ctx, s.userID, delta); err != nil {
		metrics.AggregateUpdatesTotal.WithLabelValues("failed").Inc()
		aggErr := apperrors.AggregateUpdateError(err)
		s.logger.Errorw("incremental aggregate update failed",
			"event_type", evt.Type,
			"error", aggErr,
		)
		return aggErr
	}

	metrics.AggregateUpdatesTotal.WithLabelValues("applied").Inc()
	if s.cache != nil {
		s.cache.Invalidate(ctx, s.userID)
	}
	return nil
}

// GetSummary returns the user's aggregate summary, or the all-zero summary
// when none exists. A read never creates the row.
func (s *Service) GetSummary(ctx context.Context) (*entities.DashboardSummary, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, s.userID); ok {
			return cached, nil
		}
	}

	summary, err := s.repo.Get(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return entities.ZeroSummary(s.userID), nil
	}

	if s.cache != nil {
		s.cache.Set(ctx, summary)
	}
	return summary, nil
}

// Recalculate rebuilds the summary from scratch by scanning all of the
// user's investments, transactions and financial records, then overwrites
// the stored row wholesale. This is the recovery path for aggregate updates
// lost to crashes or swallowed failures.
func (s *Service) Recalculate(ctx context.Context) (*entities.DashboardSummary, error) {
	investments, err := s.listAllInvestments(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := s.listAllTransactions(ctx)
	if err != nil {
		return nil, err
	}
	incomes, err := s.listAllRecords(ctx, entities.RecordTypeIncome)
	if err != nil {
		return nil, err
	}
	expenses, err := s.listAllRecords(ctx, entities.RecordTypeExpense)
	if err != nil {
		return nil, err
	}

	summary := ComputeSummary(s.userID, investments, transactions, incomes, expenses)
	summary.UpdatedAt = time.Now().UTC()

	if err := s.repo.Replace(ctx, summary); err != nil {
		return nil, apperrors.AggregateUpdateError(err)
	}

	metrics.RecalculationsTotal.Inc()
	if s.cache != nil {
		s.cache.Invalidate(ctx, s.userID)
	}
	s.logger.Infow("dashboard summary recalculated",
		"total_invested", summary.TotalInvested,
		"total_realized_pnl", summary.TotalRealizedPnL,
		"total_cash_balance", summary.TotalCashBalance,
	)
	return summary, nil
}

// ComputeSummary derives the aggregate from source records. Matured debt
// principal is excluded from the invested total and added back to cash;
// sells contribute realized P&L and proceeds; income adds to cash and
// expenses subtract from it.
func ComputeSummary(
	userID uuid.UUID,
	investments []*entities.Investment,
	transactions []*entities.Transaction,
	incomes []*entities.FinancialRecord,
	expenses []*entities.FinancialRecord,
) *entities.DashboardSummary {
	summary := entities.ZeroSummary(userID)

	for _, inv := range investments {
		if inv.IsMaturedDebt() {
			summary.TotalMaturedDebt = summary.TotalMaturedDebt.Add(inv.AmountInvested)
			summary.TotalCashBalance = summary.TotalCashBalance.Add(inv.AmountInvested)
			continue
		}
		summary.TotalInvested = summary.TotalInvested.Add(inv.AmountInvested)
		summary.TotalCashBalance = summary.TotalCashBalance.Sub(inv.AmountInvested)
	}

	for _, tx := range transactions {
		if tx.Type != entities.TransactionTypeSell {
			continue
		}
		if tx.ProfitOrLoss != nil {
			summary.TotalRealizedPnL = summary.TotalRealizedPnL.Add(*tx.ProfitOrLoss)
			// The holding's stored basis no longer carries the sold
			// portion; count the released cost basis as purchase outflow
			// so cash reflects the full original purchase.
			summary.TotalCashBalance = summary.TotalCashBalance.Sub(tx.Amount.Sub(*tx.ProfitOrLoss))
		}
		summary.TotalCashBalance = summary.TotalCashBalance.Add(tx.Amount)
	}

	for _, rec := range incomes {
		summary.TotalCashBalance = summary.TotalCashBalance.Add(rec.Amount)
	}
	for _, rec := range expenses {
		summary.TotalCashBalance = summary.TotalCashBalance.Sub(rec.Amount)
	}

	return summary
}

const scanPageSize = 500

func (s *Service) listAllInvestments(ctx context.Context) ([]*entities.Investment, error) {
	var all []*entities.Investment
	for offset := 0; ; offset += scanPageSize {
		page, err := s.investRepo.ListByUser(ctx, s.userID, scanPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < scanPageSize {
			return all, nil
		}
	}
}

func (s *Service) listAllTransactions(ctx context.Context) ([]*entities.Transaction, error) {
	var all []*entities.Transaction
	for offset := 0; ; offset += scanPageSize {
		page, err := s.txRepo.ListByUser(ctx, s.userID, scanPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < scanPageSize {
			return all, nil
		}
	}
}

func (s *Service) listAllRecords(ctx context.Context, t entities.RecordType) ([]*entities.FinancialRecord, error) {
	var all []*entities.FinancialRecord
	for offset := 0; ; offset += scanPageSize {
		page, err := s.finRepo.ListByUserAndType(ctx, s.userID, t, scanPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < scanPageSize {
			return all, nil
		}
	}
}
