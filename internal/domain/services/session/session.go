package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/domain/events"
	"github.com/treviro/treviro_service/internal/domain/repositories"
	"github.com/treviro/treviro_service/internal/domain/services/dashboard"
	"github.com/treviro/treviro_service/internal/domain/services/financial"
	"github.com/treviro/treviro_service/internal/domain/services/investment"
	"github.com/treviro/treviro_service/internal/domain/services/transaction"
	"github.com/treviro/treviro_service/pkg/logger"
	"github.com/treviro/treviro_service/pkg/metrics"
)

// Deps are the process-wide dependencies every session is built from.
// Repositories and the cache are shared; the bus and services are not.
type Deps struct {
	Investments  repositories.InvestmentRepository
	Transactions repositories.TransactionRepository
	Records      repositories.FinancialRecordRepository
	Dashboard    repositories.DashboardRepository
	Cache        dashboard.SummaryCache
	Logger       *logger.Logger
}

// Session bundles one user's event bus and service set. Services within a
// session share the bus; sessions for different users share nothing but the
// storage layer, so one user's events can never reach another's handlers.
type Session struct {
	userID uuid.UUID
	bus    *events.Bus

	Investments  *investment.Service
	Transactions *transaction.Service
	Records      *financial.Service
	Dashboard    *dashboard.Service

	logger *logger.Logger
	closed bool
}

func newSession(userID uuid.UUID, deps Deps) *Session {
	bus := events.NewBus(deps.Logger)

	s := &Session{
		userID:       userID,
		bus:          bus,
		Investments:  investment.NewService(userID, deps.Investments, deps.Transactions, deps.Logger),
		Transactions: transaction.NewService(userID, bus, deps.Transactions, deps.Logger),
		Records:      financial.NewService(userID, bus, deps.Records, deps.Logger),
		Dashboard: dashboard.NewService(
			userID, bus,
			deps.Dashboard, deps.Investments, deps.Transactions, deps.Records,
			deps.Cache, deps.Logger,
		),
		logger: deps.Logger.ForUser(userID.String()),
	}

	// Consumers first, so nothing published later is missed.
	s.Dashboard.SetupEventSubscriptions()
	s.Transactions.SetupEventSubscriptions()

	metrics.ActiveSessionsGauge.Inc()
	s.logger.Infow("session activated")
	return s
}

// UserID returns the user this session serves.
func (s *Session) UserID() uuid.UUID {
	return s.userID
}

// Bus exposes the session's event bus.
func (s *Session) Bus() *events.Bus {
	return s.bus
}

// Close tears the session down: subscriptions are released before any
// reference is dropped, so no handler can fire against a dead session.
// Close is idempotent.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true

	s.Dashboard.Cleanup()
	s.Transactions.Cleanup()

	metrics.ActiveSessionsGauge.Dec()
	s.logger.Infow("session deactivated")
}

// AddInvestment creates an investment and publishes investment:added with
// its invested delta. Publication lives here rather than in the investment
// service so the service stays decoupled from the dashboard.
func (s *Session) AddInvestment(ctx context.Context, input investment.CreateInput) (*entities.Investment, error) {
	result, err := s.Investments.CreateInvestment(ctx, input)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.Event{
		Type:       events.InvestmentAdded,
		UserID:     s.userID,
		Investment: result.Investment,
		Delta:      dashboard.DeltaForInvestmentAdded(result.Investment),
	})
	return result.Investment, nil
}

// RemoveInvestment deletes an investment and publishes investment:removed.
// The removal event carries no delta; historical transactions keep their
// effect on the aggregate until a full recalculation.
func (s *Session) RemoveInvestment(ctx context.Context, id uuid.UUID) error {
	inv, err := s.Investments.GetInvestment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Investments.RemoveInvestment(ctx, id); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.Event{
		Type:       events.InvestmentRemoved,
		UserID:     s.userID,
		Investment: inv,
		RecordID:   id,
	})
	return nil
}

// RecordSale records a sale against a stock investment and publishes the
// resulting sell transaction as transaction:created.
func (s *Session) RecordSale(ctx context.Context, investmentID uuid.UUID, sale investment.SaleInput) (*entities.Transaction, error) {
	tx, err := s.Investments.RecordSale(ctx, investmentID, sale)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.Event{
		Type:        events.TransactionCreated,
		UserID:      s.userID,
		Transaction: tx,
	})
	return tx, nil
}
