package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/pkg/logger"
)

// DashboardRepository implements the dashboard repository interface using PostgreSQL
type DashboardRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *sqlx.DB, log *logger.Logger) *DashboardRepository {
	return &DashboardRepository{
		db:     db,
		logger: log,
	}
}

// Get returns the user's summary row, or nil, nil when it does not exist.
// A read never creates the row.
func (r *DashboardRepository) Get(ctx context.Context, userID uuid.UUID) (*entities.DashboardSummary, error) {
	query := `
		SELECT user_id, total_invested, total_realized_pnl, total_cash_balance,
		       total_matured_debt, updated_at
		FROM dashboard_summaries
		WHERE user_id = $1`

	var summary entities.DashboardSummary
	err := r.db.GetContext(ctx, &summary, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard summary: %w", err)
	}
	return &summary, nil
}

// ApplyDelta folds the delta into the user's summary in a single statement.
// The upsert makes create-vs-increment races between concurrent events safe:
// whichever statement runs second increments the row the first created.
func (r *DashboardRepository) ApplyDelta(ctx context.Context, userID uuid.UUID, delta entities.SummaryDelta) error {
	query := `
		INSERT INTO dashboard_summaries (
			user_id, total_invested, total_realized_pnl, total_cash_balance,
			total_matured_debt, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			total_invested     = dashboard_summaries.total_invested + EXCLUDED.total_invested,
			total_realized_pnl = dashboard_summaries.total_realized_pnl + EXCLUDED.total_realized_pnl,
			total_cash_balance = dashboard_summaries.total_cash_balance + EXCLUDED.total_cash_balance,
			total_matured_debt = dashboard_summaries.total_matured_debt + EXCLUDED.total_matured_debt,
			updated_at         = NOW()`

	_, err := r.db.ExecContext(ctx, query,
		userID,
		delta.Invested,
		delta.RealizedPnL,
		delta.CashBalance,
		delta.MaturedDebt,
	)
	if err != nil {
		r.logger.Errorw("failed to apply summary delta", "error", err, "user_id", userID)
		return fmt.Errorf("failed to apply summary delta: %w", err)
	}
	return nil
}

// Replace overwrites the summary wholesale. Used by full recalculation.
func (r *DashboardRepository) Replace(ctx context.Context, summary *entities.DashboardSummary) error {
	query := `
		INSERT INTO dashboard_summaries (
			user_id, total_invested, total_realized_pnl, total_cash_balance,
			total_matured_debt, updated_at
		) VALUES (:user_id, :total_invested, :total_realized_pnl, :total_cash_balance,
		          :total_matured_debt, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			total_invested     = EXCLUDED.total_invested,
			total_realized_pnl = EXCLUDED.total_realized_pnl,
			total_cash_balance = EXCLUDED.total_cash_balance,
			total_matured_debt = EXCLUDED.total_matured_debt,
			updated_at         = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, summary); err != nil {
		r.logger.Errorw("failed to replace dashboard summary", "error", err, "user_id", summary.UserID)
		return fmt.Errorf("failed to replace dashboard summary: %w", err)
	}
	return nil
}
