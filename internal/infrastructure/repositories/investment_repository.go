package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/treviro/treviro_service/internal/domain/entities"
	apperrors "github.com/treviro/treviro_service/pkg/errors"
	"github.com/treviro/treviro_service/pkg/logger"
)

// InvestmentRepository implements the investment repository interface using PostgreSQL
type InvestmentRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(db *sqlx.DB, log *logger.Logger) *InvestmentRepository {
	return &InvestmentRepository{
		db:     db,
		logger: log,
	}
}

const investmentColumns = `
	id, user_id, name, type, amount_invested, currency, purchase_date,
	ticker_symbol, number_of_shares, purchase_price_per_share, purchase_fees,
	gold_type, quantity_in_grams,
	currency_code, foreign_currency_amount, exchange_rate_at_purchase,
	property_address, property_type,
	debt_sub_type, issuer, interest_rate, maturity_date, is_matured,
	created_at, updated_at`

// Create inserts a new investment row.
func (r *InvestmentRepository) Create(ctx context.Context, inv *entities.Investment) error {
	query := `
		INSERT INTO investments (` + investmentColumns + `
		) VALUES (
			:id, :user_id, :name, :type, :amount_invested, :currency, :purchase_date,
			:ticker_symbol, :number_of_shares, :purchase_price_per_share, :purchase_fees,
			:gold_type, :quantity_in_grams,
			:currency_code, :foreign_currency_amount, :exchange_rate_at_purchase,
			:property_address, :property_type,
			:debt_sub_type, :issuer, :interest_rate, :maturity_date, :is_matured,
			:created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		r.logger.Errorw("failed to create investment", "error", err, "investment_id", inv.ID)
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's investments.
func (r *InvestmentRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = $1 AND user_id = $2`

	var inv entities.Investment
	err := r.db.GetContext(ctx, &inv, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("investment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return &inv, nil
}

// ListByUser returns a page of the user's investments, newest first.
func (r *InvestmentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE user_id = $1
		ORDER BY purchase_date DESC, id
		LIMIT $2 OFFSET $3`

	investments := []*entities.Investment{}
	if err := r.db.SelectContext(ctx, &investments, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return investments, nil
}

// Update overwrites a row's mutable fields.
func (r *InvestmentRepository) Update(ctx context.Context, inv *entities.Investment) error {
	query := `
		UPDATE investments SET
			name = :name,
			amount_invested = :amount_invested,
			currency = :currency,
			purchase_date = :purchase_date,
			ticker_symbol = :ticker_symbol,
			number_of_shares = :number_of_shares,
			purchase_price_per_share = :purchase_price_per_share,
			purchase_fees = :purchase_fees,
			gold_type = :gold_type,
			quantity_in_grams = :quantity_in_grams,
			currency_code = :currency_code,
			foreign_currency_amount = :foreign_currency_amount,
			exchange_rate_at_purchase = :exchange_rate_at_purchase,
			property_address = :property_address,
			property_type = :property_type,
			debt_sub_type = :debt_sub_type,
			issuer = :issuer,
			interest_rate = :interest_rate,
			maturity_date = :maturity_date,
			is_matured = :is_matured,
			updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`

	result, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		r.logger.Errorw("failed to update investment", "error", err, "investment_id", inv.ID)
		return fmt.Errorf("failed to update investment: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("investment")
	}
	return nil
}

// Delete removes one of the user's investments.
func (r *InvestmentRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM investments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("investment")
	}
	return nil
}
