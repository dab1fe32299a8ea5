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

// TransactionRepository implements the transaction repository interface using PostgreSQL
type TransactionRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sqlx.DB, log *logger.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: log,
	}
}

const transactionColumns = `
	id, user_id, investment_id, type, amount, quantity, price_per_unit,
	fees, profit_or_loss, date, created_at`

// Create inserts a new transaction row.
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `
		) VALUES (
			:id, :user_id, :investment_id, :type, :amount, :quantity, :price_per_unit,
			:fees, :profit_or_loss, :date, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		r.logger.Errorw("failed to create transaction", "error", err, "transaction_id", tx.ID)
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's transactions.
func (r *TransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`

	var tx entities.Transaction
	err := r.db.GetContext(ctx, &tx, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("transaction")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

// ListByUser returns a page of the user's transactions, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, id
		LIMIT $2 OFFSET $3`

	transactions := []*entities.Transaction{}
	if err := r.db.SelectContext(ctx, &transactions, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// ListByInvestment returns every transaction referencing an investment.
func (r *TransactionRepository) ListByInvestment(ctx context.Context, userID, investmentID uuid.UUID) ([]*entities.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND investment_id = $2
		ORDER BY date DESC, id`

	transactions := []*entities.Transaction{}
	if err := r.db.SelectContext(ctx, &transactions, query, userID, investmentID); err != nil {
		return nil, fmt.Errorf("failed to list transactions by investment: %w", err)
	}
	return transactions, nil
}

// Update overwrites a row's mutable fields.
func (r *TransactionRepository) Update(ctx context.Context, tx *entities.Transaction) error {
	query := `
		UPDATE transactions SET
			investment_id = :investment_id,
			type = :type,
			amount = :amount,
			quantity = :quantity,
			price_per_unit = :price_per_unit,
			fees = :fees,
			profit_or_loss = :profit_or_loss,
			date = :date
		WHERE id = :id AND user_id = :user_id`

	result, err := r.db.NamedExecContext(ctx, query, tx)
	if err != nil {
		r.logger.Errorw("failed to update transaction", "error", err, "transaction_id", tx.ID)
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("transaction")
	}
	return nil
}

// Delete removes one of the user's transactions.
func (r *TransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("transaction")
	}
	return nil
}
