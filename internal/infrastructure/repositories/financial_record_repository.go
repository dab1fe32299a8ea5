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

// FinancialRecordRepository implements the financial record repository interface using PostgreSQL
type FinancialRecordRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewFinancialRecordRepository creates a new financial record repository
func NewFinancialRecordRepository(db *sqlx.DB, log *logger.Logger) *FinancialRecordRepository {
	return &FinancialRecordRepository{
		db:     db,
		logger: log,
	}
}

const recordColumns = `
	id, user_id, record_type, category, amount, description, date, is_expense,
	created_at, updated_at`

// Create inserts a new financial record row.
func (r *FinancialRecordRepository) Create(ctx context.Context, rec *entities.FinancialRecord) error {
	query := `
		INSERT INTO financial_records (` + recordColumns + `
		) VALUES (
			:id, :user_id, :record_type, :category, :amount, :description, :date, :is_expense,
			:created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		r.logger.Errorw("failed to create financial record", "error", err, "record_id", rec.ID)
		return fmt.Errorf("failed to create financial record: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's records.
func (r *FinancialRecordRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.FinancialRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM financial_records WHERE id = $1 AND user_id = $2`

	var rec entities.FinancialRecord
	err := r.db.GetContext(ctx, &rec, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("financial record")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get financial record: %w", err)
	}
	return &rec, nil
}

// ListByUserAndType returns a page of the user's records of one type, newest first.
func (r *FinancialRecordRepository) ListByUserAndType(ctx context.Context, userID uuid.UUID, recordType entities.RecordType, limit, offset int) ([]*entities.FinancialRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM financial_records
		WHERE user_id = $1 AND record_type = $2
		ORDER BY date DESC, id
		LIMIT $3 OFFSET $4`

	records := []*entities.FinancialRecord{}
	if err := r.db.SelectContext(ctx, &records, query, userID, recordType, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list financial records: %w", err)
	}
	return records, nil
}

// Update overwrites a row's mutable fields.
func (r *FinancialRecordRepository) Update(ctx context.Context, rec *entities.FinancialRecord) error {
	query := `
		UPDATE financial_records SET
			category = :category,
			amount = :amount,
			description = :description,
			date = :date,
			is_expense = :is_expense,
			updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`

	result, err := r.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		r.logger.Errorw("failed to update financial record", "error", err, "record_id", rec.ID)
		return fmt.Errorf("failed to update financial record: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("financial record")
	}
	return nil
}

// Delete removes one of the user's records.
func (r *FinancialRecordRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM financial_records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete financial record: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("financial record")
	}
	return nil
}
