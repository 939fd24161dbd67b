package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/domain/transaction"
	"github.com/envelope-ledger/internal/platform/persistence"
)

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// Create stores a new transaction
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, budget_id, date, type, comment, deleted, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID, t.BudgetID, t.Date, t.Type, t.Comment, t.Deleted, t.Version, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create transaction", "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID, including soft-deleted rows.
// Callers decide how to treat the deleted flag.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT id, budget_id, date, type, comment, deleted, version, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`

	var t transaction.Transaction
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.BudgetID, &t.Date, &t.Type, &t.Comment, &t.Deleted, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &t, nil
}

// Update updates a transaction's date and comment and bumps its version
func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET date = $1, comment = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, t.Date, t.Comment, t.ID)
	if err != nil {
		r.logger.Error("Failed to update transaction", "id", t.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: t.ID}
	}

	return nil
}

// SoftDelete marks a transaction as deleted while keeping the row
func (r *TransactionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET deleted = TRUE, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete transaction", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

// CreateSplit stores a new split
func (r *TransactionRepository) CreateSplit(ctx context.Context, s *transaction.Split) error {
	query := `
		INSERT INTO transaction_categories (id, transaction_id, category_id, amount, expected, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		s.ID, s.TransactionID, s.CategoryID, s.Amount, s.Expected, s.Comment, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create split", "error", err)
		return fmt.Errorf("failed to create split: %w", err)
	}

	return nil
}

// GetSplit retrieves a split by its ID
func (r *TransactionRepository) GetSplit(ctx context.Context, id uuid.UUID) (*transaction.Split, error) {
	query := `
		SELECT id, transaction_id, category_id, amount, expected, comment, created_at, updated_at
		FROM transaction_categories
		WHERE id = $1
	`

	var s transaction.Split
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.TransactionID, &s.CategoryID, &s.Amount, &s.Expected, &s.Comment, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrSplitNotFound{SplitID: id}
		}
		r.logger.Error("Failed to get split", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get split: %w", err)
	}

	return &s, nil
}

// ListSplits retrieves all splits of a transaction in creation order
func (r *TransactionRepository) ListSplits(ctx context.Context, transactionID uuid.UUID) ([]*transaction.Split, error) {
	query := `
		SELECT id, transaction_id, category_id, amount, expected, comment, created_at, updated_at
		FROM transaction_categories
		WHERE transaction_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, transactionID)
	if err != nil {
		r.logger.Error("Failed to list splits", "transaction_id", transactionID.String(), "error", err)
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []*transaction.Split
	for rows.Next() {
		var s transaction.Split
		if err := rows.Scan(
			&s.ID, &s.TransactionID, &s.CategoryID, &s.Amount, &s.Expected, &s.Comment, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}

	return splits, nil
}

// UpdateSplit updates a split's category, amounts and comment
func (r *TransactionRepository) UpdateSplit(ctx context.Context, s *transaction.Split) error {
	query := `
		UPDATE transaction_categories
		SET category_id = $1, amount = $2, expected = $3, comment = $4, updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.querier.Exec(ctx, query, s.CategoryID, s.Amount, s.Expected, s.Comment, s.ID)
	if err != nil {
		r.logger.Error("Failed to update split", "id", s.ID.String(), "error", err)
		return fmt.Errorf("failed to update split: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrSplitNotFound{SplitID: s.ID}
	}

	return nil
}

// DeleteSplit removes a split row
func (r *TransactionRepository) DeleteSplit(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM transaction_categories WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete split", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete split: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrSplitNotFound{SplitID: id}
	}

	return nil
}

// SumSettledSplits recomputes a category balance from the transaction log.
// Pending entries count only on accounts in Balances tracking mode, matching
// how the engines apply splits.
func (r *TransactionRepository) SumSettledSplits(ctx context.Context, categoryID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(tc.amount), 0)
		FROM transaction_categories tc
		JOIN transactions t ON t.id = tc.transaction_id
		LEFT JOIN account_transactions at ON at.transaction_id = t.id
		LEFT JOIN accounts a ON a.id = at.account_id
		WHERE tc.category_id = $1
		  AND t.deleted = FALSE
		  AND NOT (COALESCE(at.pending, FALSE) AND a.tracking <> $2)
	`

	var sum decimal.Decimal
	err := r.querier.QueryRow(ctx, query, categoryID, shared.TrackingBalances).Scan(&sum)
	if err != nil {
		r.logger.Error("Failed to sum splits", "category_id", categoryID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum splits: %w", err)
	}

	return sum, nil
}
