package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/loan"
	"github.com/envelope-ledger/internal/platform/persistence"
)

// LoanRepository implements the loan.Repository interface for PostgreSQL
type LoanRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// Create stores a new loan
func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	query := `
		INSERT INTO loans (id, category_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query, l.ID, l.CategoryID, l.Balance, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create loan", "error", err)
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

// GetByCategoryID retrieves the loan of a LOAN category
func (r *LoanRepository) GetByCategoryID(ctx context.Context, categoryID uuid.UUID) (*loan.Loan, error) {
	query := `
		SELECT id, category_id, balance, created_at, updated_at
		FROM loans
		WHERE category_id = $1
	`

	var l loan.Loan
	err := r.querier.QueryRow(ctx, query, categoryID).Scan(
		&l.ID, &l.CategoryID, &l.Balance, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{CategoryID: categoryID}
		}
		r.logger.Error("Failed to get loan", "category_id", categoryID.String(), "error", err)
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return &l, nil
}

// DeleteByCategoryID removes a category's loan together with its loan
// transactions
func (r *LoanRepository) DeleteByCategoryID(ctx context.Context, categoryID uuid.UUID) error {
	query := `
		DELETE FROM loan_transactions
		WHERE loan_id IN (SELECT id FROM loans WHERE category_id = $1)
	`

	if _, err := r.querier.Exec(ctx, query, categoryID); err != nil {
		r.logger.Error("Failed to delete loan transactions", "category_id", categoryID.String(), "error", err)
		return fmt.Errorf("failed to delete loan transactions: %w", err)
	}

	result, err := r.querier.Exec(ctx, `DELETE FROM loans WHERE category_id = $1`, categoryID)
	if err != nil {
		r.logger.Error("Failed to delete loan", "category_id", categoryID.String(), "error", err)
		return fmt.Errorf("failed to delete loan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrLoanNotFound{CategoryID: categoryID}
	}

	return nil
}

// SetBalance overwrites the loan's derived balance
func (r *LoanRepository) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	query := `
		UPDATE loans
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, balance, id)
	if err != nil {
		r.logger.Error("Failed to set loan balance", "id", id.String(), "error", err)
		return fmt.Errorf("failed to set loan balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("loan not found: %s", id)
	}

	return nil
}

// CreateLoanTransaction stores a new loan transaction
func (r *LoanRepository) CreateLoanTransaction(ctx context.Context, t *loan.LoanTransaction) error {
	query := `
		INSERT INTO loan_transactions (id, loan_id, split_id, principal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query, t.ID, t.LoanID, t.SplitID, t.Principal, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create loan transaction", "error", err)
		return fmt.Errorf("failed to create loan transaction: %w", err)
	}

	return nil
}

// GetLoanTransactionBySplitID retrieves a split's loan transaction. Returns
// nil, nil when the split has none.
func (r *LoanRepository) GetLoanTransactionBySplitID(ctx context.Context, splitID uuid.UUID) (*loan.LoanTransaction, error) {
	query := `
		SELECT id, loan_id, split_id, principal, created_at, updated_at
		FROM loan_transactions
		WHERE split_id = $1
	`

	var t loan.LoanTransaction
	err := r.querier.QueryRow(ctx, query, splitID).Scan(
		&t.ID, &t.LoanID, &t.SplitID, &t.Principal, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get loan transaction", "split_id", splitID.String(), "error", err)
		return nil, fmt.Errorf("failed to get loan transaction: %w", err)
	}

	return &t, nil
}

// SetPrincipal overwrites a loan transaction's principal
func (r *LoanRepository) SetPrincipal(ctx context.Context, id uuid.UUID, principal decimal.Decimal) error {
	query := `
		UPDATE loan_transactions
		SET principal = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, principal, id)
	if err != nil {
		r.logger.Error("Failed to set loan transaction principal", "id", id.String(), "error", err)
		return fmt.Errorf("failed to set loan transaction principal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("loan transaction not found: %s", id)
	}

	return nil
}

// DeleteLoanTransaction removes a loan transaction row
func (r *LoanRepository) DeleteLoanTransaction(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM loan_transactions WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete loan transaction", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete loan transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("loan transaction not found: %s", id)
	}

	return nil
}

// SumPrincipal totals the principal over all of a loan's transactions
func (r *LoanRepository) SumPrincipal(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(principal), 0)
		FROM loan_transactions
		WHERE loan_id = $1
	`

	var sum decimal.Decimal
	err := r.querier.QueryRow(ctx, query, loanID).Scan(&sum)
	if err != nil {
		r.logger.Error("Failed to sum loan principal", "loan_id", loanID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum loan principal: %w", err)
	}

	return sum, nil
}
