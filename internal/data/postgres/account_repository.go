package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/account"
	"github.com/envelope-ledger/internal/platform/persistence"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// Create stores a new account
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (id, budget_id, name, type, tracking, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		a.ID, a.BudgetID, a.Name, a.Type, a.Tracking, a.Balance, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create account", "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, budget_id, name, type, tracking, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var a account.Account
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.BudgetID, &a.Name, &a.Type, &a.Tracking, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &a, nil
}

// Update updates an account's mutable attributes
func (r *AccountRepository) Update(ctx context.Context, a *account.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, tracking = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, a.Name, a.Tracking, a.ID)
	if err != nil {
		r.logger.Error("Failed to update account", "id", a.ID.String(), "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: a.ID}
	}

	return nil
}

// AddToBalance applies a signed delta to the cached account balance and
// returns the new balance
func (r *AccountRepository) AddToBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.querier.QueryRow(ctx, query, delta, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to adjust account balance", "id", id.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to adjust account balance: %w", err)
	}

	return balance, nil
}

// CreateAccountTransaction stores the account-facing side of a transaction
func (r *AccountRepository) CreateAccountTransaction(ctx context.Context, t *account.AccountTransaction) error {
	query := `
		INSERT INTO account_transactions (id, transaction_id, account_id, name, amount, principal, pending, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID, t.TransactionID, t.AccountID, t.Name, t.Amount, t.Principal, t.Pending, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create account transaction", "error", err)
		return fmt.Errorf("failed to create account transaction: %w", err)
	}

	return nil
}

// GetAccountTransactionByTransactionID retrieves the account-facing side of a
// transaction. Returns nil, nil when the transaction has none.
func (r *AccountRepository) GetAccountTransactionByTransactionID(ctx context.Context, transactionID uuid.UUID) (*account.AccountTransaction, error) {
	query := `
		SELECT id, transaction_id, account_id, name, amount, principal, pending, created_at, updated_at
		FROM account_transactions
		WHERE transaction_id = $1
	`

	var t account.AccountTransaction
	err := r.querier.QueryRow(ctx, query, transactionID).Scan(
		&t.ID, &t.TransactionID, &t.AccountID, &t.Name, &t.Amount, &t.Principal, &t.Pending, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account transaction", "transaction_id", transactionID.String(), "error", err)
		return nil, fmt.Errorf("failed to get account transaction: %w", err)
	}

	return &t, nil
}

// UpdateAccountTransaction updates the account-facing side of a transaction
func (r *AccountRepository) UpdateAccountTransaction(ctx context.Context, t *account.AccountTransaction) error {
	query := `
		UPDATE account_transactions
		SET name = $1, amount = $2, principal = $3, pending = $4, updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.querier.Exec(ctx, query, t.Name, t.Amount, t.Principal, t.Pending, t.ID)
	if err != nil {
		r.logger.Error("Failed to update account transaction", "id", t.ID.String(), "error", err)
		return fmt.Errorf("failed to update account transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account transaction not found: %s", t.ID)
	}

	return nil
}
