package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines account and account-transaction persistence operations
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Update(ctx context.Context, a *Account) error

	// AddToBalance applies a signed delta to the cached account balance and
	// returns the new balance.
	AddToBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)

	CreateAccountTransaction(ctx context.Context, t *AccountTransaction) error
	// GetAccountTransactionByTransactionID returns nil, nil when the
	// transaction has no account-facing side (transfers, fundings).
	GetAccountTransactionByTransactionID(ctx context.Context, transactionID uuid.UUID) (*AccountTransaction, error)
	UpdateAccountTransaction(ctx context.Context, t *AccountTransaction) error
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}
