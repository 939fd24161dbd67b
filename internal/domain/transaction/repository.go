package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines transaction and split persistence operations
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Update(ctx context.Context, t *Transaction) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	CreateSplit(ctx context.Context, s *Split) error
	GetSplit(ctx context.Context, id uuid.UUID) (*Split, error)
	ListSplits(ctx context.Context, transactionID uuid.UUID) ([]*Split, error)
	UpdateSplit(ctx context.Context, s *Split) error
	DeleteSplit(ctx context.Context, id uuid.UUID) error

	// SumSettledSplits recomputes a category balance from the transaction log:
	// splits of non-deleted transactions, excluding splits whose account
	// transaction is pending on an account that tracks transactions.
	SumSettledSplits(ctx context.Context, categoryID uuid.UUID) (decimal.Decimal, error)
}

// ErrTransactionNotFound indicates missing transaction
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

// ErrSplitNotFound indicates missing split
type ErrSplitNotFound struct {
	SplitID uuid.UUID
}

func (e ErrSplitNotFound) Error() string {
	return "split not found: " + e.SplitID.String()
}
