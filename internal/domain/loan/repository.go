package loan

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines loan and loan-transaction persistence operations
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByCategoryID(ctx context.Context, categoryID uuid.UUID) (*Loan, error)
	DeleteByCategoryID(ctx context.Context, categoryID uuid.UUID) error
	SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error

	CreateLoanTransaction(ctx context.Context, t *LoanTransaction) error
	// GetLoanTransactionBySplitID returns nil, nil when the split has no loan
	// transaction.
	GetLoanTransactionBySplitID(ctx context.Context, splitID uuid.UUID) (*LoanTransaction, error)
	SetPrincipal(ctx context.Context, id uuid.UUID, principal decimal.Decimal) error
	DeleteLoanTransaction(ctx context.Context, id uuid.UUID) error
	SumPrincipal(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)
}

// ErrLoanNotFound indicates that a LOAN category has no loan row. The
// category/loan 1:1 invariant was violated elsewhere; this is surfaced as an
// integrity failure, not a plain not-found.
type ErrLoanNotFound struct {
	CategoryID uuid.UUID
}

func (e ErrLoanNotFound) Error() string {
	return "no loan for category: " + e.CategoryID.String()
}
