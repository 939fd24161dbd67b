package category

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/shared"
)

// Repository defines category persistence operations
type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	GetSystemCategory(ctx context.Context, budgetID uuid.UUID, categoryType shared.CategoryType) (*Category, error)
	ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]*Category, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error

	// LockForUpdate acquires an exclusive row lock on the category and returns
	// its current state. Callers touching several categories must lock them in
	// ascending id order to avoid lock-order deadlocks.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Category, error)

	// AddToBalance applies a signed delta to the cached balance and returns
	// the new balance. The row lock must already be held.
	AddToBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)

	// SetBalance overwrites the cached balance (last-writer-wins), used by the
	// balance synchronizer.
	SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
}

// ErrCategoryNotFound indicates missing category
type ErrCategoryNotFound struct {
	CategoryID uuid.UUID
}

func (e ErrCategoryNotFound) Error() string {
	return "category not found: " + e.CategoryID.String()
}

// ErrLockTimeout indicates the row lock on a category could not be acquired
// within the configured budget. The operation rolled back and may be retried.
type ErrLockTimeout struct {
	CategoryID uuid.UUID
}

func (e ErrLockTimeout) Error() string {
	return "timed out waiting for lock on category: " + e.CategoryID.String()
}
