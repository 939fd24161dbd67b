package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/category"
	"github.com/envelope-ledger/internal/domain/loan"
	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/domain/transaction"
)

// loanForCategory resolves the loan behind a LOAN category. A missing row is
// an integrity failure, not a recoverable not-found: the category/loan 1:1
// invariant was broken elsewhere.
func loanForCategory(ctx context.Context, uow UnitOfWork, categoryID uuid.UUID) (*loan.Loan, error) {
	l, err := uow.Loans().GetByCategoryID(ctx, categoryID)
	if err != nil {
		var notFound loan.ErrLoanNotFound
		if errors.As(err, &notFound) {
			return nil, ErrLoanIntegrity{Cause: err}
		}
		return nil, err
	}
	return l, nil
}

// onSplitCreated records a loan transaction for a new split on a LOAN
// category and recomputes the loan balance. Principal starts at zero unless
// the caller supplied it.
func (e *Engine) onSplitCreated(ctx context.Context, uow UnitOfWork, cat *category.Category, split *transaction.Split, principal *decimal.Decimal) error {
	if cat == nil || cat.Type != shared.CategoryTypeLoan {
		return nil
	}

	l, err := loanForCategory(ctx, uow, cat.ID)
	if err != nil {
		return err
	}

	lt := loan.NewLoanTransaction(l.ID, split.ID)
	if principal != nil {
		lt.Principal = *principal
	}
	if err := uow.Loans().CreateLoanTransaction(ctx, lt); err != nil {
		return err
	}

	return e.recomputeLoanBalance(ctx, uow, l.ID)
}

// onSplitUpdated adjusts the loan transaction behind an edited split and
// recomputes the loan balance. A LOAN split that somehow lacks its loan
// transaction gets one, keeping the sub-ledger complete.
func (e *Engine) onSplitUpdated(ctx context.Context, uow UnitOfWork, cat *category.Category, split *transaction.Split, principal *decimal.Decimal) error {
	if cat == nil || cat.Type != shared.CategoryTypeLoan {
		return nil
	}

	l, err := loanForCategory(ctx, uow, cat.ID)
	if err != nil {
		return err
	}

	lt, err := uow.Loans().GetLoanTransactionBySplitID(ctx, split.ID)
	if err != nil {
		return err
	}

	if lt == nil {
		lt = loan.NewLoanTransaction(l.ID, split.ID)
		if principal != nil {
			lt.Principal = *principal
		}
		if err := uow.Loans().CreateLoanTransaction(ctx, lt); err != nil {
			return err
		}
	} else if principal != nil && !lt.Principal.Equal(*principal) {
		if err := uow.Loans().SetPrincipal(ctx, lt.ID, *principal); err != nil {
			return err
		}
	}

	return e.recomputeLoanBalance(ctx, uow, l.ID)
}

// onSplitDeleted removes the loan transaction behind a deleted split and
// recomputes the loan balance.
func (e *Engine) onSplitDeleted(ctx context.Context, uow UnitOfWork, cat *category.Category, split *transaction.Split) error {
	if cat == nil || cat.Type != shared.CategoryTypeLoan {
		return nil
	}

	l, err := loanForCategory(ctx, uow, cat.ID)
	if err != nil {
		return err
	}

	lt, err := uow.Loans().GetLoanTransactionBySplitID(ctx, split.ID)
	if err != nil {
		return err
	}
	if lt != nil {
		if err := uow.Loans().DeleteLoanTransaction(ctx, lt.ID); err != nil {
			return err
		}
	}

	return e.recomputeLoanBalance(ctx, uow, l.ID)
}

// recomputeLoanBalance derives the loan balance from its transactions:
// balance = -sum(principal).
func (e *Engine) recomputeLoanBalance(ctx context.Context, uow UnitOfWork, loanID uuid.UUID) error {
	sum, err := uow.Loans().SumPrincipal(ctx, loanID)
	if err != nil {
		return err
	}
	return uow.Loans().SetBalance(ctx, loanID, sum.Neg())
}
