// Package ledger implements the consistency engine of the envelope-budgeting
// ledger: split application and editing, zero-sum category transfers, the
// loan sub-ledger, balance reconciliation, and budget/category/group
// lifecycle. Every mutation runs inside a single unit of work against an
// injected Store; categories touched by an operation are row-locked in
// ascending id order before any balance changes.
package ledger

import (
	"context"

	"github.com/envelope-ledger/internal/domain/account"
	"github.com/envelope-ledger/internal/domain/budget"
	"github.com/envelope-ledger/internal/domain/category"
	"github.com/envelope-ledger/internal/domain/loan"
	"github.com/envelope-ledger/internal/domain/transaction"
)

// UnitOfWork exposes the entity repositories of one storage scope: either the
// auto-committing base store or a single database transaction.
type UnitOfWork interface {
	Budgets() budget.Repository
	Categories() category.Repository
	Accounts() account.Repository
	Transactions() transaction.Repository
	Loans() loan.Repository
}

// Store is the persistence abstraction the engine operates on. WithTransaction
// runs fn inside one atomic unit of work: every read, lock and write in fn
// commits together or not at all. The repositories reachable directly on the
// Store run in auto-commit mode and are used only by non-atomic paths (reads,
// the balance synchronizer).
type Store interface {
	UnitOfWork
	WithTransaction(ctx context.Context, fn func(uow UnitOfWork) error) error
}
