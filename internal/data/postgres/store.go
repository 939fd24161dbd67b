// Package postgres provides PostgreSQL implementations of the domain
// repositories and the ledger store. All writes issued by the engines run
// through WithTransaction so balance updates, split rows and sub-ledger rows
// commit or roll back together.
package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/envelope-ledger/internal/domain/account"
	"github.com/envelope-ledger/internal/domain/budget"
	"github.com/envelope-ledger/internal/domain/category"
	"github.com/envelope-ledger/internal/domain/loan"
	"github.com/envelope-ledger/internal/domain/transaction"
	"github.com/envelope-ledger/internal/ledger"
	"github.com/envelope-ledger/internal/platform/persistence"
)

// LedgerStore implements ledger.Store on PostgreSQL. Repositories reachable
// directly on the store run against the pool in auto-commit mode; those
// handed to a WithTransaction callback are bound to that transaction.
type LedgerStore struct {
	db     *persistence.PostgresDB
	logger *slog.Logger
	unitOfWork
}

// NewLedgerStore creates the PostgreSQL ledger store
func NewLedgerStore(logger *slog.Logger, db *persistence.PostgresDB) *LedgerStore {
	return &LedgerStore{
		db:         db,
		logger:     logger,
		unitOfWork: newUnitOfWork(logger, db.Pool()),
	}
}

// WithTransaction runs fn inside one database transaction. Any error from fn
// rolls back every write made through the unit of work.
func (s *LedgerStore) WithTransaction(ctx context.Context, fn func(uow ledger.UnitOfWork) error) error {
	return s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		return fn(newUnitOfWork(s.logger, tx))
	})
}

var _ ledger.Store = (*LedgerStore)(nil)

// unitOfWork bundles repositories bound to one querier (pool or transaction)
type unitOfWork struct {
	budgets      *BudgetRepository
	categories   *CategoryRepository
	accounts     *AccountRepository
	transactions *TransactionRepository
	loans        *LoanRepository
}

func newUnitOfWork(logger *slog.Logger, querier persistence.Querier) unitOfWork {
	return unitOfWork{
		budgets:      &BudgetRepository{querier: querier, logger: logger},
		categories:   &CategoryRepository{querier: querier, logger: logger},
		accounts:     &AccountRepository{querier: querier, logger: logger},
		transactions: &TransactionRepository{querier: querier, logger: logger},
		loans:        &LoanRepository{querier: querier, logger: logger},
	}
}

func (u unitOfWork) Budgets() budget.Repository           { return u.budgets }
func (u unitOfWork) Categories() category.Repository      { return u.categories }
func (u unitOfWork) Accounts() account.Repository         { return u.accounts }
func (u unitOfWork) Transactions() transaction.Repository { return u.transactions }
func (u unitOfWork) Loans() loan.Repository               { return u.loans }
