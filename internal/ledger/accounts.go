package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/account"
	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/domain/transaction"
)

// CreateAccountCommand opens an external account in a budget. A non-zero
// StartingBalance is recorded as a STARTING_BALANCE transaction so reports
// can distinguish it from real activity.
type CreateAccountCommand struct {
	BudgetID        uuid.UUID
	Name            string
	Type            string
	Tracking        shared.TrackingMode
	StartingBalance decimal.Decimal
}

// CreateAccount creates the account and its starting-balance transaction in
// one unit of work
func (e *Engine) CreateAccount(ctx context.Context, cmd CreateAccountCommand) (*account.Account, error) {
	if cmd.Name == "" {
		return nil, ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if cmd.Type != account.TypeDepository && cmd.Type != account.TypeLoan {
		return nil, ValidationError{Field: "type", Reason: "must be depository or loan"}
	}
	switch cmd.Tracking {
	case shared.TrackingTransactions, shared.TrackingUncategorizedTransactions, shared.TrackingBalances:
	default:
		return nil, ValidationError{Field: "tracking", Reason: "unknown tracking mode"}
	}

	now := time.Now()
	acct := &account.Account{
		ID:        uuid.New(),
		BudgetID:  cmd.BudgetID,
		Name:      cmd.Name,
		Type:      cmd.Type,
		Tracking:  cmd.Tracking,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		if _, err := uow.Budgets().GetByID(ctx, cmd.BudgetID); err != nil {
			return err
		}

		if err := uow.Accounts().Create(ctx, acct); err != nil {
			return err
		}

		if cmd.StartingBalance.IsZero() {
			return nil
		}

		trx := transaction.NewTransaction(cmd.BudgetID, now, shared.TransactionTypeStartingBalance)
		if err := uow.Transactions().Create(ctx, trx); err != nil {
			return err
		}

		// The full starting amount counts as principal so loan accounts
		// open at the requested balance.
		acctTrans := &account.AccountTransaction{
			ID:            uuid.New(),
			TransactionID: trx.ID,
			AccountID:     acct.ID,
			Name:          "Starting Balance",
			Amount:        cmd.StartingBalance,
			Principal:     cmd.StartingBalance,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := uow.Accounts().CreateAccountTransaction(ctx, acctTrans); err != nil {
			return err
		}

		balances := newBalanceSet()
		unassignedID, err := e.unassignedLock(ctx, uow, cmd.BudgetID, acct)
		if err != nil {
			return err
		}
		if len(unassignedID) > 0 {
			if err := e.autoAssignUnassigned(ctx, uow, trx, unassignedID[0], cmd.StartingBalance, balances); err != nil {
				return err
			}
		}

		balance, err := uow.Accounts().AddToBalance(ctx, acct.ID, acctTrans.BalanceDelta(acct.Type))
		if err != nil {
			return err
		}
		acct.Balance = balance

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("account created",
		"account_id", acct.ID.String(),
		"budget_id", cmd.BudgetID.String(),
		"type", acct.Type,
	)
	return acct, nil
}

// GetAccount retrieves an account by id
func (e *Engine) GetAccount(ctx context.Context, accountID uuid.UUID) (*account.Account, error) {
	return e.store.Accounts().GetByID(ctx, accountID)
}
