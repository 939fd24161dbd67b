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

// CreateTransaction records a dated account transaction and applies its
// splits in one atomic operation. On an account that tracks transactions, a
// request without splits assigns the full amount to the budget's UNASSIGNED
// category so uncategorized money is never dropped.
func (e *Engine) CreateTransaction(ctx context.Context, cmd CreateTransactionCommand) (*TransactionResult, error) {
	if err := validateSplitSum(cmd.Splits, cmd.Amount); err != nil {
		return nil, err
	}

	var result *TransactionResult
	err := e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		acct, err := uow.Accounts().GetByID(ctx, cmd.AccountID)
		if err != nil {
			return err
		}

		trx := transaction.NewTransaction(cmd.BudgetID, cmd.Date, shared.TransactionTypeRegular)
		if err := uow.Transactions().Create(ctx, trx); err != nil {
			return err
		}

		acctTrans := &account.AccountTransaction{
			ID:            uuid.New(),
			TransactionID: trx.ID,
			AccountID:     acct.ID,
			Name:          cmd.Name,
			Amount:        cmd.Amount,
			Principal:     cmd.Principal,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		if err := uow.Accounts().CreateAccountTransaction(ctx, acctTrans); err != nil {
			return err
		}

		balances := newBalanceSet()

		unassignedID, err := e.unassignedLock(ctx, uow, cmd.BudgetID, acct)
		if err != nil {
			return err
		}

		remaining, err := e.applySplitDiff(ctx, uow, trx, cmd.Splits, unassignedID, balances)
		if err != nil {
			return err
		}

		if remaining == 0 && len(unassignedID) > 0 {
			if err := e.autoAssignUnassigned(ctx, uow, trx, unassignedID[0], cmd.Amount, balances); err != nil {
				return err
			}
		}

		acctBalance, err := uow.Accounts().AddToBalance(ctx, acct.ID, acctTrans.BalanceDelta(acct.Type))
		if err != nil {
			return err
		}

		splits, err := uow.Transactions().ListSplits(ctx, trx.ID)
		if err != nil {
			return err
		}

		result = &TransactionResult{
			Transaction:        trx,
			AccountTransaction: acctTrans,
			Splits:             splits,
			CategoryBalances:   balances.list(),
			AccountBalances:    []AccountBalance{{AccountID: acct.ID, Balance: acctBalance}},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("transaction created",
		"transaction_id", result.Transaction.ID.String(),
		"account_id", cmd.AccountID.String(),
		"amount", cmd.Amount.String(),
		"splits", len(result.Splits),
	)
	return result, nil
}

// UpdateTransaction edits a transaction's fields and, when a split set is
// given, replaces the stored splits with it. A nil set leaves the splits
// alone; an empty non-nil set removes them all. Existing splits absent from
// a given set are removed and their categories credited back. Transfers are
// edited through ApplyTransfer only.
func (e *Engine) UpdateTransaction(ctx context.Context, cmd UpdateTransactionCommand) (*TransactionResult, error) {
	var result *TransactionResult
	err := e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		trx, err := uow.Transactions().GetByID(ctx, cmd.TransactionID)
		if err != nil {
			return err
		}
		if trx.Deleted || trx.Type.IsTransfer() {
			return transaction.ErrTransactionNotFound{TransactionID: cmd.TransactionID}
		}

		if cmd.Date != nil {
			trx.Date = *cmd.Date
		}
		if cmd.Comment != nil {
			trx.Comment = *cmd.Comment
		}
		if cmd.Date != nil || cmd.Comment != nil {
			if err := uow.Transactions().Update(ctx, trx); err != nil {
				return err
			}
		}

		acctTrans, err := uow.Accounts().GetAccountTransactionByTransactionID(ctx, trx.ID)
		if err != nil {
			return err
		}

		var acct *account.Account
		if acctTrans != nil {
			acct, err = uow.Accounts().GetByID(ctx, acctTrans.AccountID)
			if err != nil {
				return err
			}
		}

		total := decimal.Zero
		if acctTrans != nil {
			total = acctTrans.Amount
		}
		if cmd.Amount != nil {
			total = *cmd.Amount
		}
		balances := newBalanceSet()

		// A nil split set leaves the existing splits untouched. Replacement,
		// including removal of every split, requires an explicit set.
		if cmd.Splits != nil {
			if err := validateSplitSum(cmd.Splits, total); err != nil {
				return err
			}

			unassignedID, err := e.unassignedLock(ctx, uow, trx.BudgetID, acct)
			if err != nil {
				return err
			}

			remaining, err := e.applySplitDiff(ctx, uow, trx, cmd.Splits, unassignedID, balances)
			if err != nil {
				return err
			}

			if remaining == 0 && len(unassignedID) > 0 {
				if err := e.autoAssignUnassigned(ctx, uow, trx, unassignedID[0], total, balances); err != nil {
					return err
				}
			}
		}

		accountBalances := []AccountBalance{}
		if acctTrans != nil && (cmd.Name != nil || cmd.Amount != nil || cmd.Principal != nil) {
			oldDelta := acctTrans.BalanceDelta(acct.Type)

			if cmd.Name != nil {
				acctTrans.Name = *cmd.Name
			}
			if cmd.Amount != nil {
				acctTrans.Amount = *cmd.Amount
			}
			if cmd.Principal != nil {
				acctTrans.Principal = *cmd.Principal
			}
			if err := uow.Accounts().UpdateAccountTransaction(ctx, acctTrans); err != nil {
				return err
			}

			balance, err := uow.Accounts().AddToBalance(ctx, acct.ID, acctTrans.BalanceDelta(acct.Type).Sub(oldDelta))
			if err != nil {
				return err
			}
			accountBalances = append(accountBalances, AccountBalance{AccountID: acct.ID, Balance: balance})
		}

		splits, err := uow.Transactions().ListSplits(ctx, trx.ID)
		if err != nil {
			return err
		}

		result = &TransactionResult{
			Transaction:        trx,
			AccountTransaction: acctTrans,
			Splits:             splits,
			CategoryBalances:   balances.list(),
			AccountBalances:    accountBalances,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("transaction updated",
		"transaction_id", cmd.TransactionID.String(),
		"splits", len(result.Splits),
	)
	return result, nil
}

// DeleteTransaction reverses every split of the transaction, restores the
// account balance, and soft-deletes the transaction row.
func (e *Engine) DeleteTransaction(ctx context.Context, transactionID uuid.UUID) (*TransactionResult, error) {
	var result *TransactionResult
	err := e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		trx, err := uow.Transactions().GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if trx.Deleted {
			return transaction.ErrTransactionNotFound{TransactionID: transactionID}
		}

		balances := newBalanceSet()
		if err := e.reverseSplits(ctx, uow, trx, balances); err != nil {
			return err
		}

		accountBalances := []AccountBalance{}
		acctTrans, err := uow.Accounts().GetAccountTransactionByTransactionID(ctx, trx.ID)
		if err != nil {
			return err
		}
		if acctTrans != nil {
			acct, err := uow.Accounts().GetByID(ctx, acctTrans.AccountID)
			if err != nil {
				return err
			}
			balance, err := uow.Accounts().AddToBalance(ctx, acct.ID, acctTrans.BalanceDelta(acct.Type).Neg())
			if err != nil {
				return err
			}
			accountBalances = append(accountBalances, AccountBalance{AccountID: acct.ID, Balance: balance})
		}

		if err := uow.Transactions().SoftDelete(ctx, trx.ID); err != nil {
			return err
		}

		result = &TransactionResult{
			Transaction:        trx,
			AccountTransaction: acctTrans,
			CategoryBalances:   balances.list(),
			AccountBalances:    accountBalances,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("transaction deleted", "transaction_id", transactionID.String())
	return result, nil
}

// GetTransaction retrieves a non-deleted transaction with its splits and
// account transaction
func (e *Engine) GetTransaction(ctx context.Context, transactionID uuid.UUID) (*TransactionResult, error) {
	trx, err := e.store.Transactions().GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if trx.Deleted {
		return nil, transaction.ErrTransactionNotFound{TransactionID: transactionID}
	}

	acctTrans, err := e.store.Accounts().GetAccountTransactionByTransactionID(ctx, trx.ID)
	if err != nil {
		return nil, err
	}

	splits, err := e.store.Transactions().ListSplits(ctx, trx.ID)
	if err != nil {
		return nil, err
	}

	return &TransactionResult{
		Transaction:        trx,
		AccountTransaction: acctTrans,
		Splits:             splits,
	}, nil
}

// unassignedLock returns the UNASSIGNED category id of the budget when the
// account requires category splits, so the split diff includes it in the
// ordered lock set. Empty otherwise.
func (e *Engine) unassignedLock(ctx context.Context, uow UnitOfWork, budgetID uuid.UUID, acct *account.Account) ([]uuid.UUID, error) {
	if acct == nil || acct.Tracking != shared.TrackingTransactions {
		return nil, nil
	}

	unassigned, err := uow.Categories().GetSystemCategory(ctx, budgetID, shared.CategoryTypeUnassigned)
	if err != nil {
		return nil, err
	}
	return []uuid.UUID{unassigned.ID}, nil
}

// autoAssignUnassigned gives a transaction with no remaining splits a single
// split carrying the full amount against the UNASSIGNED category. The
// category's row lock is already held.
func (e *Engine) autoAssignUnassigned(
	ctx context.Context,
	uow UnitOfWork,
	trx *transaction.Transaction,
	unassignedID uuid.UUID,
	amount decimal.Decimal,
	balances *balanceSet,
) error {
	if amount.IsZero() {
		return nil
	}

	split := transaction.NewSplit(trx.ID, unassignedID, amount)
	if err := uow.Transactions().CreateSplit(ctx, split); err != nil {
		return err
	}

	balance, err := uow.Categories().AddToBalance(ctx, unassignedID, amount)
	if err != nil {
		return err
	}
	balances.record(unassignedID, balance)

	return nil
}
