package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/transaction"
)

// ApplyTransfer executes a zero-sum movement of funds between categories as a
// FUNDING or REBALANCE transaction, creating the transaction when the command
// carries no transfer id. The requested splits must sum to exactly zero; a
// request that does not is rejected before anything is persisted. The caller
// is responsible for computing offsetting funder entries, the engine only
// enforces the invariant.
func (e *Engine) ApplyTransfer(ctx context.Context, cmd TransferCommand) (*TransactionResult, error) {
	if !cmd.Type.IsTransfer() {
		return nil, ValidationError{Field: "type", Reason: "transfer type must be FUNDING or REBALANCE"}
	}

	sum := decimal.Zero
	for _, in := range cmd.Splits {
		sum = sum.Add(in.Amount)
	}
	if !sum.IsZero() {
		return nil, ValidationError{Field: "splits", Reason: "transfer splits must sum to zero, got " + sum.String()}
	}

	var result *TransactionResult
	err := e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		var trx *transaction.Transaction

		if cmd.TransferID == nil {
			trx = transaction.NewTransaction(cmd.BudgetID, cmd.Date, cmd.Type)
			if err := uow.Transactions().Create(ctx, trx); err != nil {
				return err
			}
		} else {
			var err error
			trx, err = uow.Transactions().GetByID(ctx, *cmd.TransferID)
			if err != nil {
				return err
			}
			if trx.Deleted || !trx.Type.IsTransfer() {
				return transaction.ErrTransactionNotFound{TransactionID: *cmd.TransferID}
			}

			trx.Date = cmd.Date
			if err := uow.Transactions().Update(ctx, trx); err != nil {
				return err
			}
		}

		balances := newBalanceSet()
		if _, err := e.applySplitDiff(ctx, uow, trx, cmd.Splits, nil, balances); err != nil {
			return err
		}

		splits, err := uow.Transactions().ListSplits(ctx, trx.ID)
		if err != nil {
			return err
		}

		result = &TransactionResult{
			Transaction:      trx,
			Splits:           splits,
			CategoryBalances: balances.list(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("transfer applied",
		"transaction_id", result.Transaction.ID.String(),
		"type", string(cmd.Type),
		"categories", len(result.CategoryBalances),
	)
	return result, nil
}

// DeleteTransfer reverses every split of the transfer and soft-deletes its
// transaction, all in one atomic operation.
func (e *Engine) DeleteTransfer(ctx context.Context, transferID uuid.UUID) (*TransactionResult, error) {
	var result *TransactionResult
	err := e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		trx, err := uow.Transactions().GetByID(ctx, transferID)
		if err != nil {
			return err
		}
		if trx.Deleted || !trx.Type.IsTransfer() {
			return transaction.ErrTransactionNotFound{TransactionID: transferID}
		}

		balances := newBalanceSet()
		if err := e.reverseSplits(ctx, uow, trx, balances); err != nil {
			return err
		}

		if err := uow.Transactions().SoftDelete(ctx, trx.ID); err != nil {
			return err
		}

		result = &TransactionResult{
			Transaction:      trx,
			CategoryBalances: balances.list(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("transfer deleted", "transaction_id", transferID.String())
	return result, nil
}

// GetTransfer loads a non-deleted transfer with its splits
func (e *Engine) GetTransfer(ctx context.Context, transferID uuid.UUID) (*TransactionResult, error) {
	trx, err := e.store.Transactions().GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if trx.Deleted || !trx.Type.IsTransfer() {
		return nil, transaction.ErrTransactionNotFound{TransactionID: transferID}
	}

	splits, err := e.store.Transactions().ListSplits(ctx, trx.ID)
	if err != nil {
		return nil, err
	}

	return &TransactionResult{Transaction: trx, Splits: splits}, nil
}
