package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/account"
	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/domain/transaction"
)

// SplitInput is one requested split in an engine operation. An input carrying
// a SplitID edits that existing split; one without creates a new split.
// Amounts follow the transaction's signed amount; callers normalize with
// NormalizeSplitAmount before invoking the engine.
type SplitInput struct {
	SplitID    *uuid.UUID
	CategoryID uuid.UUID
	Amount     decimal.Decimal
	Comment    string
	Expected   decimal.Decimal
	// Principal, when set, is recorded on the loan transaction of a split
	// whose category is a LOAN.
	Principal *decimal.Decimal
}

// CreateTransactionCommand creates an account transaction with its splits
type CreateTransactionCommand struct {
	BudgetID  uuid.UUID
	AccountID uuid.UUID
	Date      time.Time
	Name      string
	Amount    decimal.Decimal
	Principal decimal.Decimal
	Splits    []SplitInput
}

// UpdateTransactionCommand edits a transaction and, when Splits is non-nil,
// replaces its split set. Nil pointer fields are left unchanged; a nil Splits
// keeps the stored splits while an empty non-nil one removes them all.
type UpdateTransactionCommand struct {
	TransactionID uuid.UUID
	BudgetID      uuid.UUID
	Date          *time.Time
	Comment       *string
	Name          *string
	Amount        *decimal.Decimal
	Principal     *decimal.Decimal
	Splits        []SplitInput
}

// TransferCommand executes a zero-sum movement of funds between categories.
// A nil TransferID creates a new transfer transaction.
type TransferCommand struct {
	TransferID *uuid.UUID
	BudgetID   uuid.UUID
	Date       time.Time
	Type       shared.TransactionType
	Splits     []SplitInput
}

// CategoryBalance reports a category's balance after an engine operation
type CategoryBalance struct {
	CategoryID uuid.UUID       `json:"id"`
	Balance    decimal.Decimal `json:"balance"`
}

// AccountBalance reports an account's balance after an engine operation
type AccountBalance struct {
	AccountID uuid.UUID       `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
}

// TransactionResult is returned by the transaction-mutating operations so
// callers can refresh derived views without re-querying every category.
type TransactionResult struct {
	Transaction        *transaction.Transaction
	AccountTransaction *account.AccountTransaction
	Splits             []*transaction.Split
	CategoryBalances   []CategoryBalance
	AccountBalances    []AccountBalance
}

// NormalizeSplitAmount fixes the sign convention for split amounts: splits
// follow the transaction's signed total, so when the transaction amount is
// negative a caller-supplied magnitude is negated. Amounts of a non-negative
// transaction pass through unchanged. transactionSign is the sign of the
// transaction amount (-1, 0 or 1).
func NormalizeSplitAmount(transactionSign int, rawAmount decimal.Decimal) decimal.Decimal {
	if transactionSign < 0 && rawAmount.IsPositive() {
		return rawAmount.Neg()
	}
	return rawAmount
}
