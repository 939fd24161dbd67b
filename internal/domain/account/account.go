package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/shared"
)

// Account types. Loan accounts reduce their balance by the principal portion
// of payments rather than the full payment amount.
const (
	TypeDepository = "depository"
	TypeLoan       = "loan"
)

// Account is an external financial account. Its tracking mode governs whether
// its transactions require category splits.
type Account struct {
	ID        uuid.UUID           `json:"id"`
	BudgetID  uuid.UUID           `json:"budget_id"`
	Name      string              `json:"name"`
	Type      string              `json:"type"`
	Tracking  shared.TrackingMode `json:"tracking"`
	Balance   decimal.Decimal     `json:"balance"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// AccountTransaction is the external-account-facing side of a transaction:
// the amount and name as reported by the institution, plus the pending flag
// set by bank sync. Transfers and fundings have no account transaction.
type AccountTransaction struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	Principal     decimal.Decimal `json:"principal"`
	Pending       bool            `json:"pending"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BalanceDelta returns the amount by which this entry moves the account
// balance: the principal for loan accounts, the full amount otherwise.
func (t *AccountTransaction) BalanceDelta(accountType string) decimal.Decimal {
	if accountType == TypeLoan {
		return t.Principal
	}
	return t.Amount
}
