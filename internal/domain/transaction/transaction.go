package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/shared"
)

// Transaction is a dated monetary event in a budget. Deletion is a soft
// delete: the row is kept with the deleted flag set and its splits reversed.
type Transaction struct {
	ID        uuid.UUID              `json:"id"`
	BudgetID  uuid.UUID              `json:"budget_id"`
	Date      time.Time              `json:"date"`
	Type      shared.TransactionType `json:"type"`
	Comment   string                 `json:"comment,omitempty"`
	Deleted   bool                   `json:"-"`
	Version   int                    `json:"version"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// NewTransaction creates a transaction of the given type
func NewTransaction(budgetID uuid.UUID, date time.Time, transactionType shared.TransactionType) *Transaction {
	now := time.Now()
	return &Transaction{
		ID:        uuid.New(),
		BudgetID:  budgetID,
		Date:      date,
		Type:      transactionType,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Split assigns part of a transaction's amount to one category. It is the
// atomic unit of category-balance accounting: a category's balance equals the
// sum of the amounts of the splits referencing it.
type Split struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	CategoryID    uuid.UUID       `json:"category_id"`
	Amount        decimal.Decimal `json:"amount"`
	Expected      decimal.Decimal `json:"expected"`
	Comment       string          `json:"comment,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewSplit creates a split tying a transaction to a category
func NewSplit(transactionID, categoryID uuid.UUID, amount decimal.Decimal) *Split {
	now := time.Now()
	return &Split{
		ID:            uuid.New(),
		TransactionID: transactionID,
		CategoryID:    categoryID,
		Amount:        amount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
