package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan is the derived sub-ledger for a category of type LOAN. The category
// and the loan share a lifecycle: co-created and co-deleted. The balance is
// derived solely from the loan's transactions:
//
//	loan.balance == -sum(principal over all loan transactions)
type Loan struct {
	ID         uuid.UUID       `json:"id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewLoan creates the sub-ledger for a LOAN category
func NewLoan(categoryID uuid.UUID) *Loan {
	now := time.Now()
	return &Loan{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Balance:    decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// LoanTransaction records the principal portion of one split on a LOAN
// category. It is 1:1 with that split.
type LoanTransaction struct {
	ID        uuid.UUID       `json:"id"`
	LoanID    uuid.UUID       `json:"loan_id"`
	SplitID   uuid.UUID       `json:"split_id"`
	Principal decimal.Decimal `json:"principal"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewLoanTransaction records a split against a loan. Principal starts at zero
// and is set explicitly when the caller knows the breakdown.
func NewLoanTransaction(loanID, splitID uuid.UUID) *LoanTransaction {
	now := time.Now()
	return &LoanTransaction{
		ID:        uuid.New(),
		LoanID:    loanID,
		SplitID:   splitID,
		Principal: decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
