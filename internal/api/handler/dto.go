package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/account"
	"github.com/envelope-ledger/internal/domain/budget"
	"github.com/envelope-ledger/internal/domain/category"
	"github.com/envelope-ledger/internal/ledger"
)

// CreateBudgetRequest represents a request to initialize a new budget
type CreateBudgetRequest struct {
	OwnerID string `json:"owner_id" binding:"required,uuid"`
	Name    string `json:"name" binding:"required"`
}

// CreateGroupRequest represents a request to create a category group
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateGroupRequest represents a partial update to a group
type UpdateGroupRequest struct {
	Name   *string `json:"name,omitempty"`
	Hidden *bool   `json:"hidden,omitempty"`
}

// CreateCategoryRequest represents a request to create a category. Only
// REGULAR and LOAN categories can be created; system categories exist from
// budget initialization.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"omitempty,oneof=REGULAR LOAN"`
}

// UpdateCategoryRequest represents a partial update to a category
type UpdateCategoryRequest struct {
	GroupID       *string `json:"group_id,omitempty" binding:"omitempty,uuid"`
	Name          *string `json:"name,omitempty"`
	Hidden        *bool   `json:"hidden,omitempty"`
	UseGoal       *bool   `json:"use_goal,omitempty"`
	FundingAmount *string `json:"funding_amount,omitempty"`
	GoalDate      *string `json:"goal_date,omitempty"`
	Recurrence    *int    `json:"recurrence,omitempty" binding:"omitempty,min=1"`
}

// CreateAccountRequest represents a request to open an account in a budget
type CreateAccountRequest struct {
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type" binding:"required,oneof=depository loan"`
	Tracking        string `json:"tracking" binding:"required"`
	StartingBalance string `json:"starting_balance,omitempty"`
}

// SplitRequest represents one requested split. A split_id edits that existing
// split; omitting it creates a new one. Amounts are decimal strings.
type SplitRequest struct {
	SplitID    *string `json:"split_id,omitempty" binding:"omitempty,uuid"`
	CategoryID string  `json:"category_id" binding:"required,uuid"`
	Amount     string  `json:"amount" binding:"required"`
	Expected   string  `json:"expected,omitempty"`
	Comment    string  `json:"comment,omitempty"`
	Principal  *string `json:"principal,omitempty"`
}

// CreateTransactionRequest represents a request to record an account
// transaction with its splits
type CreateTransactionRequest struct {
	BudgetID  string         `json:"budget_id" binding:"required,uuid"`
	AccountID string         `json:"account_id" binding:"required,uuid"`
	Date      string         `json:"date" binding:"required"`
	Name      string         `json:"name" binding:"required"`
	Amount    string         `json:"amount" binding:"required"`
	Principal string         `json:"principal,omitempty"`
	Splits    []SplitRequest `json:"splits,omitempty"`
}

// UpdateTransactionRequest represents a partial edit of a transaction. Splits
// is the complete requested set: existing splits absent from it are removed.
type UpdateTransactionRequest struct {
	Date      *string        `json:"date,omitempty"`
	Comment   *string        `json:"comment,omitempty"`
	Name      *string        `json:"name,omitempty"`
	Amount    *string        `json:"amount,omitempty"`
	Principal *string        `json:"principal,omitempty"`
	Splits    []SplitRequest `json:"splits,omitempty"`
}

// TransferRequest represents a zero-sum movement of funds between categories
type TransferRequest struct {
	BudgetID string         `json:"budget_id" binding:"required,uuid"`
	Date     string         `json:"date" binding:"required"`
	Type     string         `json:"type" binding:"required,oneof=FUNDING REBALANCE"`
	Splits   []SplitRequest `json:"splits" binding:"required,min=2"`
}

// GroupResponse represents a group with its categories in API responses
type GroupResponse struct {
	*budget.Group
	Categories []*category.Category `json:"categories"`
}

// TransactionResponse represents the outcome of a transaction-mutating
// operation, including the balances the operation changed
type TransactionResponse struct {
	ID                 string                      `json:"id"`
	BudgetID           string                      `json:"budget_id"`
	Date               string                      `json:"date"`
	Type               string                      `json:"type"`
	Comment            string                      `json:"comment,omitempty"`
	Version            int                         `json:"version"`
	AccountTransaction *account.AccountTransaction `json:"account_transaction,omitempty"`
	Splits             []*SplitResponse            `json:"splits"`
	CategoryBalances   []ledger.CategoryBalance    `json:"category_balances,omitempty"`
	AccountBalances    []ledger.AccountBalance     `json:"account_balances,omitempty"`
}

// SplitResponse represents a split in API responses
type SplitResponse struct {
	ID         string          `json:"id"`
	CategoryID string          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Expected   decimal.Decimal `json:"expected"`
	Comment    string          `json:"comment,omitempty"`
}

const dateLayout = "2006-01-02"

func mapTransactionResult(res *ledger.TransactionResult) *TransactionResponse {
	splits := make([]*SplitResponse, 0, len(res.Splits))
	for _, s := range res.Splits {
		splits = append(splits, &SplitResponse{
			ID:         s.ID.String(),
			CategoryID: s.CategoryID.String(),
			Amount:     s.Amount,
			Expected:   s.Expected,
			Comment:    s.Comment,
		})
	}

	return &TransactionResponse{
		ID:                 res.Transaction.ID.String(),
		BudgetID:           res.Transaction.BudgetID.String(),
		Date:               res.Transaction.Date.Format(dateLayout),
		Type:               string(res.Transaction.Type),
		Comment:            res.Transaction.Comment,
		Version:            res.Transaction.Version,
		AccountTransaction: res.AccountTransaction,
		Splits:             splits,
		CategoryBalances:   res.CategoryBalances,
		AccountBalances:    res.AccountBalances,
	}
}

// parseSplits converts requested splits to engine inputs, normalizing split
// signs against the transaction's signed total. transactionSign is 0 when the
// total is unknown, which leaves amounts untouched.
func parseSplits(reqs []SplitRequest, transactionSign int) ([]ledger.SplitInput, error) {
	splits := make([]ledger.SplitInput, 0, len(reqs))
	for _, req := range reqs {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, ledger.ValidationError{Field: "splits.category_id", Reason: "invalid uuid"}
		}

		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return nil, ledger.ValidationError{Field: "splits.amount", Reason: "invalid decimal"}
		}
		amount = ledger.NormalizeSplitAmount(transactionSign, amount)

		expected := decimal.Zero
		if req.Expected != "" {
			expected, err = decimal.NewFromString(req.Expected)
			if err != nil {
				return nil, ledger.ValidationError{Field: "splits.expected", Reason: "invalid decimal"}
			}
			expected = ledger.NormalizeSplitAmount(transactionSign, expected)
		}

		input := ledger.SplitInput{
			CategoryID: categoryID,
			Amount:     amount,
			Expected:   expected,
			Comment:    req.Comment,
		}

		if req.SplitID != nil {
			splitID, err := uuid.Parse(*req.SplitID)
			if err != nil {
				return nil, ledger.ValidationError{Field: "splits.split_id", Reason: "invalid uuid"}
			}
			input.SplitID = &splitID
		}

		if req.Principal != nil {
			principal, err := decimal.NewFromString(*req.Principal)
			if err != nil {
				return nil, ledger.ValidationError{Field: "splits.principal", Reason: "invalid decimal"}
			}
			input.Principal = &principal
		}

		splits = append(splits, input)
	}
	return splits, nil
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, ledger.ValidationError{Field: field, Reason: "invalid decimal"}
	}
	return d, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, ledger.ValidationError{Field: field, Reason: "must be formatted YYYY-MM-DD"}
	}
	return t, nil
}
