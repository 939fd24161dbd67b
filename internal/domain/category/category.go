package category

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrEmptyName = errors.New("category name cannot be empty")
)

// Category is a budgeting envelope. Its balance is a cached value that the
// ledger engines keep equal to the sum of the amounts of all non-deleted
// splits referencing it.
type Category struct {
	ID      uuid.UUID           `json:"id"`
	GroupID uuid.UUID           `json:"group_id"`
	Name    string              `json:"name"`
	Type    shared.CategoryType `json:"type"`
	Balance decimal.Decimal     `json:"balance"`
	Hidden  bool                `json:"hidden"`

	// Funding-goal metadata. Recurrence is in months; a goal recurs every
	// Recurrence months after GoalDate.
	UseGoal       bool            `json:"use_goal"`
	FundingAmount decimal.Decimal `json:"funding_amount"`
	GoalDate      *time.Time      `json:"goal_date,omitempty"`
	Recurrence    int             `json:"recurrence"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCategory creates a category of the given type with a zero balance
func NewCategory(groupID uuid.UUID, name string, categoryType shared.CategoryType) (*Category, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now()
	return &Category{
		ID:         uuid.New(),
		GroupID:    groupID,
		Name:       name,
		Type:       categoryType,
		Balance:    decimal.Zero,
		Recurrence: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
