package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/envelope-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrEmptyGroupName = errors.New("group name cannot be empty")
)

// Budget is the root scope of a ledger. It owns groups, accounts and
// transactions. Exactly one SYSTEM group and one NO GROUP group exist per
// budget, created during initialization.
type Budget struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBudget creates a budget owned by the given tenant
func NewBudget(ownerID uuid.UUID, name string) *Budget {
	now := time.Now()
	return &Budget{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Group is a named container of categories
type Group struct {
	ID        uuid.UUID        `json:"id"`
	BudgetID  uuid.UUID        `json:"budget_id"`
	Name      string           `json:"name"`
	Type      shared.GroupType `json:"type"`
	Hidden    bool             `json:"hidden"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewGroup creates a group of the given type within a budget
func NewGroup(budgetID uuid.UUID, name string, groupType shared.GroupType) (*Group, error) {
	if name == "" {
		return nil, ErrEmptyGroupName
	}

	now := time.Now()
	return &Group{
		ID:        uuid.New(),
		BudgetID:  budgetID,
		Name:      name,
		Type:      groupType,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Protected reports whether the group may not be deleted through normal
// lifecycle operations
func (g *Group) Protected() bool {
	return g.Type == shared.GroupTypeSystem || g.Type == shared.GroupTypeNoGroup
}
