package budget

import (
	"context"

	"github.com/google/uuid"

	"github.com/envelope-ledger/internal/domain/shared"
)

// Repository defines budget and group persistence operations
type Repository interface {
	Create(ctx context.Context, b *Budget) error
	GetByID(ctx context.Context, id uuid.UUID) (*Budget, error)

	CreateGroup(ctx context.Context, g *Group) error
	GetGroupByID(ctx context.Context, id uuid.UUID) (*Group, error)
	GetGroupByType(ctx context.Context, budgetID uuid.UUID, groupType shared.GroupType) (*Group, error)
	ListGroups(ctx context.Context, budgetID uuid.UUID) ([]*Group, error)
	UpdateGroup(ctx context.Context, g *Group) error
	DeleteGroup(ctx context.Context, id uuid.UUID) error
}

// ErrBudgetNotFound indicates missing budget
type ErrBudgetNotFound struct {
	BudgetID uuid.UUID
}

func (e ErrBudgetNotFound) Error() string {
	return "budget not found: " + e.BudgetID.String()
}

// ErrGroupNotFound indicates missing group
type ErrGroupNotFound struct {
	GroupID uuid.UUID
}

func (e ErrGroupNotFound) Error() string {
	return "group not found: " + e.GroupID.String()
}

// ErrGroupProtected indicates an attempt to delete a SYSTEM or NO GROUP group
type ErrGroupProtected struct {
	GroupID uuid.UUID
}

func (e ErrGroupProtected) Error() string {
	return "group cannot be deleted: " + e.GroupID.String()
}
