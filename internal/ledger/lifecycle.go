package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/budget"
	"github.com/envelope-ledger/internal/domain/category"
	"github.com/envelope-ledger/internal/domain/loan"
	"github.com/envelope-ledger/internal/domain/shared"
)

// starterGroups are the default envelopes seeded into a fresh budget.
var starterGroups = []struct {
	name       string
	categories []string
}{
	{"Food", []string{"Groceries", "Dining Out"}},
	{"Home Improvement", []string{"Maintenance", "Furniture", "Other"}},
	{"Health Care", []string{"Medical", "Dental", "Vision"}},
	{"Insurance", []string{"Medical", "Dental", "Vision", "House/Car"}},
	{"Bills", []string{"Electric", "Natural Gas", "Garbage/Recycling"}},
	{"Taxes", []string{"Federal", "State", "Property", "Preparation Fees"}},
	{"Car", []string{"Gasoline", "Maintenance", "Registration"}},
}

// noGroupStarterCategories are seeded into the NO GROUP group.
var noGroupStarterCategories = []string{"Entertainment", "Miscellaneous"}

// InitializeBudget creates a budget with its SYSTEM group, the three fixed
// system categories (UNASSIGNED, FUNDING POOL, ACCOUNT TRANSFER), the NO
// GROUP group, and the default starter groups, all inside one atomic
// operation. Partial initialization is never observable: any failure aborts
// the whole creation.
func (e *Engine) InitializeBudget(ctx context.Context, ownerID uuid.UUID, name string) (*budget.Budget, error) {
	b := budget.NewBudget(ownerID, name)

	err := e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		if err := uow.Budgets().Create(ctx, b); err != nil {
			return err
		}

		systemGroup, err := budget.NewGroup(b.ID, "System", shared.GroupTypeSystem)
		if err != nil {
			return err
		}
		if err := uow.Budgets().CreateGroup(ctx, systemGroup); err != nil {
			return err
		}

		systemCategories := []struct {
			name string
			typ  shared.CategoryType
		}{
			{"Unassigned", shared.CategoryTypeUnassigned},
			{"Funding Pool", shared.CategoryTypeFundingPool},
			{"Account Transfer", shared.CategoryTypeAccountTransfer},
		}
		for _, sc := range systemCategories {
			cat, err := category.NewCategory(systemGroup.ID, sc.name, sc.typ)
			if err != nil {
				return err
			}
			if err := uow.Categories().Create(ctx, cat); err != nil {
				return err
			}
		}

		noGroup, err := budget.NewGroup(b.ID, "NoGroup", shared.GroupTypeNoGroup)
		if err != nil {
			return err
		}
		if err := uow.Budgets().CreateGroup(ctx, noGroup); err != nil {
			return err
		}

		for _, name := range noGroupStarterCategories {
			cat, err := category.NewCategory(noGroup.ID, name, shared.CategoryTypeRegular)
			if err != nil {
				return err
			}
			if err := uow.Categories().Create(ctx, cat); err != nil {
				return err
			}
		}

		for _, sg := range starterGroups {
			grp, err := budget.NewGroup(b.ID, sg.name, shared.GroupTypeRegular)
			if err != nil {
				return err
			}
			if err := uow.Budgets().CreateGroup(ctx, grp); err != nil {
				return err
			}

			for _, cn := range sg.categories {
				cat, err := category.NewCategory(grp.ID, cn, shared.CategoryTypeRegular)
				if err != nil {
					return err
				}
				if err := uow.Categories().Create(ctx, cat); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("budget initialized", "budget_id", b.ID.String(), "owner_id", ownerID.String())
	return b, nil
}

// CreateGroup adds a REGULAR group to a budget
func (e *Engine) CreateGroup(ctx context.Context, budgetID uuid.UUID, name string) (*budget.Group, error) {
	grp, err := budget.NewGroup(budgetID, name, shared.GroupTypeRegular)
	if err != nil {
		return nil, ValidationError{Field: "name", Reason: err.Error()}
	}

	err = e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		if _, err := uow.Budgets().GetByID(ctx, budgetID); err != nil {
			return err
		}
		return uow.Budgets().CreateGroup(ctx, grp)
	})
	if err != nil {
		return nil, err
	}
	return grp, nil
}

// UpdateGroup renames or hides a group
func (e *Engine) UpdateGroup(ctx context.Context, groupID uuid.UUID, name *string, hidden *bool) (*budget.Group, error) {
	var grp *budget.Group
	err := e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		var err error
		grp, err = uow.Budgets().GetGroupByID(ctx, groupID)
		if err != nil {
			return err
		}

		if name != nil {
			grp.Name = *name
		}
		if hidden != nil {
			grp.Hidden = *hidden
		}
		return uow.Budgets().UpdateGroup(ctx, grp)
	})
	if err != nil {
		return nil, err
	}
	return grp, nil
}

// DeleteGroup removes a group. SYSTEM and NO GROUP groups are protected;
// deleting them is rejected.
func (e *Engine) DeleteGroup(ctx context.Context, groupID uuid.UUID) error {
	return e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		grp, err := uow.Budgets().GetGroupByID(ctx, groupID)
		if err != nil {
			return err
		}
		if grp.Protected() {
			return budget.ErrGroupProtected{GroupID: groupID}
		}
		return uow.Budgets().DeleteGroup(ctx, groupID)
	})
}

// CreateCategory adds a REGULAR or LOAN category to a group. A LOAN category
// is co-created with its loan sub-ledger.
func (e *Engine) CreateCategory(ctx context.Context, groupID uuid.UUID, name string, categoryType shared.CategoryType) (*category.Category, error) {
	if categoryType != shared.CategoryTypeRegular && categoryType != shared.CategoryTypeLoan {
		return nil, ValidationError{Field: "type", Reason: "category type must be REGULAR or LOAN"}
	}

	cat, err := category.NewCategory(groupID, name, categoryType)
	if err != nil {
		return nil, ValidationError{Field: "name", Reason: err.Error()}
	}

	err = e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		if _, err := uow.Budgets().GetGroupByID(ctx, groupID); err != nil {
			return err
		}
		if err := uow.Categories().Create(ctx, cat); err != nil {
			return err
		}

		if categoryType == shared.CategoryTypeLoan {
			return uow.Loans().Create(ctx, loan.NewLoan(cat.ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// UpdateCategoryCommand edits category metadata; nil fields are left unchanged
type UpdateCategoryCommand struct {
	CategoryID    uuid.UUID
	Name          *string
	GroupID       *uuid.UUID
	Hidden        *bool
	UseGoal       *bool
	FundingAmount *decimal.Decimal
	GoalDate      *time.Time
	Recurrence    *int
}

// UpdateCategory edits category metadata. Balances are never writable here;
// they move only through the ledger engines.
func (e *Engine) UpdateCategory(ctx context.Context, cmd UpdateCategoryCommand) (*category.Category, error) {
	var cat *category.Category
	err := e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		var err error
		cat, err = uow.Categories().GetByID(ctx, cmd.CategoryID)
		if err != nil {
			return err
		}

		if cmd.Name != nil {
			cat.Name = *cmd.Name
		}
		if cmd.GroupID != nil {
			if _, err := uow.Budgets().GetGroupByID(ctx, *cmd.GroupID); err != nil {
				return err
			}
			cat.GroupID = *cmd.GroupID
		}
		if cmd.Hidden != nil {
			cat.Hidden = *cmd.Hidden
		}
		if cmd.UseGoal != nil {
			cat.UseGoal = *cmd.UseGoal
		}
		if cmd.FundingAmount != nil {
			cat.FundingAmount = *cmd.FundingAmount
		}
		if cmd.GoalDate != nil {
			cat.GoalDate = cmd.GoalDate
		}
		if cmd.Recurrence != nil {
			cat.Recurrence = *cmd.Recurrence
		}

		return uow.Categories().Update(ctx, cat)
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory removes a category. System categories are protected. A LOAN
// category cascades to its loan sub-ledger.
func (e *Engine) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	return e.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		cat, err := uow.Categories().GetByID(ctx, categoryID)
		if err != nil {
			return err
		}
		if cat.Type.IsSystem() {
			return ValidationError{Field: "category", Reason: "system categories cannot be deleted"}
		}

		if cat.Type == shared.CategoryTypeLoan {
			if err := uow.Loans().DeleteByCategoryID(ctx, categoryID); err != nil {
				return err
			}
		}

		return uow.Categories().Delete(ctx, categoryID)
	})
}

// ListGroups returns a budget's groups with their categories
func (e *Engine) ListGroups(ctx context.Context, budgetID uuid.UUID) ([]*budget.Group, map[uuid.UUID][]*category.Category, error) {
	groups, err := e.store.Budgets().ListGroups(ctx, budgetID)
	if err != nil {
		return nil, nil, err
	}

	byGroup := make(map[uuid.UUID][]*category.Category, len(groups))
	for _, grp := range groups {
		cats, err := e.store.Categories().ListByGroup(ctx, grp.ID)
		if err != nil {
			return nil, nil, err
		}
		byGroup[grp.ID] = cats
	}

	return groups, byGroup, nil
}
