package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envelope-ledger/internal/domain/budget"
	"github.com/envelope-ledger/internal/domain/category"
	"github.com/envelope-ledger/internal/domain/loan"
	"github.com/envelope-ledger/internal/domain/shared"
)

func TestInitializeBudget(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := NewEngine(store, newTestLogger())

	b, err := engine.InitializeBudget(ctx, uuid.New(), "Household")
	require.NoError(t, err)

	groups, byGroup, err := engine.ListGroups(ctx, b.ID)
	require.NoError(t, err)

	// One SYSTEM, one NO GROUP, plus the starter groups.
	assert.Len(t, groups, 2+len(starterGroups))

	var system, noGroup *budget.Group
	for _, g := range groups {
		switch g.Type {
		case shared.GroupTypeSystem:
			system = g
		case shared.GroupTypeNoGroup:
			noGroup = g
		}
	}
	require.NotNil(t, system)
	require.NotNil(t, noGroup)

	systemTypes := make(map[shared.CategoryType]bool)
	for _, c := range byGroup[system.ID] {
		systemTypes[c.Type] = true
	}
	assert.True(t, systemTypes[shared.CategoryTypeUnassigned])
	assert.True(t, systemTypes[shared.CategoryTypeFundingPool])
	assert.True(t, systemTypes[shared.CategoryTypeAccountTransfer])

	assert.Len(t, byGroup[noGroup.ID], len(noGroupStarterCategories))

	for _, c := range store.categories {
		assert.True(t, c.Balance.IsZero(), "category %s seeded with non-zero balance", c.Name)
	}
}

func TestGroupLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("create rename and delete a regular group", func(t *testing.T) {
		f := newFixture(t)

		grp, err := f.engine.CreateGroup(ctx, f.budget.ID, "Vacation")
		require.NoError(t, err)
		assert.Equal(t, shared.GroupTypeRegular, grp.Type)

		newName := "Travel"
		hidden := true
		updated, err := f.engine.UpdateGroup(ctx, grp.ID, &newName, &hidden)
		require.NoError(t, err)
		assert.Equal(t, "Travel", updated.Name)
		assert.True(t, updated.Hidden)

		require.NoError(t, f.engine.DeleteGroup(ctx, grp.ID))

		_, err = f.store.Budgets().GetGroupByID(ctx, grp.ID)
		var notFoundErr budget.ErrGroupNotFound
		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("empty group name is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.engine.CreateGroup(ctx, f.budget.ID, "")

		var validationErr ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("system and no-group groups cannot be deleted", func(t *testing.T) {
		f := newFixture(t)

		for _, typ := range []shared.GroupType{shared.GroupTypeSystem, shared.GroupTypeNoGroup} {
			grp, err := f.store.Budgets().GetGroupByType(ctx, f.budget.ID, typ)
			require.NoError(t, err)

			err = f.engine.DeleteGroup(ctx, grp.ID)

			var protectedErr budget.ErrGroupProtected
			assert.ErrorAs(t, err, &protectedErr, "group type %s", typ)
		}
	})

	t.Run("unknown budget fails group creation", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.engine.CreateGroup(ctx, uuid.New(), "Orphan")

		var notFoundErr budget.ErrBudgetNotFound
		assert.ErrorAs(t, err, &notFoundErr)
	})
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a regular category", func(t *testing.T) {
		f := newFixture(t)

		cat, err := f.engine.CreateCategory(ctx, f.groceries.GroupID, "Snacks", shared.CategoryTypeRegular)
		require.NoError(t, err)
		assert.True(t, cat.Balance.IsZero())
		assert.Equal(t, 1, cat.Recurrence)
	})

	t.Run("loan category is co-created with its sub-ledger", func(t *testing.T) {
		f := newFixture(t)

		cat, err := f.engine.CreateCategory(ctx, f.groceries.GroupID, "Car Loan", shared.CategoryTypeLoan)
		require.NoError(t, err)

		l, err := f.store.Loans().GetByCategoryID(ctx, cat.ID)
		require.NoError(t, err)
		assert.True(t, l.Balance.IsZero())
	})

	t.Run("system category types cannot be created directly", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.engine.CreateCategory(ctx, f.groceries.GroupID, "Extra Pool", shared.CategoryTypeFundingPool)

		var validationErr ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("updates metadata without touching the balance", func(t *testing.T) {
		f := newFixture(t)

		grp, err := f.engine.CreateGroup(ctx, f.budget.ID, "Essentials")
		require.NoError(t, err)

		name := "Weekly Groceries"
		useGoal := true
		funding := dec("400")
		recurrence := 1
		updated, err := f.engine.UpdateCategory(ctx, UpdateCategoryCommand{
			CategoryID:    f.groceries.ID,
			Name:          &name,
			GroupID:       &grp.ID,
			UseGoal:       &useGoal,
			FundingAmount: &funding,
			Recurrence:    &recurrence,
		})
		require.NoError(t, err)

		assert.Equal(t, "Weekly Groceries", updated.Name)
		assert.Equal(t, grp.ID, updated.GroupID)
		assert.True(t, updated.UseGoal)
		assert.True(t, dec("400").Equal(updated.FundingAmount))
		assert.True(t, updated.Balance.IsZero())
	})

	t.Run("moving to an unknown group fails", func(t *testing.T) {
		f := newFixture(t)

		bogus := uuid.New()
		_, err := f.engine.UpdateCategory(ctx, UpdateCategoryCommand{
			CategoryID: f.groceries.ID,
			GroupID:    &bogus,
		})

		var notFoundErr budget.ErrGroupNotFound
		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("system categories cannot be deleted", func(t *testing.T) {
		f := newFixture(t)

		err := f.engine.DeleteCategory(ctx, f.unassigned.ID)

		var validationErr ValidationError
		assert.ErrorAs(t, err, &validationErr)

		_, err = f.store.Categories().GetByID(ctx, f.unassigned.ID)
		assert.NoError(t, err)
	})

	t.Run("deleting a loan category cascades to the sub-ledger", func(t *testing.T) {
		f := newFixture(t)

		cat, err := f.engine.CreateCategory(ctx, f.groceries.GroupID, "Car Loan", shared.CategoryTypeLoan)
		require.NoError(t, err)

		require.NoError(t, f.engine.DeleteCategory(ctx, cat.ID))

		_, err = f.store.Loans().GetByCategoryID(ctx, cat.ID)
		var loanNotFoundErr loan.ErrLoanNotFound
		assert.ErrorAs(t, err, &loanNotFoundErr)

		_, err = f.store.Categories().GetByID(ctx, cat.ID)
		var catNotFoundErr category.ErrCategoryNotFound
		assert.ErrorAs(t, err, &catNotFoundErr)
	})
}
