package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envelope-ledger/internal/domain/account"
	"github.com/envelope-ledger/internal/domain/shared"
)

type recordingJournal struct {
	records []*DriftRecord
}

func (j *recordingJournal) Append(_ context.Context, record *DriftRecord) error {
	j.records = append(j.records, record)
	return nil
}

type failingJournal struct{}

func (failingJournal) Append(context.Context, *DriftRecord) error {
	return errors.New("journal unavailable")
}

func TestSyncBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("corrects drifted balances and journals them", func(t *testing.T) {
		f := newFixture(t)
		journal := &recordingJournal{}
		sync := NewSynchronizer(f.store, journal, newTestLogger())

		_, err := f.engine.CreateTransaction(ctx, CreateTransactionCommand{
			BudgetID:  f.budget.ID,
			AccountID: f.account.ID,
			Date:      time.Now(),
			Amount:    dec("-50"),
			Splits: []SplitInput{
				{CategoryID: f.groceries.ID, Amount: dec("-50")},
			},
		})
		require.NoError(t, err)

		// Corrupt the cached balance behind the engine's back.
		f.store.categories[f.groceries.ID].Balance = dec("123")

		require.NoError(t, sync.SyncBudget(ctx, f.budget.ID, "corr-1"))

		assert.True(t, dec("-50").Equal(f.balance(t, f.groceries.ID)))
		require.Len(t, journal.records, 1)

		record := journal.records[0]
		assert.Equal(t, f.groceries.ID, record.CategoryID)
		assert.Equal(t, f.budget.ID, record.BudgetID)
		assert.True(t, dec("123").Equal(record.PreviousBalance))
		assert.True(t, dec("-50").Equal(record.SyncedBalance))
		assert.Equal(t, "corr-1", record.CorrelationID)
	})

	t.Run("rerun with no drift changes nothing", func(t *testing.T) {
		f := newFixture(t)
		journal := &recordingJournal{}
		sync := NewSynchronizer(f.store, journal, newTestLogger())

		_, err := f.engine.CreateTransaction(ctx, CreateTransactionCommand{
			BudgetID:  f.budget.ID,
			AccountID: f.account.ID,
			Date:      time.Now(),
			Amount:    dec("-50"),
			Splits: []SplitInput{
				{CategoryID: f.groceries.ID, Amount: dec("-50")},
			},
		})
		require.NoError(t, err)

		require.NoError(t, sync.SyncBudget(ctx, f.budget.ID, ""))
		require.NoError(t, sync.SyncBudget(ctx, f.budget.ID, ""))

		assert.Empty(t, journal.records)
		assert.True(t, dec("-50").Equal(f.balance(t, f.groceries.ID)))
	})

	t.Run("soft-deleted transactions do not count", func(t *testing.T) {
		f := newFixture(t)
		sync := NewSynchronizer(f.store, nil, newTestLogger())

		created, err := f.engine.CreateTransaction(ctx, CreateTransactionCommand{
			BudgetID:  f.budget.ID,
			AccountID: f.account.ID,
			Date:      time.Now(),
			Amount:    dec("-50"),
			Splits: []SplitInput{
				{CategoryID: f.groceries.ID, Amount: dec("-50")},
			},
		})
		require.NoError(t, err)

		// Flag the transaction deleted without reversing its splits, the
		// exact drift a crashed delete leaves behind.
		f.store.transactions[created.Transaction.ID].Deleted = true

		require.NoError(t, sync.SyncBudget(ctx, f.budget.ID, ""))

		assert.True(t, dec("0").Equal(f.balance(t, f.groceries.ID)))
	})

	t.Run("pending transactions on tracked accounts are excluded", func(t *testing.T) {
		f := newFixture(t)
		sync := NewSynchronizer(f.store, nil, newTestLogger())

		created, err := f.engine.CreateTransaction(ctx, CreateTransactionCommand{
			BudgetID:  f.budget.ID,
			AccountID: f.account.ID,
			Date:      time.Now(),
			Amount:    dec("-50"),
			Splits: []SplitInput{
				{CategoryID: f.groceries.ID, Amount: dec("-50")},
			},
		})
		require.NoError(t, err)
		require.NotNil(t, created.AccountTransaction)

		f.store.accountTrans[created.AccountTransaction.ID].Pending = true

		require.NoError(t, sync.SyncBudget(ctx, f.budget.ID, ""))

		// The recomputed balance drops the pending split.
		assert.True(t, dec("0").Equal(f.balance(t, f.groceries.ID)))
	})

	t.Run("pending on a balance-tracked account still counts", func(t *testing.T) {
		f := newFixture(t)
		sync := NewSynchronizer(f.store, nil, newTestLogger())

		savings, err := f.engine.CreateAccount(ctx, CreateAccountCommand{
			BudgetID: f.budget.ID,
			Name:     "Savings",
			Type:     account.TypeDepository,
			Tracking: shared.TrackingBalances,
		})
		require.NoError(t, err)

		created, err := f.engine.CreateTransaction(ctx, CreateTransactionCommand{
			BudgetID:  f.budget.ID,
			AccountID: savings.ID,
			Date:      time.Now(),
			Amount:    dec("-50"),
			Splits: []SplitInput{
				{CategoryID: f.groceries.ID, Amount: dec("-50")},
			},
		})
		require.NoError(t, err)

		f.store.accountTrans[created.AccountTransaction.ID].Pending = true

		require.NoError(t, sync.SyncBudget(ctx, f.budget.ID, ""))

		assert.True(t, dec("-50").Equal(f.balance(t, f.groceries.ID)))
	})

	t.Run("journal failure does not fail the sync", func(t *testing.T) {
		f := newFixture(t)
		sync := NewSynchronizer(f.store, failingJournal{}, newTestLogger())

		f.store.categories[f.groceries.ID].Balance = dec("999")

		require.NoError(t, sync.SyncBudget(ctx, f.budget.ID, ""))
		assert.True(t, dec("0").Equal(f.balance(t, f.groceries.ID)))
	})

	t.Run("cancellation stops between categories", func(t *testing.T) {
		f := newFixture(t)
		sync := NewSynchronizer(f.store, nil, newTestLogger())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := sync.SyncBudget(cancelled, f.budget.ID, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
