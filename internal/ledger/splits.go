package ledger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/category"
	"github.com/envelope-ledger/internal/domain/transaction"
)

// Engine executes the ledger's mutation operations against an injected Store.
// All methods are safe for concurrent use; contention on category balances is
// resolved by row locking inside the store.
type Engine struct {
	store  Store
	logger *slog.Logger
}

// NewEngine creates a ledger engine on top of the given store
func NewEngine(store Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
	}
}

// balanceSet accumulates the post-operation balance per touched category.
// A category touched several times keeps only its latest balance.
type balanceSet struct {
	order    []uuid.UUID
	balances map[uuid.UUID]decimal.Decimal
}

func newBalanceSet() *balanceSet {
	return &balanceSet{balances: make(map[uuid.UUID]decimal.Decimal)}
}

func (s *balanceSet) record(categoryID uuid.UUID, balance decimal.Decimal) {
	if _, seen := s.balances[categoryID]; !seen {
		s.order = append(s.order, categoryID)
	}
	s.balances[categoryID] = balance
}

func (s *balanceSet) list() []CategoryBalance {
	result := make([]CategoryBalance, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, CategoryBalance{CategoryID: id, Balance: s.balances[id]})
	}
	return result
}

// lockCategories acquires row locks on the given categories in ascending id
// order, so concurrent operations touching overlapping category sets cannot
// deadlock. Returns the locked categories keyed by id.
func lockCategories(ctx context.Context, uow UnitOfWork, ids []uuid.UUID) (map[uuid.UUID]*category.Category, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	sort.Slice(unique, func(i, j int) bool {
		return bytes.Compare(unique[i][:], unique[j][:]) < 0
	})

	locked := make(map[uuid.UUID]*category.Category, len(unique))
	for _, id := range unique {
		cat, err := uow.Categories().LockForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[cat.ID] = cat
	}

	return locked, nil
}

// applySplitDiff reconciles a transaction's stored splits with the requested
// set. Existing splits absent from the request are removed first, then edits
// and inserts are applied, so a category on both sides of the diff sees one
// net delta. Requested splits with a zero amount are treated as absent.
// Returns the number of splits remaining on the transaction.
func (e *Engine) applySplitDiff(
	ctx context.Context,
	uow UnitOfWork,
	trx *transaction.Transaction,
	requested []SplitInput,
	extraLocks []uuid.UUID,
	balances *balanceSet,
) (int, error) {
	existing, err := uow.Transactions().ListSplits(ctx, trx.ID)
	if err != nil {
		return 0, err
	}

	// Zero-amount entries are not persisted; dropping them here also removes
	// any existing split they reference.
	active := make([]SplitInput, 0, len(requested))
	for _, in := range requested {
		if in.Amount.IsZero() {
			continue
		}
		active = append(active, in)
	}

	kept := make(map[uuid.UUID]struct{}, len(active))
	for _, in := range active {
		if in.SplitID != nil {
			kept[*in.SplitID] = struct{}{}
		}
	}

	existingByID := make(map[uuid.UUID]*transaction.Split, len(existing))
	lockIDs := make([]uuid.UUID, 0, len(existing)+len(active)+len(extraLocks))
	for _, split := range existing {
		existingByID[split.ID] = split
		lockIDs = append(lockIDs, split.CategoryID)
	}
	for _, in := range active {
		lockIDs = append(lockIDs, in.CategoryID)
	}
	lockIDs = append(lockIDs, extraLocks...)

	locked, err := lockCategories(ctx, uow, lockIDs)
	if err != nil {
		return 0, err
	}

	remaining := len(existing)

	// Deletions run before inserts and updates.
	for _, split := range existing {
		if _, keep := kept[split.ID]; keep {
			continue
		}

		balance, err := uow.Categories().AddToBalance(ctx, split.CategoryID, split.Amount.Neg())
		if err != nil {
			return 0, err
		}
		balances.record(split.CategoryID, balance)

		if err := e.onSplitDeleted(ctx, uow, locked[split.CategoryID], split); err != nil {
			return 0, err
		}

		if err := uow.Transactions().DeleteSplit(ctx, split.ID); err != nil {
			return 0, err
		}
		remaining--
	}

	for _, in := range active {
		cat, ok := locked[in.CategoryID]
		if !ok {
			// Lock set covered every requested category; reaching this means
			// the id never resolved to a row.
			return 0, category.ErrCategoryNotFound{CategoryID: in.CategoryID}
		}

		if in.SplitID != nil {
			old, ok := existingByID[*in.SplitID]
			if !ok {
				return 0, transaction.ErrSplitNotFound{SplitID: *in.SplitID}
			}
			if old.CategoryID != in.CategoryID {
				// A split never moves between categories in place. Delete it
				// and create a new one under the target category instead.
				return 0, ValidationError{
					Field:  "splits.category_id",
					Reason: fmt.Sprintf("split %s belongs to category %s", old.ID, old.CategoryID),
				}
			}

			delta := in.Amount.Sub(old.Amount)
			balance, err := uow.Categories().AddToBalance(ctx, old.CategoryID, delta)
			if err != nil {
				return 0, err
			}
			balances.record(old.CategoryID, balance)

			old.Amount = in.Amount
			old.Expected = in.Expected
			if in.Comment != "" {
				old.Comment = in.Comment
			}
			if err := uow.Transactions().UpdateSplit(ctx, old); err != nil {
				return 0, err
			}

			if err := e.onSplitUpdated(ctx, uow, locked[old.CategoryID], old, in.Principal); err != nil {
				return 0, err
			}
			continue
		}

		split := transaction.NewSplit(trx.ID, in.CategoryID, in.Amount)
		split.Comment = in.Comment
		split.Expected = in.Expected
		if err := uow.Transactions().CreateSplit(ctx, split); err != nil {
			return 0, err
		}
		remaining++

		balance, err := uow.Categories().AddToBalance(ctx, in.CategoryID, in.Amount)
		if err != nil {
			return 0, err
		}
		balances.record(in.CategoryID, balance)

		if err := e.onSplitCreated(ctx, uow, cat, split, in.Principal); err != nil {
			return 0, err
		}
	}

	return remaining, nil
}

// reverseSplits subtracts every split of a transaction from its category and
// deletes the split rows, firing loan hooks. Used by transaction and transfer
// deletion.
func (e *Engine) reverseSplits(
	ctx context.Context,
	uow UnitOfWork,
	trx *transaction.Transaction,
	balances *balanceSet,
) error {
	splits, err := uow.Transactions().ListSplits(ctx, trx.ID)
	if err != nil {
		return err
	}

	lockIDs := make([]uuid.UUID, 0, len(splits))
	for _, split := range splits {
		lockIDs = append(lockIDs, split.CategoryID)
	}

	locked, err := lockCategories(ctx, uow, lockIDs)
	if err != nil {
		return err
	}

	for _, split := range splits {
		balance, err := uow.Categories().AddToBalance(ctx, split.CategoryID, split.Amount.Neg())
		if err != nil {
			return err
		}
		balances.record(split.CategoryID, balance)

		if err := e.onSplitDeleted(ctx, uow, locked[split.CategoryID], split); err != nil {
			return err
		}

		if err := uow.Transactions().DeleteSplit(ctx, split.ID); err != nil {
			return err
		}
	}

	return nil
}

// validateSplitSum rejects a request whose splits do not add up to the
// transaction's signed total.
func validateSplitSum(splits []SplitInput, total decimal.Decimal) error {
	if len(splits) == 0 {
		return nil
	}

	sum := decimal.Zero
	for _, in := range splits {
		sum = sum.Add(in.Amount)
	}

	if !sum.Equal(total) {
		return ValidationError{
			Field:  "splits",
			Reason: fmt.Sprintf("split amounts sum to %s, transaction amount is %s", sum, total),
		}
	}

	return nil
}
