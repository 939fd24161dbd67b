package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DriftRecord documents one balance correction made by the synchronizer: the
// cached category balance disagreed with the value recomputed from the
// transaction log.
type DriftRecord struct {
	BudgetID        uuid.UUID       `json:"budget_id"`
	CategoryID      uuid.UUID       `json:"category_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	SyncedBalance   decimal.Decimal `json:"synced_balance"`
	CorrelationID   string          `json:"correlation_id,omitempty"`
	CorrectedAt     time.Time       `json:"corrected_at"`
}

// DriftJournal records balance corrections for operators. Appending is
// best-effort: a journal failure never fails the sync that produced the
// correction.
type DriftJournal interface {
	Append(ctx context.Context, record *DriftRecord) error
}

// Synchronizer recomputes authoritative category balances from the
// transaction log and corrects drift. It runs out of band and does not
// participate in the live write path: corrections are last-writer-wins per
// category, with no merge against concurrent writes.
type Synchronizer struct {
	store   Store
	journal DriftJournal
	logger  *slog.Logger
}

// NewSynchronizer creates a synchronizer. journal may be nil when corrections
// need not be recorded.
func NewSynchronizer(store Store, journal DriftJournal, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		store:   store,
		journal: journal,
		logger:  logger,
	}
}

// SyncBudget recomputes every category balance of the budget. Categories are
// reconciled independently: a failure on one is logged and skipped, and
// cancellation takes effect between categories, so already-synced categories
// stay correct. This is deliberately NOT one atomic operation; re-running it
// with no intervening writes changes nothing.
func (s *Synchronizer) SyncBudget(ctx context.Context, budgetID uuid.UUID, correlationID string) error {
	logger := s.logger
	if correlationID != "" {
		logger = s.logger.With("correlation_id", correlationID)
	}

	categories, err := s.store.Categories().ListByBudget(ctx, budgetID)
	if err != nil {
		return err
	}

	corrected := 0
	for _, cat := range categories {
		if err := ctx.Err(); err != nil {
			logger.Info("sync cancelled", "budget_id", budgetID.String(), "corrected", corrected)
			return err
		}

		synced, err := s.syncCategory(ctx, budgetID, cat.ID, correlationID)
		if err != nil {
			logger.Error("failed to sync category balance",
				"budget_id", budgetID.String(),
				"category_id", cat.ID.String(),
				"error", err,
			)
			continue
		}
		if synced {
			corrected++
		}
	}

	logger.Info("budget balances synced",
		"budget_id", budgetID.String(),
		"categories", len(categories),
		"corrected", corrected,
	)
	return nil
}

// syncCategory recomputes one category's balance in its own unit of work.
// Returns true when drift was found and corrected.
func (s *Synchronizer) syncCategory(ctx context.Context, budgetID, categoryID uuid.UUID, correlationID string) (bool, error) {
	var record *DriftRecord

	err := s.store.WithTransaction(ctx, func(uow UnitOfWork) error {
		cat, err := uow.Categories().LockForUpdate(ctx, categoryID)
		if err != nil {
			return err
		}

		balance, err := uow.Transactions().SumSettledSplits(ctx, categoryID)
		if err != nil {
			return err
		}

		if balance.Equal(cat.Balance) {
			return nil
		}

		if err := uow.Categories().SetBalance(ctx, categoryID, balance); err != nil {
			return err
		}

		record = &DriftRecord{
			BudgetID:        budgetID,
			CategoryID:      categoryID,
			PreviousBalance: cat.Balance,
			SyncedBalance:   balance,
			CorrelationID:   correlationID,
			CorrectedAt:     time.Now(),
		}
		return nil
	})
	if err != nil || record == nil {
		return false, err
	}

	s.logger.Warn("category balance drift corrected",
		"category_id", categoryID.String(),
		"previous", record.PreviousBalance.String(),
		"synced", record.SyncedBalance.String(),
	)

	if s.journal != nil {
		if err := s.journal.Append(ctx, record); err != nil {
			s.logger.Error("failed to journal drift correction",
				"category_id", categoryID.String(),
				"error", err,
			)
		}
	}

	return true, nil
}
