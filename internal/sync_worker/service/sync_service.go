package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/ledger"
)

// BalanceSyncService runs the synchronizer against one budget per request.
// Requests are idempotent: replaying a committed-but-reprocessed message
// recomputes the same balances and finds no drift.
type BalanceSyncService struct {
	synchronizer *ledger.Synchronizer
	logger       *slog.Logger
}

// NewBalanceSyncService creates the base sync service
func NewBalanceSyncService(synchronizer *ledger.Synchronizer, logger *slog.Logger) *BalanceSyncService {
	return &BalanceSyncService{
		synchronizer: synchronizer,
		logger:       logger,
	}
}

// ProcessSyncRequest recomputes every category balance of the requested budget
func (s *BalanceSyncService) ProcessSyncRequest(ctx context.Context, request *shared.SyncRequest) error {
	if request.BudgetID == uuid.Nil {
		return fmt.Errorf("sync request has no budget id")
	}

	if err := s.synchronizer.SyncBudget(ctx, request.BudgetID, request.CorrelationID); err != nil {
		return fmt.Errorf("syncing budget %s failed: %w", request.BudgetID.String(), err)
	}

	return nil
}
