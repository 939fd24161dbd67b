package service

import (
	"context"

	"github.com/envelope-ledger/internal/domain/shared"
)

// SyncService defines the interface for processing balance-sync requests
type SyncService interface {
	ProcessSyncRequest(ctx context.Context, request *shared.SyncRequest) error
}
