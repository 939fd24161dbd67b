package shared

import (
	"time"

	"github.com/google/uuid"
)

// SyncRequest defines a Kafka message asking the sync worker to recompute
// every category balance of a budget from the transaction log
type SyncRequest struct {
	BudgetID      uuid.UUID `json:"budget_id"`
	CorrelationID string    `json:"correlation_id"`
	RequestedAt   time.Time `json:"requested_at"`
}
