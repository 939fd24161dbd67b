package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/platform/messaging/producers"
	"github.com/envelope-ledger/internal/sync_worker/service"
)

// SyncEventHandler handles incoming balance-sync request messages from Kafka
type SyncEventHandler struct {
	syncService service.SyncService
	producer    producers.DeadLetterPublisher
	logger      *slog.Logger
}

// NewSyncEventHandler creates a new handler
func NewSyncEventHandler(
	logger *slog.Logger,
	syncService service.SyncService,
	producer producers.DeadLetterPublisher,
) *SyncEventHandler {
	return &SyncEventHandler{
		syncService: syncService,
		producer:    producer,
		logger:      logger,
	}
}

// HandleMessage processes one Kafka message. Malformed payloads go to the DLQ
// when one is configured; processing failures are returned so the offset is
// not committed and the request is retried.
func (h *SyncEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.SyncRequest
	if err := json.Unmarshal(value, &request); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal sync request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				// Message handled, commit offset
				return nil
			}
		}
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received sync request for processing",
		"budget_id", request.BudgetID.String(),
		"requested_at", request.RequestedAt,
	)

	if err := h.syncService.ProcessSyncRequest(ctx, &request); err != nil {
		logger.Error("Failed to process sync request",
			"budget_id", request.BudgetID.String(),
			"error", err,
		)
		return fmt.Errorf("processing sync request for budget %s failed: %w", request.BudgetID.String(), err)
	}

	logger.Info("Successfully processed sync request", "budget_id", request.BudgetID.String())
	return nil
}
