package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/envelope-ledger/internal/api/middleware"
	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/ledger"
	"github.com/envelope-ledger/internal/platform/messaging/producers"
)

// DriftReader lists recorded balance corrections for operator inspection
type DriftReader interface {
	ListByBudget(ctx context.Context, budgetID uuid.UUID, limit int) ([]*ledger.DriftRecord, error)
}

// BudgetHandler handles HTTP requests for budget lifecycle and balance sync
type BudgetHandler struct {
	engine       *ledger.Engine
	syncProducer producers.MessagePublisher
	driftReader  DriftReader
	logger       *slog.Logger
}

// NewBudgetHandler creates a new budget handler. driftReader may be nil when
// no drift journal is configured.
func NewBudgetHandler(logger *slog.Logger, engine *ledger.Engine, syncProducer producers.MessagePublisher, driftReader DriftReader) *BudgetHandler {
	return &BudgetHandler{
		engine:       engine,
		syncProducer: syncProducer,
		driftReader:  driftReader,
		logger:       logger,
	}
}

// Create initializes a new budget with its system group, system categories
// and starter groups
func (h *BudgetHandler) Create(c *gin.Context) {
	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	b, err := h.engine.InitializeBudget(c.Request.Context(), ownerID, req.Name)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, b)
}

// ListGroups returns the budget's groups, each with its categories
func (h *BudgetHandler) ListGroups(c *gin.Context) {
	budgetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid budget ID")
		return
	}

	groups, byGroup, err := h.engine.ListGroups(c.Request.Context(), budgetID)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	response := make([]*GroupResponse, 0, len(groups))
	for _, g := range groups {
		response = append(response, &GroupResponse{Group: g, Categories: byGroup[g.ID]})
	}
	RespondOK(c, response)
}

// CreateGroup creates a REGULAR group in the budget
func (h *BudgetHandler) CreateGroup(c *gin.Context) {
	budgetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid budget ID")
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	g, err := h.engine.CreateGroup(c.Request.Context(), budgetID, req.Name)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, g)
}

// TriggerSync publishes a balance-sync request for the budget and returns 202.
// The sync worker recomputes balances asynchronously.
func (h *BudgetHandler) TriggerSync(c *gin.Context) {
	budgetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid budget ID")
		return
	}

	request := &shared.SyncRequest{
		BudgetID:      budgetID,
		CorrelationID: middleware.GetCorrelationID(c),
		RequestedAt:   time.Now(),
	}

	if err := h.syncProducer.Publish(c.Request.Context(), budgetID.String(), request); err != nil {
		h.logger.Error("Failed to publish sync request", "budget_id", budgetID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, gin.H{
		"budget_id": budgetID,
		"status":    "SYNC_REQUESTED",
	})
}

// ListDriftCorrections returns the most recent balance corrections recorded
// for the budget, newest first
func (h *BudgetHandler) ListDriftCorrections(c *gin.Context) {
	budgetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid budget ID")
		return
	}

	if h.driftReader == nil {
		RespondOK(c, []*ledger.DriftRecord{})
		return
	}

	records, err := h.driftReader.ListByBudget(c.Request.Context(), budgetID, 100)
	if err != nil {
		h.logger.Error("Failed to list drift corrections", "budget_id", budgetID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, records)
}
