package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/ledger"
)

// TransferHandler handles HTTP requests for zero-sum category transfers
type TransferHandler struct {
	engine *ledger.Engine
	logger *slog.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(logger *slog.Logger, engine *ledger.Engine) *TransferHandler {
	return &TransferHandler{
		engine: engine,
		logger: logger,
	}
}

// Create applies a new FUNDING or REBALANCE transfer. Split amounts are
// signed by the caller and must sum to zero.
func (h *TransferHandler) Create(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cmd, err := h.buildCommand(nil, &req)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	result, err := h.engine.ApplyTransfer(c.Request.Context(), *cmd)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapTransactionResult(result))
}

// Update replaces the split set of an existing transfer
func (h *TransferHandler) Update(c *gin.Context) {
	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transfer ID")
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cmd, err := h.buildCommand(&transferID, &req)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	result, err := h.engine.ApplyTransfer(c.Request.Context(), *cmd)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapTransactionResult(result))
}

// Delete reverses the transfer's splits and soft-deletes it
func (h *TransferHandler) Delete(c *gin.Context) {
	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transfer ID")
		return
	}

	result, err := h.engine.DeleteTransfer(c.Request.Context(), transferID)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapTransactionResult(result))
}

// GetByID retrieves a non-deleted transfer with its splits
func (h *TransferHandler) GetByID(c *gin.Context) {
	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transfer ID")
		return
	}

	result, err := h.engine.GetTransfer(c.Request.Context(), transferID)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapTransactionResult(result))
}

// buildCommand parses a transfer request. Transfer splits keep their caller
// signs: a zero-sum set necessarily mixes positive and negative amounts.
func (h *TransferHandler) buildCommand(transferID *uuid.UUID, req *TransferRequest) (*ledger.TransferCommand, error) {
	budgetID, err := uuid.Parse(req.BudgetID)
	if err != nil {
		return nil, ledger.ValidationError{Field: "budget_id", Reason: "invalid uuid"}
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}

	splits, err := parseSplits(req.Splits, 0)
	if err != nil {
		return nil, err
	}

	return &ledger.TransferCommand{
		TransferID: transferID,
		BudgetID:   budgetID,
		Date:       date,
		Type:       shared.TransactionType(req.Type),
		Splits:     splits,
	}, nil
}
