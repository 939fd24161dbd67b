package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/ledger"
)

// TransactionHandler handles HTTP requests for account transactions
type TransactionHandler struct {
	engine *ledger.Engine
	logger *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, engine *ledger.Engine) *TransactionHandler {
	return &TransactionHandler{
		engine: engine,
		logger: logger,
	}
}

// Create records an account transaction with its splits. A transaction
// without splits on an account that tracks transactions is auto-assigned to
// the budget's UNASSIGNED category.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	budgetID, err := uuid.Parse(req.BudgetID)
	if err != nil {
		RespondBadRequest(c, "Invalid budget ID")
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}
	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}
	principal := decimal.Zero
	if req.Principal != "" {
		principal, err = parseDecimal("principal", req.Principal)
		if err != nil {
			RespondDomainError(c, h.logger, err)
			return
		}
	}

	splits, err := parseSplits(req.Splits, amount.Sign())
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	result, err := h.engine.CreateTransaction(c.Request.Context(), ledger.CreateTransactionCommand{
		BudgetID:  budgetID,
		AccountID: accountID,
		Date:      date,
		Name:      req.Name,
		Amount:    amount,
		Principal: principal,
		Splits:    splits,
	})
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapTransactionResult(result))
}

// Update edits a transaction's fields. A request without a splits field
// keeps the stored splits; a request carrying one replaces them with the
// given set, removing any omitted existing splits.
func (h *TransactionHandler) Update(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cmd := ledger.UpdateTransactionCommand{
		TransactionID: transactionID,
		Comment:       req.Comment,
		Name:          req.Name,
	}

	if req.Date != nil {
		date, err := parseDate("date", *req.Date)
		if err != nil {
			RespondDomainError(c, h.logger, err)
			return
		}
		cmd.Date = &date
	}

	sign := 0
	if req.Amount != nil {
		amount, err := parseDecimal("amount", *req.Amount)
		if err != nil {
			RespondDomainError(c, h.logger, err)
			return
		}
		cmd.Amount = &amount
		sign = amount.Sign()
	}
	if req.Principal != nil {
		principal, err := parseDecimal("principal", *req.Principal)
		if err != nil {
			RespondDomainError(c, h.logger, err)
			return
		}
		cmd.Principal = &principal
	}

	if req.Splits != nil {
		cmd.Splits, err = parseSplits(req.Splits, sign)
		if err != nil {
			RespondDomainError(c, h.logger, err)
			return
		}
	}

	result, err := h.engine.UpdateTransaction(c.Request.Context(), cmd)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapTransactionResult(result))
}

// Delete reverses the transaction's splits, restores the account balance and
// soft-deletes the transaction
func (h *TransactionHandler) Delete(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	result, err := h.engine.DeleteTransaction(c.Request.Context(), transactionID)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapTransactionResult(result))
}

// GetByID retrieves a non-deleted transaction with its splits
func (h *TransactionHandler) GetByID(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	result, err := h.engine.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapTransactionResult(result))
}
