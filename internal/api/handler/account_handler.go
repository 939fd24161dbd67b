package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/ledger"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	engine *ledger.Engine
	logger *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, engine *ledger.Engine) *AccountHandler {
	return &AccountHandler{
		engine: engine,
		logger: logger,
	}
}

// Create opens an account in a budget, optionally recording a starting
// balance transaction
func (h *AccountHandler) Create(c *gin.Context) {
	budgetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid budget ID")
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	startingBalance := decimal.Zero
	if req.StartingBalance != "" {
		startingBalance, err = parseDecimal("starting_balance", req.StartingBalance)
		if err != nil {
			RespondDomainError(c, h.logger, err)
			return
		}
	}

	acct, err := h.engine.CreateAccount(c.Request.Context(), ledger.CreateAccountCommand{
		BudgetID:        budgetID,
		Name:            req.Name,
		Type:            req.Type,
		Tracking:        shared.TrackingMode(req.Tracking),
		StartingBalance: startingBalance,
	})
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, acct)
}

// GetByID retrieves an account by its ID
func (h *AccountHandler) GetByID(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acct, err := h.engine.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, acct)
}
