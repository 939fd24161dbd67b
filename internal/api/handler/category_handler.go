package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/ledger"
)

// CategoryHandler handles HTTP requests for group and category lifecycle
type CategoryHandler struct {
	engine *ledger.Engine
	logger *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(logger *slog.Logger, engine *ledger.Engine) *CategoryHandler {
	return &CategoryHandler{
		engine: engine,
		logger: logger,
	}
}

// UpdateGroup renames or hides a group
func (h *CategoryHandler) UpdateGroup(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	grp, err := h.engine.UpdateGroup(c.Request.Context(), groupID, req.Name, req.Hidden)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, grp)
}

// DeleteGroup removes a group; SYSTEM and NO GROUP groups are rejected
func (h *CategoryHandler) DeleteGroup(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	if err := h.engine.DeleteGroup(c.Request.Context(), groupID); err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

// CreateCategory creates a REGULAR or LOAN category in a group. A LOAN
// category is co-created with its loan sub-ledger.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	categoryType := shared.CategoryTypeRegular
	if req.Type != "" {
		categoryType = shared.CategoryType(req.Type)
	}

	cat, err := h.engine.CreateCategory(c.Request.Context(), groupID, req.Name, categoryType)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, cat)
}

// UpdateCategory edits category metadata. Balances are not writable here;
// they move only through transactions and transfers.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid category ID")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cmd := ledger.UpdateCategoryCommand{
		CategoryID: categoryID,
		Name:       req.Name,
		Hidden:     req.Hidden,
		UseGoal:    req.UseGoal,
		Recurrence: req.Recurrence,
	}

	if req.GroupID != nil {
		groupID, err := uuid.Parse(*req.GroupID)
		if err != nil {
			RespondBadRequest(c, "Invalid group ID")
			return
		}
		cmd.GroupID = &groupID
	}
	if req.FundingAmount != nil {
		amount, err := parseDecimal("funding_amount", *req.FundingAmount)
		if err != nil {
			RespondDomainError(c, h.logger, err)
			return
		}
		cmd.FundingAmount = &amount
	}
	if req.GoalDate != nil {
		goalDate, err := parseDate("goal_date", *req.GoalDate)
		if err != nil {
			RespondDomainError(c, h.logger, err)
			return
		}
		cmd.GoalDate = &goalDate
	}

	cat, err := h.engine.UpdateCategory(c.Request.Context(), cmd)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, cat)
}

// DeleteCategory removes a category; system categories are rejected and a
// LOAN category cascades to its loan sub-ledger
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid category ID")
		return
	}

	if err := h.engine.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}
