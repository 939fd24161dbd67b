package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/envelope-ledger/internal/api/handler"
	"github.com/envelope-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	budgetHandler *handler.BudgetHandler,
	categoryHandler *handler.CategoryHandler,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
	transferHandler *handler.TransferHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Budget lifecycle and balance sync
		budgets := v1.Group("/budgets")
		{
			budgets.POST("", budgetHandler.Create)
			budgets.GET("/:id/groups", budgetHandler.ListGroups)
			budgets.POST("/:id/groups", budgetHandler.CreateGroup)
			budgets.POST("/:id/accounts", accountHandler.Create)
			budgets.POST("/:id/sync", budgetHandler.TriggerSync)
			budgets.GET("/:id/drift", budgetHandler.ListDriftCorrections)
		}

		// Group and category lifecycle
		groups := v1.Group("/groups")
		{
			groups.PATCH("/:id", categoryHandler.UpdateGroup)
			groups.DELETE("/:id", categoryHandler.DeleteGroup)
			groups.POST("/:id/categories", categoryHandler.CreateCategory)
		}
		categories := v1.Group("/categories")
		{
			categories.PATCH("/:id", categoryHandler.UpdateCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		// Accounts
		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:id", accountHandler.GetByID)
		}

		// Account transactions and their splits
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("/:id", transactionHandler.GetByID)
			transactions.PATCH("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}

		// Zero-sum category transfers
		transfers := v1.Group("/transfers")
		{
			transfers.POST("", transferHandler.Create)
			transfers.GET("/:id", transferHandler.GetByID)
			transfers.PATCH("/:id", transferHandler.Update)
			transfers.DELETE("/:id", transferHandler.Delete)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
