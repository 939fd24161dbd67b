package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/envelope-ledger/internal/api/middleware"
	"github.com/envelope-ledger/internal/domain/account"
	"github.com/envelope-ledger/internal/domain/budget"
	"github.com/envelope-ledger/internal/domain/category"
	"github.com/envelope-ledger/internal/domain/transaction"
	"github.com/envelope-ledger/internal/ledger"
)

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// ErrorInfo represents error information in a response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, &Response{
		Error:         &ErrorInfo{Code: code, Message: message},
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondAccepted sends a 202 Accepted response with data
func RespondAccepted(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusAccepted, data)
}

// RespondNoContent sends a 204 No Content response
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// RespondNotFound sends a 404 Not Found response with an error
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

// RespondConflict sends a 409 Conflict response with an error
func RespondConflict(c *gin.Context, message string) {
	RespondWithError(c, http.StatusConflict, "CONFLICT", message)
}

// RespondUnprocessable sends a 422 Unprocessable Entity response with an error
func RespondUnprocessable(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnprocessableEntity, "VALIDATION_FAILED", message)
}

// RespondInternalError sends a 500 Internal Server Error response with an error
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}

// RespondDomainError maps engine and domain errors onto HTTP status codes:
// validation failures are 422, missing resources 404, lock timeouts and
// protected-resource conflicts 409, everything else 500.
func RespondDomainError(c *gin.Context, logger *slog.Logger, err error) {
	var validationErr ledger.ValidationError
	if errors.As(err, &validationErr) {
		RespondUnprocessable(c, validationErr.Error())
		return
	}

	var lockErr category.ErrLockTimeout
	if errors.As(err, &lockErr) {
		RespondConflict(c, lockErr.Error())
		return
	}

	var protectedErr budget.ErrGroupProtected
	if errors.As(err, &protectedErr) {
		RespondConflict(c, protectedErr.Error())
		return
	}

	var integrityErr ledger.ErrLoanIntegrity
	if errors.As(err, &integrityErr) {
		logger.Error("Loan integrity violation", "error", err)
		RespondInternalError(c)
		return
	}

	var (
		budgetNotFound      budget.ErrBudgetNotFound
		groupNotFound       budget.ErrGroupNotFound
		categoryNotFound    category.ErrCategoryNotFound
		accountNotFound     account.ErrAccountNotFound
		transactionNotFound transaction.ErrTransactionNotFound
		splitNotFound       transaction.ErrSplitNotFound
	)
	switch {
	case errors.As(err, &budgetNotFound),
		errors.As(err, &groupNotFound),
		errors.As(err, &categoryNotFound),
		errors.As(err, &accountNotFound),
		errors.As(err, &transactionNotFound),
		errors.As(err, &splitNotFound):
		RespondNotFound(c, err.Error())
		return
	}

	logger.Error("Unhandled error in request", "error", err)
	RespondInternalError(c)
}
