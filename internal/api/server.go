// Package api exposes the ledger engines over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/envelope-ledger/internal/api/handler"
	"github.com/envelope-ledger/internal/config"
	"github.com/envelope-ledger/internal/ledger"
	"github.com/envelope-ledger/internal/platform/messaging/producers"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures a new HTTP server around the ledger engine
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	engine *ledger.Engine,
	syncProducer producers.MessagePublisher,
	driftReader handler.DriftReader,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	budgetHandler := handler.NewBudgetHandler(log, engine, syncProducer, driftReader)
	categoryHandler := handler.NewCategoryHandler(log, engine)
	accountHandler := handler.NewAccountHandler(log, engine)
	transactionHandler := handler.NewTransactionHandler(log, engine)
	transferHandler := handler.NewTransferHandler(log, engine)

	setupRouter(log, httpRouter, budgetHandler, categoryHandler, accountHandler, transactionHandler, transferHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
