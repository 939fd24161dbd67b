package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/envelope-ledger/internal/domain/shared"
)

// WorkerPoolSyncService implements the SyncService interface on top of a
// bounded worker pool so budget syncs for different budgets run concurrently
type WorkerPoolSyncService struct {
	baseService SyncService
	pool        *ants.Pool
	logger      *slog.Logger
	// Protects access to the results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolSyncService(
	baseService SyncService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolSyncService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolSyncService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// ProcessSyncRequest submits a sync request to the worker pool and waits for
// its result, so the caller can decide whether to commit the message
func (s *WorkerPoolSyncService) ProcessSyncRequest(ctx context.Context, request *shared.SyncRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Submitting sync request to worker pool",
		"budget_id", request.BudgetID.String(),
	)

	resultChan := make(chan error, 1)

	budgetID := request.BudgetID.String()
	s.mu.Lock()
	s.results[budgetID] = resultChan
	s.mu.Unlock()

	// Copy the request to avoid data races
	requestCopy := *request

	err := s.pool.Submit(func() {
		err := s.baseService.ProcessSyncRequest(ctx, &requestCopy)

		resultChan <- err

		s.mu.Lock()
		delete(s.results, budgetID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		s.mu.Lock()
		delete(s.results, budgetID)
		close(resultChan)
		s.mu.Unlock()

		logger.Error("Failed to submit sync request to worker pool",
			"budget_id", request.BudgetID.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool
func (s *WorkerPoolSyncService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool
func (s *WorkerPoolSyncService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool
func (s *WorkerPoolSyncService) Capacity() int {
	return s.pool.Cap()
}
