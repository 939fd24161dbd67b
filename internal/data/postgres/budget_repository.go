package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/envelope-ledger/internal/domain/budget"
	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/platform/persistence"
)

// BudgetRepository implements the budget.Repository interface for PostgreSQL
type BudgetRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// Create stores a new budget
func (r *BudgetRepository) Create(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query, b.ID, b.OwnerID, b.Name, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create budget", "error", err)
		return fmt.Errorf("failed to create budget: %w", err)
	}

	return nil
}

// GetByID retrieves a budget by its ID
func (r *BudgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM budgets
		WHERE id = $1
	`

	var b budget.Budget
	err := r.querier.QueryRow(ctx, query, id).Scan(&b.ID, &b.OwnerID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, budget.ErrBudgetNotFound{BudgetID: id}
		}
		r.logger.Error("Failed to get budget", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	return &b, nil
}

// CreateGroup stores a new group
func (r *BudgetRepository) CreateGroup(ctx context.Context, g *budget.Group) error {
	query := `
		INSERT INTO groups (id, budget_id, name, type, hidden, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query, g.ID, g.BudgetID, g.Name, g.Type, g.Hidden, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create group", "error", err)
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

// GetGroupByID retrieves a group by its ID
func (r *BudgetRepository) GetGroupByID(ctx context.Context, id uuid.UUID) (*budget.Group, error) {
	query := `
		SELECT id, budget_id, name, type, hidden, created_at, updated_at
		FROM groups
		WHERE id = $1
	`

	return r.scanGroup(r.querier.QueryRow(ctx, query, id), id)
}

// GetGroupByType retrieves the budget's group of the given type. SYSTEM and
// NO GROUP exist exactly once per budget.
func (r *BudgetRepository) GetGroupByType(ctx context.Context, budgetID uuid.UUID, groupType shared.GroupType) (*budget.Group, error) {
	query := `
		SELECT id, budget_id, name, type, hidden, created_at, updated_at
		FROM groups
		WHERE budget_id = $1 AND type = $2
	`

	return r.scanGroup(r.querier.QueryRow(ctx, query, budgetID, groupType), uuid.Nil)
}

// ListGroups retrieves all groups of a budget ordered by name
func (r *BudgetRepository) ListGroups(ctx context.Context, budgetID uuid.UUID) ([]*budget.Group, error) {
	query := `
		SELECT id, budget_id, name, type, hidden, created_at, updated_at
		FROM groups
		WHERE budget_id = $1
		ORDER BY name ASC
	`

	rows, err := r.querier.Query(ctx, query, budgetID)
	if err != nil {
		r.logger.Error("Failed to list groups", "budget_id", budgetID.String(), "error", err)
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*budget.Group
	for rows.Next() {
		var g budget.Group
		if err := rows.Scan(&g.ID, &g.BudgetID, &g.Name, &g.Type, &g.Hidden, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, nil
}

// UpdateGroup updates a group's name and hidden flag
func (r *BudgetRepository) UpdateGroup(ctx context.Context, g *budget.Group) error {
	query := `
		UPDATE groups
		SET name = $1, hidden = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, g.Name, g.Hidden, g.ID)
	if err != nil {
		r.logger.Error("Failed to update group", "id", g.ID.String(), "error", err)
		return fmt.Errorf("failed to update group: %w", err)
	}

	if result.RowsAffected() == 0 {
		return budget.ErrGroupNotFound{GroupID: g.ID}
	}

	return nil
}

// DeleteGroup removes a group row
func (r *BudgetRepository) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM groups WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete group", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete group: %w", err)
	}

	if result.RowsAffected() == 0 {
		return budget.ErrGroupNotFound{GroupID: id}
	}

	return nil
}

func (r *BudgetRepository) scanGroup(row pgx.Row, id uuid.UUID) (*budget.Group, error) {
	var g budget.Group
	err := row.Scan(&g.ID, &g.BudgetID, &g.Name, &g.Type, &g.Hidden, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, budget.ErrGroupNotFound{GroupID: id}
		}
		r.logger.Error("Failed to get group", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return &g, nil
}
