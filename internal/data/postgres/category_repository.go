package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/envelope-ledger/internal/domain/category"
	"github.com/envelope-ledger/internal/domain/shared"
	"github.com/envelope-ledger/internal/platform/persistence"
)

// Postgres error code raised when lock_timeout expires while waiting for a
// row lock.
const lockNotAvailable = "55P03"

// CategoryRepository implements the category.Repository interface for PostgreSQL
type CategoryRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

const categoryColumns = `id, group_id, name, type, balance, hidden, use_goal, funding_amount, goal_date, recurrence, created_at, updated_at`

// Create stores a new category
func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (id, group_id, name, type, balance, hidden, use_goal, funding_amount, goal_date, recurrence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID, c.GroupID, c.Name, c.Type, c.Balance, c.Hidden,
		c.UseGoal, c.FundingAmount, c.GoalDate, c.Recurrence, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create category", "error", err)
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetByID retrieves a category by its ID
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1
	`

	return r.scanCategory(r.querier.QueryRow(ctx, query, id), id)
}

// GetSystemCategory retrieves one of the budget's system categories by type.
// System categories live in the budget's SYSTEM group.
func (r *CategoryRepository) GetSystemCategory(ctx context.Context, budgetID uuid.UUID, categoryType shared.CategoryType) (*category.Category, error) {
	query := `
		SELECT c.id, c.group_id, c.name, c.type, c.balance, c.hidden, c.use_goal, c.funding_amount, c.goal_date, c.recurrence, c.created_at, c.updated_at
		FROM categories c
		JOIN groups g ON g.id = c.group_id
		WHERE g.budget_id = $1 AND c.type = $2
	`

	return r.scanCategory(r.querier.QueryRow(ctx, query, budgetID, categoryType), uuid.Nil)
}

// ListByBudget retrieves all categories of a budget ordered by name
func (r *CategoryRepository) ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]*category.Category, error) {
	query := `
		SELECT c.id, c.group_id, c.name, c.type, c.balance, c.hidden, c.use_goal, c.funding_amount, c.goal_date, c.recurrence, c.created_at, c.updated_at
		FROM categories c
		JOIN groups g ON g.id = c.group_id
		WHERE g.budget_id = $1
		ORDER BY c.name ASC
	`

	rows, err := r.querier.Query(ctx, query, budgetID)
	if err != nil {
		r.logger.Error("Failed to list categories", "budget_id", budgetID.String(), "error", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	return r.collectCategories(rows)
}

// ListByGroup retrieves all categories of a group ordered by name
func (r *CategoryRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*category.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE group_id = $1
		ORDER BY name ASC
	`

	rows, err := r.querier.Query(ctx, query, groupID)
	if err != nil {
		r.logger.Error("Failed to list categories", "group_id", groupID.String(), "error", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	return r.collectCategories(rows)
}

// Update updates a category's mutable attributes. The cached balance is only
// touched through AddToBalance and SetBalance.
func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories
		SET group_id = $1, name = $2, hidden = $3, use_goal = $4, funding_amount = $5, goal_date = $6, recurrence = $7, updated_at = NOW()
		WHERE id = $8
	`

	result, err := r.querier.Exec(ctx, query,
		c.GroupID, c.Name, c.Hidden, c.UseGoal, c.FundingAmount, c.GoalDate, c.Recurrence, c.ID)
	if err != nil {
		r.logger.Error("Failed to update category", "id", c.ID.String(), "error", err)
		return fmt.Errorf("failed to update category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return category.ErrCategoryNotFound{CategoryID: c.ID}
	}

	return nil
}

// Delete removes a category row
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete category", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return category.ErrCategoryNotFound{CategoryID: id}
	}

	return nil
}

// LockForUpdate acquires an exclusive row lock on the category. Relies on the
// transaction's lock_timeout; an expired wait surfaces as ErrLockTimeout.
func (r *CategoryRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1
		FOR UPDATE
	`

	var c category.Category
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.GroupID, &c.Name, &c.Type, &c.Balance, &c.Hidden,
		&c.UseGoal, &c.FundingAmount, &c.GoalDate, &c.Recurrence, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrCategoryNotFound{CategoryID: id}
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == lockNotAvailable {
			r.logger.Warn("Lock wait timed out", "category_id", id.String())
			return nil, category.ErrLockTimeout{CategoryID: id}
		}
		r.logger.Error("Failed to lock category", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock category: %w", err)
	}

	return &c, nil
}

// AddToBalance applies a signed delta to the cached balance and returns the
// new balance
func (r *CategoryRepository) AddToBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE categories
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.querier.QueryRow(ctx, query, delta, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, category.ErrCategoryNotFound{CategoryID: id}
		}
		r.logger.Error("Failed to adjust category balance", "id", id.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to adjust category balance: %w", err)
	}

	return balance, nil
}

// SetBalance overwrites the cached balance
func (r *CategoryRepository) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	query := `
		UPDATE categories
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, balance, id)
	if err != nil {
		r.logger.Error("Failed to set category balance", "id", id.String(), "error", err)
		return fmt.Errorf("failed to set category balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return category.ErrCategoryNotFound{CategoryID: id}
	}

	return nil
}

func (r *CategoryRepository) scanCategory(row pgx.Row, id uuid.UUID) (*category.Category, error) {
	var c category.Category
	err := row.Scan(
		&c.ID, &c.GroupID, &c.Name, &c.Type, &c.Balance, &c.Hidden,
		&c.UseGoal, &c.FundingAmount, &c.GoalDate, &c.Recurrence, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrCategoryNotFound{CategoryID: id}
		}
		r.logger.Error("Failed to get category", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepository) collectCategories(rows pgx.Rows) ([]*category.Category, error) {
	var categories []*category.Category
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(
			&c.ID, &c.GroupID, &c.Name, &c.Type, &c.Balance, &c.Hidden,
			&c.UseGoal, &c.FundingAmount, &c.GoalDate, &c.Recurrence, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}
