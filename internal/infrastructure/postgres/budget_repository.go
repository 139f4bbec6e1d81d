package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/domain/budget"
)

type BudgetRepository struct {
	db *DB
}

func NewBudgetRepository(db *DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// budgetSelect derives spent from the ledger. A budget without a category
// counts every expense.
const budgetSelect = `
	SELECT b.id, b.user_id, b.name, b.amount, b.category, b.period, b.start_date, b.end_date,
	       COALESCE((
	           SELECT SUM(t.amount) FROM transactions t
	           WHERE t.user_id = b.user_id
	             AND t.type = 'expense'
	             AND (b.category = '' OR LOWER(t.category) = LOWER(b.category))
	             AND t.date >= b.start_date AND t.date <= b.end_date
	       ), 0) AS spent,
	       b.created_at, b.updated_at
	FROM budgets b`

func scanBudget(row interface{ Scan(...any) error }) (*budget.Budget, error) {
	var b budget.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.Category, &b.Period,
		&b.StartDate, &b.EndDate, &b.Spent, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepository) list(ctx context.Context, query string, args ...any) ([]*budget.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]*budget.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *BudgetRepository) Create(ctx context.Context, params budget.CreateParams) (*budget.Budget, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO budgets (user_id, name, amount, category, period, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		params.UserID, params.Name, params.Amount, params.Category, params.Period, params.StartDate, params.EndDate,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *BudgetRepository) GetByID(ctx context.Context, id int64) (*budget.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, budgetSelect+` WHERE b.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, budget.ErrBudgetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) ListByUserID(ctx context.Context, userID int64) ([]*budget.Budget, error) {
	return r.list(ctx, budgetSelect+` WHERE b.user_id = $1 ORDER BY b.start_date DESC, b.name`, userID)
}

func (r *BudgetRepository) ListActive(ctx context.Context, userID int64, at time.Time) ([]*budget.Budget, error) {
	return r.list(ctx,
		budgetSelect+` WHERE b.user_id = $1 AND b.start_date <= $2 AND b.end_date >= $2 ORDER BY b.name`,
		userID, at,
	)
}

func (r *BudgetRepository) Update(ctx context.Context, b *budget.Budget) (*budget.Budget, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets
		SET name = $1, amount = $2, category = $3, period = $4, start_date = $5, end_date = $6, updated_at = NOW()
		WHERE id = $7`,
		b.Name, b.Amount, b.Category, b.Period, b.StartDate, b.EndDate, b.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	if err := requireRow(res, budget.ErrBudgetNotFound); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, b.ID)
}

func (r *BudgetRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return requireRow(res, budget.ErrBudgetNotFound)
}

func (r *BudgetRepository) UserIDsWithActiveBudgets(ctx context.Context, at time.Time) ([]int64, error) {
	return queryIDs(ctx, r.db,
		`SELECT DISTINCT user_id FROM budgets WHERE start_date <= $1 AND end_date >= $1 ORDER BY user_id`, at)
}

// queryIDs runs a single-column BIGINT query.
func queryIDs(ctx context.Context, q querier, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
