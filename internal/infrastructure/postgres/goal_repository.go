package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/domain/goal"
)

type GoalRepository struct {
	db *DB
}

func NewGoalRepository(db *DB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, user_id, name, description, target_amount, current_amount, currency, category,
	icon, color, target_date, start_date, account_id, is_completed, completed_at, priority, created_at, updated_at`

func scanGoal(row interface{ Scan(...any) error }) (*goal.Goal, error) {
	var g goal.Goal
	var targetDate, completedAt sql.NullTime
	var accountID sql.NullInt64

	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.TargetAmount, &g.CurrentAmount, &g.Currency,
		&g.Category, &g.Icon, &g.Color, &targetDate, &g.StartDate, &accountID, &g.IsCompleted, &completedAt,
		&g.Priority, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}

	g.TargetDate = timePtr(targetDate)
	g.CompletedAt = timePtr(completedAt)
	g.AccountID = int64Ptr(accountID)
	return &g, nil
}

func (r *GoalRepository) Create(ctx context.Context, g *goal.Goal) (*goal.Goal, error) {
	query := `
		INSERT INTO goals (user_id, name, description, target_amount, current_amount, currency, category,
		                   icon, color, target_date, start_date, account_id, is_completed, completed_at, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + goalColumns

	created, err := scanGoal(r.db.QueryRowContext(ctx, query,
		g.UserID, g.Name, g.Description, g.TargetAmount, g.CurrentAmount, g.Currency, g.Category,
		g.Icon, g.Color, nullTime(g.TargetDate), g.StartDate, nullInt64(g.AccountID), g.IsCompleted,
		nullTime(g.CompletedAt), g.Priority,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return created, nil
}

func (r *GoalRepository) GetByID(ctx context.Context, id int64) (*goal.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goal.ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

func (r *GoalRepository) ListByUserID(ctx context.Context, userID int64) ([]*goal.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1
		ORDER BY is_completed, priority DESC, target_date NULLS LAST, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]*goal.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *GoalRepository) Modify(ctx context.Context, id int64, fn func(g *goal.Goal) error) (*goal.Goal, error) {
	var updated *goal.Goal
	err := r.db.WithTx(ctx, func(tx *Tx) error {
		g, err := scanGoal(tx.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return goal.ErrGoalNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock goal: %w", err)
		}

		if err := fn(g); err != nil {
			return err
		}

		updated, err = updateGoal(ctx, tx, g)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func updateGoal(ctx context.Context, q querier, g *goal.Goal) (*goal.Goal, error) {
	query := `
		UPDATE goals
		SET name = $1, description = $2, target_amount = $3, current_amount = $4, currency = $5, category = $6,
		    icon = $7, color = $8, target_date = $9, start_date = $10, account_id = $11, is_completed = $12,
		    completed_at = $13, priority = $14, updated_at = NOW()
		WHERE id = $15
		RETURNING ` + goalColumns

	updated, err := scanGoal(q.QueryRowContext(ctx, query,
		g.Name, g.Description, g.TargetAmount, g.CurrentAmount, g.Currency, g.Category,
		g.Icon, g.Color, nullTime(g.TargetDate), g.StartDate, nullInt64(g.AccountID), g.IsCompleted,
		nullTime(g.CompletedAt), g.Priority, g.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goal.ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	return updated, nil
}

func (r *GoalRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return requireRow(res, goal.ErrGoalNotFound)
}
