package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/domain/recurring"
	"fintrack/internal/domain/transaction"
)

type RecurringRepository struct {
	db *DB
}

func NewRecurringRepository(db *DB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

const recurringColumns = `id, user_id, amount, description, category, type, account_id, tags, frequency, interval,
	day_of_week, day_of_month, month_of_year, start_date, end_date, next_run_date, last_run_date,
	is_active, total_runs, max_runs, created_at, updated_at`

func scanRecurring(row interface{ Scan(...any) error }) (*recurring.Recurring, error) {
	var rt recurring.Recurring
	var tags string
	var endDate, lastRun sql.NullTime

	err := row.Scan(&rt.ID, &rt.UserID, &rt.Amount, &rt.Description, &rt.Category, &rt.Type, &rt.AccountID,
		&tags, &rt.Frequency, &rt.Interval, &rt.DayOfWeek, &rt.DayOfMonth, &rt.MonthOfYear, &rt.StartDate,
		&endDate, &rt.NextRunDate, &lastRun, &rt.IsActive, &rt.TotalRuns, &rt.MaxRuns, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rt.Tags = transaction.SplitTags(tags)
	rt.EndDate = timePtr(endDate)
	rt.LastRunDate = timePtr(lastRun)
	return &rt, nil
}

func (r *RecurringRepository) list(ctx context.Context, query string, args ...any) ([]*recurring.Recurring, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring transactions: %w", err)
	}
	defer rows.Close()

	out := make([]*recurring.Recurring, 0)
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring transaction: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *RecurringRepository) Create(ctx context.Context, rt *recurring.Recurring) (*recurring.Recurring, error) {
	query := `
		INSERT INTO recurring_transactions (user_id, amount, description, category, type, account_id, tags,
		    frequency, interval, day_of_week, day_of_month, month_of_year, start_date, end_date, next_run_date,
		    last_run_date, is_active, total_runs, max_runs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING ` + recurringColumns

	created, err := scanRecurring(r.db.QueryRowContext(ctx, query,
		rt.UserID, rt.Amount, rt.Description, rt.Category, rt.Type, rt.AccountID, transaction.JoinTags(rt.Tags),
		rt.Frequency, rt.Interval, rt.DayOfWeek, rt.DayOfMonth, rt.MonthOfYear, rt.StartDate, nullTime(rt.EndDate),
		rt.NextRunDate, nullTime(rt.LastRunDate), rt.IsActive, rt.TotalRuns, rt.MaxRuns,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring transaction: %w", err)
	}
	return created, nil
}

func (r *RecurringRepository) GetByID(ctx context.Context, id int64) (*recurring.Recurring, error) {
	rt, err := scanRecurring(r.db.QueryRowContext(ctx, `SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recurring.ErrRecurringNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring transaction: %w", err)
	}
	return rt, nil
}

func (r *RecurringRepository) ListByUserID(ctx context.Context, userID int64) ([]*recurring.Recurring, error) {
	return r.list(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE user_id = $1 ORDER BY is_active DESC, next_run_date`,
		userID,
	)
}

func updateRecurring(ctx context.Context, q querier, rt *recurring.Recurring) (*recurring.Recurring, error) {
	query := `
		UPDATE recurring_transactions
		SET amount = $1, description = $2, category = $3, type = $4, account_id = $5, tags = $6,
		    frequency = $7, interval = $8, day_of_week = $9, day_of_month = $10, month_of_year = $11,
		    start_date = $12, end_date = $13, next_run_date = $14, last_run_date = $15, is_active = $16,
		    total_runs = $17, max_runs = $18, updated_at = NOW()
		WHERE id = $19
		RETURNING ` + recurringColumns

	updated, err := scanRecurring(q.QueryRowContext(ctx, query,
		rt.Amount, rt.Description, rt.Category, rt.Type, rt.AccountID, transaction.JoinTags(rt.Tags),
		rt.Frequency, rt.Interval, rt.DayOfWeek, rt.DayOfMonth, rt.MonthOfYear,
		rt.StartDate, nullTime(rt.EndDate), rt.NextRunDate, nullTime(rt.LastRunDate), rt.IsActive,
		rt.TotalRuns, rt.MaxRuns, rt.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recurring.ErrRecurringNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update recurring transaction: %w", err)
	}
	return updated, nil
}

func (r *RecurringRepository) Modify(ctx context.Context, id int64, fn func(rt *recurring.Recurring) error) (*recurring.Recurring, error) {
	var updated *recurring.Recurring
	err := r.db.WithTx(ctx, func(tx *Tx) error {
		rt, err := scanRecurring(tx.QueryRowContext(ctx,
			`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return recurring.ErrRecurringNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock recurring transaction: %w", err)
		}

		if err := fn(rt); err != nil {
			return err
		}

		updated, err = updateRecurring(ctx, tx, rt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RecurringRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recurring transaction: %w", err)
	}
	return requireRow(res, recurring.ErrRecurringNotFound)
}

func (r *RecurringRepository) ListDue(ctx context.Context, userID int64, now time.Time) ([]*recurring.Recurring, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions
		WHERE is_active AND next_run_date <= $1 AND ($2 = 0 OR user_id = $2)
		ORDER BY next_run_date, id`
	return r.list(ctx, query, now, userID)
}

func (r *RecurringRepository) UserIDsWithDue(ctx context.Context, now time.Time) ([]int64, error) {
	return queryIDs(ctx, r.db,
		`SELECT DISTINCT user_id FROM recurring_transactions WHERE is_active AND next_run_date <= $1 ORDER BY user_id`,
		now,
	)
}

// RecordRun guards against a concurrent run of the same template: the stored
// total_runs must be exactly one behind the advanced template.
func (r *RecurringRepository) RecordRun(ctx context.Context, rt *recurring.Recurring, params transaction.CreateParams) (*transaction.Transaction, error) {
	var created *transaction.Transaction
	err := r.db.WithTx(ctx, func(tx *Tx) error {
		var runs int
		err := tx.QueryRowContext(ctx,
			`SELECT total_runs FROM recurring_transactions WHERE id = $1 FOR UPDATE`, rt.ID,
		).Scan(&runs)
		if errors.Is(err, sql.ErrNoRows) {
			return recurring.ErrRecurringNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock recurring transaction: %w", err)
		}
		if runs != rt.TotalRuns-1 {
			return fmt.Errorf("recurring transaction %d was run concurrently", rt.ID)
		}

		if created, err = insertTransactionTx(ctx, tx, plainLeg(params), nil); err != nil {
			return err
		}
		_, err = updateRecurring(ctx, tx, rt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
