package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/transaction"
)

// TransactionRepository is the ledger. Every row change and its balance
// effect are written in one database transaction.
type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionSelect = `
	SELECT t.id, t.user_id, t.account_id, a.name, t.amount, t.direction, t.description, t.category,
	       t.type, t.date, t.tags, t.transfer_group, t.recurring_id, t.created_at, t.updated_at
	FROM transactions t
	JOIN accounts a ON a.id = t.account_id`

func scanTransaction(row interface{ Scan(...any) error }) (*transaction.Transaction, error) {
	var t transaction.Transaction
	var tags string
	var group sql.NullString
	var recurringID sql.NullInt64

	err := row.Scan(
		&t.ID, &t.UserID, &t.AccountID, &t.AccountName, &t.Amount, &t.Direction, &t.Description, &t.Category,
		&t.Type, &t.Date, &tags, &group, &recurringID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Tags = transaction.SplitTags(tags)
	if group.Valid {
		g := group.String
		t.TransferGroup = &g
	}
	t.RecurringID = int64Ptr(recurringID)
	return &t, nil
}

func scanTransactions(rows *sql.Rows) ([]*transaction.Transaction, error) {
	defer rows.Close()

	out := make([]*transaction.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func getTransaction(ctx context.Context, q querier, id int64, lock bool) (*transaction.Transaction, error) {
	query := transactionSelect + ` WHERE t.id = $1`
	if lock {
		query += ` FOR UPDATE OF t`
	}

	t, err := scanTransaction(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// applyBalances writes the balance changes in account id order.
func applyBalances(ctx context.Context, q querier, changes []transaction.BalanceChange) error {
	for _, c := range changes {
		res, err := q.ExecContext(ctx,
			`UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2`,
			c.Delta, c.AccountID,
		)
		if err != nil {
			return fmt.Errorf("failed to update account balance: %w", err)
		}
		if err := requireRow(res, account.ErrAccountNotFound); err != nil {
			return err
		}
	}
	return nil
}

// insertTransactionTx writes one row and applies its balance effect. It is
// shared by the ledger and by recurring runs.
func insertTransactionTx(ctx context.Context, tx *Tx, leg transaction.Leg, transferGroup *string) (*transaction.Transaction, error) {
	p := leg.Params

	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, account_id, amount, direction, description, category, type, date, tags, transfer_group, recurring_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		p.UserID, p.AccountID, p.Amount, leg.Direction, p.Description, p.Category, leg.Type, p.Date,
		transaction.JoinTags(p.Tags), transferGroup, nullInt64(p.RecurringID),
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, account.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := applyBalances(ctx, tx, transaction.CreateEffects(leg)); err != nil {
		return nil, err
	}

	return getTransaction(ctx, tx, id, false)
}

func plainLeg(params transaction.CreateParams) transaction.Leg {
	return transaction.Leg{
		Params:    params,
		Type:      params.Type,
		Direction: transaction.DirectionFor(params.Type),
	}
}

func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	var created *transaction.Transaction
	err := r.db.WithTx(ctx, func(tx *Tx) error {
		t, err := insertTransactionTx(ctx, tx, plainLeg(params), nil)
		created = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*transaction.Transaction, error) {
	return getTransaction(ctx, r.db, id, false)
}

func (r *TransactionRepository) Update(ctx context.Context, id int64, params transaction.UpdateParams) (*transaction.Transaction, error) {
	var updated *transaction.Transaction
	err := r.db.WithTx(ctx, func(tx *Tx) error {
		old, err := getTransaction(ctx, tx, id, true)
		if err != nil {
			return err
		}

		next := params.Apply(*old)
		if err := applyBalances(ctx, tx, transaction.UpdateEffects(old, &next)); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE transactions
			SET account_id = $1, amount = $2, direction = $3, description = $4, category = $5,
			    type = $6, date = $7, tags = $8, updated_at = NOW()
			WHERE id = $9`,
			next.AccountID, next.Amount, next.Direction, next.Description, next.Category,
			next.Type, next.Date, transaction.JoinTags(next.Tags), id,
		)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		updated, err = getTransaction(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id int64) ([]*transaction.Transaction, error) {
	var deleted []*transaction.Transaction
	err := r.db.WithTx(ctx, func(tx *Tx) error {
		t, err := getTransaction(ctx, tx, id, true)
		if err != nil {
			return err
		}

		deleted = []*transaction.Transaction{t}
		if t.IsTransfer() {
			rows, err := tx.QueryContext(ctx,
				transactionSelect+` WHERE t.transfer_group = $1 ORDER BY t.id FOR UPDATE OF t`,
				*t.TransferGroup,
			)
			if err != nil {
				return fmt.Errorf("failed to load transfer legs: %w", err)
			}
			if deleted, err = scanTransactions(rows); err != nil {
				return err
			}
		}

		if err := applyBalances(ctx, tx, transaction.ReversalEffects(deleted)); err != nil {
			return err
		}

		ids := make([]int64, 0, len(deleted))
		for _, leg := range deleted {
			ids = append(ids, leg.ID)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Transfer locks both accounts in ascending id order so concurrent transfers
// between the same pair cannot deadlock.
func (r *TransactionRepository) Transfer(ctx context.Context, params transaction.TransferParams) (from, to *transaction.Transaction, err error) {
	err = r.db.WithTx(ctx, func(tx *Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id, balance FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
			pq.Array([]int64{params.FromAccountID, params.ToAccountID}),
		)
		if err != nil {
			return fmt.Errorf("failed to lock accounts: %w", err)
		}

		balances := make(map[int64]decimal.Decimal, 2)
		for rows.Next() {
			var id int64
			var balance decimal.Decimal
			if err := rows.Scan(&id, &balance); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan account: %w", err)
			}
			balances[id] = balance
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to lock accounts: %w", err)
		}

		source, ok := balances[params.FromAccountID]
		if !ok {
			return account.ErrAccountNotFound
		}
		if _, ok := balances[params.ToAccountID]; !ok {
			return account.ErrAccountNotFound
		}
		if err := transaction.CheckFunds(source, params.Amount); err != nil {
			return err
		}

		group := uuid.NewString()
		fromLeg, toLeg := transaction.TransferLegs(params)
		if from, err = insertTransactionTx(ctx, tx, fromLeg, &group); err != nil {
			return err
		}
		to, err = insertTransactionTx(ctx, tx, toLeg, &group)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func (r *TransactionRepository) List(ctx context.Context, userID int64, filter transaction.Filter) ([]*transaction.Transaction, int64, error) {
	q := buildTransactionFilter(userID, filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions t`+q.whereSQL(), q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := transactionSelect + q.whereSQL() + orderBy(filter) +
		` LIMIT ` + q.arg(filter.PageSize) + ` OFFSET ` + q.arg(filter.Offset())

	rows, err := r.db.QueryContext(ctx, query, q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	list, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *TransactionRepository) ListAll(ctx context.Context, userID int64, filter transaction.Filter) ([]*transaction.Transaction, error) {
	q := buildTransactionFilter(userID, filter)

	rows, err := r.db.QueryContext(ctx, transactionSelect+q.whereSQL()+orderBy(filter), q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return scanTransactions(rows)
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*transaction.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		transactionSelect+` WHERE t.user_id = $1 ORDER BY t.id LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return scanTransactions(rows)
}

// Summarize totals income and expenses in [from, to]. Transfers are excluded.
func (r *TransactionRepository) Summarize(ctx context.Context, userID int64, from, to time.Time) (*transaction.Summary, error) {
	s := &transaction.Summary{}

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0),
		       COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND type <> 'transfer' AND date >= $2 AND date <= $3`,
		userID, from, to,
	).Scan(&s.Income, &s.Expenses, &s.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize transactions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount), COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND type = 'expense' AND date >= $2 AND date <= $3
		GROUP BY category
		ORDER BY SUM(amount) DESC, category`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize categories: %w", err)
	}
	defer rows.Close()

	s.ByCategory = make([]transaction.CategoryTotal, 0)
	for rows.Next() {
		var c transaction.CategoryTotal
		if err := rows.Scan(&c.Category, &c.Amount, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		s.ByCategory = append(s.ByCategory, c)
	}
	return s, rows.Err()
}

// MonthlyTotals returns one row per month that has activity since from.
func (r *TransactionRepository) MonthlyTotals(ctx context.Context, userID int64, from time.Time) ([]transaction.MonthlyTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char(date_trunc('month', date), 'YYYY-MM') AS month,
		       COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE user_id = $1 AND type <> 'transfer' AND date >= $2
		GROUP BY month
		ORDER BY month`,
		userID, from,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly totals: %w", err)
	}
	defer rows.Close()

	var out []transaction.MonthlyTotal
	for rows.Next() {
		var m transaction.MonthlyTotal
		if err := rows.Scan(&m.Month, &m.Income, &m.Expenses); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		m.Net = m.Income.Sub(m.Expenses)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ExistsDuplicate matches on account, calendar day, amount, type and a
// case-insensitive description.
func (r *TransactionRepository) ExistsDuplicate(ctx context.Context, c transaction.DuplicateCriteria) (bool, error) {
	day := time.Date(c.Date.Year(), c.Date.Month(), c.Date.Day(), 0, 0, 0, 0, c.Date.Location())

	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND account_id = $2 AND amount = $3 AND type = $4
			  AND date >= $5 AND date < $6
			  AND LOWER(TRIM(description)) = $7
		)`,
		c.UserID, c.AccountID, c.Amount, c.Type, day, day.AddDate(0, 0, 1),
		strings.ToLower(strings.TrimSpace(c.Description)),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate transaction: %w", err)
	}
	return exists, nil
}
