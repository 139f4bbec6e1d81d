package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/domain/account"
)

type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, user_id, name, type, balance, currency, is_default, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*account.Account, error) {
	var a account.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.Currency, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// clearDefault removes the default flag from the user's other accounts.
func clearDefault(ctx context.Context, q querier, userID, keepID int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE accounts SET is_default = false, updated_at = NOW() WHERE user_id = $1 AND id != $2 AND is_default`,
		userID, keepID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear default account: %w", err)
	}
	return nil
}

func (r *AccountRepository) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	var created *account.Account
	err := r.db.WithTx(ctx, func(tx *Tx) error {
		if params.IsDefault {
			if err := clearDefault(ctx, tx, params.UserID, 0); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO accounts (user_id, name, type, balance, currency, is_default)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + accountColumns

		a, err := scanAccount(tx.QueryRowContext(ctx, query,
			params.UserID, params.Name, params.Type, params.Balance, params.Currency, params.IsDefault,
		))
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY is_default DESC, name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*account.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Update(ctx context.Context, id int64, params account.UpdateParams) (*account.Account, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Type != nil {
		add("type", *params.Type)
	}
	if params.Balance != nil {
		add("balance", *params.Balance)
	}
	if params.Currency != nil {
		add("currency", *params.Currency)
	}
	if params.IsDefault != nil {
		add("is_default", *params.IsDefault)
	}
	args = append(args, id)
	query := `UPDATE accounts SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) + ` RETURNING ` + accountColumns

	var updated *account.Account
	err := r.db.WithTx(ctx, func(tx *Tx) error {
		if params.IsDefault != nil && *params.IsDefault {
			var userID int64
			err := tx.QueryRowContext(ctx, `SELECT user_id FROM accounts WHERE id = $1`, id).Scan(&userID)
			if errors.Is(err, sql.ErrNoRows) {
				return account.ErrAccountNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to load account owner: %w", err)
			}
			if err := clearDefault(ctx, tx, userID, id); err != nil {
				return err
			}
		}

		a, err := scanAccount(tx.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return account.ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return account.ErrAccountInUse
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return requireRow(res, account.ErrAccountNotFound)
}
