package recurring

import (
	"context"
	"time"

	"fintrack/internal/domain/transaction"
)

type Repository interface {
	Create(ctx context.Context, r *Recurring) (*Recurring, error)
	GetByID(ctx context.Context, id int64) (*Recurring, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Recurring, error)
	// Modify locks the template row, hands it to fn and stores what fn
	// leaves in it. An error from fn aborts the change and is returned as is.
	Modify(ctx context.Context, id int64, fn func(r *Recurring) error) (*Recurring, error)
	Delete(ctx context.Context, id int64) error

	// ListDue returns active templates with next_run_date <= now. A userID of
	// zero lists every user's templates.
	ListDue(ctx context.Context, userID int64, now time.Time) ([]*Recurring, error)
	UserIDsWithDue(ctx context.Context, now time.Time) ([]int64, error)

	// RecordRun writes the transaction through the ledger and saves the
	// advanced template in one database transaction.
	RecordRun(ctx context.Context, r *Recurring, params transaction.CreateParams) (*transaction.Transaction, error)
}
