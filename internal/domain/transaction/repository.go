package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DuplicateCriteria identifies an existing transaction that an import row
// would repeat.
type DuplicateCriteria struct {
	UserID      int64
	AccountID   int64
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Type        string
}

// Repository is the ledger. Every write adjusts the affected account
// balances in the same database transaction as the row change.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Transaction, error)
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	// Update reverses the old balance effect and applies the new one.
	Update(ctx context.Context, id int64, params UpdateParams) (*Transaction, error)
	// Delete removes the row, or both legs of a transfer, and reverses the
	// balance effect. It returns the deleted rows.
	Delete(ctx context.Context, id int64) ([]*Transaction, error)
	// Transfer locks both accounts, checks the source balance and writes both
	// legs. It returns ErrInsufficientFunds when the source cannot cover it.
	Transfer(ctx context.Context, params TransferParams) (from, to *Transaction, err error)

	List(ctx context.Context, userID int64, filter Filter) ([]*Transaction, int64, error)
	// ListAll applies the filter without paging.
	ListAll(ctx context.Context, userID int64, filter Filter) ([]*Transaction, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Transaction, error)
	Summarize(ctx context.Context, userID int64, from, to time.Time) (*Summary, error)
	MonthlyTotals(ctx context.Context, userID int64, from time.Time) ([]MonthlyTotal, error)
	ExistsDuplicate(ctx context.Context, criteria DuplicateCriteria) (bool, error)
}
