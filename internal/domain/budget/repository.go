package budget

import (
	"context"
	"time"
)

// Repository reads budgets with spent computed from the ledger.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Budget, error)
	GetByID(ctx context.Context, id int64) (*Budget, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Budget, error)
	// ListActive returns budgets whose window contains at.
	ListActive(ctx context.Context, userID int64, at time.Time) ([]*Budget, error)
	Update(ctx context.Context, b *Budget) (*Budget, error)
	Delete(ctx context.Context, id int64) error
	// UserIDsWithActiveBudgets lists every user that has a budget active at.
	UserIDsWithActiveBudgets(ctx context.Context, at time.Time) ([]int64, error)
}
