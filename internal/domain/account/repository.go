package account

import "context"

// Repository defines the interface for account data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create inserts the account. When IsDefault is set the user's other
	// accounts lose their default flag in the same transaction.
	Create(ctx context.Context, params CreateParams) (*Account, error)

	GetByID(ctx context.Context, id int64) (*Account, error)

	// ListByUserID orders by is_default DESC, name.
	ListByUserID(ctx context.Context, userID int64) ([]*Account, error)

	Update(ctx context.Context, id int64, params UpdateParams) (*Account, error)

	// Delete returns ErrAccountInUse while transactions reference the account.
	Delete(ctx context.Context, id int64) error
}
