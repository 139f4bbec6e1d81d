package category

import "context"

type Repository interface {
	// Create returns ErrDuplicateCategory when the user already has the name.
	Create(ctx context.Context, params CreateParams) (*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	// ListByUserID orders by sort_order, then name.
	ListByUserID(ctx context.Context, userID int64) ([]*Category, error)
	Update(ctx context.Context, c *Category) (*Category, error)
	// Delete moves any children to the top level.
	Delete(ctx context.Context, id int64) error
	HasChildren(ctx context.Context, id int64) (bool, error)
}
