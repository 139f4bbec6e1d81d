package goal

import "context"

type Repository interface {
	Create(ctx context.Context, g *Goal) (*Goal, error)
	GetByID(ctx context.Context, id int64) (*Goal, error)
	// ListByUserID orders by is_completed, priority DESC, target_date.
	ListByUserID(ctx context.Context, userID int64) ([]*Goal, error)
	// Modify locks the goal row, hands it to fn and stores what fn leaves in
	// it. An error from fn aborts the change and is returned as is.
	Modify(ctx context.Context, id int64, fn func(g *Goal) error) (*Goal, error)
	Delete(ctx context.Context, id int64) error
}
