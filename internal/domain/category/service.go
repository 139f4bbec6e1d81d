package category

import (
	"context"
	"errors"
	"log/slog"

	"fintrack/internal/shared/logger"
)

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.WithComponent("category")}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.ParentID != nil {
		if err := s.checkParent(ctx, *params.ParentID, params.UserID); err != nil {
			return nil, err
		}
	}

	c, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "category created", logger.FieldUserID, params.UserID, "category_id", c.ID)
	return c, nil
}

// Get loads a category and verifies the caller owns it.
func (s *Service) Get(ctx context.Context, id, userID int64) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrForbidden
	}
	return c, nil
}

// List returns the user's categories as a tree. txType keeps only categories
// usable for that transaction type; activeOnly drops deactivated ones.
func (s *Service) List(ctx context.Context, userID int64, txType string, activeOnly bool) ([]*Category, error) {
	if txType != "" && txType != TypeIncome && txType != TypeExpense {
		return nil, ErrInvalidInput
	}

	all, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := make([]*Category, 0, len(all))
	for _, c := range all {
		if !c.Matches(txType) || (activeOnly && !c.IsActive) {
			continue
		}
		kept = append(kept, c)
	}
	return Tree(kept), nil
}

func (s *Service) Update(ctx context.Context, id, userID int64, params UpdateParams) (*Category, error) {
	existing, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	updated := params.Apply(*existing)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if updated.ParentID != nil && (existing.ParentID == nil || *existing.ParentID != *updated.ParentID) {
		if err := s.checkParent(ctx, *updated.ParentID, userID); err != nil {
			return nil, err
		}
		// Only one level of nesting.
		hasChildren, err := s.repo.HasChildren(ctx, id)
		if err != nil {
			return nil, err
		}
		if hasChildren {
			return nil, ErrInvalidParent
		}
	}

	return s.repo.Update(ctx, &updated)
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "category deleted", logger.FieldUserID, userID, "category_id", id)
	return nil
}

// checkParent requires an owned top-level category.
func (s *Service) checkParent(ctx context.Context, parentID, userID int64) error {
	parent, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return ErrInvalidParent
		}
		return err
	}
	if parent.UserID != userID || parent.ParentID != nil {
		return ErrInvalidParent
	}
	return nil
}
