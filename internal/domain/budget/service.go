package budget

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/shared/cache"
	"fintrack/internal/shared/logger"
)

const summaryCacheKey = "budgets.summary"

type Service struct {
	repo  Repository
	cache *cache.SummaryCache
	log   *slog.Logger
	now   func() time.Time
}

func NewService(repo Repository, c *cache.SummaryCache) *Service {
	return &Service{repo: repo, cache: c, log: logger.WithComponent("budget"), now: time.Now}
}

func (s *Service) CreateBudget(ctx context.Context, params CreateParams) (*Budget, error) {
	params.Normalize(s.now())
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(params.UserID)
	s.log.InfoContext(ctx, "budget created", logger.FieldUserID, params.UserID, "budget_id", b.ID)
	return b, nil
}

// GetBudget loads a budget and verifies the caller owns it.
func (s *Service) GetBudget(ctx context.Context, id, userID int64) (*Budget, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) ListBudgets(ctx context.Context, userID int64) ([]*Budget, error) {
	budgets, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if budgets == nil {
		budgets = []*Budget{}
	}
	return budgets, nil
}

func (s *Service) UpdateBudget(ctx context.Context, id, userID int64, params UpdateParams) (*Budget, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.GetBudget(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	updated := params.Apply(*existing)
	b, err := s.repo.Update(ctx, &updated)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(userID)
	return b, nil
}

func (s *Service) DeleteBudget(ctx context.Context, id, userID int64) error {
	if _, err := s.GetBudget(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateUser(userID)
	return nil
}

func (s *Service) GetSummary(ctx context.Context, userID int64) (*Summary, error) {
	if cached, ok := cache.Lookup[*Summary](s.cache, userID, summaryCacheKey); ok {
		return cached, nil
	}
	version := s.cache.Version(userID)

	budgets, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(budgets)
	s.cache.Set(userID, version, summaryCacheKey, summary)
	return summary, nil
}

// UsersWithActiveBudgets lists the users the daily budget check must visit.
func (s *Service) UsersWithActiveBudgets(ctx context.Context) ([]int64, error) {
	return s.repo.UserIDsWithActiveBudgets(ctx, s.now())
}
