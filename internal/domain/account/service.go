package account

import (
	"context"
	"log/slog"

	"fintrack/internal/shared/cache"
	"fintrack/internal/shared/logger"
)

const summaryCacheKey = "accounts.summary"

// Service contains the business logic for account operations
type Service struct {
	repo  Repository
	cache *cache.SummaryCache
	log   *slog.Logger
}

func NewService(repo Repository, c *cache.SummaryCache) *Service {
	return &Service{repo: repo, cache: c, log: logger.WithComponent("account")}
}

func (s *Service) CreateAccount(ctx context.Context, params CreateParams) (*Account, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	acc, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(params.UserID)
	s.log.InfoContext(ctx, "account created", logger.FieldUserID, params.UserID, "account_id", acc.ID)
	return acc, nil
}

// GetAccount loads an account and verifies the caller owns it.
func (s *Service) GetAccount(ctx context.Context, id, userID int64) (*Account, error) {
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc.UserID != userID {
		return nil, ErrForbidden
	}
	return acc, nil
}

func (s *Service) ListAccounts(ctx context.Context, userID int64) ([]*Account, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *Service) UpdateAccount(ctx context.Context, id, userID int64, params UpdateParams) (*Account, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetAccount(ctx, id, userID); err != nil {
		return nil, err
	}

	acc, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(userID)
	return acc, nil
}

func (s *Service) DeleteAccount(ctx context.Context, id, userID int64) error {
	if _, err := s.GetAccount(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.InvalidateUser(userID)
	s.log.InfoContext(ctx, "account deleted", logger.FieldUserID, userID, "account_id", id)
	return nil
}

func (s *Service) GetSummary(ctx context.Context, userID int64) (*Summary, error) {
	if cached, ok := cache.Lookup[*Summary](s.cache, userID, summaryCacheKey); ok {
		return cached, nil
	}
	version := s.cache.Version(userID)

	accounts, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(accounts)
	s.cache.Set(userID, version, summaryCacheKey, &summary)
	return &summary, nil
}

// DefaultAccount returns the user's default account, or the first one when
// none is flagged. It returns ErrAccountNotFound if the user has no accounts.
func (s *Service) DefaultAccount(ctx context.Context, userID int64) (*Account, error) {
	accounts, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrAccountNotFound
	}
	for _, a := range accounts {
		if a.IsDefault {
			return a, nil
		}
	}
	return accounts[0], nil
}
