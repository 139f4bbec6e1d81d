package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/shared/auth"
	"fintrack/internal/shared/logger"
)

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.WithComponent("user"),
		now:  time.Now,
	}
}

// Register validates the request, hashes the password and stores the user.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := auth.CheckPasswordStrength(params.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, CreateUserParams{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user registered", logger.FieldUserID, u.ID)
	return u, nil
}

// Login checks credentials, where login may be a username or an email, and
// records the login time.
func (s *Service) Login(ctx context.Context, login, password string) (*User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrUserDisabled
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		// login still succeeds
		s.log.WarnContext(ctx, "failed to update last login", logger.FieldUserID, u.ID, logger.Err(err))
	} else {
		u.LastLoginAt = &now
	}

	return u, nil
}

// GetActiveUser loads a user and rejects disabled accounts. Used when
// refreshing tokens.
func (s *Service) GetActiveUser(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUserDisabled
	}
	return u, nil
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, params UpdateProfileParams) (*User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateProfile(ctx, userID, params)
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if err := auth.CheckPasswordStrength(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(u.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "password changed", logger.FieldUserID, userID)
	return nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}
