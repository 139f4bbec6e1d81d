package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"fintrack/internal/shared/logger"
)

// Service contains the business logic for notification operations
type Service struct {
	repo      Repository
	messenger Messenger
	log       *slog.Logger
}

// NewService creates a notification service. messenger may be nil, in which
// case notifications are only stored.
func NewService(repo Repository, messenger Messenger) *Service {
	return &Service{repo: repo, messenger: messenger, log: logger.WithComponent("notification")}
}

// RegisterDevice registers a device token for the user. A token held by
// another user is reassigned.
func (s *Service) RegisterDevice(ctx context.Context, params RegisterDeviceParams) (*DeviceToken, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpsertDeviceToken(ctx, params)
}

// GetPreferences returns the user's preferences, or the all-enabled defaults
// if none were saved yet.
func (s *Service) GetPreferences(ctx context.Context, userID int64) (*Preferences, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if errors.Is(err, ErrPreferencesNotFound) {
		return DefaultPreferences(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, userID int64, params UpdatePreferencesParams) (*Preferences, error) {
	current, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.SavePreferences(ctx, params.Apply(*current))
}

// List returns one page of the inbox, newest first.
func (s *Service) List(ctx context.Context, userID int64, page, perPage int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	rows, total, err := s.repo.List(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*Notification{}
	}

	return &ListResult{
		Data:       rows,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
	}, nil
}

func (s *Service) Unread(ctx context.Context, userID int64) ([]*Notification, error) {
	rows, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*Notification{}
	}
	return rows, nil
}

func (s *Service) Summary(ctx context.Context, userID int64) (*Summary, error) {
	return s.repo.Summary(ctx, userID)
}

// MarkRead marks one of the user's notifications as read. Other users'
// notifications are reported as not found.
func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	return s.repo.Delete(ctx, id, userID)
}

// RecentlyNotified reports whether the user already got a notification of
// this type about the entity within the window.
func (s *Service) RecentlyNotified(ctx context.Context, userID int64, notificationType, relatedType string, relatedID int64, window time.Duration) (bool, error) {
	return s.repo.RecentlyNotified(ctx, userID, notificationType, relatedType, relatedID, time.Now().Add(-window))
}

// Notify stores the notification and, when the user's preference for its
// type is on, pushes it to every active device. Push failures are logged and
// do not fail the call.
func (s *Service) Notify(ctx context.Context, params CreateParams) (*Notification, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	s.push(ctx, n)
	return n, nil
}

func (s *Service) push(ctx context.Context, n *Notification) {
	if s.messenger == nil {
		return
	}

	log := s.log.With(logger.FieldUserID, n.UserID, "notification_id", n.ID, "type", n.Type)

	prefs, err := s.GetPreferences(ctx, n.UserID)
	if err != nil {
		log.WarnContext(ctx, "failed to load notification preferences", logger.Err(err))
		return
	}
	if !prefs.Enabled(n.Type) {
		log.DebugContext(ctx, "push skipped, type disabled")
		return
	}

	tokens, err := s.repo.GetActiveTokensByUserID(ctx, n.UserID)
	if err != nil {
		log.WarnContext(ctx, "failed to load device tokens", logger.Err(err))
		return
	}
	if len(tokens) == 0 {
		return
	}

	tokenStrings := make([]string, len(tokens))
	for i, t := range tokens {
		tokenStrings[i] = t.Token
	}

	data := make(map[string]string, len(n.Data)+3)
	for k, v := range n.Data {
		data[k] = v
	}
	data["notification_id"] = strconv.FormatInt(n.ID, 10)
	data["type"] = n.Type
	if n.ActionURL != "" {
		data["route"] = n.ActionURL
	}

	if err := s.messenger.SendMulticast(ctx, tokenStrings, n.Title, n.Message, data); err != nil {
		log.WarnContext(ctx, "failed to send push notification", logger.Err(err))
	}
}
