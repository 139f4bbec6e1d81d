package notification

import (
	"context"
	"time"
)

// Repository defines the interface for notification data access.
type Repository interface {
	// Device tokens
	UpsertDeviceToken(ctx context.Context, params RegisterDeviceParams) (*DeviceToken, error)
	GetActiveTokensByUserID(ctx context.Context, userID int64) ([]*DeviceToken, error)
	DeactivateToken(ctx context.Context, token string) error

	// Preferences
	GetPreferences(ctx context.Context, userID int64) (*Preferences, error)
	SavePreferences(ctx context.Context, prefs Preferences) (*Preferences, error)

	// Inbox
	Create(ctx context.Context, params CreateParams) (*Notification, error)
	List(ctx context.Context, userID int64, limit, offset int) ([]*Notification, int64, error)
	ListUnread(ctx context.Context, userID int64) ([]*Notification, error)
	Summary(ctx context.Context, userID int64) (*Summary, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id, userID int64) error

	// RecentlyNotified reports whether a notification of the given type about
	// the related entity was created after since.
	RecentlyNotified(ctx context.Context, userID int64, notificationType, relatedType string, relatedID int64, since time.Time) (bool, error)
}
