package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/domain/notification"
)

type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// UpsertDeviceToken registers or refreshes a device token. A token held by
// another user is reassigned to this one.
func (r *NotificationRepository) UpsertDeviceToken(ctx context.Context, params notification.RegisterDeviceParams) (*notification.DeviceToken, error) {
	query := `
		INSERT INTO fcm_device_tokens (user_id, token, device_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE
			SET user_id = EXCLUDED.user_id,
			    device_type = EXCLUDED.device_type,
			    is_active = true,
			    last_used = NOW()
		RETURNING id, user_id, token, device_type, is_active, created_at, last_used
	`

	var dt notification.DeviceToken
	err := r.db.QueryRowContext(ctx, query, params.UserID, params.Token, params.DeviceType).Scan(
		&dt.ID, &dt.UserID, &dt.Token, &dt.DeviceType, &dt.IsActive, &dt.CreatedAt, &dt.LastUsed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert device token: %w", err)
	}
	return &dt, nil
}

func (r *NotificationRepository) GetActiveTokensByUserID(ctx context.Context, userID int64) ([]*notification.DeviceToken, error) {
	query := `
		SELECT id, user_id, token, device_type, is_active, created_at, last_used
		FROM fcm_device_tokens
		WHERE user_id = $1 AND is_active = true
		ORDER BY last_used DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*notification.DeviceToken
	for rows.Next() {
		var dt notification.DeviceToken
		if err := rows.Scan(&dt.ID, &dt.UserID, &dt.Token, &dt.DeviceType, &dt.IsActive, &dt.CreatedAt, &dt.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, &dt)
	}
	return tokens, rows.Err()
}

func (r *NotificationRepository) DeactivateToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE fcm_device_tokens SET is_active = false WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to deactivate token: %w", err)
	}
	return nil
}

func (r *NotificationRepository) GetPreferences(ctx context.Context, userID int64) (*notification.Preferences, error) {
	query := `
		SELECT user_id, budgets_enabled, goals_enabled, recurring_enabled, general_enabled, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`

	var p notification.Preferences
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.BudgetsEnabled, &p.GoalsEnabled, &p.RecurringEnabled, &p.GeneralEnabled, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notification.ErrPreferencesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification preferences: %w", err)
	}
	return &p, nil
}

func (r *NotificationRepository) SavePreferences(ctx context.Context, prefs notification.Preferences) (*notification.Preferences, error) {
	query := `
		INSERT INTO notification_preferences (user_id, budgets_enabled, goals_enabled, recurring_enabled, general_enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
			SET budgets_enabled = EXCLUDED.budgets_enabled,
			    goals_enabled = EXCLUDED.goals_enabled,
			    recurring_enabled = EXCLUDED.recurring_enabled,
			    general_enabled = EXCLUDED.general_enabled,
			    updated_at = NOW()
		RETURNING user_id, budgets_enabled, goals_enabled, recurring_enabled, general_enabled, updated_at
	`

	var p notification.Preferences
	err := r.db.QueryRowContext(ctx, query,
		prefs.UserID, prefs.BudgetsEnabled, prefs.GoalsEnabled, prefs.RecurringEnabled, prefs.GeneralEnabled,
	).Scan(&p.UserID, &p.BudgetsEnabled, &p.GoalsEnabled, &p.RecurringEnabled, &p.GeneralEnabled, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save notification preferences: %w", err)
	}
	return &p, nil
}

const notificationColumns = `id, user_id, type, title, message, priority, is_read, read_at, action_url,
	related_id, related_type, data, created_at`

func scanNotification(row interface{ Scan(...any) error }) (*notification.Notification, error) {
	var n notification.Notification
	var readAt sql.NullTime
	var relatedID sql.NullInt64
	var data []byte

	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Priority, &n.IsRead, &readAt,
		&n.ActionURL, &relatedID, &n.RelatedType, &data, &n.CreatedAt)
	if err != nil {
		return nil, err
	}

	n.ReadAt = timePtr(readAt)
	n.RelatedID = int64Ptr(relatedID)
	n.Data = map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}
	return &n, nil
}

func (r *NotificationRepository) list(ctx context.Context, query string, args ...any) ([]*notification.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*notification.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) Create(ctx context.Context, params notification.CreateParams) (*notification.Notification, error) {
	data, err := json.Marshal(params.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification data: %w", err)
	}

	query := `
		INSERT INTO notifications (user_id, type, title, message, priority, action_url, related_id, related_type, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + notificationColumns

	n, err := scanNotification(r.db.QueryRowContext(ctx, query,
		params.UserID, params.Type, params.Title, params.Message, params.Priority, params.ActionURL,
		nullInt64(params.RelatedID), params.RelatedType, data,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

func (r *NotificationRepository) List(ctx context.Context, userID int64, limit, offset int) ([]*notification.Notification, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	list, err := r.list(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *NotificationRepository) ListUnread(ctx context.Context, userID int64) ([]*notification.Notification, error) {
	return r.list(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = $1 AND NOT is_read ORDER BY created_at DESC, id DESC`,
		userID,
	)
}

func (r *NotificationRepository) Summary(ctx context.Context, userID int64) (*notification.Summary, error) {
	var s notification.Summary
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read) FROM notifications WHERE user_id = $1`,
		userID,
	).Scan(&s.Total, &s.Unread)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize notifications: %w", err)
	}
	return &s, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true, read_at = COALESCE(read_at, NOW()) WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return requireRow(res, notification.ErrNotificationNotFound)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true, read_at = NOW() WHERE user_id = $1 AND NOT is_read`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return res.RowsAffected()
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return requireRow(res, notification.ErrNotificationNotFound)
}

func (r *NotificationRepository) RecentlyNotified(ctx context.Context, userID int64, notificationType, relatedType string, relatedID int64, since time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND type = $2 AND related_type = $3 AND related_id = $4 AND created_at > $5
		)`,
		userID, notificationType, relatedType, relatedID, since,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recent notifications: %w", err)
	}
	return exists, nil
}
