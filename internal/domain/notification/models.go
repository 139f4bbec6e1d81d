package notification

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Notification types
const (
	TypeBudgetAlert  = "budget_alert"
	TypeGoalAchieved = "goal_achieved"
	TypeRecurringDue = "recurring_due"
	TypeSystem       = "system"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

var validTypes = map[string]struct{}{
	TypeBudgetAlert:  {},
	TypeGoalAchieved: {},
	TypeRecurringDue: {},
	TypeSystem:       {},
}

var validPriorities = map[string]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
}

var validDeviceTypes = map[string]struct{}{
	"ios":     {},
	"android": {},
	"web":     {},
}

// Domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrPreferencesNotFound  = errors.New("notification preferences not found")
	ErrInvalidType          = errors.New("invalid notification type")
	ErrInvalidDeviceType    = errors.New("device type must be 'ios', 'android' or 'web'")
	ErrInvalidToken         = errors.New("device token is required")
	ErrInvalidInput         = errors.New("invalid input")
)

// DeviceToken is a registered FCM device token
type DeviceToken struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Token      string    `json:"token"`
	DeviceType string    `json:"device_type"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsed   time.Time `json:"last_used"`
}

// Preferences holds the per-type push toggles of a user.
type Preferences struct {
	UserID           int64     `json:"-"`
	BudgetsEnabled   bool      `json:"budgets_enabled"`
	GoalsEnabled     bool      `json:"goals_enabled"`
	RecurringEnabled bool      `json:"recurring_enabled"`
	GeneralEnabled   bool      `json:"general_enabled"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DefaultPreferences has every type enabled.
func DefaultPreferences(userID int64) *Preferences {
	return &Preferences{
		UserID:           userID,
		BudgetsEnabled:   true,
		GoalsEnabled:     true,
		RecurringEnabled: true,
		GeneralEnabled:   true,
	}
}

// Enabled reports whether pushes of the given notification type are wanted.
func (p *Preferences) Enabled(notificationType string) bool {
	switch notificationType {
	case TypeBudgetAlert:
		return p.BudgetsEnabled
	case TypeGoalAchieved:
		return p.GoalsEnabled
	case TypeRecurringDue:
		return p.RecurringEnabled
	case TypeSystem:
		return p.GeneralEnabled
	default:
		return false
	}
}

type Notification struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Priority    string            `json:"priority"`
	IsRead      bool              `json:"is_read"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
	ActionURL   string            `json:"action_url,omitempty"`
	RelatedID   *int64            `json:"related_id,omitempty"`
	RelatedType string            `json:"related_type,omitempty"`
	Data        map[string]string `json:"data"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Summary counts the inbox.
type Summary struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

type ListResult struct {
	Data       []*Notification `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
}

type RegisterDeviceParams struct {
	UserID     int64
	Token      string
	DeviceType string
}

func (p *RegisterDeviceParams) Validate() error {
	p.Token = strings.TrimSpace(p.Token)
	p.DeviceType = strings.ToLower(strings.TrimSpace(p.DeviceType))

	if p.UserID <= 0 {
		return fmt.Errorf("%w: valid user ID is required", ErrInvalidInput)
	}
	if p.Token == "" {
		return ErrInvalidToken
	}
	if !IsValidDeviceType(p.DeviceType) {
		return ErrInvalidDeviceType
	}
	return nil
}

// UpdatePreferencesParams holds optional toggles; nil fields are unchanged.
type UpdatePreferencesParams struct {
	BudgetsEnabled   *bool
	GoalsEnabled     *bool
	RecurringEnabled *bool
	GeneralEnabled   *bool
}

// Apply returns a copy of p with the set fields overwritten.
func (u UpdatePreferencesParams) Apply(p Preferences) Preferences {
	if u.BudgetsEnabled != nil {
		p.BudgetsEnabled = *u.BudgetsEnabled
	}
	if u.GoalsEnabled != nil {
		p.GoalsEnabled = *u.GoalsEnabled
	}
	if u.RecurringEnabled != nil {
		p.RecurringEnabled = *u.RecurringEnabled
	}
	if u.GeneralEnabled != nil {
		p.GeneralEnabled = *u.GeneralEnabled
	}
	return p
}

type CreateParams struct {
	UserID      int64
	Type        string
	Title       string
	Message     string
	Priority    string
	ActionURL   string
	RelatedID   *int64
	RelatedType string
	Data        map[string]string
}

func (p *CreateParams) Validate() error {
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if p.Data == nil {
		p.Data = map[string]string{}
	}

	if p.UserID <= 0 {
		return fmt.Errorf("%w: valid user ID is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: notification title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Message) == "" {
		return fmt.Errorf("%w: notification message is required", ErrInvalidInput)
	}
	if !IsValidType(p.Type) {
		return ErrInvalidType
	}
	if _, ok := validPriorities[p.Priority]; !ok {
		return fmt.Errorf("%w: priority must be low, medium or high", ErrInvalidInput)
	}
	return nil
}

func IsValidType(t string) bool {
	_, ok := validTypes[t]
	return ok
}

func IsValidDeviceType(dt string) bool {
	_, ok := validDeviceTypes[dt]
	return ok
}
