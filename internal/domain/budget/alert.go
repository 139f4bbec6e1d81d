package budget

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain/notification"
	"fintrack/internal/shared/logger"
	"fintrack/internal/shared/messages"
)

const (
	// AlertWindow is the minimum gap between two alerts for the same budget.
	AlertWindow = 24 * time.Hour

	relatedType = "budget"
)

// Threshold is one alert level. Thresholds are evaluated highest first.
type Threshold struct {
	Percent  int64
	Priority string
	text     func(m *messages.Messages) messages.MessageText
}

var thresholds = []Threshold{
	{Percent: 100, Priority: notification.PriorityHigh, text: func(m *messages.Messages) messages.MessageText { return m.BudgetExceeded }},
	{Percent: 90, Priority: notification.PriorityHigh, text: func(m *messages.Messages) messages.MessageText { return m.BudgetWarning }},
	{Percent: 75, Priority: notification.PriorityMedium, text: func(m *messages.Messages) messages.MessageText { return m.BudgetAlert }},
	{Percent: 50, Priority: notification.PriorityLow, text: func(m *messages.Messages) messages.MessageText { return m.BudgetUpdate }},
}

// ThresholdFor returns the highest threshold the budget has reached, or nil.
func ThresholdFor(b *Budget) *Threshold {
	for i := range thresholds {
		if b.Reached(thresholds[i].Percent) {
			return &thresholds[i]
		}
	}
	return nil
}

// Notifier is the part of the notification service alerts need.
type Notifier interface {
	Notify(ctx context.Context, params notification.CreateParams) (*notification.Notification, error)
	RecentlyNotified(ctx context.Context, userID int64, notificationType, relatedType string, relatedID int64, window time.Duration) (bool, error)
}

// AlertService turns budget progress into budget_alert notifications.
type AlertService struct {
	repo     Repository
	notifier Notifier
	messages *messages.Messages
	log      *slog.Logger
	now      func() time.Time
}

func NewAlertService(repo Repository, notifier Notifier, msgs *messages.Messages) *AlertService {
	if msgs == nil {
		msgs = messages.Defaults()
	}
	return &AlertService{
		repo:     repo,
		notifier: notifier,
		messages: msgs,
		log:      logger.WithComponent("budget_alerts"),
		now:      time.Now,
	}
}

// CheckUser evaluates the user's active budgets covering category and sends
// at most one alert per budget per AlertWindow. An empty category checks
// every active budget. It returns the number of alerts sent.
func (s *AlertService) CheckUser(ctx context.Context, userID int64, category string) (int, error) {
	budgets, err := s.repo.ListActive(ctx, userID, s.now())
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, b := range budgets {
		if category != "" && !b.Covers(category) {
			continue
		}

		ok, err := s.alert(ctx, b)
		if err != nil {
			s.log.WarnContext(ctx, "budget alert failed",
				logger.FieldUserID, userID,
				"budget_id", b.ID,
				logger.Err(err),
			)
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

func (s *AlertService) alert(ctx context.Context, b *Budget) (bool, error) {
	th := ThresholdFor(b)
	if th == nil {
		return false, nil
	}

	recent, err := s.notifier.RecentlyNotified(ctx, b.UserID, notification.TypeBudgetAlert, relatedType, b.ID, AlertWindow)
	if err != nil {
		return false, err
	}
	if recent {
		return false, nil
	}

	text := th.text(s.messages)
	percent := b.Progress().Floor()
	id := b.ID
	_, err = s.notifier.Notify(ctx, notification.CreateParams{
		UserID:      b.UserID,
		Type:        notification.TypeBudgetAlert,
		Title:       text.Title,
		Message:     text.Render(budgetVars(b, percent)),
		Priority:    th.Priority,
		ActionURL:   fmt.Sprintf("/budgets/%d", b.ID),
		RelatedID:   &id,
		RelatedType: relatedType,
		Data: map[string]string{
			"budget_id": strconv.FormatInt(b.ID, 10),
			"threshold": strconv.FormatInt(th.Percent, 10),
			"percent":   percent.String(),
		},
	})
	if err != nil {
		return false, err
	}

	s.log.InfoContext(ctx, "budget alert sent",
		logger.FieldUserID, b.UserID,
		"budget_id", b.ID,
		"threshold", th.Percent,
	)
	return true, nil
}

func budgetVars(b *Budget, percent decimal.Decimal) map[string]string {
	remaining := b.Remaining()
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return map[string]string{
		"budget":    b.Name,
		"percent":   percent.String(),
		"spent":     b.Spent.StringFixed(2),
		"amount":    b.Amount.StringFixed(2),
		"remaining": remaining.StringFixed(2),
	}
}
