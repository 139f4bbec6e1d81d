package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/shared/logger"
)

const (
	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
	TransferCompleted  = "transfer.completed"
	RecurringExecuted  = "recurring.executed"
	GoalCompleted      = "goal.completed"
	BudgetThreshold    = "budget.threshold"
)

// Event is a domain fact published after a successful write.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

func New(eventType string, userID int64, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Emit publishes the event and logs a failure instead of returning it.
// A nil publisher is ignored.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.WithComponent("events").WarnContext(ctx, "failed to publish event",
			"event_type", e.Type,
			"event_id", e.ID,
			logger.FieldUserID, e.UserID,
			logger.Err(err),
		)
	}
}
