package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/notification"
	"fintrack/internal/shared/cache"
	"fintrack/internal/shared/events"
	"fintrack/internal/shared/logger"
	"fintrack/internal/shared/messages"
)

type AccountGetter interface {
	GetByID(ctx context.Context, id int64) (*account.Account, error)
}

type Notifier interface {
	Notify(ctx context.Context, params notification.CreateParams) (*notification.Notification, error)
}

// Deps groups the collaborators of Service. Notifier and Publisher may be nil.
type Deps struct {
	Repo      Repository
	Accounts  AccountGetter
	Notifier  Notifier
	Publisher events.Publisher
	Messages  *messages.Messages
	Cache     *cache.SummaryCache
}

type Service struct {
	repo      Repository
	accounts  AccountGetter
	notifier  Notifier
	publisher events.Publisher
	messages  *messages.Messages
	cache     *cache.SummaryCache
	log       *slog.Logger
	now       func() time.Time
}

func NewService(d Deps) *Service {
	if d.Messages == nil {
		d.Messages = messages.Defaults()
	}
	return &Service{
		repo:      d.Repo,
		accounts:  d.Accounts,
		notifier:  d.Notifier,
		publisher: d.Publisher,
		messages:  d.Messages,
		cache:     d.Cache,
		log:       logger.WithComponent("recurring"),
		now:       time.Now,
	}
}

func (s *Service) checkAccount(ctx context.Context, accountID, userID int64) error {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acc.UserID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Recurring, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, params.AccountID, params.UserID); err != nil {
		return nil, err
	}

	r, err := s.repo.Create(ctx, params.Recurring(s.now()))
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "recurring transaction created",
		logger.FieldUserID, r.UserID,
		"recurring_id", r.ID,
		"frequency", r.Frequency,
		"next_run_date", r.NextRunDate,
	)
	return r, nil
}

// Get returns the user's template; templates of other users are not found.
func (s *Service) Get(ctx context.Context, id, userID int64) (*Recurring, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrRecurringNotFound
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*Recurring, error) {
	rows, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*Recurring{}
	}
	return rows, nil
}

// Update replaces the definition. A template that never ran is rescheduled
// from its new start date.
func (s *Service) Update(ctx context.Context, id, userID int64, params UpdateParams) (*Recurring, error) {
	params.UserID = userID
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if params.AccountID != existing.AccountID {
		if err := s.checkAccount(ctx, params.AccountID, userID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	return s.repo.Modify(ctx, id, func(r *Recurring) error {
		if r.UserID != userID {
			return ErrRecurringNotFound
		}

		updated := params.Recurring(now)
		updated.ID = r.ID
		updated.IsActive = r.IsActive
		updated.TotalRuns = r.TotalRuns
		updated.LastRunDate = r.LastRunDate
		updated.CreatedAt = r.CreatedAt
		if r.LastRunDate != nil {
			updated.NextRunDate = r.NextRunDate
		}
		*r = *updated
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Toggle flips is_active. A reactivated template whose next run is in the
// past is moved to now so it does not replay missed runs.
func (s *Service) Toggle(ctx context.Context, id, userID int64) (*Recurring, error) {
	now := s.now()
	return s.repo.Modify(ctx, id, func(r *Recurring) error {
		if r.UserID != userID {
			return ErrRecurringNotFound
		}
		r.IsActive = !r.IsActive
		if r.IsActive && r.NextRunDate.Before(now) {
			r.NextRunDate = now
		}
		return nil
	})
}

// RunNow materialises the template immediately.
func (s *Service) RunNow(ctx context.Context, id, userID int64) (*Run, error) {
	r, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !r.IsActive {
		return nil, ErrNotActive
	}

	now := s.now()
	return s.run(ctx, r, r.Description+" (Manual Run)", now, now)
}

// run advances the template and records the transaction atomically.
func (s *Service) run(ctx context.Context, r *Recurring, description string, date, ranAt time.Time) (*Run, error) {
	params := r.TransactionParams(description, date)
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	advanced := *r
	advanced.LastRunDate = &ranAt
	advanced.TotalRuns++
	advanced.NextRunDate = advanced.CalculateNextRunDate()

	txn, err := s.repo.RecordRun(ctx, &advanced, params)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(r.UserID)
	result := &Run{Recurring: &advanced, Transaction: txn}
	events.Emit(ctx, s.publisher, events.New(events.RecurringExecuted, r.UserID, result))
	return result, nil
}

// UsersWithDue lists the users that have templates to run now.
func (s *Service) UsersWithDue(ctx context.Context) ([]int64, error) {
	return s.repo.UserIDsWithDue(ctx, s.now())
}

// ProcessDue runs every due template of every user.
func (s *Service) ProcessDue(ctx context.Context) (*ProcessResult, error) {
	return s.process(ctx, 0)
}

// ProcessUser runs the due templates of one user.
func (s *Service) ProcessUser(ctx context.Context, userID int64) (*ProcessResult, error) {
	return s.process(ctx, userID)
}

func (s *Service) process(ctx context.Context, userID int64) (*ProcessResult, error) {
	now := s.now()
	due, err := s.repo.ListDue(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{}
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.add(s.processOne(ctx, r, now))
	}

	if len(due) > 0 {
		s.log.InfoContext(ctx, "recurring transactions processed",
			logger.FieldUserID, userID,
			"processed", result.Processed,
			"deactivated", result.Deactivated,
			"failed", result.Failed,
		)
	}
	return result, nil
}

func (s *Service) processOne(ctx context.Context, r *Recurring, now time.Time) ProcessResult {
	log := s.log.With(logger.FieldUserID, r.UserID, "recurring_id", r.ID)

	if r.Exhausted(now) {
		r.IsActive = false
		_, err := s.repo.Modify(ctx, r.ID, func(locked *Recurring) error {
			locked.IsActive = false
			return nil
		})
		if err != nil {
			log.ErrorContext(ctx, "failed to deactivate recurring transaction", logger.Err(err))
			return ProcessResult{Failed: 1, Errors: []string{fmt.Sprintf("recurring %d: %v", r.ID, err)}}
		}
		log.InfoContext(ctx, "recurring transaction deactivated", "total_runs", r.TotalRuns)
		return ProcessResult{Deactivated: 1}
	}

	run, err := s.run(ctx, r, r.Description+" (Recurring)", r.NextRunDate, r.NextRunDate)
	if err != nil {
		log.ErrorContext(ctx, "failed to process recurring transaction", logger.Err(err))
		return ProcessResult{Failed: 1, Errors: []string{fmt.Sprintf("recurring %d: %v", r.ID, err)}}
	}

	s.notifyRun(ctx, run)
	return ProcessResult{Processed: 1}
}

func (s *Service) notifyRun(ctx context.Context, run *Run) {
	if s.notifier == nil {
		return
	}

	r := run.Recurring
	id := r.ID
	text := s.messages.RecurringExecuted
	_, err := s.notifier.Notify(ctx, notification.CreateParams{
		UserID: r.UserID,
		Type:   notification.TypeRecurringDue,
		Title:  text.Title,
		Message: text.Render(map[string]string{
			"description": r.Description,
			"amount":      r.Amount.StringFixed(2),
			"next":        r.NextRunDate.Format("2006-01-02"),
		}),
		Priority:    notification.PriorityLow,
		ActionURL:   "/recurring",
		RelatedID:   &id,
		RelatedType: "recurring_transaction",
		Data: map[string]string{
			"recurring_id":   strconv.FormatInt(r.ID, 10),
			"transaction_id": strconv.FormatInt(run.Transaction.ID, 10),
		},
	})
	if err != nil {
		s.log.WarnContext(ctx, "failed to send recurring notification",
			logger.FieldUserID, r.UserID,
			"recurring_id", r.ID,
			logger.Err(err),
		)
	}
}
