package goal

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
	"fintrack/internal/shared/money"
)

const summaryCacheKey = "goals.summary"

// AccountGetter resolves the optional linked account for ownership checks.
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
		log:       logger.WithComponent("goal"),
		now:       time.Now,
	}
}

func (s *Service) checkAccount(ctx context.Context, accountID *int64, userID int64) error {
	if accountID == nil {
		return nil
	}
	acc, err := s.accounts.GetByID(ctx, *accountID)
	if err != nil {
		return err
	}
	if acc.UserID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) CreateGoal(ctx context.Context, params CreateParams) (*Response, error) {
	now := s.now()
	params.Normalize(now)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, params.AccountID, params.UserID); err != nil {
		return nil, err
	}

	g, err := s.repo.Create(ctx, params.Goal(now))
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(params.UserID)
	if g.IsCompleted {
		s.completed(ctx, g)
	}
	return g.ToResponse(now), nil
}

func (s *Service) getOwned(ctx context.Context, id, userID int64) (*Goal, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, ErrGoalNotFound
	}
	return g, nil
}

// GetGoal returns the user's goal; goals of other users are not found.
func (s *Service) GetGoal(ctx context.Context, id, userID int64) (*Response, error) {
	g, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return g.ToResponse(s.now()), nil
}

func (s *Service) ListGoals(ctx context.Context, userID int64) ([]*Response, error) {
	goals, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]*Response, len(goals))
	for i, g := range goals {
		out[i] = g.ToResponse(now)
	}
	return out, nil
}

func (s *Service) UpdateGoal(ctx context.Context, id, userID int64, params UpdateParams) (*Response, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, params.AccountID, userID); err != nil {
		return nil, err
	}

	return s.modify(ctx, id, userID, func(g *Goal) {
		*g = params.Apply(*g)
	})
}

func (s *Service) DeleteGoal(ctx context.Context, id, userID int64) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateUser(userID)
	return nil
}

// Contribute adds the amount to the goal. A negative amount withdraws;
// the saved amount never goes below zero.
func (s *Service) Contribute(ctx context.Context, id, userID int64, params ContributeParams) (*Response, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.modify(ctx, id, userID, func(g *Goal) {
		g.CurrentAmount = money.NonNegative(g.CurrentAmount.Add(params.Amount))
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "goal contribution",
		logger.FieldUserID, userID,
		"goal_id", id,
		"amount", params.Amount.String(),
		"description", params.Description,
	)
	return resp, nil
}

// modify applies change to the locked goal row and recomputes completion
// from the row as stored, so concurrent writers never overwrite each other.
func (s *Service) modify(ctx context.Context, id, userID int64, change func(g *Goal)) (*Response, error) {
	now := s.now()
	justCompleted := false

	saved, err := s.repo.Modify(ctx, id, func(g *Goal) error {
		if g.UserID != userID {
			return ErrGoalNotFound
		}
		change(g)
		justCompleted = g.UpdateCompletion(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(saved.UserID)
	if justCompleted {
		s.completed(ctx, saved)
	}
	return saved.ToResponse(now), nil
}

func (s *Service) completed(ctx context.Context, g *Goal) {
	events.Emit(ctx, s.publisher, events.New(events.GoalCompleted, g.UserID, g))

	if s.notifier == nil {
		return
	}

	id := g.ID
	text := s.messages.GoalAchieved
	_, err := s.notifier.Notify(ctx, notification.CreateParams{
		UserID:  g.UserID,
		Type:    notification.TypeGoalAchieved,
		Title:   text.Title,
		Message: text.Render(map[string]string{
			"goal":   g.Name,
			"amount": g.TargetAmount.StringFixed(2) + " " + g.Currency,
		}),
		Priority:    notification.PriorityMedium,
		ActionURL:   fmt.Sprintf("/goals/%d", g.ID),
		RelatedID:   &id,
		RelatedType: "goal",
		Data:        map[string]string{"goal_id": strconv.FormatInt(g.ID, 10)},
	})
	if err != nil {
		s.log.WarnContext(ctx, "failed to send goal notification",
			logger.FieldUserID, g.UserID,
			"goal_id", g.ID,
			logger.Err(err),
		)
	}
}

func (s *Service) GetSummary(ctx context.Context, userID int64) (*Summary, error) {
	if cached, ok := cache.Lookup[*Summary](s.cache, userID, summaryCacheKey); ok {
		return cached, nil
	}
	version := s.cache.Version(userID)

	goals, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(goals)
	s.cache.Set(userID, version, summaryCacheKey, summary)
	return summary, nil
}
