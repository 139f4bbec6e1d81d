// Package report builds the dashboard and monthly trend views from the
// other domain services.
package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/budget"
	"fintrack/internal/domain/goal"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/shared/cache"
	"fintrack/internal/shared/logger"
)

const (
	DefaultMonths = 6
	MaxMonths     = 24
	RecentCount   = 5

	dashboardCacheKey = "reports.dashboard"
	monthLayout       = "2006-01"
)

type AccountSummarizer interface {
	GetSummary(ctx context.Context, userID int64) (*account.Summary, error)
}

type TransactionReader interface {
	GetSummary(ctx context.Context, userID int64, period string) (*transaction.Summary, error)
	Recent(ctx context.Context, userID int64, limit int) ([]*transaction.Transaction, error)
	MonthlyTotals(ctx context.Context, userID int64, from time.Time) ([]transaction.MonthlyTotal, error)
}

type BudgetSummarizer interface {
	GetSummary(ctx context.Context, userID int64) (*budget.Summary, error)
}

type GoalSummarizer interface {
	GetSummary(ctx context.Context, userID int64) (*goal.Summary, error)
}

type Dashboard struct {
	Accounts           *account.Summary           `json:"accounts"`
	Month              *transaction.Summary       `json:"month"`
	Budgets            *budget.Summary            `json:"budgets"`
	Goals              *goal.Summary              `json:"goals"`
	RecentTransactions []*transaction.Transaction `json:"recent_transactions"`
}

type Service struct {
	accounts     AccountSummarizer
	transactions TransactionReader
	budgets      BudgetSummarizer
	goals        GoalSummarizer
	cache        *cache.SummaryCache
	log          *slog.Logger
	now          func() time.Time
}

func NewService(accounts AccountSummarizer, transactions TransactionReader, budgets BudgetSummarizer, goals GoalSummarizer, c *cache.SummaryCache) *Service {
	return &Service{
		accounts:     accounts,
		transactions: transactions,
		budgets:      budgets,
		goals:        goals,
		cache:        c,
		log:          logger.WithComponent("report"),
		now:          time.Now,
	}
}

// Dashboard gathers the per-domain summaries concurrently. The result is
// cached until the user's next write.
func (s *Service) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	if cached, ok := cache.Lookup[*Dashboard](s.cache, userID, dashboardCacheKey); ok {
		return cached, nil
	}
	version := s.cache.Version(userID)

	d := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Accounts, err = s.accounts.GetSummary(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.Month, err = s.transactions.GetSummary(gctx, userID, "month")
		return err
	})
	g.Go(func() (err error) {
		d.Budgets, err = s.budgets.GetSummary(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.Goals, err = s.goals.GetSummary(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.RecentTransactions, err = s.transactions.Recent(gctx, userID, RecentCount)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.ErrorContext(ctx, "failed to build dashboard", logger.FieldUserID, userID, logger.Err(err))
		return nil, err
	}

	s.cache.Set(userID, version, dashboardCacheKey, d)
	return d, nil
}

// Monthly returns income and expense totals for the last months calendar
// months, oldest first, including months without activity.
func (s *Service) Monthly(ctx context.Context, userID int64, months int) ([]transaction.MonthlyTotal, error) {
	if months < 1 {
		months = DefaultMonths
	}
	if months > MaxMonths {
		months = MaxMonths
	}

	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	rows, err := s.transactions.MonthlyTotals(ctx, userID, first)
	if err != nil {
		return nil, err
	}
	return FillMonths(rows, first, months), nil
}

// FillMonths lays rows out over n consecutive months starting at first,
// zero-filling months with no row and recomputing net.
func FillMonths(rows []transaction.MonthlyTotal, first time.Time, n int) []transaction.MonthlyTotal {
	byMonth := make(map[string]transaction.MonthlyTotal, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r
	}

	out := make([]transaction.MonthlyTotal, n)
	for i := range out {
		key := first.AddDate(0, i, 0).Format(monthLayout)
		m, ok := byMonth[key]
		if !ok {
			m = transaction.MonthlyTotal{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
		}
		m.Net = m.Income.Sub(m.Expenses)
		out[i] = m
	}
	return out
}
