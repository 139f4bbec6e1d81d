// Package search looks a query up across a user's transactions, accounts,
// budgets, goals and recurring templates.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/budget"
	"fintrack/internal/domain/goal"
	"fintrack/internal/domain/recurring"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/shared/logger"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	TypeTransaction = "transaction"
	TypeAccount     = "account"
	TypeBudget      = "budget"
	TypeGoal        = "goal"
	TypeRecurring   = "recurring"
)

var ErrEmptyQuery = errors.New("search query is required")

type Transactions interface {
	Search(ctx context.Context, userID int64, query string, filter transaction.Filter) (*transaction.ListResult, error)
}

type Accounts interface {
	ListAccounts(ctx context.Context, userID int64) ([]*account.Account, error)
}

type Budgets interface {
	ListBudgets(ctx context.Context, userID int64) ([]*budget.Budget, error)
}

type Goals interface {
	ListGoals(ctx context.Context, userID int64) ([]*goal.Response, error)
}

type Recurring interface {
	List(ctx context.Context, userID int64) ([]*recurring.Recurring, error)
}

type Result struct {
	Type        string           `json:"type"`
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Date        string           `json:"date,omitempty"`
	URL         string           `json:"url"`
}

type Response struct {
	Query        string   `json:"query"`
	TotalResults int      `json:"total_results"`
	Results      []Result `json:"results"`
}

type Deps struct {
	Transactions Transactions
	Accounts     Accounts
	Budgets      Budgets
	Goals        Goals
	Recurring    Recurring
}

type Service struct {
	deps Deps
	log  *slog.Logger
}

func NewService(deps Deps) *Service {
	return &Service{deps: deps, log: logger.WithComponent("search")}
}

// Search runs the query against every source concurrently. Results keep a
// fixed source order (transactions first) and are cut at limit.
func (s *Service) Search(ctx context.Context, userID int64, query string, limit int) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	needle := strings.ToLower(query)

	var groups [5][]Result
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := s.deps.Transactions.Search(gctx, userID, query, transaction.Filter{PageSize: limit})
		if err != nil {
			return fmt.Errorf("transactions: %w", err)
		}
		for _, t := range res.Data {
			amount := t.Amount
			groups[0] = append(groups[0], Result{
				Type:        TypeTransaction,
				ID:          t.ID,
				Title:       t.Description,
				Description: t.Category + " • " + t.Type,
				Amount:      &amount,
				Date:        t.Date.Format("2006-01-02"),
				URL:         "/transactions",
			})
		}
		return nil
	})
	g.Go(func() error {
		accounts, err := s.deps.Accounts.ListAccounts(gctx, userID)
		if err != nil {
			return fmt.Errorf("accounts: %w", err)
		}
		for _, a := range accounts {
			if !matches(needle, a.Name, a.Type) {
				continue
			}
			balance := a.Balance
			groups[1] = append(groups[1], Result{
				Type:        TypeAccount,
				ID:          a.ID,
				Title:       a.Name,
				Description: a.Type + " account",
				Amount:      &balance,
				URL:         "/accounts",
			})
		}
		return nil
	})
	g.Go(func() error {
		budgets, err := s.deps.Budgets.ListBudgets(gctx, userID)
		if err != nil {
			return fmt.Errorf("budgets: %w", err)
		}
		for _, b := range budgets {
			if !matches(needle, b.Name, b.Category) {
				continue
			}
			amount := b.Amount
			groups[2] = append(groups[2], Result{
				Type:        TypeBudget,
				ID:          b.ID,
				Title:       b.Name,
				Description: joinNonEmpty(b.Category, b.Period),
				Amount:      &amount,
				URL:         "/budgets",
			})
		}
		return nil
	})
	g.Go(func() error {
		goals, err := s.deps.Goals.ListGoals(gctx, userID)
		if err != nil {
			return fmt.Errorf("goals: %w", err)
		}
		for _, gr := range goals {
			if !matches(needle, gr.Name, gr.Category, gr.Description) {
				continue
			}
			target := gr.TargetAmount
			groups[3] = append(groups[3], Result{
				Type:        TypeGoal,
				ID:          gr.ID,
				Title:       gr.Name,
				Description: joinNonEmpty(gr.Category, gr.ProgressPercent.String()+"%"),
				Amount:      &target,
				URL:         "/goals",
			})
		}
		return nil
	})
	g.Go(func() error {
		templates, err := s.deps.Recurring.List(gctx, userID)
		if err != nil {
			return fmt.Errorf("recurring: %w", err)
		}
		for _, r := range templates {
			if !matches(needle, r.Description, r.Category) {
				continue
			}
			amount := r.Amount
			groups[4] = append(groups[4], Result{
				Type:        TypeRecurring,
				ID:          r.ID,
				Title:       r.Description,
				Description: joinNonEmpty(r.Category, r.Frequency),
				Amount:      &amount,
				Date:        r.NextRunDate.Format("2006-01-02"),
				URL:         "/recurring",
			})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.ErrorContext(ctx, "search failed", logger.FieldUserID, userID, logger.Err(err))
		return nil, err
	}

	results := make([]Result, 0, limit)
	for _, group := range groups {
		for _, r := range group {
			if len(results) == limit {
				break
			}
			results = append(results, r)
		}
	}
	return &Response{Query: query, TotalResults: len(results), Results: results}, nil
}

func matches(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " • ")
}
