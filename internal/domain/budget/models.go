package budget

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/shared/money"
)

const (
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodYearly    = "yearly"
)

// Period is one entry of the period catalogue.
type Period struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var periods = []Period{
	{Value: PeriodMonthly, Label: "Monthly"},
	{Value: PeriodQuarterly, Label: "Quarterly"},
	{Value: PeriodYearly, Label: "Yearly"},
}

var (
	ErrBudgetNotFound = errors.New("budget not found")
	ErrForbidden      = errors.New("access forbidden")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidPeriod  = errors.New("period must be monthly, quarterly or yearly")
)

type Budget struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Period    string          `json:"period"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Spent     decimal.Decimal `json:"spent"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Remaining is amount minus spent; it goes negative once overspent.
func (b *Budget) Remaining() decimal.Decimal {
	return b.Amount.Sub(b.Spent)
}

// Progress is the spent percentage rounded for display, uncapped.
func (b *Budget) Progress() decimal.Decimal {
	return money.Percent(b.Spent, b.Amount)
}

// Reached reports whether spending is at or above percent of the amount.
func (b *Budget) Reached(percent int64) bool {
	return money.Reached(b.Spent, b.Amount, percent)
}

// IsActive reports whether t falls inside the budget window.
func (b *Budget) IsActive(t time.Time) bool {
	return !t.Before(b.StartDate) && !t.After(b.EndDate)
}

// Covers reports whether an expense in category counts against the budget.
// A budget without a category covers every expense.
func (b *Budget) Covers(category string) bool {
	return b.Category == "" || strings.EqualFold(b.Category, category)
}

// EndDate returns the last instant of a budget period starting at start.
func EndDate(start time.Time, period string) time.Time {
	var end time.Time
	switch period {
	case PeriodQuarterly:
		end = start.AddDate(0, 3, 0)
	case PeriodYearly:
		end = start.AddDate(1, 0, 0)
	default:
		end = start.AddDate(0, 1, 0)
	}
	return end.Add(-time.Second)
}

func IsValidPeriod(p string) bool {
	for _, v := range periods {
		if v.Value == p {
			return true
		}
	}
	return false
}

// Periods returns the period catalogue.
func Periods() []Period {
	out := make([]Period, len(periods))
	copy(out, periods)
	return out
}

type CreateParams struct {
	UserID    int64
	Name      string
	Amount    decimal.Decimal
	Category  string
	Period    string
	StartDate time.Time
	EndDate   time.Time
}

// Normalize trims input, defaults the period to monthly and the start date to
// the first of the current month, and derives the end date.
func (p *CreateParams) Normalize(now time.Time) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Period = strings.ToLower(strings.TrimSpace(p.Period))
	if p.Period == "" {
		p.Period = PeriodMonthly
	}
	if p.StartDate.IsZero() {
		y, m, _ := now.Date()
		p.StartDate = time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	}
	p.EndDate = EndDate(p.StartDate, p.Period)
}

func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("%w: valid user ID is required", ErrInvalidInput)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: budget name is required", ErrInvalidInput)
	}
	if len(p.Name) > 100 {
		return fmt.Errorf("%w: budget name must be at most 100 characters", ErrInvalidInput)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	if !IsValidPeriod(p.Period) {
		return ErrInvalidPeriod
	}
	return nil
}

// UpdateParams holds optional changes; nil fields are unchanged.
type UpdateParams struct {
	Name      *string
	Amount    *decimal.Decimal
	Category  *string
	Period    *string
	StartDate *time.Time
}

func (p *UpdateParams) Validate() error {
	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		if n == "" || len(n) > 100 {
			return fmt.Errorf("%w: budget name must be 1-100 characters", ErrInvalidInput)
		}
		p.Name = &n
	}
	if p.Amount != nil && !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	if p.Category != nil {
		c := strings.TrimSpace(*p.Category)
		p.Category = &c
	}
	if p.Period != nil {
		v := strings.ToLower(strings.TrimSpace(*p.Period))
		if !IsValidPeriod(v) {
			return ErrInvalidPeriod
		}
		p.Period = &v
	}
	return nil
}

// Apply returns b with the changes applied and the end date recomputed when
// the window moved.
func (p UpdateParams) Apply(b Budget) Budget {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}
	if p.Period != nil || p.StartDate != nil {
		b.EndDate = EndDate(b.StartDate, b.Period)
	}
	return b
}

// Summary aggregates all budgets of a user.
type Summary struct {
	TotalBudgeted    decimal.Decimal `json:"total_budgeted"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	TotalRemaining   decimal.Decimal `json:"total_remaining"`
	OverallProgress  int64           `json:"overall_progress"`
	TotalBudgets     int             `json:"total_budgets"`
	BudgetsNearLimit int             `json:"budgets_near_limit"`
	BudgetsOverLimit int             `json:"budgets_over_limit"`
}

const (
	nearLimit = 80
	overLimit = 100
)

func Summarize(budgets []*Budget) *Summary {
	s := &Summary{
		TotalBudgeted: decimal.Zero,
		TotalSpent:    decimal.Zero,
		TotalBudgets:  len(budgets),
	}
	for _, b := range budgets {
		s.TotalBudgeted = s.TotalBudgeted.Add(b.Amount)
		s.TotalSpent = s.TotalSpent.Add(b.Spent)

		switch {
		case b.Reached(overLimit):
			s.BudgetsOverLimit++
		case b.Reached(nearLimit):
			s.BudgetsNearLimit++
		}
	}
	s.TotalRemaining = s.TotalBudgeted.Sub(s.TotalSpent)
	s.OverallProgress = money.PercentInt(s.TotalSpent, s.TotalBudgeted, 100)
	return s
}
