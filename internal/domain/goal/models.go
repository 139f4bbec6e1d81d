package goal

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/shared/money"
)

const (
	PriorityLow    = 0
	PriorityMedium = 1
	PriorityHigh   = 2
)

var categories = []string{
	"emergency",
	"vacation",
	"car",
	"home",
	"education",
	"retirement",
	"wedding",
	"electronics",
	"investment",
	"other",
}

var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrForbidden    = errors.New("access forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

type Goal struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Currency      string          `json:"currency"`
	Category      string          `json:"category"`
	Icon          string          `json:"icon"`
	Color         string          `json:"color"`
	TargetDate    *time.Time      `json:"target_date,omitempty"`
	StartDate     time.Time       `json:"start_date"`
	AccountID     *int64          `json:"account_id,omitempty"`
	IsCompleted   bool            `json:"is_completed"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	Priority      int             `json:"priority"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// UpdateCompletion marks the goal completed when the target is reached and
// clears completion when it drops below. It reports whether the goal has
// just become completed.
func (g *Goal) UpdateCompletion(now time.Time) bool {
	reached := g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
	switch {
	case reached && !g.IsCompleted:
		g.IsCompleted = true
		g.CompletedAt = &now
		return true
	case !reached && g.IsCompleted:
		g.IsCompleted = false
		g.CompletedAt = nil
	}
	return false
}

// Response is a goal with its derived progress fields.
type Response struct {
	*Goal
	ProgressPercent decimal.Decimal `json:"progress_percent"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DaysRemaining   *int            `json:"days_remaining"`
}

// ToResponse computes progress (capped at 100), the remaining amount (never
// negative) and whole days left until the target date.
func (g *Goal) ToResponse(now time.Time) *Response {
	r := &Response{
		Goal:            g,
		ProgressPercent: money.Cap(money.Percent(g.CurrentAmount, g.TargetAmount), decimal.NewFromInt(100)),
		RemainingAmount: money.NonNegative(g.TargetAmount.Sub(g.CurrentAmount)),
	}
	if g.TargetDate != nil && !g.IsCompleted {
		days := int(math.Ceil(g.TargetDate.Sub(now).Hours() / 24))
		if days < 0 {
			days = 0
		}
		r.DaysRemaining = &days
	}
	return r
}

func IsValidCategory(c string) bool {
	for _, v := range categories {
		if v == c {
			return true
		}
	}
	return false
}

// Categories returns the fixed goal category list.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

type CreateParams struct {
	UserID        int64
	Name          string
	Description   string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Currency      string
	Category      string
	Icon          string
	Color         string
	TargetDate    *time.Time
	StartDate     time.Time
	AccountID     *int64
	Priority      int
}

func (p *CreateParams) Normalize(now time.Time) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Currency = money.NormalizeCurrency(p.Currency)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	if p.Category == "" {
		p.Category = "other"
	}
	if p.StartDate.IsZero() {
		p.StartDate = now
	}
}

func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("%w: valid user ID is required", ErrInvalidInput)
	}
	if p.Name == "" || len(p.Name) > 100 {
		return fmt.Errorf("%w: goal name must be 1-100 characters", ErrInvalidInput)
	}
	if !p.TargetAmount.IsPositive() {
		return fmt.Errorf("%w: target_amount must be greater than zero", ErrInvalidInput)
	}
	if p.CurrentAmount.IsNegative() {
		return fmt.Errorf("%w: current_amount cannot be negative", ErrInvalidInput)
	}
	if !money.IsValidCurrency(p.Currency) {
		return fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, p.Currency)
	}
	if !IsValidCategory(p.Category) {
		return fmt.Errorf("%w: unknown goal category %q", ErrInvalidInput, p.Category)
	}
	if p.Priority < PriorityLow || p.Priority > PriorityHigh {
		return fmt.Errorf("%w: priority must be 0, 1 or 2", ErrInvalidInput)
	}
	return nil
}

// Goal builds the new goal, completion state included.
func (p CreateParams) Goal(now time.Time) *Goal {
	g := &Goal{
		UserID:        p.UserID,
		Name:          p.Name,
		Description:   p.Description,
		TargetAmount:  p.TargetAmount,
		CurrentAmount: p.CurrentAmount,
		Currency:      p.Currency,
		Category:      p.Category,
		Icon:          p.Icon,
		Color:         p.Color,
		TargetDate:    p.TargetDate,
		StartDate:     p.StartDate,
		AccountID:     p.AccountID,
		Priority:      p.Priority,
	}
	g.UpdateCompletion(now)
	return g
}

// UpdateParams holds optional changes; nil fields are unchanged.
type UpdateParams struct {
	Name          *string
	Description   *string
	TargetAmount  *decimal.Decimal
	CurrentAmount *decimal.Decimal
	Currency      *string
	Category      *string
	Icon          *string
	Color         *string
	TargetDate    *time.Time
	AccountID     *int64
	Priority      *int
}

func (p *UpdateParams) Validate() error {
	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		if n == "" || len(n) > 100 {
			return fmt.Errorf("%w: goal name must be 1-100 characters", ErrInvalidInput)
		}
		p.Name = &n
	}
	if p.TargetAmount != nil && !p.TargetAmount.IsPositive() {
		return fmt.Errorf("%w: target_amount must be greater than zero", ErrInvalidInput)
	}
	if p.CurrentAmount != nil && p.CurrentAmount.IsNegative() {
		return fmt.Errorf("%w: current_amount cannot be negative", ErrInvalidInput)
	}
	if p.Currency != nil {
		c := money.NormalizeCurrency(*p.Currency)
		if !money.IsValidCurrency(c) {
			return fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, c)
		}
		p.Currency = &c
	}
	if p.Category != nil {
		c := strings.ToLower(strings.TrimSpace(*p.Category))
		if !IsValidCategory(c) {
			return fmt.Errorf("%w: unknown goal category %q", ErrInvalidInput, c)
		}
		p.Category = &c
	}
	if p.Priority != nil && (*p.Priority < PriorityLow || *p.Priority > PriorityHigh) {
		return fmt.Errorf("%w: priority must be 0, 1 or 2", ErrInvalidInput)
	}
	return nil
}

func (p UpdateParams) Apply(g Goal) Goal {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Description != nil {
		g.Description = strings.TrimSpace(*p.Description)
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.CurrentAmount != nil {
		g.CurrentAmount = *p.CurrentAmount
	}
	if p.Currency != nil {
		g.Currency = *p.Currency
	}
	if p.Category != nil {
		g.Category = *p.Category
	}
	if p.Icon != nil {
		g.Icon = *p.Icon
	}
	if p.Color != nil {
		g.Color = *p.Color
	}
	if p.TargetDate != nil {
		g.TargetDate = p.TargetDate
	}
	if p.AccountID != nil {
		g.AccountID = p.AccountID
	}
	if p.Priority != nil {
		g.Priority = *p.Priority
	}
	return g
}

// ContributeParams adds to (or, when negative, withdraws from) a goal.
type ContributeParams struct {
	Amount      decimal.Decimal
	Description string
}

func (p ContributeParams) Validate() error {
	if p.Amount.IsZero() {
		return fmt.Errorf("%w: amount must not be zero", ErrInvalidInput)
	}
	return nil
}

type Summary struct {
	TotalGoals        int             `json:"total_goals"`
	CompletedGoals    int             `json:"completed_goals"`
	InProgressGoals   int             `json:"in_progress_goals"`
	TotalTargetAmount decimal.Decimal `json:"total_target_amount"`
	TotalSavedAmount  decimal.Decimal `json:"total_saved_amount"`
	OverallProgress   int64           `json:"overall_progress"`
}

func Summarize(goals []*Goal) *Summary {
	s := &Summary{
		TotalGoals:        len(goals),
		TotalTargetAmount: decimal.Zero,
		TotalSavedAmount:  decimal.Zero,
	}
	for _, g := range goals {
		if g.IsCompleted {
			s.CompletedGoals++
		} else {
			s.InProgressGoals++
		}
		s.TotalTargetAmount = s.TotalTargetAmount.Add(g.TargetAmount)
		s.TotalSavedAmount = s.TotalSavedAmount.Add(g.CurrentAmount)
	}
	s.OverallProgress = money.PercentInt(s.TotalSavedAmount, s.TotalTargetAmount, 100)
	return s
}
