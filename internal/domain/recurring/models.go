package recurring

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain/transaction"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

var validFrequencies = map[string]struct{}{
	FrequencyDaily:   {},
	FrequencyWeekly:  {},
	FrequencyMonthly: {},
	FrequencyYearly:  {},
}

var (
	ErrRecurringNotFound = errors.New("recurring transaction not found")
	ErrForbidden         = errors.New("access forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotActive         = errors.New("recurring transaction is not active")
)

// Recurring is a template that materialises transactions on a schedule.
type Recurring struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	AccountID   int64           `json:"account_id"`
	Tags        []string        `json:"tags"`
	Frequency   string          `json:"frequency"`
	Interval    int             `json:"interval"`
	DayOfWeek   int             `json:"day_of_week"`
	DayOfMonth  int             `json:"day_of_month"`
	MonthOfYear int             `json:"month_of_year"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	NextRunDate time.Time       `json:"next_run_date"`
	LastRunDate *time.Time      `json:"last_run_date,omitempty"`
	IsActive    bool            `json:"is_active"`
	TotalRuns   int             `json:"total_runs"`
	MaxRuns     int             `json:"max_runs"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CalculateNextRunDate advances from the last run, or from the scheduled
// next run when the template never ran, by interval units of the frequency.
func (r *Recurring) CalculateNextRunDate() time.Time {
	base := r.NextRunDate
	if r.LastRunDate != nil {
		base = *r.LastRunDate
	}

	n := r.Interval
	if n < 1 {
		n = 1
	}

	switch r.Frequency {
	case FrequencyDaily:
		return base.AddDate(0, 0, n)
	case FrequencyWeekly:
		return base.AddDate(0, 0, 7*n)
	case FrequencyMonthly:
		return base.AddDate(0, n, 0)
	case FrequencyYearly:
		return base.AddDate(n, 0, 0)
	default:
		return base.AddDate(0, 1, 0)
	}
}

// Exhausted reports whether the template reached max runs or its end date.
func (r *Recurring) Exhausted(now time.Time) bool {
	if r.MaxRuns > 0 && r.TotalRuns >= r.MaxRuns {
		return true
	}
	return r.EndDate != nil && now.After(*r.EndDate)
}

// TransactionParams builds the ledger entry for one run.
func (r *Recurring) TransactionParams(description string, date time.Time) transaction.CreateParams {
	id := r.ID
	return transaction.CreateParams{
		UserID:      r.UserID,
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		Description: description,
		Category:    r.Category,
		Type:        r.Type,
		Date:        date,
		Tags:        r.Tags,
		RecurringID: &id,
	}
}

// Run is the outcome of a materialised template.
type Run struct {
	Recurring   *Recurring               `json:"recurring_transaction"`
	Transaction *transaction.Transaction `json:"transaction"`
}

func IsValidFrequency(f string) bool {
	_, ok := validFrequencies[f]
	return ok
}

type CreateParams struct {
	UserID      int64
	Amount      decimal.Decimal
	Description string
	Category    string
	Type        string
	AccountID   int64
	Tags        []string
	Frequency   string
	Interval    int
	DayOfWeek   int
	DayOfMonth  int
	MonthOfYear int
	StartDate   time.Time
	EndDate     *time.Time
	MaxRuns     int
}

func (p *CreateParams) Normalize() {
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = transaction.DefaultCategory
	}
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	p.Frequency = strings.ToLower(strings.TrimSpace(p.Frequency))
	p.Tags = transaction.NormalizeTags(p.Tags)
	if p.Interval < 1 {
		p.Interval = 1
	}
}

func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("%w: valid user ID is required", ErrInvalidInput)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	if !transaction.IsValidType(p.Type) {
		return fmt.Errorf("%w: type must be income or expense", ErrInvalidInput)
	}
	if p.AccountID <= 0 {
		return fmt.Errorf("%w: account_id is required", ErrInvalidInput)
	}
	if !IsValidFrequency(p.Frequency) {
		return fmt.Errorf("%w: frequency must be daily, weekly, monthly or yearly", ErrInvalidInput)
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", ErrInvalidInput)
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	if p.DayOfWeek < 0 || p.DayOfWeek > 6 {
		return fmt.Errorf("%w: day_of_week must be 0-6", ErrInvalidInput)
	}
	if p.DayOfMonth < 0 || p.DayOfMonth > 31 {
		return fmt.Errorf("%w: day_of_month must be 1-31", ErrInvalidInput)
	}
	if p.MonthOfYear < 0 || p.MonthOfYear > 12 {
		return fmt.Errorf("%w: month_of_year must be 1-12", ErrInvalidInput)
	}
	if p.MaxRuns < 0 {
		return fmt.Errorf("%w: max_runs cannot be negative", ErrInvalidInput)
	}
	return nil
}

// Recurring builds the template. The first run is the later of the start
// date and now.
func (p CreateParams) Recurring(now time.Time) *Recurring {
	next := p.StartDate
	if next.Before(now) {
		next = now
	}
	return &Recurring{
		UserID:      p.UserID,
		Amount:      p.Amount,
		Description: p.Description,
		Category:    p.Category,
		Type:        p.Type,
		AccountID:   p.AccountID,
		Tags:        p.Tags,
		Frequency:   p.Frequency,
		Interval:    p.Interval,
		DayOfWeek:   p.DayOfWeek,
		DayOfMonth:  p.DayOfMonth,
		MonthOfYear: p.MonthOfYear,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		NextRunDate: next,
		IsActive:    true,
		MaxRuns:     p.MaxRuns,
	}
}

// UpdateParams replaces the template definition. Run counters and dates are
// kept.
type UpdateParams = CreateParams

// ProcessResult summarises one ProcessDue pass.
type ProcessResult struct {
	Processed   int      `json:"processed"`
	Deactivated int      `json:"deactivated"`
	Failed      int      `json:"failed"`
	Errors      []string `json:"errors,omitempty"`
}

func (r *ProcessResult) add(o ProcessResult) {
	r.Processed += o.Processed
	r.Deactivated += o.Deactivated
	r.Failed += o.Failed
	r.Errors = append(r.Errors, o.Errors...)
}
