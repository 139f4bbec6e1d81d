package recurring

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateNextRunDate(t *testing.T) {
	base := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	last := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency string
		interval  int
		lastRun   *time.Time
		want      time.Time
	}{
		{"daily", FrequencyDaily, 1, nil, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)},
		{"every 3 days", FrequencyDaily, 3, nil, time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)},
		{"weekly", FrequencyWeekly, 1, nil, time.Date(2024, 2, 7, 9, 0, 0, 0, time.UTC)},
		{"biweekly", FrequencyWeekly, 2, nil, time.Date(2024, 2, 14, 9, 0, 0, 0, time.UTC)},
		// Go normalises Feb 31 to Mar 2 in a leap year
		{"monthly from month end", FrequencyMonthly, 1, nil, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)},
		{"quarterly via interval", FrequencyMonthly, 3, &last, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)},
		{"yearly", FrequencyYearly, 1, &last, time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)},
		{"interval below one", FrequencyDaily, 0, nil, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)},
		{"unknown frequency", "fortnightly", 5, &last, time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Recurring{Frequency: tt.frequency, Interval: tt.interval, NextRunDate: base, LastRunDate: tt.lastRun}
			assert.Equal(t, tt.want, r.CalculateNextRunDate())
		})
	}
}

func TestRecurring_Exhausted(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&Recurring{}).Exhausted(now))
	assert.True(t, (&Recurring{MaxRuns: 3, TotalRuns: 3}).Exhausted(now))
	assert.False(t, (&Recurring{MaxRuns: 3, TotalRuns: 2}).Exhausted(now))
	assert.True(t, (&Recurring{EndDate: &past}).Exhausted(now))
	assert.False(t, (&Recurring{EndDate: &future}).Exhausted(now))
}

func TestCreateParams_Recurring_NextRun(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	past := CreateParams{StartDate: now.AddDate(0, -1, 0)}
	assert.Equal(t, now, past.Recurring(now).NextRunDate)

	later := now.AddDate(0, 0, 5)
	future := CreateParams{StartDate: later}
	r := future.Recurring(now)
	assert.Equal(t, later, r.NextRunDate)
	assert.True(t, r.IsActive)
}

func TestCreateParams_Validate(t *testing.T) {
	valid := func() CreateParams {
		p := CreateParams{
			UserID: 1, Amount: decimal.NewFromInt(100), Type: "Expense", AccountID: 2,
			Frequency: "MONTHLY", StartDate: time.Now(),
		}
		p.Normalize()
		return p
	}

	p := valid()
	assert.NoError(t, p.Validate())
	assert.Equal(t, 1, p.Interval)
	assert.Equal(t, "expense", p.Type)
	assert.Equal(t, "Uncategorized", p.Category)

	tests := map[string]func(p *CreateParams){
		"no amount":      func(p *CreateParams) { p.Amount = decimal.Zero },
		"bad type":       func(p *CreateParams) { p.Type = "transfer" },
		"bad frequency":  func(p *CreateParams) { p.Frequency = "hourly" },
		"no account":     func(p *CreateParams) { p.AccountID = 0 },
		"no start":       func(p *CreateParams) { p.StartDate = time.Time{} },
		"end before":     func(p *CreateParams) { e := p.StartDate.Add(-time.Hour); p.EndDate = &e },
		"day of week":    func(p *CreateParams) { p.DayOfWeek = 7 },
		"negative limit": func(p *CreateParams) { p.MaxRuns = -1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := valid()
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidInput)
		})
	}
}
