package transaction

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	dateLayout = "2006-01-02"
)

var sortColumns = map[string]struct{}{
	"date":       {},
	"amount":     {},
	"category":   {},
	"type":       {},
	"created_at": {},
}

// Filter narrows and orders a transaction listing.
type Filter struct {
	Search    string
	Category  string
	Type      string
	AccountID *int64
	StartDate *time.Time
	EndDate   *time.Time // inclusive, whole day
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Tags      []string

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Normalize applies defaults and clamps paging and sort values.
func (f *Filter) Normalize() {
	f.Search = strings.TrimSpace(f.Search)
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	f.Tags = NormalizeTags(f.Tags)

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if _, ok := sortColumns[f.SortBy]; !ok {
		f.SortBy = "date"
	}
	f.SortOrder = strings.ToLower(f.SortOrder)
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
}

func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// EndExclusive returns the first instant after EndDate's day.
func (f Filter) EndExclusive() *time.Time {
	if f.EndDate == nil {
		return nil
	}
	d := f.EndDate.AddDate(0, 0, 1)
	return &d
}

func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// FilterFromQuery parses list query parameters. Malformed values yield
// ErrInvalidInput.
func FilterFromQuery(q url.Values) (Filter, error) {
	f := Filter{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		Type:      q.Get("type"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	if v := q.Get("account_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, fmt.Errorf("%w: invalid account_id", ErrInvalidInput)
		}
		f.AccountID = &id
	}

	for key, dst := range map[string]**time.Time{"start_date": &f.StartDate, "end_date": &f.EndDate} {
		if v := q.Get(key); v != "" {
			d, err := time.Parse(dateLayout, v)
			if err != nil {
				return f, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidInput, key)
			}
			*dst = &d
		}
	}

	for key, dst := range map[string]**decimal.Decimal{"min_amount": &f.MinAmount, "max_amount": &f.MaxAmount} {
		if v := q.Get(key); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return f, fmt.Errorf("%w: invalid %s", ErrInvalidInput, key)
			}
			*dst = &d
		}
	}

	if v := q.Get("tags"); v != "" {
		f.Tags = strings.Split(v, ",")
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("%w: invalid page", ErrInvalidInput)
		}
		f.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("%w: invalid page_size", ErrInvalidInput)
		}
		f.PageSize = n
	}

	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}

	f.Normalize()
	return f, nil
}

// PeriodStart returns the beginning of the week (Monday), month or year
// containing now. Unknown periods fall back to month.
func PeriodStart(period string, now time.Time) (string, time.Time) {
	y, m, d := now.Date()
	loc := now.Location()

	switch period {
	case "week":
		offset := (int(now.Weekday()) + 6) % 7
		return "week", time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case "year":
		return "year", time.Date(y, 1, 1, 0, 0, 0, 0, loc)
	default:
		return "month", time.Date(y, m, 1, 0, 0, 0, 0, loc)
	}
}
