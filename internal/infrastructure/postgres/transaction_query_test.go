package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/domain/transaction"
)

func TestBuildTransactionFilter_UserOnly(t *testing.T) {
	f := transaction.Filter{}
	f.Normalize()

	q := buildTransactionFilter(7, f)

	assert.Equal(t, " WHERE t.user_id = $1", q.whereSQL())
	assert.Equal(t, []any{int64(7)}, q.args)
}

func TestBuildTransactionFilter_AllFields(t *testing.T) {
	accountID := int64(3)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	min := decimal.NewFromInt(10)
	max := decimal.NewFromInt(100)

	f := transaction.Filter{
		Search:    "coffee_50%",
		Category:  "Food & Dining",
		Type:      "expense",
		AccountID: &accountID,
		StartDate: &start,
		EndDate:   &end,
		MinAmount: &min,
		MaxAmount: &max,
		Tags:      []string{"Work", "travel"},
	}
	f.Normalize()

	q := buildTransactionFilter(1, f)
	where := q.whereSQL()

	assert.Contains(t, where, "(t.description ILIKE $2 OR t.category ILIKE $2)")
	assert.Contains(t, where, "LOWER(t.category) = LOWER($3)")
	assert.Contains(t, where, "t.type = $4")
	assert.Contains(t, where, "t.account_id = $5")
	assert.Contains(t, where, "t.date >= $6")
	assert.Contains(t, where, "t.date < $7")
	assert.Contains(t, where, "t.amount >= $8")
	assert.Contains(t, where, "t.amount <= $9")
	assert.Contains(t, where, "string_to_array(LOWER(t.tags), ',') && $10::text[]")
	require.Len(t, q.args, 10)

	assert.Equal(t, `%coffee\_50\%%`, q.args[1])
	assert.Equal(t, end.AddDate(0, 0, 1), q.args[6], "end date is inclusive of the whole day")
}

func TestBuildTransactionFilter_PagingArgsFollowFilter(t *testing.T) {
	f := transaction.Filter{Type: "income", Page: 3, PageSize: 10}
	f.Normalize()

	q := buildTransactionFilter(1, f)
	limit := q.arg(f.PageSize)
	offset := q.arg(f.Offset())

	assert.Equal(t, "$3", limit)
	assert.Equal(t, "$4", offset)
	assert.Equal(t, 20, q.args[3])
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		name   string
		filter transaction.Filter
		want   string
	}{
		{"default", transaction.Filter{}, " ORDER BY t.date DESC, t.id DESC"},
		{"amount asc", transaction.Filter{SortBy: "amount", SortOrder: "ASC"}, " ORDER BY t.amount ASC, t.id ASC"},
		{"unknown column", transaction.Filter{SortBy: "password; DROP TABLE users"}, " ORDER BY t.date DESC, t.id DESC"},
		{"created_at", transaction.Filter{SortBy: "created_at", SortOrder: "desc"}, " ORDER BY t.created_at DESC, t.id DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.filter
			f.Normalize()
			assert.Equal(t, tt.want, orderBy(f))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
	assert.False(t, strings.Contains(escapeLike("plain"), `\`))
}
