package postgres

import (
	"strconv"
	"strings"

	"github.com/lib/pq"

	"fintrack/internal/domain/transaction"
)

// sortColumnSQL maps the public sort keys to columns. The filter has
// already been normalised, so unknown keys never reach here.
var sortColumnSQL = map[string]string{
	"date":       "t.date",
	"amount":     "t.amount",
	"category":   "t.category",
	"type":       "t.type",
	"created_at": "t.created_at",
}

// txQuery accumulates WHERE clauses and positional arguments.
type txQuery struct {
	where []string
	args  []any
}

func (q *txQuery) arg(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

func (q *txQuery) add(clause string) {
	q.where = append(q.where, clause)
}

func (q *txQuery) whereSQL() string {
	return " WHERE " + strings.Join(q.where, " AND ")
}

// buildTransactionFilter translates a Filter into WHERE clauses scoped to the
// user. Column references use the t alias.
func buildTransactionFilter(userID int64, f transaction.Filter) *txQuery {
	q := &txQuery{}
	q.add("t.user_id = " + q.arg(userID))

	if f.Search != "" {
		p := q.arg("%" + escapeLike(f.Search) + "%")
		q.add("(t.description ILIKE " + p + " OR t.category ILIKE " + p + ")")
	}
	if f.Category != "" {
		q.add("LOWER(t.category) = LOWER(" + q.arg(f.Category) + ")")
	}
	if f.Type != "" {
		q.add("t.type = " + q.arg(f.Type))
	}
	if f.AccountID != nil {
		q.add("t.account_id = " + q.arg(*f.AccountID))
	}
	if f.StartDate != nil {
		q.add("t.date >= " + q.arg(*f.StartDate))
	}
	if end := f.EndExclusive(); end != nil {
		q.add("t.date < " + q.arg(*end))
	}
	if f.MinAmount != nil {
		q.add("t.amount >= " + q.arg(*f.MinAmount))
	}
	if f.MaxAmount != nil {
		q.add("t.amount <= " + q.arg(*f.MaxAmount))
	}
	if len(f.Tags) > 0 {
		lowered := make([]string, len(f.Tags))
		for i, t := range f.Tags {
			lowered[i] = strings.ToLower(t)
		}
		q.add("string_to_array(LOWER(t.tags), ',') && " + q.arg(pq.Array(lowered)) + "::text[]")
	}
	return q
}

// orderBy returns the ORDER BY clause with id as a stable tie breaker.
func orderBy(f transaction.Filter) string {
	col, ok := sortColumnSQL[f.SortBy]
	if !ok {
		col = "t.date"
	}
	dir := "DESC"
	if f.SortOrder == "asc" {
		dir = "ASC"
	}
	return " ORDER BY " + col + " " + dir + ", t.id " + dir
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
