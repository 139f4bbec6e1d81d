package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "placeholders kept",
			query: "SELECT id FROM users WHERE id = $1 AND email = $12",
			want:  "SELECT id FROM users WHERE id = $1 AND email = $12",
		},
		{
			name:  "string literal",
			query: "SELECT 1 FROM t WHERE name = 'O''Brien'",
			want:  "SELECT ? FROM t WHERE name = '?'",
		},
		{
			name:  "numbers replaced",
			query: "SELECT * FROM t LIMIT 10 OFFSET 2.5",
			want:  "SELECT * FROM t LIMIT ? OFFSET ?",
		},
		{
			name:  "identifiers with digits",
			query: "SELECT col1 FROM t2",
			want:  "SELECT col1 FROM t2",
		},
		{
			name:  "whitespace collapsed",
			query: "\n\t\tSELECT  id\n\t\tFROM users\n",
			want:  "SELECT id FROM users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeQuery(tt.query))
		})
	}
}

func TestSanitizeQuery_Truncates(t *testing.T) {
	q := "SELECT " + strings.Repeat("a", 400)
	got := sanitizeQuery(q)
	assert.Len(t, got, 259)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestExtractSQLVerb(t *testing.T) {
	assert.Equal(t, "SELECT", extractSQLVerb("  select id from t"))
	assert.Equal(t, "INSERT", extractSQLVerb("\n\t\tINSERT INTO t"))
	assert.Equal(t, "COMMIT", extractSQLVerb("commit"))
}

func TestPQErrorClassification(t *testing.T) {
	unique := fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505"})
	fk := &pq.Error{Code: "23503"}

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(errors.New("boom")))
}

func TestNullHelpers(t *testing.T) {
	id := int64(5)
	assert.Equal(t, sql.NullInt64{Int64: 5, Valid: true}, nullInt64(&id))
	assert.Nil(t, int64Ptr(sql.NullInt64{}))
	assert.Equal(t, int64(5), *int64Ptr(sql.NullInt64{Int64: 5, Valid: true}))

	now := time.Now()
	assert.False(t, nullTime(nil).Valid)
	assert.Equal(t, now, *timePtr(nullTime(&now)))
}
