package importexport

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/transaction"
)

func TestWriteTransactionsCSV(t *testing.T) {
	created := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	txns := []*transaction.Transaction{
		{
			ID: 1, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Type: "expense",
			Category: "Shopping", Description: "Shoes, red", Amount: decimal.RequireFromString("59.9"),
			AccountName: "Visa", Tags: []string{"clothes", "gift"}, CreatedAt: created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, txns))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, transactionHeader, records[0])
	assert.Equal(t, []string{"1", "2024-01-02", "expense", "Shopping", "Shoes, red", "59.90", "Visa", "clothes;gift", "2024-01-02 15:04:05"}, records[1])
}

func TestWriteAccountsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAccountsCSV(&buf, []*account.Account{
		{ID: 3, Name: "Savings", Type: "savings", Balance: decimal.NewFromInt(1000), Currency: "EUR"},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Name,Type,Balance,Currency,Created At", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "3,Savings,savings,1000.00,EUR,"))
}

func TestTemplate_RoundTripsThroughImport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	ledger := &mockLedger{}
	res, err := NewImporter(testAccounts, ledger).ImportCSV(context.Background(), 1, &buf, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalRows)
	assert.Equal(t, 2, res.Imported)
	assert.Empty(t, res.Errors)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "transactions_2024-03-09.csv", Filename("transactions", "csv", time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)))
}
