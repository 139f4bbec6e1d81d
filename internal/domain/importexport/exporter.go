package importexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/transaction"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	transactionHeader = []string{"ID", "Date", "Type", "Category", "Description", "Amount", "Account", "Tags", "Created At"}
	accountHeader     = []string{"ID", "Name", "Type", "Balance", "Currency", "Created At"}
	templateHeader    = []string{"date", "description", "amount", "type", "category", "account", "tags"}
)

// WriteTransactionsCSV writes one row per transaction. Tags are joined with
// semicolons so the column survives a round trip through ImportCSV.
func WriteTransactionsCSV(w io.Writer, txns []*transaction.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(transactionHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, t := range txns {
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Date.Format("2006-01-02"),
			t.Type,
			t.Category,
			t.Description,
			t.Amount.StringFixed(2),
			t.AccountName,
			strings.Join(t.Tags, ";"),
			t.CreatedAt.Format(timestampLayout),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing transaction %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteAccountsCSV(w io.Writer, accounts []*account.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(accountHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, a := range accounts {
		row := []string{
			strconv.FormatInt(a.ID, 10),
			a.Name,
			a.Type,
			a.Balance.StringFixed(2),
			a.Currency,
			a.CreatedAt.Format(timestampLayout),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing account %d: %w", a.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTemplate writes the import header and two example rows.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		templateHeader,
		{"2024-01-15", "Grocery shopping", "85.50", "expense", "Food & Dining", "", "groceries;weekly"},
		{"2024-01-31", "Monthly salary", "3500.00", "income", "Salary", "", ""},
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	return nil
}

// Filename builds an attachment name such as transactions_2024-01-31.csv.
func Filename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("2006-01-02"), ext)
}
