// Package importexport moves transactions and accounts in and out of the
// ledger as CSV.
package importexport

import (
	"errors"
	"time"
)

const (
	// MaxUploadSize bounds an imported file.
	MaxUploadSize = 10 << 20

	DefaultDescription = "Imported transaction"
	DefaultCategory    = "Other"
)

// Accepted import date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

var requiredColumns = []string{"amount", "type", "date"}

var (
	ErrEmptyFile     = errors.New("csv file is empty")
	ErrMissingColumn = errors.New("csv is missing a required column")
	ErrNoAccount     = errors.New("no account available for import")
)

// RowError reports why one data row was not imported. Row 1 is the first
// line after the header.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	TotalRows      int        `json:"total_rows"`
	Imported       int        `json:"imported"`
	Skipped        int        `json:"skipped"`
	Errors         []RowError `json:"errors"`
	TransactionIDs []int64    `json:"transaction_ids"`
}

func (r *ImportResult) skip(row int, msg string) {
	r.Skipped++
	if msg != "" {
		r.Errors = append(r.Errors, RowError{Row: row, Message: msg})
	}
}
