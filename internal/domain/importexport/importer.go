package importexport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/shared/logger"
)

type AccountLister interface {
	ListAccounts(ctx context.Context, userID int64) ([]*account.Account, error)
}

// TransactionWriter is the part of the ledger the importer writes through.
type TransactionWriter interface {
	CreateTransaction(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)
	IsDuplicate(ctx context.Context, criteria transaction.DuplicateCriteria) (bool, error)
}

type Importer struct {
	accounts     AccountLister
	transactions TransactionWriter
	log          *slog.Logger
}

func NewImporter(accounts AccountLister, transactions TransactionWriter) *Importer {
	return &Importer{
		accounts:     accounts,
		transactions: transactions,
		log:          logger.WithComponent("import"),
	}
}

// accountResolver picks the target account of a row: the named account,
// then the requested one, then the default, then the first.
type accountResolver struct {
	byName   map[string]int64
	fallback int64
}

func newAccountResolver(accounts []*account.Account, requested *int64) (*accountResolver, error) {
	if len(accounts) == 0 {
		return nil, ErrNoAccount
	}

	r := &accountResolver{byName: make(map[string]int64, len(accounts))}
	for _, a := range accounts {
		r.byName[strings.ToLower(strings.TrimSpace(a.Name))] = a.ID
		if a.IsDefault && r.fallback == 0 {
			r.fallback = a.ID
		}
	}

	if requested != nil {
		found := false
		for _, a := range accounts {
			if a.ID == *requested {
				found = true
				break
			}
		}
		if !found {
			return nil, account.ErrForbidden
		}
		r.fallback = *requested
	}
	if r.fallback == 0 {
		r.fallback = accounts[0].ID
	}
	return r, nil
}

func (r *accountResolver) resolve(name string) (int64, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return r.fallback, nil
	}
	id, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("unknown account %q", name)
	}
	return id, nil
}

// ImportCSV reads transactions from r. Malformed and duplicate rows are
// skipped and reported; the rest are written through the ledger one by one.
func (i *Importer) ImportCSV(ctx context.Context, userID int64, r io.Reader, accountID *int64) (*ImportResult, error) {
	accounts, err := i.accounts.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	resolver, err := newAccountResolver(accounts, accountID)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []RowError{}, TransactionIDs: []int64{}}
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.TotalRows++
		if err != nil {
			result.skip(row, "failed to read row")
			continue
		}

		params, err := parseRow(rec, cols, resolver)
		if err != nil {
			result.skip(row, err.Error())
			continue
		}
		params.UserID = userID

		dup, err := i.transactions.IsDuplicate(ctx, transaction.DuplicateCriteria{
			UserID:      userID,
			AccountID:   params.AccountID,
			Date:        params.Date,
			Amount:      params.Amount,
			Description: params.Description,
			Type:        params.Type,
		})
		if err != nil {
			result.skip(row, "failed to check for duplicates")
			continue
		}
		if dup {
			result.skip(row, "")
			continue
		}

		txn, err := i.transactions.CreateTransaction(ctx, params)
		if err != nil {
			result.skip(row, err.Error())
			continue
		}
		result.Imported++
		result.TransactionIDs = append(result.TransactionIDs, txn.ID)
	}

	i.log.InfoContext(ctx, "csv import finished",
		logger.FieldUserID, userID,
		"total_rows", result.TotalRows,
		"imported", result.Imported,
		"skipped", result.Skipped,
	)
	return result, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := cols[h]; !seen {
			cols[h] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return cols, nil
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseRow(rec []string, cols map[string]int, accounts *accountResolver) (transaction.CreateParams, error) {
	var p transaction.CreateParams

	amount, err := decimal.NewFromString(strings.ReplaceAll(field(rec, cols, "amount"), ",", ""))
	if err != nil {
		return p, fmt.Errorf("invalid amount %q", field(rec, cols, "amount"))
	}
	p.Amount = amount.Abs()
	if p.Amount.IsZero() {
		return p, errors.New("amount must not be zero")
	}

	p.Type = strings.ToLower(field(rec, cols, "type"))
	if !transaction.IsValidType(p.Type) {
		return p, fmt.Errorf("invalid type %q, must be income or expense", p.Type)
	}

	p.Date, err = parseDate(field(rec, cols, "date"))
	if err != nil {
		return p, err
	}

	p.AccountID, err = accounts.resolve(field(rec, cols, "account"))
	if err != nil {
		return p, err
	}

	p.Description = field(rec, cols, "description")
	if p.Description == "" {
		p.Description = DefaultDescription
	}
	p.Category = field(rec, cols, "category")
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if tags := field(rec, cols, "tags"); tags != "" {
		p.Tags = strings.FieldsFunc(tags, func(r rune) bool { return r == ';' || r == '|' || r == ',' })
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
