package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/shared/logger"
	"fintrack/internal/shared/money"
)

const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 366

	dayLayout = "2006-01-02"
)

type AccountReader interface {
	GetAccount(ctx context.Context, id, userID int64) (*account.Account, error)
	ListAccounts(ctx context.Context, userID int64) ([]*account.Account, error)
}

type LedgerReader interface {
	ListTransactions(ctx context.Context, userID int64, filter transaction.Filter) (*transaction.ListResult, error)
	ExportTransactions(ctx context.Context, userID int64, filter transaction.Filter) ([]*transaction.Transaction, error)
}

// HistoryEntry is one ledger row with the account balance right after it.
type HistoryEntry struct {
	TransactionID int64           `json:"transaction_id"`
	AccountID     int64           `json:"account_id"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Type          string          `json:"type"`
	Change        decimal.Decimal `json:"change"`
	Balance       decimal.Decimal `json:"balance"`
}

// DailyBalance is the closing balance of a UTC day with that day's income
// and expenses. Transfers move the balance but count as neither.
type DailyBalance struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type AccountTrend struct {
	AccountID     int64           `json:"account_id"`
	AccountName   string          `json:"account_name"`
	Currency      string          `json:"currency"`
	StartBalance  decimal.Decimal `json:"start_balance"`
	EndBalance    decimal.Decimal `json:"end_balance"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	DailyBalances []DailyBalance  `json:"daily_balances"`
}

// BalanceTrend sums every account of the user day by day.
type BalanceTrend struct {
	Days          int             `json:"days"`
	StartBalance  decimal.Decimal `json:"start_balance"`
	EndBalance    decimal.Decimal `json:"end_balance"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	DailyBalances []DailyBalance  `json:"daily_balances"`
	Accounts      []AccountTrend  `json:"accounts"`
}

// HistoryService reconstructs past balances from the current balance and the
// ledger rows written since. No snapshots are stored.
type HistoryService struct {
	accounts AccountReader
	ledger   LedgerReader
	log      *slog.Logger
	now      func() time.Time
}

func NewHistoryService(accounts AccountReader, ledger LedgerReader) *HistoryService {
	return &HistoryService{
		accounts: accounts,
		ledger:   ledger,
		log:      logger.WithComponent("report.history"),
		now:      time.Now,
	}
}

// AccountHistory returns the latest limit rows of an account, newest first.
func (s *HistoryService) AccountHistory(ctx context.Context, userID, accountID int64, limit int) ([]HistoryEntry, error) {
	acc, err := s.accounts.GetAccount(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > transaction.MaxPageSize {
		limit = transaction.MaxPageSize
	}

	res, err := s.ledger.ListTransactions(ctx, userID, transaction.Filter{
		AccountID: &acc.ID,
		PageSize:  limit,
		SortBy:    "date",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, err
	}
	return RunningBalances(acc.Balance, res.Data), nil
}

// AccountDaily returns one closing balance per day for the last days days,
// oldest first.
func (s *HistoryService) AccountDaily(ctx context.Context, userID, accountID int64, days int) ([]DailyBalance, error) {
	acc, err := s.accounts.GetAccount(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	from, to := s.window(days)
	rows, err := s.ledger.ExportTransactions(ctx, userID, transaction.Filter{AccountID: &acc.ID, StartDate: &from})
	if err != nil {
		return nil, err
	}
	return DailyBalances(acc.Balance, rows, from, to), nil
}

// Trend returns the daily balances of every account and their total.
func (s *HistoryService) Trend(ctx context.Context, userID int64, days int) (*BalanceTrend, error) {
	accounts, err := s.accounts.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, to := s.window(days)
	rows, err := s.ledger.ExportTransactions(ctx, userID, transaction.Filter{StartDate: &from})
	if err != nil {
		return nil, err
	}

	byAccount := make(map[int64][]*transaction.Transaction, len(accounts))
	for _, t := range rows {
		byAccount[t.AccountID] = append(byAccount[t.AccountID], t)
	}

	trend := &BalanceTrend{Accounts: make([]AccountTrend, 0, len(accounts))}
	for _, acc := range accounts {
		daily := DailyBalances(acc.Balance, byAccount[acc.ID], from, to)
		at := AccountTrend{
			AccountID:     acc.ID,
			AccountName:   acc.Name,
			Currency:      acc.Currency,
			DailyBalances: daily,
		}
		at.StartBalance, at.EndBalance, at.Change, at.ChangePercent = windowChange(daily, byAccount[acc.ID], from)
		trend.Accounts = append(trend.Accounts, at)
	}

	trend.DailyBalances = SumDaily(trend.Accounts, from, to)
	trend.Days = len(trend.DailyBalances)
	trend.StartBalance, trend.EndBalance, trend.Change, trend.ChangePercent = windowChange(trend.DailyBalances, rows, from)

	s.log.DebugContext(ctx, "balance trend built", logger.FieldUserID, userID, "accounts", len(accounts), "rows", len(rows))
	return trend, nil
}

// window returns the first and last UTC day of a days long range ending today.
func (s *HistoryService) window(days int) (from, to time.Time) {
	if days < 1 {
		days = DefaultHistoryDays
	}
	if days > MaxHistoryDays {
		days = MaxHistoryDays
	}
	now := s.now().UTC()
	to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return to.AddDate(0, 0, -(days - 1)), to
}

// RunningBalances walks rows newest first, backing each row out of current
// to find the balance right after it.
func RunningBalances(current decimal.Decimal, rows []*transaction.Transaction) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(rows))
	balance := current
	for _, t := range rows {
		out = append(out, HistoryEntry{
			TransactionID: t.ID,
			AccountID:     t.AccountID,
			Date:          t.Date,
			Description:   t.Description,
			Category:      t.Category,
			Type:          t.Type,
			Change:        t.SignedAmount(),
			Balance:       balance,
		})
		balance = balance.Sub(t.SignedAmount())
	}
	return out
}

// DailyBalances lays out closing balances for every day from..to. rows must
// hold every row of the account dated on or after from, including rows dated
// after to, since current already reflects them.
func DailyBalances(current decimal.Decimal, rows []*transaction.Transaction, from, to time.Time) []DailyBalance {
	n := int(to.Sub(from).Hours()/24) + 1
	if n < 1 {
		return []DailyBalance{}
	}

	net := make(map[string]decimal.Decimal)
	income := make(map[string]decimal.Decimal)
	expense := make(map[string]decimal.Decimal)
	last := to.Format(dayLayout)
	balance := current
	for _, t := range rows {
		day := t.Date.UTC().Format(dayLayout)
		if day > last {
			balance = balance.Sub(t.SignedAmount())
			continue
		}
		net[day] = net[day].Add(t.SignedAmount())
		switch t.Type {
		case transaction.TypeIncome:
			income[day] = income[day].Add(t.Amount)
		case transaction.TypeExpense:
			expense[day] = expense[day].Add(t.Amount)
		}
	}

	out := make([]DailyBalance, n)
	for i := n - 1; i >= 0; i-- {
		day := from.AddDate(0, 0, i).Format(dayLayout)
		out[i] = DailyBalance{
			Date:    day,
			Balance: balance,
			Income:  income[day],
			Expense: expense[day],
		}
		balance = balance.Sub(net[day])
	}
	return out
}

// SumDaily adds the accounts' series day by day.
func SumDaily(accounts []AccountTrend, from, to time.Time) []DailyBalance {
	n := int(to.Sub(from).Hours()/24) + 1
	out := make([]DailyBalance, n)
	for i := range out {
		out[i] = DailyBalance{Date: from.AddDate(0, 0, i).Format(dayLayout)}
	}
	for _, a := range accounts {
		for i, d := range a.DailyBalances {
			if i >= n {
				break
			}
			out[i].Balance = out[i].Balance.Add(d.Balance)
			out[i].Income = out[i].Income.Add(d.Income)
			out[i].Expense = out[i].Expense.Add(d.Expense)
		}
	}
	return out
}

// windowChange derives the opening balance of the first day from its closing
// balance and the rows dated that day.
func windowChange(daily []DailyBalance, rows []*transaction.Transaction, from time.Time) (start, end, change, pct decimal.Decimal) {
	if len(daily) == 0 {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	}
	first := from.Format(dayLayout)
	start = daily[0].Balance
	for _, t := range rows {
		if t.Date.UTC().Format(dayLayout) == first {
			start = start.Sub(t.SignedAmount())
		}
	}
	end = daily[len(daily)-1].Balance
	change = end.Sub(start)
	return start, end, change, money.Percent(change, start.Abs())
}
