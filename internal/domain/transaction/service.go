package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/domain/account"
	"fintrack/internal/shared/cache"
	"fintrack/internal/shared/events"
	"fintrack/internal/shared/logger"
)

const transferMessage = "Transfer completed successfully"

// AccountGetter is the part of the account repository the ledger needs for
// ownership checks.
type AccountGetter interface {
	GetByID(ctx context.Context, id int64) (*account.Account, error)
}

type Service struct {
	repo      Repository
	accounts  AccountGetter
	publisher events.Publisher
	cache     *cache.SummaryCache
	log       *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, accounts AccountGetter, publisher events.Publisher, c *cache.SummaryCache) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		accounts:  accounts,
		publisher: publisher,
		cache:     c,
		log:       logger.WithComponent("transaction"),
		now:       time.Now,
	}
}

func (s *Service) ownedAccount(ctx context.Context, accountID, userID int64) (*account.Account, error) {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.UserID != userID {
		return nil, ErrForbidden
	}
	return acc, nil
}

// afterWrite drops cached aggregates and publishes the domain event.
func (s *Service) afterWrite(ctx context.Context, userID int64, eventType string, payload any) {
	s.cache.InvalidateUser(userID)
	events.Emit(ctx, s.publisher, events.New(eventType, userID, payload))
}

func (s *Service) CreateTransaction(ctx context.Context, params CreateParams) (*Transaction, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedAccount(ctx, params.AccountID, params.UserID); err != nil {
		return nil, err
	}

	txn, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, params.UserID, events.TransactionCreated, txn)
	return txn, nil
}

// GetTransaction loads a transaction and verifies the caller owns it.
func (s *Service) GetTransaction(ctx context.Context, id, userID int64) (*Transaction, error) {
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, ErrForbidden
	}
	return txn, nil
}

func (s *Service) UpdateTransaction(ctx context.Context, id, userID int64, params UpdateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.GetTransaction(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if existing.IsTransfer() && params.touchesLedger() {
		return nil, ErrTransferLegChange
	}
	if params.AccountID != nil && *params.AccountID != existing.AccountID {
		if _, err := s.ownedAccount(ctx, *params.AccountID, userID); err != nil {
			return nil, err
		}
	}

	txn, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, userID, events.TransactionUpdated, txn)
	return txn, nil
}

// DeleteTransaction removes the transaction; for a transfer leg both legs go.
func (s *Service) DeleteTransaction(ctx context.Context, id, userID int64) error {
	if _, err := s.GetTransaction(ctx, id, userID); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.afterWrite(ctx, userID, events.TransactionDeleted, deleted)
	return nil
}

func (s *Service) ListTransactions(ctx context.Context, userID int64, filter Filter) (*ListResult, error) {
	filter.Normalize()

	rows, total, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*Transaction{}
	}

	return &ListResult{
		Data:       rows,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: TotalPages(total, filter.PageSize),
	}, nil
}

// Search is ListTransactions with a free-text query.
func (s *Service) Search(ctx context.Context, userID int64, query string, filter Filter) (*ListResult, error) {
	filter.Search = query
	return s.ListTransactions(ctx, userID, filter)
}

// Recent returns the user's latest transactions by date.
func (s *Service) Recent(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	res, err := s.ListTransactions(ctx, userID, Filter{PageSize: limit, SortBy: "date", SortOrder: "desc"})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ExportTransactions returns every transaction matching the filter, unpaged.
func (s *Service) ExportTransactions(ctx context.Context, userID int64, filter Filter) ([]*Transaction, error) {
	filter.Normalize()
	rows, err := s.repo.ListAll(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*Transaction{}
	}
	return rows, nil
}

// GetSummary totals income and expenses from the start of the current week,
// month or year until now.
func (s *Service) GetSummary(ctx context.Context, userID int64, period string) (*Summary, error) {
	now := s.now()
	period, from := PeriodStart(period, now)

	key := "transactions.summary." + period
	if cached, ok := cache.Lookup[*Summary](s.cache, userID, key); ok {
		return cached, nil
	}
	version := s.cache.Version(userID)

	summary, err := s.repo.Summarize(ctx, userID, from, now)
	if err != nil {
		return nil, err
	}
	summary.Period = period
	summary.From = from
	summary.To = now
	summary.Balance = summary.Income.Sub(summary.Expenses)
	if summary.ByCategory == nil {
		summary.ByCategory = []CategoryTotal{}
	}

	s.cache.Set(userID, version, key, summary)
	return summary, nil
}

func (s *Service) MonthlyTotals(ctx context.Context, userID int64, from time.Time) ([]MonthlyTotal, error) {
	return s.repo.MonthlyTotals(ctx, userID, from)
}

// Transfer moves money between two of the user's accounts.
func (s *Service) Transfer(ctx context.Context, params TransferParams) (*TransferResult, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	from, err := s.ownedAccount(ctx, params.FromAccountID, params.UserID)
	if err != nil {
		return nil, err
	}
	to, err := s.ownedAccount(ctx, params.ToAccountID, params.UserID)
	if err != nil {
		return nil, err
	}

	if params.Description == "" {
		params.Description = fmt.Sprintf("Transfer from %s to %s", from.Name, to.Name)
	}

	out, in, err := s.repo.Transfer(ctx, params)
	if err != nil {
		return nil, err
	}

	result := &TransferResult{From: out, To: in, Message: transferMessage}
	s.afterWrite(ctx, params.UserID, events.TransferCompleted, result)
	s.log.InfoContext(ctx, "transfer completed",
		logger.FieldUserID, params.UserID,
		"from_account_id", params.FromAccountID,
		"to_account_id", params.ToAccountID,
		"amount", params.Amount.String(),
	)
	return result, nil
}

func (s *Service) IsDuplicate(ctx context.Context, criteria DuplicateCriteria) (bool, error) {
	return s.repo.ExistsDuplicate(ctx, criteria)
}
