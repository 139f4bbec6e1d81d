package transaction

import (
	"context"
	"time"

	"fintrack/internal/domain/account"
	"fintrack/internal/shared/events"
)

type MockTransactionRepo struct {
	CreateFunc          func(ctx context.Context, params CreateParams) (*Transaction, error)
	GetByIDFunc         func(ctx context.Context, id int64) (*Transaction, error)
	UpdateFunc          func(ctx context.Context, id int64, params UpdateParams) (*Transaction, error)
	DeleteFunc          func(ctx context.Context, id int64) ([]*Transaction, error)
	TransferFunc        func(ctx context.Context, params TransferParams) (*Transaction, *Transaction, error)
	ListFunc            func(ctx context.Context, userID int64, filter Filter) ([]*Transaction, int64, error)
	ListAllFunc         func(ctx context.Context, userID int64, filter Filter) ([]*Transaction, error)
	ListByUserIDFunc    func(ctx context.Context, userID int64, limit, offset int) ([]*Transaction, error)
	SummarizeFunc       func(ctx context.Context, userID int64, from, to time.Time) (*Summary, error)
	MonthlyTotalsFunc   func(ctx context.Context, userID int64, from time.Time) ([]MonthlyTotal, error)
	ExistsDuplicateFunc func(ctx context.Context, criteria DuplicateCriteria) (bool, error)
}

func (m *MockTransactionRepo) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &Transaction{ID: 1, UserID: params.UserID, AccountID: params.AccountID, Amount: params.Amount, Type: params.Type}, nil
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id int64) (*Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrTransactionNotFound
}

func (m *MockTransactionRepo) Update(ctx context.Context, id int64, params UpdateParams) (*Transaction, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return &Transaction{ID: id}, nil
}

func (m *MockTransactionRepo) Delete(ctx context.Context, id int64) ([]*Transaction, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return []*Transaction{{ID: id}}, nil
}

func (m *MockTransactionRepo) Transfer(ctx context.Context, params TransferParams) (*Transaction, *Transaction, error) {
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, params)
	}
	return &Transaction{ID: 1}, &Transaction{ID: 2}, nil
}

func (m *MockTransactionRepo) List(ctx context.Context, userID int64, filter Filter) ([]*Transaction, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, filter)
	}
	return nil, 0, nil
}

func (m *MockTransactionRepo) ListAll(ctx context.Context, userID int64, filter Filter) ([]*Transaction, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, userID, filter)
	}
	return nil, nil
}

func (m *MockTransactionRepo) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Transaction, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *MockTransactionRepo) Summarize(ctx context.Context, userID int64, from, to time.Time) (*Summary, error) {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, userID, from, to)
	}
	return &Summary{}, nil
}

func (m *MockTransactionRepo) MonthlyTotals(ctx context.Context, userID int64, from time.Time) ([]MonthlyTotal, error) {
	if m.MonthlyTotalsFunc != nil {
		return m.MonthlyTotalsFunc(ctx, userID, from)
	}
	return nil, nil
}

func (m *MockTransactionRepo) ExistsDuplicate(ctx context.Context, criteria DuplicateCriteria) (bool, error) {
	if m.ExistsDuplicateFunc != nil {
		return m.ExistsDuplicateFunc(ctx, criteria)
	}
	return false, nil
}

type mockAccounts struct {
	accounts map[int64]*account.Account
}

func (m *mockAccounts) GetByID(_ context.Context, id int64) (*account.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, account.ErrAccountNotFound
}

type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }
