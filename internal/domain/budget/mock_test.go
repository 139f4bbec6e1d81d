package budget

import (
	"context"
	"time"

	"fintrack/internal/domain/notification"
)

type MockRepository struct {
	CreateFunc                   func(ctx context.Context, params CreateParams) (*Budget, error)
	GetByIDFunc                  func(ctx context.Context, id int64) (*Budget, error)
	ListByUserIDFunc             func(ctx context.Context, userID int64) ([]*Budget, error)
	ListActiveFunc               func(ctx context.Context, userID int64, at time.Time) ([]*Budget, error)
	UpdateFunc                   func(ctx context.Context, b *Budget) (*Budget, error)
	DeleteFunc                   func(ctx context.Context, id int64) error
	UserIDsWithActiveBudgetsFunc func(ctx context.Context, at time.Time) ([]int64, error)
}

func (m *MockRepository) Create(ctx context.Context, params CreateParams) (*Budget, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &Budget{ID: 1, UserID: params.UserID, Name: params.Name, Amount: params.Amount,
		Category: params.Category, Period: params.Period, StartDate: params.StartDate, EndDate: params.EndDate}, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Budget, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrBudgetNotFound
}

func (m *MockRepository) ListByUserID(ctx context.Context, userID int64) ([]*Budget, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) ListActive(ctx context.Context, userID int64, at time.Time) ([]*Budget, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, userID, at)
	}
	return nil, nil
}

func (m *MockRepository) Update(ctx context.Context, b *Budget) (*Budget, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, b)
	}
	return b, nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockRepository) UserIDsWithActiveBudgets(ctx context.Context, at time.Time) ([]int64, error) {
	if m.UserIDsWithActiveBudgetsFunc != nil {
		return m.UserIDsWithActiveBudgetsFunc(ctx, at)
	}
	return nil, nil
}

type MockNotifier struct {
	recent map[int64]bool
	sent   []notification.CreateParams
}

func (m *MockNotifier) Notify(ctx context.Context, params notification.CreateParams) (*notification.Notification, error) {
	m.sent = append(m.sent, params)
	return &notification.Notification{ID: int64(len(m.sent)), UserID: params.UserID}, nil
}

func (m *MockNotifier) RecentlyNotified(ctx context.Context, userID int64, notificationType, relatedType string, relatedID int64, window time.Duration) (bool, error) {
	return m.recent[relatedID], nil
}
