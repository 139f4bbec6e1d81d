package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/budget"
	"fintrack/internal/domain/category"
	"fintrack/internal/domain/goal"
	"fintrack/internal/domain/notification"
	"fintrack/internal/domain/recurring"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/domain/user"
	"fintrack/internal/shared/middleware"
)

// withUser authenticates r as userID the way middleware.Auth does.
func withUser(r *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	return r.WithContext(ctx)
}

// MockUserRepo implements user.Repository for testing
type MockUserRepo struct {
	CreateFunc        func(ctx context.Context, params user.CreateUserParams) (*user.User, error)
	GetByIDFunc       func(ctx context.Context, id int64) (*user.User, error)
	GetByLoginFunc    func(ctx context.Context, login string) (*user.User, error)
	UpdateProfileFunc func(ctx context.Context, userID int64, params user.UpdateProfileParams) (*user.User, error)
}

func (m *MockUserRepo) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &user.User{ID: 1, Username: params.Username, Email: params.Email, IsActive: true}, nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *MockUserRepo) GetByLogin(ctx context.Context, login string) (*user.User, error) {
	if m.GetByLoginFunc != nil {
		return m.GetByLoginFunc(ctx, login)
	}
	return nil, user.ErrUserNotFound
}

func (m *MockUserRepo) List(ctx context.Context) ([]*user.User, error) {
	return nil, nil
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, userID int64, params user.UpdateProfileParams) (*user.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, params)
	}
	return &user.User{ID: userID}, nil
}

func (m *MockUserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return nil
}

func (m *MockUserRepo) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return nil
}

// MockAccountRepo implements account.Repository for testing
type MockAccountRepo struct {
	CreateFunc       func(ctx context.Context, params account.CreateParams) (*account.Account, error)
	GetByIDFunc      func(ctx context.Context, id int64) (*account.Account, error)
	ListByUserIDFunc func(ctx context.Context, userID int64) ([]*account.Account, error)
	UpdateFunc       func(ctx context.Context, id int64, params account.UpdateParams) (*account.Account, error)
	DeleteFunc       func(ctx context.Context, id int64) error
}

func (m *MockAccountRepo) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &account.Account{ID: 1, UserID: params.UserID, Name: params.Name, Type: params.Type, Currency: params.Currency}, nil
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, account.ErrAccountNotFound
}

func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockAccountRepo) Update(ctx context.Context, id int64, params account.UpdateParams) (*account.Account, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return &account.Account{ID: id}, nil
}

func (m *MockAccountRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockTransactionRepo implements transaction.Repository for testing
type MockTransactionRepo struct {
	CreateFunc          func(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)
	GetByIDFunc         func(ctx context.Context, id int64) (*transaction.Transaction, error)
	TransferFunc        func(ctx context.Context, params transaction.TransferParams) (*transaction.Transaction, *transaction.Transaction, error)
	ListFunc            func(ctx context.Context, userID int64, filter transaction.Filter) ([]*transaction.Transaction, int64, error)
	ListAllFunc         func(ctx context.Context, userID int64, filter transaction.Filter) ([]*transaction.Transaction, error)
	ExistsDuplicateFunc func(ctx context.Context, criteria transaction.DuplicateCriteria) (bool, error)
}

func (m *MockTransactionRepo) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &transaction.Transaction{
		ID:        1,
		UserID:    params.UserID,
		AccountID: params.AccountID,
		Amount:    params.Amount,
		Type:      params.Type,
		Date:      params.Date,
		Tags:      params.Tags,
	}, nil
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id int64) (*transaction.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, transaction.ErrTransactionNotFound
}

func (m *MockTransactionRepo) Update(ctx context.Context, id int64, params transaction.UpdateParams) (*transaction.Transaction, error) {
	return &transaction.Transaction{ID: id}, nil
}

func (m *MockTransactionRepo) Delete(ctx context.Context, id int64) ([]*transaction.Transaction, error) {
	return nil, nil
}

func (m *MockTransactionRepo) Transfer(ctx context.Context, params transaction.TransferParams) (*transaction.Transaction, *transaction.Transaction, error) {
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, params)
	}
	return &transaction.Transaction{ID: 1}, &transaction.Transaction{ID: 2}, nil
}

func (m *MockTransactionRepo) List(ctx context.Context, userID int64, filter transaction.Filter) ([]*transaction.Transaction, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, filter)
	}
	return nil, 0, nil
}

func (m *MockTransactionRepo) ListAll(ctx context.Context, userID int64, filter transaction.Filter) ([]*transaction.Transaction, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, userID, filter)
	}
	return nil, nil
}

func (m *MockTransactionRepo) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*transaction.Transaction, error) {
	return nil, nil
}

func (m *MockTransactionRepo) Summarize(ctx context.Context, userID int64, from, to time.Time) (*transaction.Summary, error) {
	return &transaction.Summary{}, nil
}

func (m *MockTransactionRepo) MonthlyTotals(ctx context.Context, userID int64, from time.Time) ([]transaction.MonthlyTotal, error) {
	return nil, nil
}

func (m *MockTransactionRepo) ExistsDuplicate(ctx context.Context, criteria transaction.DuplicateCriteria) (bool, error) {
	if m.ExistsDuplicateFunc != nil {
		return m.ExistsDuplicateFunc(ctx, criteria)
	}
	return false, nil
}

// MockBudgetRepo implements budget.Repository for testing
type MockBudgetRepo struct {
	GetByIDFunc      func(ctx context.Context, id int64) (*budget.Budget, error)
	ListByUserIDFunc func(ctx context.Context, userID int64) ([]*budget.Budget, error)
	DeleteFunc       func(ctx context.Context, id int64) error
}

func (m *MockBudgetRepo) Create(ctx context.Context, params budget.CreateParams) (*budget.Budget, error) {
	return &budget.Budget{
		ID:        1,
		UserID:    params.UserID,
		Name:      params.Name,
		Amount:    params.Amount,
		Category:  params.Category,
		Period:    params.Period,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
	}, nil
}

func (m *MockBudgetRepo) GetByID(ctx context.Context, id int64) (*budget.Budget, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, budget.ErrBudgetNotFound
}

func (m *MockBudgetRepo) ListByUserID(ctx context.Context, userID int64) ([]*budget.Budget, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockBudgetRepo) ListActive(ctx context.Context, userID int64, at time.Time) ([]*budget.Budget, error) {
	return nil, nil
}

func (m *MockBudgetRepo) Update(ctx context.Context, b *budget.Budget) (*budget.Budget, error) {
	return b, nil
}

func (m *MockBudgetRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockBudgetRepo) UserIDsWithActiveBudgets(ctx context.Context, at time.Time) ([]int64, error) {
	return nil, nil
}

// MockGoalRepo implements goal.Repository for testing
type MockGoalRepo struct {
	GetByIDFunc func(ctx context.Context, id int64) (*goal.Goal, error)
}

func (m *MockGoalRepo) Create(ctx context.Context, g *goal.Goal) (*goal.Goal, error) {
	saved := *g
	saved.ID = 1
	return &saved, nil
}

func (m *MockGoalRepo) GetByID(ctx context.Context, id int64) (*goal.Goal, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, goal.ErrGoalNotFound
}

func (m *MockGoalRepo) ListByUserID(ctx context.Context, userID int64) ([]*goal.Goal, error) {
	return nil, nil
}

func (m *MockGoalRepo) Modify(ctx context.Context, id int64, fn func(g *goal.Goal) error) (*goal.Goal, error) {
	g, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (m *MockGoalRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

// MockRecurringRepo implements recurring.Repository for testing
type MockRecurringRepo struct {
	GetByIDFunc   func(ctx context.Context, id int64) (*recurring.Recurring, error)
	RecordRunFunc func(ctx context.Context, r *recurring.Recurring, params transaction.CreateParams) (*transaction.Transaction, error)
}

func (m *MockRecurringRepo) Create(ctx context.Context, r *recurring.Recurring) (*recurring.Recurring, error) {
	saved := *r
	saved.ID = 1
	return &saved, nil
}

func (m *MockRecurringRepo) GetByID(ctx context.Context, id int64) (*recurring.Recurring, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, recurring.ErrRecurringNotFound
}

func (m *MockRecurringRepo) ListByUserID(ctx context.Context, userID int64) ([]*recurring.Recurring, error) {
	return nil, nil
}

func (m *MockRecurringRepo) Modify(ctx context.Context, id int64, fn func(r *recurring.Recurring) error) (*recurring.Recurring, error) {
	r, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (m *MockRecurringRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

func (m *MockRecurringRepo) ListDue(ctx context.Context, userID int64, now time.Time) ([]*recurring.Recurring, error) {
	return nil, nil
}

func (m *MockRecurringRepo) UserIDsWithDue(ctx context.Context, now time.Time) ([]int64, error) {
	return nil, nil
}

func (m *MockRecurringRepo) RecordRun(ctx context.Context, r *recurring.Recurring, params transaction.CreateParams) (*transaction.Transaction, error) {
	if m.RecordRunFunc != nil {
		return m.RecordRunFunc(ctx, r, params)
	}
	return &transaction.Transaction{ID: 10, UserID: params.UserID, Description: params.Description, Amount: params.Amount}, nil
}

// MockNotificationRepo implements notification.Repository for testing
type MockNotificationRepo struct {
	ListFunc           func(ctx context.Context, userID int64, limit, offset int) ([]*notification.Notification, int64, error)
	MarkReadFunc       func(ctx context.Context, id, userID int64) error
	GetPreferencesFunc func(ctx context.Context, userID int64) (*notification.Preferences, error)
	SavedPreferences   *notification.Preferences
}

func (m *MockNotificationRepo) UpsertDeviceToken(ctx context.Context, params notification.RegisterDeviceParams) (*notification.DeviceToken, error) {
	return &notification.DeviceToken{ID: 1, UserID: params.UserID, Token: params.Token, DeviceType: params.DeviceType, IsActive: true}, nil
}

func (m *MockNotificationRepo) GetActiveTokensByUserID(ctx context.Context, userID int64) ([]*notification.DeviceToken, error) {
	return nil, nil
}

func (m *MockNotificationRepo) DeactivateToken(ctx context.Context, token string) error {
	return nil
}

func (m *MockNotificationRepo) GetPreferences(ctx context.Context, userID int64) (*notification.Preferences, error) {
	if m.GetPreferencesFunc != nil {
		return m.GetPreferencesFunc(ctx, userID)
	}
	return nil, notification.ErrPreferencesNotFound
}

func (m *MockNotificationRepo) SavePreferences(ctx context.Context, prefs notification.Preferences) (*notification.Preferences, error) {
	m.SavedPreferences = &prefs
	return &prefs, nil
}

func (m *MockNotificationRepo) Create(ctx context.Context, params notification.CreateParams) (*notification.Notification, error) {
	return &notification.Notification{ID: 1, UserID: params.UserID, Type: params.Type, Title: params.Title}, nil
}

func (m *MockNotificationRepo) List(ctx context.Context, userID int64, limit, offset int) ([]*notification.Notification, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, limit, offset)
	}
	return nil, 0, nil
}

func (m *MockNotificationRepo) ListUnread(ctx context.Context, userID int64) ([]*notification.Notification, error) {
	return nil, nil
}

func (m *MockNotificationRepo) Summary(ctx context.Context, userID int64) (*notification.Summary, error) {
	return &notification.Summary{}, nil
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, id, userID)
	}
	return nil
}

func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return 0, nil
}

func (m *MockNotificationRepo) Delete(ctx context.Context, id, userID int64) error {
	return nil
}

func (m *MockNotificationRepo) RecentlyNotified(ctx context.Context, userID int64, notificationType, relatedType string, relatedID int64, since time.Time) (bool, error) {
	return false, nil
}

// MockCategoryRepo implements category.Repository for testing
type MockCategoryRepo struct {
	CreateFunc       func(ctx context.Context, params category.CreateParams) (*category.Category, error)
	GetByIDFunc      func(ctx context.Context, id int64) (*category.Category, error)
	ListByUserIDFunc func(ctx context.Context, userID int64) ([]*category.Category, error)
}

func (m *MockCategoryRepo) Create(ctx context.Context, params category.CreateParams) (*category.Category, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &category.Category{ID: 1, UserID: params.UserID, Name: params.Name, Type: params.Type,
		ParentID: params.ParentID, IsActive: true}, nil
}

func (m *MockCategoryRepo) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, category.ErrCategoryNotFound
}

func (m *MockCategoryRepo) ListByUserID(ctx context.Context, userID int64) ([]*category.Category, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return []*category.Category{}, nil
}

func (m *MockCategoryRepo) Update(ctx context.Context, c *category.Category) (*category.Category, error) {
	return c, nil
}

func (m *MockCategoryRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

func (m *MockCategoryRepo) HasChildren(ctx context.Context, id int64) (bool, error) {
	return false, nil
}
