package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	UpsertDeviceTokenFunc       func(ctx context.Context, params RegisterDeviceParams) (*DeviceToken, error)
	GetActiveTokensByUserIDFunc func(ctx context.Context, userID int64) ([]*DeviceToken, error)
	DeactivateTokenFunc         func(ctx context.Context, token string) error
	GetPreferencesFunc          func(ctx context.Context, userID int64) (*Preferences, error)
	SavePreferencesFunc         func(ctx context.Context, prefs Preferences) (*Preferences, error)
	CreateFunc                  func(ctx context.Context, params CreateParams) (*Notification, error)
	ListFunc                    func(ctx context.Context, userID int64, limit, offset int) ([]*Notification, int64, error)
	ListUnreadFunc              func(ctx context.Context, userID int64) ([]*Notification, error)
	SummaryFunc                 func(ctx context.Context, userID int64) (*Summary, error)
	MarkReadFunc                func(ctx context.Context, id, userID int64) error
	MarkAllReadFunc             func(ctx context.Context, userID int64) (int64, error)
	DeleteFunc                  func(ctx context.Context, id, userID int64) error
	RecentlyNotifiedFunc        func(ctx context.Context, userID int64, notificationType, relatedType string, relatedID int64, since time.Time) (bool, error)
}

func (m *MockRepository) UpsertDeviceToken(ctx context.Context, params RegisterDeviceParams) (*DeviceToken, error) {
	if m.UpsertDeviceTokenFunc != nil {
		return m.UpsertDeviceTokenFunc(ctx, params)
	}
	return &DeviceToken{ID: 1, UserID: params.UserID, Token: params.Token, DeviceType: params.DeviceType, IsActive: true}, nil
}

func (m *MockRepository) GetActiveTokensByUserID(ctx context.Context, userID int64) ([]*DeviceToken, error) {
	if m.GetActiveTokensByUserIDFunc != nil {
		return m.GetActiveTokensByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) DeactivateToken(ctx context.Context, token string) error {
	if m.DeactivateTokenFunc != nil {
		return m.DeactivateTokenFunc(ctx, token)
	}
	return nil
}

func (m *MockRepository) GetPreferences(ctx context.Context, userID int64) (*Preferences, error) {
	if m.GetPreferencesFunc != nil {
		return m.GetPreferencesFunc(ctx, userID)
	}
	return nil, ErrPreferencesNotFound
}

func (m *MockRepository) SavePreferences(ctx context.Context, prefs Preferences) (*Preferences, error) {
	if m.SavePreferencesFunc != nil {
		return m.SavePreferencesFunc(ctx, prefs)
	}
	return &prefs, nil
}

func (m *MockRepository) Create(ctx context.Context, params CreateParams) (*Notification, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &Notification{
		ID: 1, UserID: params.UserID, Type: params.Type, Title: params.Title,
		Message: params.Message, Priority: params.Priority, Data: params.Data,
	}, nil
}

func (m *MockRepository) List(ctx context.Context, userID int64, limit, offset int) ([]*Notification, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, limit, offset)
	}
	return nil, 0, nil
}

func (m *MockRepository) ListUnread(ctx context.Context, userID int64) ([]*Notification, error) {
	if m.ListUnreadFunc != nil {
		return m.ListUnreadFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) Summary(ctx context.Context, userID int64) (*Summary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, userID)
	}
	return &Summary{}, nil
}

func (m *MockRepository) MarkRead(ctx context.Context, id, userID int64) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, id, userID)
	}
	return nil
}

func (m *MockRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockRepository) Delete(ctx context.Context, id, userID int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID)
	}
	return nil
}

func (m *MockRepository) RecentlyNotified(ctx context.Context, userID int64, notificationType, relatedType string, relatedID int64, since time.Time) (bool, error) {
	if m.RecentlyNotifiedFunc != nil {
		return m.RecentlyNotifiedFunc(ctx, userID, notificationType, relatedType, relatedID, since)
	}
	return false, nil
}

type MockMessenger struct {
	calls  int
	tokens []string
	title  string
	data   map[string]string
	err    error
}

func (m *MockMessenger) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	m.calls++
	m.tokens = tokens
	m.title = title
	m.data = data
	return m.err
}

func budgetAlert(userID int64) CreateParams {
	return CreateParams{
		UserID:  userID,
		Type:    TypeBudgetAlert,
		Title:   "Budget Warning",
		Message: "You've used 92% of your Food budget.",
	}
}

func TestService_Notify_PushesWhenEnabled(t *testing.T) {
	repo := &MockRepository{
		GetActiveTokensByUserIDFunc: func(ctx context.Context, userID int64) ([]*DeviceToken, error) {
			return []*DeviceToken{{Token: "tok-a"}, {Token: "tok-b"}}, nil
		},
	}
	messenger := &MockMessenger{}
	svc := NewService(repo, messenger)

	n, err := svc.Notify(context.Background(), budgetAlert(7))
	require.NoError(t, err)

	assert.Equal(t, PriorityMedium, n.Priority, "priority defaults to medium")
	assert.Equal(t, 1, messenger.calls)
	assert.Equal(t, []string{"tok-a", "tok-b"}, messenger.tokens)
	assert.Equal(t, "Budget Warning", messenger.title)
	assert.Equal(t, TypeBudgetAlert, messenger.data["type"])
	assert.Equal(t, "1", messenger.data["notification_id"])
}

func TestService_Notify_StoresButSkipsPushWhenDisabled(t *testing.T) {
	stored := false
	repo := &MockRepository{
		GetPreferencesFunc: func(ctx context.Context, userID int64) (*Preferences, error) {
			p := DefaultPreferences(userID)
			p.BudgetsEnabled = false
			return p, nil
		},
		CreateFunc: func(ctx context.Context, params CreateParams) (*Notification, error) {
			stored = true
			return &Notification{ID: 3, UserID: params.UserID, Type: params.Type}, nil
		},
		GetActiveTokensByUserIDFunc: func(ctx context.Context, userID int64) ([]*DeviceToken, error) {
			return []*DeviceToken{{Token: "tok"}}, nil
		},
	}
	messenger := &MockMessenger{}

	_, err := NewService(repo, messenger).Notify(context.Background(), budgetAlert(7))
	require.NoError(t, err)

	assert.True(t, stored)
	assert.Zero(t, messenger.calls)
}

func TestService_Notify_PushErrorIsNotFatal(t *testing.T) {
	repo := &MockRepository{
		GetActiveTokensByUserIDFunc: func(ctx context.Context, userID int64) ([]*DeviceToken, error) {
			return []*DeviceToken{{Token: "tok"}}, nil
		},
	}
	messenger := &MockMessenger{err: errors.New("fcm unavailable")}

	_, err := NewService(repo, messenger).Notify(context.Background(), budgetAlert(7))
	assert.NoError(t, err)
	assert.Equal(t, 1, messenger.calls)
}

func TestService_Notify_NilMessenger(t *testing.T) {
	n, err := NewService(&MockRepository{}, nil).Notify(context.Background(), budgetAlert(7))
	require.NoError(t, err)
	assert.NotNil(t, n)
}

func TestService_Notify_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *CreateParams)
		wantErr error
	}{
		{"missing user", func(p *CreateParams) { p.UserID = 0 }, ErrInvalidInput},
		{"missing title", func(p *CreateParams) { p.Title = " " }, ErrInvalidInput},
		{"missing message", func(p *CreateParams) { p.Message = "" }, ErrInvalidInput},
		{"bad type", func(p *CreateParams) { p.Type = "marketing" }, ErrInvalidType},
		{"bad priority", func(p *CreateParams) { p.Priority = "urgent" }, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := budgetAlert(1)
			tt.mutate(&p)
			_, err := NewService(&MockRepository{}, nil).Notify(context.Background(), p)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_RegisterDevice(t *testing.T) {
	svc := NewService(&MockRepository{}, nil)

	dt, err := svc.RegisterDevice(context.Background(), RegisterDeviceParams{UserID: 1, Token: " abc ", DeviceType: "Web"})
	require.NoError(t, err)
	assert.Equal(t, "abc", dt.Token)
	assert.Equal(t, "web", dt.DeviceType)

	_, err = svc.RegisterDevice(context.Background(), RegisterDeviceParams{UserID: 1, Token: "abc", DeviceType: "windows"})
	assert.ErrorIs(t, err, ErrInvalidDeviceType)

	_, err = svc.RegisterDevice(context.Background(), RegisterDeviceParams{UserID: 1, DeviceType: "ios"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Preferences(t *testing.T) {
	var saved Preferences
	repo := &MockRepository{
		SavePreferencesFunc: func(ctx context.Context, prefs Preferences) (*Preferences, error) {
			saved = prefs
			return &prefs, nil
		},
	}
	svc := NewService(repo, nil)

	prefs, err := svc.GetPreferences(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, prefs.BudgetsEnabled && prefs.GoalsEnabled && prefs.RecurringEnabled && prefs.GeneralEnabled)

	off := false
	_, err = svc.UpdatePreferences(context.Background(), 4, UpdatePreferencesParams{GoalsEnabled: &off})
	require.NoError(t, err)

	assert.Equal(t, int64(4), saved.UserID)
	assert.False(t, saved.GoalsEnabled)
	assert.True(t, saved.BudgetsEnabled)
}

func TestPreferences_Enabled(t *testing.T) {
	p := &Preferences{BudgetsEnabled: true, RecurringEnabled: true}

	assert.True(t, p.Enabled(TypeBudgetAlert))
	assert.False(t, p.Enabled(TypeGoalAchieved))
	assert.True(t, p.Enabled(TypeRecurringDue))
	assert.False(t, p.Enabled(TypeSystem))
	assert.False(t, p.Enabled("unknown"))
}

func TestService_List_Paging(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &MockRepository{
		ListFunc: func(ctx context.Context, userID int64, limit, offset int) ([]*Notification, int64, error) {
			gotLimit, gotOffset = limit, offset
			return nil, 41, nil
		},
	}

	res, err := NewService(repo, nil).List(context.Background(), 1, 3, 500)
	require.NoError(t, err)

	assert.Equal(t, MaxPerPage, gotLimit)
	assert.Equal(t, 2*MaxPerPage, gotOffset)
	assert.Equal(t, 1, res.TotalPages)
	assert.NotNil(t, res.Data)
}

func TestService_RecentlyNotified_Window(t *testing.T) {
	var since time.Time
	repo := &MockRepository{
		RecentlyNotifiedFunc: func(ctx context.Context, userID int64, notificationType, relatedType string, relatedID int64, s time.Time) (bool, error) {
			since = s
			return true, nil
		},
	}

	ok, err := NewService(repo, nil).RecentlyNotified(context.Background(), 1, TypeBudgetAlert, "budget", 9, 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), since, time.Minute)
}
