package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/domain/account"
)

func TestHandleListAccounts(t *testing.T) {
	tests := []struct {
		name           string
		authenticated  bool
		mockRepo       func() *MockAccountRepo
		expectedStatus int
		expectedLen    int
	}{
		{
			name:          "Success",
			authenticated: true,
			mockRepo: func() *MockAccountRepo {
				return &MockAccountRepo{
					ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*account.Account, error) {
						return []*account.Account{
							{ID: 1, UserID: userID, Name: "Checking", IsDefault: true},
							{ID: 2, UserID: userID, Name: "Savings"},
						}, nil
					},
				}
			},
			expectedStatus: http.StatusOK,
			expectedLen:    2,
		},
		{
			name:           "Empty list is an array",
			authenticated:  true,
			mockRepo:       func() *MockAccountRepo { return &MockAccountRepo{} },
			expectedStatus: http.StatusOK,
			expectedLen:    0,
		},
		{
			name:           "Unauthorized",
			authenticated:  false,
			mockRepo:       func() *MockAccountRepo { return &MockAccountRepo{} },
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(account.NewService(tt.mockRepo(), nil))

			req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
			if tt.authenticated {
				req = withUser(req, 1)
			}
			rr := httptest.NewRecorder()
			handler.HandleList(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var got []account.Account
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Len(t, got, tt.expectedLen)
			}
		})
	}
}

func TestHandleGetAccount(t *testing.T) {
	repo := &MockAccountRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*account.Account, error) {
			switch id {
			case 1:
				return &account.Account{ID: 1, UserID: 1, Name: "Mine"}, nil
			case 2:
				return &account.Account{ID: 2, UserID: 99, Name: "Theirs"}, nil
			}
			return nil, account.ErrAccountNotFound
		},
	}
	handler := NewAccountHandler(account.NewService(repo, nil))

	tests := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{name: "Own account", id: "1", expectedStatus: http.StatusOK},
		{name: "Other user's account", id: "2", expectedStatus: http.StatusForbidden},
		{name: "Missing account", id: "3", expectedStatus: http.StatusNotFound},
		{name: "Invalid id", id: "abc", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodGet, "/api/accounts/"+tt.id, nil), 1)
			req.SetPathValue("id", tt.id)
			rr := httptest.NewRecorder()
			handler.HandleGet(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestHandleCreateAccount(t *testing.T) {
	var captured account.CreateParams
	repo := &MockAccountRepo{
		CreateFunc: func(ctx context.Context, params account.CreateParams) (*account.Account, error) {
			captured = params
			return &account.Account{ID: 10, UserID: params.UserID, Name: params.Name, Type: params.Type, Balance: params.Balance, Currency: params.Currency}, nil
		},
	}
	handler := NewAccountHandler(account.NewService(repo, nil))

	t.Run("Success", func(t *testing.T) {
		body := `{"name":" Wallet ","type":"CASH","balance":12.5,"currency":"eur"}`
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/accounts", strings.NewReader(body)), 3)
		rr := httptest.NewRecorder()
		handler.HandleCreate(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, int64(3), captured.UserID)
		assert.Equal(t, "Wallet", captured.Name)
		assert.Equal(t, account.TypeCash, captured.Type)
		assert.Equal(t, "EUR", captured.Currency)
		assert.True(t, decimal.RequireFromString("12.5").Equal(captured.Balance))
	})

	t.Run("Invalid type", func(t *testing.T) {
		body := `{"name":"Wallet","type":"piggybank"}`
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/accounts", strings.NewReader(body)), 3)
		rr := httptest.NewRecorder()
		handler.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleDeleteAccount_InUse(t *testing.T) {
	repo := &MockAccountRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*account.Account, error) {
			return &account.Account{ID: id, UserID: 1}, nil
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			return account.ErrAccountInUse
		},
	}
	handler := NewAccountHandler(account.NewService(repo, nil))

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/accounts/5", nil), 1)
	req.SetPathValue("id", "5")
	rr := httptest.NewRecorder()
	handler.HandleDelete(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandleAccountSummary(t *testing.T) {
	repo := &MockAccountRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*account.Account, error) {
			return []*account.Account{
				{ID: 1, Balance: decimal.NewFromInt(1000)},
				{ID: 2, Balance: decimal.NewFromInt(-250)},
			}, nil
		},
	}
	handler := NewAccountHandler(account.NewService(repo, nil))

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/accounts/summary", nil), 1)
	rr := httptest.NewRecorder()
	handler.HandleSummary(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got account.Summary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, 2, got.TotalAccounts)
	assert.True(t, decimal.NewFromInt(750).Equal(got.NetWorth), got.NetWorth.String())
	assert.True(t, decimal.NewFromInt(250).Equal(got.TotalLiabilities))
}
