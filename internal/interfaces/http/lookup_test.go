package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/domain/category"
	"fintrack/internal/domain/search"
	"fintrack/internal/shared/money"
)

func TestHandleCurrencies(t *testing.T) {
	handler := NewCurrencyHandler()

	rr := httptest.NewRecorder()
	handler.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/currencies", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var list []money.Currency
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, len(money.Currencies()))

	tests := []struct {
		code           string
		expectedStatus int
	}{
		{code: "usd", expectedStatus: http.StatusOK},
		{code: "JPY", expectedStatus: http.StatusOK},
		{code: "XYZ", expectedStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/currencies/"+tt.code, nil)
			req.SetPathValue("code", tt.code)
			rr := httptest.NewRecorder()
			handler.HandleGet(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.expectedStatus == http.StatusOK {
				var c money.Currency
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
				assert.Equal(t, strings.ToUpper(tt.code), c.Code)
			}
		})
	}
}

func TestHandleSearch_RejectsBadInput(t *testing.T) {
	handler := NewSearchHandler(search.NewService(search.Deps{}))

	tests := []struct {
		name  string
		query string
	}{
		{name: "Missing query", query: ""},
		{name: "Blank query", query: "?q=%20%20"},
		{name: "Non-numeric limit", query: "?q=rent&limit=ten"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodGet, "/api/search"+tt.query, nil), 1)
			rr := httptest.NewRecorder()
			handler.HandleSearch(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}

	rr := httptest.NewRecorder()
	handler.HandleSearch(rr, httptest.NewRequest(http.MethodGet, "/api/search?q=rent", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleCreateCategory(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repo           *MockCategoryRepo
		expectedStatus int
	}{
		{
			name:           "Created with default type",
			body:           `{"name":"Pets","color":"#AA00FF"}`,
			repo:           &MockCategoryRepo{},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Built-in name",
			body:           `{"name":"Shopping"}`,
			repo:           &MockCategoryRepo{},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Duplicate from store",
			body: `{"name":"Pets"}`,
			repo: &MockCategoryRepo{CreateFunc: func(ctx context.Context, params category.CreateParams) (*category.Category, error) {
				return nil, category.ErrDuplicateCategory
			}},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Missing parent",
			body:           `{"name":"Vet","parent_id":42}`,
			repo:           &MockCategoryRepo{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Bad type",
			body:           `{"name":"Vet","type":"transfer"}`,
			repo:           &MockCategoryRepo{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCategoryHandler(category.NewService(tt.repo))

			req := withUser(httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(tt.body)), 1)
			rr := httptest.NewRecorder()
			handler.HandleCreate(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.expectedStatus == http.StatusCreated {
				var c category.Category
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
				assert.Equal(t, category.TypeBoth, c.Type)
			}
		})
	}
}

func TestHandleCategoryByID(t *testing.T) {
	repo := &MockCategoryRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*category.Category, error) {
			switch id {
			case 1:
				return &category.Category{ID: 1, UserID: 1, Name: "Pets", Type: category.TypeExpense}, nil
			case 2:
				return &category.Category{ID: 2, UserID: 99, Name: "Theirs", Type: category.TypeBoth}, nil
			}
			return nil, category.ErrCategoryNotFound
		},
	}
	handler := NewCategoryHandler(category.NewService(repo))

	tests := []struct {
		name           string
		method         string
		id             string
		body           string
		expectedStatus int
	}{
		{name: "Get own", method: http.MethodGet, id: "1", expectedStatus: http.StatusOK},
		{name: "Get other user's", method: http.MethodGet, id: "2", expectedStatus: http.StatusForbidden},
		{name: "Get missing", method: http.MethodGet, id: "3", expectedStatus: http.StatusNotFound},
		{name: "Rename", method: http.MethodPut, id: "1", body: `{"name":"Animals"}`, expectedStatus: http.StatusOK},
		{name: "Own parent", method: http.MethodPut, id: "1", body: `{"parent_id":1}`, expectedStatus: http.StatusBadRequest},
		{name: "Delete own", method: http.MethodDelete, id: "1", expectedStatus: http.StatusNoContent},
		{name: "Delete invalid id", method: http.MethodDelete, id: "x", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(tt.method, "/api/categories/"+tt.id, strings.NewReader(tt.body)), 1)
			req.SetPathValue("id", tt.id)
			rr := httptest.NewRecorder()

			switch tt.method {
			case http.MethodGet:
				handler.HandleGet(rr, req)
			case http.MethodPut:
				handler.HandleUpdate(rr, req)
			case http.MethodDelete:
				handler.HandleDelete(rr, req)
			}

			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestHandleListCategories(t *testing.T) {
	parent := int64(1)
	repo := &MockCategoryRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*category.Category, error) {
			return []*category.Category{
				{ID: 1, UserID: userID, Name: "Household", Type: category.TypeExpense, IsActive: true},
				{ID: 2, UserID: userID, Name: "Cleaning", Type: category.TypeExpense, ParentID: &parent, IsActive: true},
				{ID: 3, UserID: userID, Name: "Freelance", Type: category.TypeIncome, IsActive: true},
			}, nil
		},
	}
	handler := NewCategoryHandler(category.NewService(repo))

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/categories?type=expense&active=true", nil), 1)
	rr := httptest.NewRecorder()
	handler.HandleList(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got []category.Category
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Household", got[0].Name)
	require.Len(t, got[0].Children, 1)

	rr = httptest.NewRecorder()
	handler.HandleList(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/categories?active=maybe", nil), 1))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
