package http

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain/account"
	"fintrack/internal/shared/logger"
)

type AccountHandler struct {
	accounts *account.Service
	log      *slog.Logger
}

func NewAccountHandler(accounts *account.Service) *AccountHandler {
	return &AccountHandler{accounts: accounts, log: logger.WithComponent("http.account")}
}

type CreateAccountRequest struct {
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	IsDefault bool            `json:"is_default"`
}

type UpdateAccountRequest struct {
	Name      *string          `json:"name"`
	Type      *string          `json:"type"`
	Balance   *decimal.Decimal `json:"balance"`
	Currency  *string          `json:"currency"`
	IsDefault *bool            `json:"is_default"`
}

// HandleList GET /api/accounts
func (h *AccountHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	accounts, err := h.accounts.ListAccounts(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if accounts == nil {
		accounts = []*account.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

// HandleCreate POST /api/accounts
func (h *AccountHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	acc, err := h.accounts.CreateAccount(r.Context(), account.CreateParams{
		UserID:    userID,
		Name:      req.Name,
		Type:      req.Type,
		Balance:   req.Balance,
		Currency:  req.Currency,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

// HandleGet GET /api/accounts/{id}
func (h *AccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	acc, err := h.accounts.GetAccount(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// HandleUpdate PUT /api/accounts/{id}
func (h *AccountHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req UpdateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	acc, err := h.accounts.UpdateAccount(r.Context(), id, userID, account.UpdateParams{
		Name:      req.Name,
		Type:      req.Type,
		Balance:   req.Balance,
		Currency:  req.Currency,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// HandleDelete DELETE /api/accounts/{id}
func (h *AccountHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id, userID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTypes GET /api/accounts/types
func (h *AccountHandler) HandleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, account.Types())
}

// HandleSummary GET /api/accounts/summary
func (h *AccountHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.accounts.GetSummary(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
