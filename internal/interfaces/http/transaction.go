package http

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain/transaction"
	"fintrack/internal/shared/logger"
)

type TransactionHandler struct {
	transactions *transaction.Service
	log          *slog.Logger
}

func NewTransactionHandler(transactions *transaction.Service) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, log: logger.WithComponent("http.transaction")}
}

type CreateTransactionRequest struct {
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	Date        *flexDate       `json:"date"`
	Tags        []string        `json:"tags"`
}

type UpdateTransactionRequest struct {
	AccountID   *int64           `json:"account_id"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Type        *string          `json:"type"`
	Date        *flexDate        `json:"date"`
	Tags        *[]string        `json:"tags"`
}

type TransferRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   int64           `json:"to_account_id"`
	Date          *flexDate       `json:"date"`
	Tags          []string        `json:"tags"`
}

// HandleList GET /api/transactions
func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter, err := transaction.FilterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.transactions.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSearch GET /api/transactions/search?q=
func (h *TransactionHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter, err := transaction.FilterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.transactions.Search(r.Context(), userID, r.URL.Query().Get("q"), filter)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleCreate POST /api/transactions
func (h *TransactionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	params := transaction.CreateParams{
		UserID:      userID,
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Tags:        req.Tags,
	}
	if d := req.Date.ptr(); d != nil {
		params.Date = *d
	}

	tx, err := h.transactions.CreateTransaction(r.Context(), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// HandleGet GET /api/transactions/{id}
func (h *TransactionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	tx, err := h.transactions.GetTransaction(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// HandleUpdate PUT /api/transactions/{id}
func (h *TransactionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req UpdateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	tx, err := h.transactions.UpdateTransaction(r.Context(), id, userID, transaction.UpdateParams{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Date:        req.Date.ptr(),
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// HandleDelete DELETE /api/transactions/{id}
func (h *TransactionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.transactions.DeleteTransaction(r.Context(), id, userID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCategories GET /api/transactions/categories
func (h *TransactionHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, transaction.Categories())
}

// HandleSummary GET /api/transactions/summary?period=week|month|year
func (h *TransactionHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.transactions.GetSummary(r.Context(), userID, r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleTransfer POST /api/transactions/transfer
func (h *TransactionHandler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	params := transaction.TransferParams{
		UserID:        userID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
		Tags:          req.Tags,
	}
	if d := req.Date.ptr(); d != nil {
		params.Date = *d
	}

	res, err := h.transactions.Transfer(r.Context(), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
