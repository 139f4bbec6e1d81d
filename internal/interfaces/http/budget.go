package http

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain/budget"
	"fintrack/internal/shared/logger"
)

type BudgetHandler struct {
	budgets *budget.Service
	log     *slog.Logger
}

func NewBudgetHandler(budgets *budget.Service) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, log: logger.WithComponent("http.budget")}
}

type CreateBudgetRequest struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Period    string          `json:"period"`
	StartDate *flexDate       `json:"start_date"`
}

type UpdateBudgetRequest struct {
	Name      *string          `json:"name"`
	Amount    *decimal.Decimal `json:"amount"`
	Category  *string          `json:"category"`
	Period    *string          `json:"period"`
	StartDate *flexDate        `json:"start_date"`
}

// HandleList GET /api/budgets
func (h *BudgetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	budgets, err := h.budgets.ListBudgets(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

// HandleCreate POST /api/budgets
func (h *BudgetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	params := budget.CreateParams{
		UserID:   userID,
		Name:     req.Name,
		Amount:   req.Amount,
		Category: req.Category,
		Period:   req.Period,
	}
	if d := req.StartDate.ptr(); d != nil {
		params.StartDate = *d
	}

	b, err := h.budgets.CreateBudget(r.Context(), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// HandleGet GET /api/budgets/{id}
func (h *BudgetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	b, err := h.budgets.GetBudget(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleUpdate PUT /api/budgets/{id}
func (h *BudgetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req UpdateBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	b, err := h.budgets.UpdateBudget(r.Context(), id, userID, budget.UpdateParams{
		Name:      req.Name,
		Amount:    req.Amount,
		Category:  req.Category,
		Period:    req.Period,
		StartDate: req.StartDate.ptr(),
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleDelete DELETE /api/budgets/{id}
func (h *BudgetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.budgets.DeleteBudget(r.Context(), id, userID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePeriods GET /api/budgets/periods
func (h *BudgetHandler) HandlePeriods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, budget.Periods())
}

// HandleSummary GET /api/budgets/summary
func (h *BudgetHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.budgets.GetSummary(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
