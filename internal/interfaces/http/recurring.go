package http

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain/recurring"
	"fintrack/internal/shared/logger"
)

type RecurringHandler struct {
	recurring *recurring.Service
	log       *slog.Logger
}

func NewRecurringHandler(svc *recurring.Service) *RecurringHandler {
	return &RecurringHandler{recurring: svc, log: logger.WithComponent("http.recurring")}
}

// RecurringRequest is used for both create and update; an update replaces
// the template definition.
type RecurringRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	AccountID   int64           `json:"account_id"`
	Tags        []string        `json:"tags"`
	Frequency   string          `json:"frequency"`
	Interval    int             `json:"interval"`
	DayOfWeek   int             `json:"day_of_week"`
	DayOfMonth  int             `json:"day_of_month"`
	MonthOfYear int             `json:"month_of_year"`
	StartDate   *flexDate       `json:"start_date"`
	EndDate     *flexDate       `json:"end_date"`
	MaxRuns     int             `json:"max_runs"`
}

func (req RecurringRequest) params(userID int64) recurring.CreateParams {
	p := recurring.CreateParams{
		UserID:      userID,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		AccountID:   req.AccountID,
		Tags:        req.Tags,
		Frequency:   req.Frequency,
		Interval:    req.Interval,
		DayOfWeek:   req.DayOfWeek,
		DayOfMonth:  req.DayOfMonth,
		MonthOfYear: req.MonthOfYear,
		EndDate:     req.EndDate.ptr(),
		MaxRuns:     req.MaxRuns,
	}
	if d := req.StartDate.ptr(); d != nil {
		p.StartDate = *d
	}
	return p
}

// HandleList GET /api/recurring-transactions
func (h *RecurringHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.recurring.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleCreate POST /api/recurring-transactions
func (h *RecurringHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req RecurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	rt, err := h.recurring.Create(r.Context(), req.params(userID))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

// HandleGet GET /api/recurring-transactions/{id}
func (h *RecurringHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	rt, err := h.recurring.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

// HandleUpdate PUT /api/recurring-transactions/{id}
func (h *RecurringHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req RecurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	rt, err := h.recurring.Update(r.Context(), id, userID, req.params(userID))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

// HandleDelete DELETE /api/recurring-transactions/{id}
func (h *RecurringHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.recurring.Delete(r.Context(), id, userID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggle PATCH /api/recurring-transactions/{id}/toggle
func (h *RecurringHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	rt, err := h.recurring.Toggle(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

// HandleRun POST /api/recurring-transactions/{id}/run
func (h *RecurringHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	run, err := h.recurring.RunNow(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}
