package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/domain/report"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/shared/logger"
)

type BalanceHistoryHandler struct {
	history *report.HistoryService
	log     *slog.Logger
}

func NewBalanceHistoryHandler(history *report.HistoryService) *BalanceHistoryHandler {
	return &BalanceHistoryHandler{history: history, log: logger.WithComponent("http.balance_history")}
}

// HandleTrend GET /api/balance-history/trend?days=N
func (h *BalanceHistoryHandler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	days, err := queryInt(r, "days", report.DefaultHistoryDays)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	trend, err := h.history.Trend(r.Context(), userID, days)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// HandleAccount GET /api/balance-history/account/{id}?limit=N
func (h *BalanceHistoryHandler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	limit, err := queryInt(r, "limit", transaction.MaxPageSize)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	entries, err := h.history.AccountHistory(r.Context(), userID, id, limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleAccountDaily GET /api/balance-history/account/{id}/daily?days=N
func (h *BalanceHistoryHandler) HandleAccountDaily(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	days, err := queryInt(r, "days", report.DefaultHistoryDays)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	daily, err := h.history.AccountDaily(r.Context(), userID, id, days)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, daily)
}
