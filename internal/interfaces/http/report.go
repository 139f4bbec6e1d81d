package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/domain/report"
	"fintrack/internal/shared/logger"
)

type ReportHandler struct {
	reports *report.Service
	log     *slog.Logger
}

func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports, log: logger.WithComponent("http.report")}
}

// HandleDashboard GET /api/reports/dashboard
func (h *ReportHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	d, err := h.reports.Dashboard(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleMonthly GET /api/reports/monthly?months=N
func (h *ReportHandler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	months, err := queryInt(r, "months", report.DefaultMonths)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	rows, err := h.reports.Monthly(r.Context(), userID, months)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
