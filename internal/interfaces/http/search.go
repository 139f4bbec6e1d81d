package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/domain/search"
	"fintrack/internal/shared/logger"
)

type SearchHandler struct {
	search *search.Service
	log    *slog.Logger
}

func NewSearchHandler(svc *search.Service) *SearchHandler {
	return &SearchHandler{search: svc, log: logger.WithComponent("http.search")}
}

// HandleSearch GET /api/search?q=...&limit=N
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", search.DefaultLimit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.search.Search(r.Context(), userID, r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
