package http

import (
	"net/http"

	"fintrack/internal/shared/money"
)

// CurrencyHandler serves the supported currency catalogue. Amounts are never
// converted between currencies.
type CurrencyHandler struct{}

func NewCurrencyHandler() *CurrencyHandler {
	return &CurrencyHandler{}
}

// HandleList GET /api/currencies
func (h *CurrencyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, money.Currencies())
}

// HandleGet GET /api/currencies/{code}
func (h *CurrencyHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, ok := money.LookupCurrency(r.PathValue("code"))
	if !ok {
		writeMessage(w, http.StatusNotFound, "currency not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}
