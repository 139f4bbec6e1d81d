package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/domain/user"
	"fintrack/internal/shared/logger"
)

type ProfileHandler struct {
	users *user.Service
	log   *slog.Logger
}

func NewProfileHandler(users *user.Service) *ProfileHandler {
	return &ProfileHandler{users: users, log: logger.WithComponent("http.profile")}
}

type UpdateProfileRequest struct {
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	PreferredCurrency *string `json:"preferred_currency"`
	DateFormat        *string `json:"date_format"`
	PreferredLanguage *string `json:"preferred_language"`
}

// HandleGet GET /api/profile
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	u, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleUpdate PUT /api/profile
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), userID, user.UpdateProfileParams{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		PreferredCurrency: req.PreferredCurrency,
		DateFormat:        req.DateFormat,
		PreferredLanguage: req.PreferredLanguage,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
