package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/domain/notification"
	"fintrack/internal/shared/logger"
)

type NotificationHandler struct {
	notifications *notification.Service
	log           *slog.Logger
}

func NewNotificationHandler(notifications *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: logger.WithComponent("http.notification")}
}

type RegisterDeviceRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

type UpdatePreferencesRequest struct {
	BudgetsEnabled   *bool `json:"budgets_enabled"`
	GoalsEnabled     *bool `json:"goals_enabled"`
	RecurringEnabled *bool `json:"recurring_enabled"`
	GeneralEnabled   *bool `json:"general_enabled"`
}

// HandleList GET /api/notifications?page&per_page
func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	perPage, err := queryInt(r, "per_page", 20)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.notifications.List(r.Context(), userID, page, perPage)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleUnread GET /api/notifications/unread
func (h *NotificationHandler) HandleUnread(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.notifications.Unread(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleSummary GET /api/notifications/summary
func (h *NotificationHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.notifications.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleMarkRead POST /api/notifications/{id}/read
func (h *NotificationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id, userID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// HandleMarkAllRead POST /api/notifications/read-all
func (h *NotificationHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	n, err := h.notifications.MarkAllRead(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "All notifications marked as read", "updated": n})
}

// HandleDelete DELETE /api/notifications/{id}
func (h *NotificationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.notifications.Delete(r.Context(), id, userID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRegisterDevice POST /api/notifications/register-device
func (h *NotificationHandler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req RegisterDeviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	token, err := h.notifications.RegisterDevice(r.Context(), notification.RegisterDeviceParams{
		UserID:     userID,
		Token:      req.Token,
		DeviceType: req.DeviceType,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, token)
}

// HandleGetPreferences GET /api/notifications/preferences
func (h *NotificationHandler) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	prefs, err := h.notifications.GetPreferences(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// HandleUpdatePreferences PUT /api/notifications/preferences
func (h *NotificationHandler) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdatePreferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	prefs, err := h.notifications.UpdatePreferences(r.Context(), userID, notification.UpdatePreferencesParams{
		BudgetsEnabled:   req.BudgetsEnabled,
		GoalsEnabled:     req.GoalsEnabled,
		RecurringEnabled: req.RecurringEnabled,
		GeneralEnabled:   req.GeneralEnabled,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
