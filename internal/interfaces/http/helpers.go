package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/budget"
	"fintrack/internal/domain/category"
	"fintrack/internal/domain/goal"
	"fintrack/internal/domain/importexport"
	"fintrack/internal/domain/notification"
	"fintrack/internal/domain/recurring"
	"fintrack/internal/domain/search"
	"fintrack/internal/domain/transaction"
	"fintrack/internal/domain/user"
	"fintrack/internal/shared/auth"
	"fintrack/internal/shared/logger"
	"fintrack/internal/shared/middleware"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

var errorStatus = []struct {
	status int
	errs   []error
}{
	{http.StatusNotFound, []error{
		user.ErrUserNotFound, account.ErrAccountNotFound, transaction.ErrTransactionNotFound,
		budget.ErrBudgetNotFound, goal.ErrGoalNotFound, recurring.ErrRecurringNotFound,
		notification.ErrNotificationNotFound, category.ErrCategoryNotFound,
	}},
	{http.StatusForbidden, []error{
		account.ErrForbidden, transaction.ErrForbidden, budget.ErrForbidden, goal.ErrForbidden,
		recurring.ErrForbidden, category.ErrForbidden, user.ErrUserDisabled,
	}},
	{http.StatusConflict, []error{
		user.ErrDuplicateUser, account.ErrAccountInUse, recurring.ErrNotActive, category.ErrDuplicateCategory,
	}},
	{http.StatusUnprocessableEntity, []error{
		transaction.ErrInsufficientFunds,
	}},
	{http.StatusUnauthorized, []error{
		user.ErrInvalidCredentials, auth.ErrInvalidToken, auth.ErrTokenExpired, auth.ErrWrongTokenType,
	}},
	{http.StatusBadRequest, []error{
		user.ErrInvalidInput, account.ErrInvalidInput, account.ErrInvalidAccountType, account.ErrInvalidCurrency,
		transaction.ErrInvalidInput, transaction.ErrSameAccount, transaction.ErrTransferLegChange,
		budget.ErrInvalidInput, budget.ErrInvalidPeriod, goal.ErrInvalidInput, recurring.ErrInvalidInput,
		notification.ErrInvalidInput, notification.ErrInvalidType, notification.ErrInvalidDeviceType,
		notification.ErrInvalidToken, importexport.ErrEmptyFile, importexport.ErrMissingColumn,
		importexport.ErrNoAccount, category.ErrInvalidInput, category.ErrInvalidParent, search.ErrEmptyQuery,
		errBadRequest,
	}},
}

// errBadRequest marks malformed requests rejected by the transport layer.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// statusFor maps a service error to an HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	for _, group := range errorStatus {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("failed to encode response", logger.Err(err))
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps err to a status. Internal errors are logged and hidden
// behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		userID, _ := middleware.UserID(r.Context())
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			logger.FieldUserID, userID,
			logger.Err(err),
		)
		writeMessage(w, status, "internal server error")
		return
	}
	writeMessage(w, status, err.Error())
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		return badRequest("invalid JSON: %v", err)
	}
	return nil
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id")
	}
	return id, nil
}

// requireUser returns the authenticated user or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	return userID, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("invalid %s", key)
	}
	return n, nil
}

// flexDate accepts either YYYY-MM-DD or RFC3339 in request bodies.
type flexDate struct {
	time.Time
}

func (d *flexDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", s)
}

// ptr returns a pointer to the date, or nil when it was not supplied.
func (d *flexDate) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
