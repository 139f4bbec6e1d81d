package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/domain/user"
	"fintrack/internal/shared/auth"
	"fintrack/internal/shared/logger"
	"fintrack/internal/shared/middleware"
)

type AuthHandler struct {
	users *user.Service
	jwt   *auth.JWT
	log   *slog.Logger
}

func NewAuthHandler(users *user.Service, jwt *auth.JWT) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, log: logger.WithComponent("http.auth")}
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type TokenResponse struct {
	AccessToken    string     `json:"access_token"`
	RefreshToken   string     `json:"refresh_token"`
	AnalyticsToken string     `json:"analytics_token"`
	ExpiresIn      int64      `json:"expires_in"`
	TokenType      string     `json:"token_type"`
	User           *user.User `json:"user"`
}

// HandleRegister creates a user. POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.users.Register(r.Context(), user.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, u)
}

// HandleLogin exchanges credentials for a token set. POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.issueTokens(w, r, u)
}

// HandleRefresh issues a new token set for a valid refresh token.
// POST /api/auth/refresh-token
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if req.RefreshToken == "" {
		writeMessage(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	claims, err := h.jwt.Validate(req.RefreshToken, auth.TokenRefresh)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.users.GetActiveUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.issueTokens(w, r, u)
}

// HandleLogout clears the session cookie. POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// HandleChangePassword POST /api/auth/change-password
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, u *user.User) {
	pair, err := h.jwt.IssuePair(u.ID, u.Email)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(pair.ExpiresIn),
	})

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken:    pair.AccessToken,
		RefreshToken:   pair.RefreshToken,
		AnalyticsToken: pair.AnalyticsToken,
		ExpiresIn:      pair.ExpiresIn,
		TokenType:      "Bearer",
		User:           u,
	})
}

// isSecureRequest reports whether the client reached us over HTTPS.
func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
