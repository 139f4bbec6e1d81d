package user

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"fintrack/internal/shared/money"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user account is disabled")
	ErrInvalidInput       = errors.New("invalid input")
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	validDateFormats = map[string]struct{}{
		"YYYY-MM-DD": {},
		"MM/DD/YYYY": {},
		"DD/MM/YYYY": {},
	}
)

const (
	DefaultDateFormat = "YYYY-MM-DD"
	DefaultLanguage   = "en"
)

type User struct {
	ID                int64      `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	IsActive          bool       `json:"is_active"`
	PreferredCurrency string     `json:"preferred_currency"`
	DateFormat        string     `json:"date_format"`
	PreferredLanguage string     `json:"preferred_language"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (p *RegisterParams) Normalize() {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
}

func (p RegisterParams) Validate() error {
	if len(p.Username) < 3 || len(p.Username) > 50 {
		return fmtInvalid("username must be between 3 and 50 characters")
	}
	if !usernamePattern.MatchString(p.Username) {
		return fmtInvalid("username may only contain letters, digits, '.', '_' and '-'")
	}
	if !emailPattern.MatchString(p.Email) {
		return fmtInvalid("valid email is required")
	}
	return nil
}

// CreateUserParams is what the repository persists on registration.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

type UpdateProfileParams struct {
	FirstName         *string
	LastName          *string
	PreferredCurrency *string
	DateFormat        *string
	PreferredLanguage *string
}

func (p *UpdateProfileParams) Validate() error {
	if p.PreferredCurrency != nil {
		c := money.NormalizeCurrency(*p.PreferredCurrency)
		if !money.IsValidCurrency(c) {
			return fmtInvalid("valid ISO 4217 currency is required")
		}
		p.PreferredCurrency = &c
	}
	if p.DateFormat != nil {
		if _, ok := validDateFormats[*p.DateFormat]; !ok {
			return fmtInvalid("unsupported date format")
		}
	}
	if p.PreferredLanguage != nil {
		l := strings.TrimSpace(*p.PreferredLanguage)
		if len(l) < 2 || len(l) > 10 {
			return fmtInvalid("invalid language code")
		}
	}
	return nil
}

func fmtInvalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
