package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/shared/money"
)

const (
	TypeChecking   = "checking"
	TypeSavings    = "savings"
	TypeCredit     = "credit"
	TypeInvestment = "investment"
	TypeCash       = "cash"
	TypeOther      = "other"
)

// AccountType is an entry of the account type catalogue.
type AccountType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var accountTypes = []AccountType{
	{ID: TypeChecking, Name: "Checking Account"},
	{ID: TypeSavings, Name: "Savings Account"},
	{ID: TypeCredit, Name: "Credit Card"},
	{ID: TypeInvestment, Name: "Investment Account"},
	{ID: TypeCash, Name: "Cash"},
	{ID: TypeOther, Name: "Other"},
}

// Domain errors
var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrAccountNotFound    = errors.New("account not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCurrency    = errors.New("valid ISO 4217 currency is required")
	ErrAccountInUse       = errors.New("account has transactions and cannot be deleted")
)

type Account struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	IsDefault bool            `json:"is_default"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Summary aggregates a user's balances. Positive balances are assets,
// negative balances count as liabilities by their absolute value.
type Summary struct {
	TotalAccounts    int             `json:"total_accounts"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	NetWorth         decimal.Decimal `json:"net_worth"`
}

type CreateParams struct {
	UserID    int64
	Name      string
	Type      string
	Balance   decimal.Decimal
	Currency  string
	IsDefault bool
}

func (p *CreateParams) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	p.Currency = money.NormalizeCurrency(p.Currency)
}

func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("%w: valid user ID is required", ErrInvalidInput)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: account name is required", ErrInvalidInput)
	}
	if len(p.Name) > 100 {
		return fmt.Errorf("%w: account name must be at most 100 characters", ErrInvalidInput)
	}
	if !IsValidAccountType(p.Type) {
		return ErrInvalidAccountType
	}
	if !money.IsValidCurrency(p.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// UpdateParams holds optional changes; nil fields are left as they are.
type UpdateParams struct {
	Name      *string
	Type      *string
	Balance   *decimal.Decimal
	Currency  *string
	IsDefault *bool
}

func (p *UpdateParams) Validate() error {
	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		if n == "" {
			return fmt.Errorf("%w: account name cannot be empty", ErrInvalidInput)
		}
		p.Name = &n
	}
	if p.Type != nil {
		t := strings.ToLower(strings.TrimSpace(*p.Type))
		if !IsValidAccountType(t) {
			return ErrInvalidAccountType
		}
		p.Type = &t
	}
	if p.Currency != nil {
		c := money.NormalizeCurrency(*p.Currency)
		if !money.IsValidCurrency(c) {
			return ErrInvalidCurrency
		}
		p.Currency = &c
	}
	return nil
}

func IsValidAccountType(t string) bool {
	for _, at := range accountTypes {
		if at.ID == t {
			return true
		}
	}
	return false
}

// Types returns the account type catalogue.
func Types() []AccountType {
	out := make([]AccountType, len(accountTypes))
	copy(out, accountTypes)
	return out
}

// Summarize computes the asset/liability split for a set of accounts.
func Summarize(accounts []*Account) Summary {
	s := Summary{
		TotalAccounts:    len(accounts),
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
	}
	for _, a := range accounts {
		if a.Balance.IsPositive() {
			s.TotalAssets = s.TotalAssets.Add(a.Balance)
		} else if a.Balance.IsNegative() {
			s.TotalLiabilities = s.TotalLiabilities.Add(a.Balance.Abs())
		}
	}
	s.NetWorth = s.TotalAssets.Sub(s.TotalLiabilities)
	return s
}
