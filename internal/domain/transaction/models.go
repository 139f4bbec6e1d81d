package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeIncome   = "income"
	TypeExpense  = "expense"
	TypeTransfer = "transfer"

	TransferCategory = "Transfer"

	DirectionIn  = 1
	DirectionOut = -1
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrForbidden           = errors.New("access forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrSameAccount         = errors.New("source and destination accounts must differ")
	ErrTransferLegChange   = errors.New("transfer legs can only change description, category, tags and date")
)

type Transaction struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	AccountID     int64           `json:"account_id"`
	AccountName   string          `json:"account_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Direction     int             `json:"-"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Type          string          `json:"type"`
	Date          time.Time       `json:"date"`
	Tags          []string        `json:"tags"`
	TransferGroup *string         `json:"transfer_group,omitempty"`
	RecurringID   *int64          `json:"recurring_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SignedAmount is the effect this row has on its account balance.
func (t *Transaction) SignedAmount() decimal.Decimal {
	return t.Amount.Mul(decimal.NewFromInt(int64(t.Direction)))
}

func (t *Transaction) IsTransfer() bool {
	return t.TransferGroup != nil
}

// DirectionFor returns the balance direction of a non-transfer type.
func DirectionFor(txType string) int {
	if txType == TypeIncome {
		return DirectionIn
	}
	return DirectionOut
}

func IsValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

type CreateParams struct {
	UserID      int64
	AccountID   int64
	Amount      decimal.Decimal
	Description string
	Category    string
	Type        string
	Date        time.Time
	Tags        []string
	RecurringID *int64
}

func (p *CreateParams) Normalize() {
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	p.Tags = NormalizeTags(p.Tags)
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
}

func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("%w: valid user ID is required", ErrInvalidInput)
	}
	if p.AccountID <= 0 {
		return fmt.Errorf("%w: account_id is required", ErrInvalidInput)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	if !IsValidType(p.Type) {
		return fmt.Errorf("%w: type must be income or expense", ErrInvalidInput)
	}
	if len(p.Description) > 500 {
		return fmt.Errorf("%w: description must be at most 500 characters", ErrInvalidInput)
	}
	return nil
}

// UpdateParams holds optional changes; nil fields are left as they are.
type UpdateParams struct {
	AccountID   *int64
	Amount      *decimal.Decimal
	Description *string
	Category    *string
	Type        *string
	Date        *time.Time
	Tags        *[]string
}

func (p *UpdateParams) Validate() error {
	if p.Amount != nil && !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	if p.Type != nil {
		t := strings.ToLower(strings.TrimSpace(*p.Type))
		if !IsValidType(t) {
			return fmt.Errorf("%w: type must be income or expense", ErrInvalidInput)
		}
		p.Type = &t
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		p.Description = &d
	}
	if p.Category != nil {
		c := strings.TrimSpace(*p.Category)
		if c == "" {
			c = DefaultCategory
		}
		p.Category = &c
	}
	if p.Tags != nil {
		tags := NormalizeTags(*p.Tags)
		p.Tags = &tags
	}
	return nil
}

// touchesLedger reports whether the update changes a balance-relevant field.
func (p UpdateParams) touchesLedger() bool {
	return p.AccountID != nil || p.Amount != nil || p.Type != nil
}

type TransferParams struct {
	UserID        int64
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
	Tags          []string
}

func (p *TransferParams) Normalize() {
	p.Description = strings.TrimSpace(p.Description)
	p.Tags = NormalizeTags(p.Tags)
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
}

func (p TransferParams) Validate() error {
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	}
	if p.FromAccountID <= 0 || p.ToAccountID <= 0 {
		return fmt.Errorf("%w: from_account_id and to_account_id are required", ErrInvalidInput)
	}
	if p.FromAccountID == p.ToAccountID {
		return ErrSameAccount
	}
	return nil
}

type TransferResult struct {
	From    *Transaction `json:"from_transaction"`
	To      *Transaction `json:"to_transaction"`
	Message string       `json:"message"`
}

// ListResult is one page of transactions.
type ListResult struct {
	Data       []*Transaction `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

type Summary struct {
	Period     string          `json:"period"`
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Income     decimal.Decimal `json:"income"`
	Expenses   decimal.Decimal `json:"expenses"`
	Balance    decimal.Decimal `json:"balance"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// MonthlyTotal is the income and expense total of one calendar month.
type MonthlyTotal struct {
	Month    string          `json:"month"` // YYYY-MM
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}
