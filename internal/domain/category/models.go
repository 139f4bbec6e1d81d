// Package category manages user-defined transaction categories. The built-in
// catalogue lives in the transaction package; user categories extend it and
// may not reuse its names.
package category

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"fintrack/internal/domain/transaction"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
	TypeBoth    = "both"

	MaxNameLength = 50
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrForbidden         = errors.New("access forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateCategory = errors.New("a category with this name already exists")
	ErrInvalidParent     = errors.New("invalid parent category")
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type Category struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Icon      string      `json:"icon"`
	Color     string      `json:"color"`
	ParentID  *int64      `json:"parent_id"`
	IsActive  bool        `json:"is_active"`
	SortOrder int         `json:"sort_order"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Children  []*Category `json:"children,omitempty"`
}

// Matches reports whether the category applies to transactions of txType.
func (c *Category) Matches(txType string) bool {
	return txType == "" || c.Type == TypeBoth || c.Type == txType
}

func IsValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense || t == TypeBoth
}

// IsReserved reports whether name collides with a built-in category.
func IsReserved(name string) bool {
	return slices.ContainsFunc(transaction.Categories(), func(c string) bool {
		return strings.EqualFold(c, name)
	})
}

type CreateParams struct {
	UserID    int64
	Name      string
	Type      string
	Icon      string
	Color     string
	ParentID  *int64
	SortOrder int
}

func (p *CreateParams) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	if p.Type == "" {
		p.Type = TypeBoth
	}
	p.Icon = strings.TrimSpace(p.Icon)
	p.Color = strings.TrimSpace(p.Color)
}

func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("%w: valid user ID is required", ErrInvalidInput)
	}
	if err := validateFields(p.Name, p.Type, p.Color); err != nil {
		return err
	}
	if p.ParentID != nil && *p.ParentID <= 0 {
		return ErrInvalidParent
	}
	return nil
}

func validateFields(name, typ, color string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, MaxNameLength)
	}
	if IsReserved(name) {
		return fmt.Errorf("%w: %q is a built-in category", ErrDuplicateCategory, name)
	}
	if !IsValidType(typ) {
		return fmt.Errorf("%w: type must be income, expense or both", ErrInvalidInput)
	}
	if color != "" && !colorPattern.MatchString(color) {
		return fmt.Errorf("%w: color must be a hex value like #1A2B3C", ErrInvalidInput)
	}
	return nil
}

// UpdateParams holds optional changes. ClearParent moves the category back to
// the top level and wins over ParentID.
type UpdateParams struct {
	Name        *string
	Type        *string
	Icon        *string
	Color       *string
	ParentID    *int64
	ClearParent bool
	IsActive    *bool
	SortOrder   *int
}

// Apply returns c with the changes applied and normalised.
func (p UpdateParams) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		c.Type = strings.ToLower(strings.TrimSpace(*p.Type))
	}
	if p.Icon != nil {
		c.Icon = strings.TrimSpace(*p.Icon)
	}
	if p.Color != nil {
		c.Color = strings.TrimSpace(*p.Color)
	}
	if p.ParentID != nil {
		id := *p.ParentID
		c.ParentID = &id
	}
	if p.ClearParent {
		c.ParentID = nil
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if p.SortOrder != nil {
		c.SortOrder = *p.SortOrder
	}
	c.Children = nil
	return c
}

func (c Category) Validate() error {
	if err := validateFields(c.Name, c.Type, c.Color); err != nil {
		return err
	}
	if c.ParentID != nil && (*c.ParentID <= 0 || *c.ParentID == c.ID) {
		return ErrInvalidParent
	}
	return nil
}

// Tree nests children under their parents. Input order is kept at both
// levels; a child whose parent is missing is listed at the top.
func Tree(flat []*Category) []*Category {
	byID := make(map[int64]*Category, len(flat))
	for _, c := range flat {
		c.Children = nil
		byID[c.ID] = c
	}

	roots := make([]*Category, 0, len(flat))
	for _, c := range flat {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok && parent.ParentID == nil {
				parent.Children = append(parent.Children, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots
}
