package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/domain/category"
)

type CategoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categorySelect = `
	SELECT id, user_id, name, type, icon, color, parent_id, is_active, sort_order, created_at, updated_at
	FROM categories`

func scanCategory(row interface{ Scan(...any) error }) (*category.Category, error) {
	var (
		c        category.Category
		parentID sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &parentID,
		&c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.Int64
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, params category.CreateParams) (*category.Category, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (user_id, name, type, icon, color, parent_id, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		params.UserID, params.Name, params.Type, params.Icon, params.Color, params.ParentID, params.SortOrder,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, category.ErrDuplicateCategory
		}
		if isForeignKeyViolation(err) {
			return nil, category.ErrInvalidParent
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, categorySelect+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, category.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) ListByUserID(ctx context.Context, userID int64) ([]*category.Category, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+` WHERE user_id = $1 ORDER BY sort_order, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*category.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) (*category.Category, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET name = $1, type = $2, icon = $3, color = $4, parent_id = $5, is_active = $6, sort_order = $7, updated_at = NOW()
		WHERE id = $8`,
		c.Name, c.Type, c.Icon, c.Color, c.ParentID, c.IsActive, c.SortOrder, c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, category.ErrDuplicateCategory
		}
		if isForeignKeyViolation(err) {
			return nil, category.ErrInvalidParent
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	if err := requireRow(res, category.ErrCategoryNotFound); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, c.ID)
}

// Delete relies on parent_id ON DELETE SET NULL to promote children.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireRow(res, category.ErrCategoryNotFound)
}

func (r *CategoryRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check child categories: %w", err)
	}
	return exists, nil
}
