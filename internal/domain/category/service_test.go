package category

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepository keeps categories in a map and enforces the per-user unique
// name like the database index does.
type memRepository struct {
	rows   map[int64]*Category
	nextID int64
}

func newMemRepository(seed ...*Category) *memRepository {
	m := &memRepository{rows: map[int64]*Category{}}
	for _, c := range seed {
		m.rows[c.ID] = c
		if c.ID > m.nextID {
			m.nextID = c.ID
		}
	}
	return m
}

func (m *memRepository) nameTaken(userID, exclude int64, name string) bool {
	for _, c := range m.rows {
		if c.UserID == userID && c.ID != exclude && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (m *memRepository) Create(ctx context.Context, p CreateParams) (*Category, error) {
	if m.nameTaken(p.UserID, 0, p.Name) {
		return nil, ErrDuplicateCategory
	}
	m.nextID++
	c := &Category{ID: m.nextID, UserID: p.UserID, Name: p.Name, Type: p.Type, Icon: p.Icon,
		Color: p.Color, ParentID: p.ParentID, IsActive: true, SortOrder: p.SortOrder}
	m.rows[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *memRepository) GetByID(ctx context.Context, id int64) (*Category, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepository) ListByUserID(ctx context.Context, userID int64) ([]*Category, error) {
	var out []*Category
	for _, c := range m.rows {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *memRepository) Update(ctx context.Context, c *Category) (*Category, error) {
	if _, ok := m.rows[c.ID]; !ok {
		return nil, ErrCategoryNotFound
	}
	if m.nameTaken(c.UserID, c.ID, c.Name) {
		return nil, ErrDuplicateCategory
	}
	cp := *c
	m.rows[c.ID] = &cp
	return c, nil
}

func (m *memRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(m.rows, id)
	for _, c := range m.rows {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = nil
		}
	}
	return nil
}

func (m *memRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	for _, c := range m.rows {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func ptr[T any](v T) *T { return &v }

func TestService_Create(t *testing.T) {
	tests := []struct {
		name    string
		params  CreateParams
		wantErr error
	}{
		{name: "Defaults to both", params: CreateParams{UserID: 1, Name: " Pets "}},
		{name: "Child of own top-level", params: CreateParams{UserID: 1, Name: "Vet", Type: "Expense", ParentID: ptr(int64(10))}},
		{name: "Missing name", params: CreateParams{UserID: 1, Name: "  "}, wantErr: ErrInvalidInput},
		{name: "Built-in name", params: CreateParams{UserID: 1, Name: "travel"}, wantErr: ErrDuplicateCategory},
		{name: "Unknown type", params: CreateParams{UserID: 1, Name: "Side gig", Type: "transfer"}, wantErr: ErrInvalidInput},
		{name: "Bad color", params: CreateParams{UserID: 1, Name: "Kids", Color: "red"}, wantErr: ErrInvalidInput},
		{name: "Duplicate name", params: CreateParams{UserID: 1, Name: "HOUSEHOLD"}, wantErr: ErrDuplicateCategory},
		{name: "Parent of another user", params: CreateParams{UserID: 1, Name: "Vet", ParentID: ptr(int64(20))}, wantErr: ErrInvalidParent},
		{name: "Parent is itself a child", params: CreateParams{UserID: 1, Name: "Deep", ParentID: ptr(int64(11))}, wantErr: ErrInvalidParent},
		{name: "Missing parent", params: CreateParams{UserID: 1, Name: "Orphan", ParentID: ptr(int64(99))}, wantErr: ErrInvalidParent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepository(
				&Category{ID: 10, UserID: 1, Name: "Household", Type: TypeExpense, IsActive: true},
				&Category{ID: 11, UserID: 1, Name: "Cleaning", Type: TypeExpense, ParentID: ptr(int64(10)), IsActive: true},
				&Category{ID: 20, UserID: 2, Name: "Hobbies", Type: TypeBoth, IsActive: true},
			)
			svc := NewService(repo)

			c, err := svc.Create(context.Background(), tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.params.Name), c.Name)
			assert.True(t, IsValidType(c.Type))
			assert.True(t, c.IsActive)
		})
	}
}

func TestService_List(t *testing.T) {
	repo := newMemRepository(
		&Category{ID: 1, UserID: 1, Name: "Freelance", Type: TypeIncome, IsActive: true, SortOrder: 1},
		&Category{ID: 2, UserID: 1, Name: "Household", Type: TypeExpense, IsActive: true, SortOrder: 2},
		&Category{ID: 3, UserID: 1, Name: "Cleaning", Type: TypeExpense, ParentID: ptr(int64(2)), IsActive: true},
		&Category{ID: 4, UserID: 1, Name: "Gadgets", Type: TypeBoth, IsActive: false, SortOrder: 3},
		&Category{ID: 5, UserID: 2, Name: "Other user", Type: TypeBoth, IsActive: true},
	)
	svc := NewService(repo)

	all, err := svc.List(context.Background(), 1, "", false)
	require.NoError(t, err)
	var names []string
	for _, c := range all {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Freelance", "Household", "Gadgets"}, names)
	require.Len(t, all[1].Children, 1)
	assert.Equal(t, "Cleaning", all[1].Children[0].Name)

	expense, err := svc.List(context.Background(), 1, TypeExpense, true)
	require.NoError(t, err)
	require.Len(t, expense, 1)
	assert.Equal(t, "Household", expense[0].Name)

	_, err = svc.List(context.Background(), 1, "transfer", false)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Update(t *testing.T) {
	seed := func() *memRepository {
		return newMemRepository(
			&Category{ID: 1, UserID: 1, Name: "Household", Type: TypeExpense, IsActive: true},
			&Category{ID: 2, UserID: 1, Name: "Cleaning", Type: TypeExpense, ParentID: ptr(int64(1)), IsActive: true},
			&Category{ID: 3, UserID: 1, Name: "Pets", Type: TypeExpense, IsActive: true},
		)
	}

	tests := []struct {
		name    string
		id      int64
		userID  int64
		params  UpdateParams
		wantErr error
		check   func(t *testing.T, c *Category)
	}{
		{
			name:   "Rename and recolor",
			id:     3,
			userID: 1,
			params: UpdateParams{Name: ptr(" Animals "), Color: ptr("#A1B2C3")},
			check: func(t *testing.T, c *Category) {
				assert.Equal(t, "Animals", c.Name)
				assert.Equal(t, "#A1B2C3", c.Color)
			},
		},
		{
			name:   "Move under another top-level",
			id:     3,
			userID: 1,
			params: UpdateParams{ParentID: ptr(int64(1))},
			check: func(t *testing.T, c *Category) {
				require.NotNil(t, c.ParentID)
				assert.Equal(t, int64(1), *c.ParentID)
			},
		},
		{
			name:   "Back to top level",
			id:     2,
			userID: 1,
			params: UpdateParams{ClearParent: true},
			check:  func(t *testing.T, c *Category) { assert.Nil(t, c.ParentID) },
		},
		{
			name:   "Deactivate",
			id:     3,
			userID: 1,
			params: UpdateParams{IsActive: ptr(false)},
			check:  func(t *testing.T, c *Category) { assert.False(t, c.IsActive) },
		},
		{name: "Parent with children cannot nest", id: 1, userID: 1, params: UpdateParams{ParentID: ptr(int64(3))}, wantErr: ErrInvalidParent},
		{name: "Own parent", id: 3, userID: 1, params: UpdateParams{ParentID: ptr(int64(3))}, wantErr: ErrInvalidParent},
		{name: "Name clash", id: 3, userID: 1, params: UpdateParams{Name: ptr("cleaning")}, wantErr: ErrDuplicateCategory},
		{name: "Built-in name", id: 3, userID: 1, params: UpdateParams{Name: ptr("Salary")}, wantErr: ErrDuplicateCategory},
		{name: "Other user", id: 3, userID: 2, params: UpdateParams{Name: ptr("Mine")}, wantErr: ErrForbidden},
		{name: "Missing", id: 404, userID: 1, params: UpdateParams{Name: ptr("x")}, wantErr: ErrCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(seed())
			c, err := svc.Update(context.Background(), tt.id, tt.userID, tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestService_Delete_PromotesChildren(t *testing.T) {
	repo := newMemRepository(
		&Category{ID: 1, UserID: 1, Name: "Household", Type: TypeExpense, IsActive: true},
		&Category{ID: 2, UserID: 1, Name: "Cleaning", Type: TypeExpense, ParentID: ptr(int64(1)), IsActive: true},
	)
	svc := NewService(repo)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1, 2), ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), 1, 1))

	list, err := svc.List(context.Background(), 1, "", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cleaning", list[0].Name)
	assert.Nil(t, list[0].ParentID)
}

func TestTree_OrphanStaysTopLevel(t *testing.T) {
	flat := []*Category{
		{ID: 2, Name: "Child", ParentID: ptr(int64(1))},
		{ID: 3, Name: "Orphan", ParentID: ptr(int64(9))},
		{ID: 1, Name: "Parent"},
	}
	roots := Tree(flat)

	require.Len(t, roots, 2)
	assert.Equal(t, "Orphan", roots[0].Name)
	assert.Equal(t, "Parent", roots[1].Name)
	require.Len(t, roots[1].Children, 1)
}
