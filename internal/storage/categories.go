package storage

import (
	"context"
	"database/sql"
	"fmt"

	"budgetbook/internal/core"
)

const categoryColumns = "id, name, color, icon, type, is_default, tenant_id, created_at, updated_at"

// CreateCategory inserts a new category.
func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, color, icon, type, is_default, tenant_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Color, c.Icon, string(c.Type), c.IsDefault, ownerValue(c.Owner), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category id: %w", err)
	}
	return c, nil
}

// PutCategory inserts a category preserving id and timestamps (import path).
func (s *Store) PutCategory(ctx context.Context, c core.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Color, c.Icon, string(c.Type), c.IsDefault, ownerValue(c.Owner), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put category %d: %w", c.ID, err)
	}
	return nil
}

// GetVisibleCategory loads one category from the tenant's visible union
// (own categories plus shared defaults).
func (s *Store) GetVisibleCategory(ctx context.Context, id, tenantID int64) (core.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE id = ? AND (tenant_id IS NULL OR tenant_id = ?)`, id, tenantID)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return core.Category{}, &core.NotFoundError{Kind: "category", ID: id}
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// UpdateCategory rewrites a tenant-owned category. Shared defaults are not
// editable through the tenant surface.
func (s *Store) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	tenantID, ok := c.Owner.TenantID()
	if !ok {
		return core.Category{}, core.ErrNoTenant
	}
	c.UpdatedAt = now()

	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ?, icon = ?, type = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ?`,
		c.Name, c.Color, c.Icon, string(c.Type), c.UpdatedAt, c.ID, tenantID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Category{}, &core.NotFoundError{Kind: "category", ID: c.ID}
	}
	return c, nil
}

// DeleteCategory hard-deletes a tenant-owned category.
func (s *Store) DeleteCategory(ctx context.Context, id, tenantID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Kind: "category", ID: id}
	}
	return nil
}

// ListCategories returns the union of the tenant's own categories and the
// shared defaults.
func (s *Store) ListCategories(ctx context.Context, tenantID int64) ([]core.Category, error) {
	return s.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE tenant_id IS NULL OR tenant_id = ?
		 ORDER BY id ASC`, tenantID)
}

// ListCategoriesByType narrows the visible union to one entry type.
func (s *Store) ListCategoriesByType(ctx context.Context, tenantID int64, typ core.EntryType) ([]core.Category, error) {
	return s.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE (tenant_id IS NULL OR tenant_id = ?) AND type = ?
		 ORDER BY id ASC`, tenantID, string(typ))
}

// FindVisibleCategory looks a category up by name and type in the tenant's
// visible union, or returns nil.
func (s *Store) FindVisibleCategory(ctx context.Context, tenantID int64, name string, typ core.EntryType) (*core.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE (tenant_id IS NULL OR tenant_id = ?) AND name = ? AND type = ?
		 LIMIT 1`, tenantID, name, string(typ))
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &c, nil
}

// AllCategories returns the whole collection for export, ordered by id.
func (s *Store) AllCategories(ctx context.Context) ([]core.Category, error) {
	return s.queryCategories(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id ASC`)
}

// ClearCategories empties the collection.
func (s *Store) ClearCategories(ctx context.Context) error {
	return s.clearTable(ctx, "categories")
}

func (s *Store) queryCategories(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c        core.Category
		typ      string
		tenantID sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &typ, &c.IsDefault,
		&tenantID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return core.Category{}, err
	}
	c.Type = core.EntryType(typ)
	c.Owner = ownerFrom(tenantID)
	return c, nil
}
