package storage

import (
	"context"
	"database/sql"
	"fmt"

	"budgetbook/internal/core"
)

const tenantColumns = "id, email, password, display_name, active, created_at, updated_at"

// CreateTenant inserts a new tenant. The credential is stored verbatim; the
// original system never hashed it and this port keeps that observed
// behavior (see DESIGN.md).
func (s *Store) CreateTenant(ctx context.Context, t core.Tenant) (core.Tenant, error) {
	ts := now()
	t.CreatedAt, t.UpdatedAt = ts, ts

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (email, password, display_name, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Email, t.Password, t.DisplayName, t.Active, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return core.Tenant{}, fmt.Errorf("create tenant: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Tenant{}, fmt.Errorf("create tenant id: %w", err)
	}
	return t, nil
}

// PutTenant inserts a tenant preserving id and timestamps (import path).
func (s *Store) PutTenant(ctx context.Context, t core.Tenant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (`+tenantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Email, t.Password, t.DisplayName, t.Active, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put tenant %d: %w", t.ID, err)
	}
	return nil
}

// GetTenant loads one tenant by id.
func (s *Store) GetTenant(ctx context.Context, id int64) (core.Tenant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return core.Tenant{}, &core.NotFoundError{Kind: "tenant", ID: id}
	}
	if err != nil {
		return core.Tenant{}, fmt.Errorf("get tenant %d: %w", id, err)
	}
	return t, nil
}

// FindTenantByEmail looks a tenant up by its exact email, or returns nil.
// Emails are compared case-sensitively, as stored.
func (s *Store) FindTenantByEmail(ctx context.Context, email string) (*core.Tenant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE email = ?`, email)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tenant by email: %w", err)
	}
	return &t, nil
}

// AllTenants returns the whole collection for export, ordered by id.
func (s *Store) AllTenants(ctx context.Context) ([]core.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	defer rows.Close()

	var out []core.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ClearTenants empties the collection.
func (s *Store) ClearTenants(ctx context.Context) error {
	return s.clearTable(ctx, "tenants")
}

func scanTenant(row rowScanner) (core.Tenant, error) {
	var t core.Tenant
	err := row.Scan(&t.ID, &t.Email, &t.Password, &t.DisplayName, &t.Active,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Tenant{}, err
	}
	return t, nil
}
