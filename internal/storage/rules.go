package storage

import (
	"context"
	"database/sql"
	"fmt"

	"budgetbook/internal/core"
)

const ruleColumns = "id, name, percentage, color, icon, tenant_id, created_at, updated_at"

// CreateBudgetRule inserts a new budget rule.
func (s *Store) CreateBudgetRule(ctx context.Context, r core.BudgetRule) (core.BudgetRule, error) {
	ts := now()
	r.CreatedAt, r.UpdatedAt = ts, ts

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO budget_rules (name, percentage, color, icon, tenant_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Name, r.Percentage, r.Color, r.Icon, ownerValue(r.Owner), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return core.BudgetRule{}, fmt.Errorf("create budget rule: %w", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return core.BudgetRule{}, fmt.Errorf("create budget rule id: %w", err)
	}
	return r, nil
}

// PutBudgetRule inserts a rule preserving id and timestamps (import path).
func (s *Store) PutBudgetRule(ctx context.Context, r core.BudgetRule) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budget_rules (`+ruleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Percentage, r.Color, r.Icon, ownerValue(r.Owner), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put budget rule %d: %w", r.ID, err)
	}
	return nil
}

// GetVisibleBudgetRule loads one rule from the tenant's visible union
// (own rules plus shared defaults).
func (s *Store) GetVisibleBudgetRule(ctx context.Context, id, tenantID int64) (core.BudgetRule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM budget_rules
		 WHERE id = ? AND (tenant_id IS NULL OR tenant_id = ?)`, id, tenantID)
	r, err := scanRule(row)
	if err == sql.ErrNoRows {
		return core.BudgetRule{}, &core.NotFoundError{Kind: "budget rule", ID: id}
	}
	if err != nil {
		return core.BudgetRule{}, fmt.Errorf("get budget rule %d: %w", id, err)
	}
	return r, nil
}

// UpdateBudgetRule rewrites a tenant-owned rule. Shared defaults are not
// editable through the tenant surface.
func (s *Store) UpdateBudgetRule(ctx context.Context, r core.BudgetRule) (core.BudgetRule, error) {
	tenantID, ok := r.Owner.TenantID()
	if !ok {
		return core.BudgetRule{}, core.ErrNoTenant
	}
	r.UpdatedAt = now()

	res, err := s.db.ExecContext(ctx,
		`UPDATE budget_rules SET name = ?, percentage = ?, color = ?, icon = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ?`,
		r.Name, r.Percentage, r.Color, r.Icon, r.UpdatedAt, r.ID, tenantID)
	if err != nil {
		return core.BudgetRule{}, fmt.Errorf("update budget rule %d: %w", r.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.BudgetRule{}, &core.NotFoundError{Kind: "budget rule", ID: r.ID}
	}
	return r, nil
}

// DeleteBudgetRule hard-deletes a tenant-owned rule.
func (s *Store) DeleteBudgetRule(ctx context.Context, id, tenantID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM budget_rules WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete budget rule %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Kind: "budget rule", ID: id}
	}
	return nil
}

// ListBudgetRules returns the union of the tenant's own rules and the
// shared defaults.
func (s *Store) ListBudgetRules(ctx context.Context, tenantID int64) ([]core.BudgetRule, error) {
	return s.queryRules(ctx,
		`SELECT `+ruleColumns+` FROM budget_rules
		 WHERE tenant_id IS NULL OR tenant_id = ?
		 ORDER BY id ASC`, tenantID)
}

// AllBudgetRules returns the whole collection for export, ordered by id.
func (s *Store) AllBudgetRules(ctx context.Context) ([]core.BudgetRule, error) {
	return s.queryRules(ctx, `SELECT `+ruleColumns+` FROM budget_rules ORDER BY id ASC`)
}

// ClearBudgetRules empties the collection.
func (s *Store) ClearBudgetRules(ctx context.Context) error {
	return s.clearTable(ctx, "budget_rules")
}

func (s *Store) queryRules(ctx context.Context, query string, args ...any) ([]core.BudgetRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query budget rules: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRule(row rowScanner) (core.BudgetRule, error) {
	var (
		r        core.BudgetRule
		tenantID sql.NullInt64
	)
	err := row.Scan(&r.ID, &r.Name, &r.Percentage, &r.Color, &r.Icon,
		&tenantID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return core.BudgetRule{}, err
	}
	r.Owner = ownerFrom(tenantID)
	return r, nil
}
