package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budgetbook/internal/core"

	"github.com/shopspring/decimal"
)

const budgetColumns = "id, category, amount, period, start_date, end_date, active, tenant_id, created_at, updated_at"

// CreateBudget inserts a new budget. The caller is responsible for the
// one-active-budget-per-category-and-period conflict check.
func (s *Store) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	ts := now()
	b.CreatedAt, b.UpdatedAt = ts, ts

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (category, amount, period, start_date, end_date, active, tenant_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Category, b.Amount.String(), string(b.Period), nullableTime(b.StartDate), nullableTime(b.EndDate),
		b.Active, ownerValue(b.Owner), b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget id: %w", err)
	}
	return b, nil
}

// PutBudget inserts a budget preserving id and timestamps (import path).
func (s *Store) PutBudget(ctx context.Context, b core.Budget) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Category, b.Amount.String(), string(b.Period), nullableTime(b.StartDate), nullableTime(b.EndDate),
		b.Active, ownerValue(b.Owner), b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put budget %d: %w", b.ID, err)
	}
	return nil
}

// GetBudget loads one budget owned by the given tenant.
func (s *Store) GetBudget(ctx context.Context, id, tenantID int64) (core.Budget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND tenant_id = ?`, id, tenantID)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return core.Budget{}, &core.NotFoundError{Kind: "budget", ID: id}
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	return b, nil
}

// FindActiveBudget returns the tenant's active budget for a category and
// period, or nil when there is none.
func (s *Store) FindActiveBudget(ctx context.Context, tenantID int64, category string, period core.Period) (*core.Budget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets
		 WHERE tenant_id = ? AND category = ? AND period = ? AND active = 1
		 LIMIT 1`,
		tenantID, category, string(period))
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active budget: %w", err)
	}
	return &b, nil
}

// UpdateBudget rewrites a tenant-owned budget and refreshes updated_at.
func (s *Store) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	tenantID, ok := b.Owner.TenantID()
	if !ok {
		return core.Budget{}, core.ErrNoTenant
	}
	b.UpdatedAt = now()

	res, err := s.db.ExecContext(ctx,
		`UPDATE budgets SET category = ?, amount = ?, period = ?, start_date = ?, end_date = ?, active = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ?`,
		b.Category, b.Amount.String(), string(b.Period), nullableTime(b.StartDate), nullableTime(b.EndDate),
		b.Active, b.UpdatedAt, b.ID, tenantID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", b.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Budget{}, &core.NotFoundError{Kind: "budget", ID: b.ID}
	}
	return b, nil
}

// DeleteBudget hard-deletes a tenant-owned budget.
func (s *Store) DeleteBudget(ctx context.Context, id, tenantID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Kind: "budget", ID: id}
	}
	return nil
}

// ListBudgets returns every budget owned by the tenant.
func (s *Store) ListBudgets(ctx context.Context, tenantID int64) ([]core.Budget, error) {
	return s.queryBudgets(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE tenant_id = ? ORDER BY id ASC`, tenantID)
}

// ListActiveBudgets returns the tenant's budgets with the active flag set.
func (s *Store) ListActiveBudgets(ctx context.Context, tenantID int64) ([]core.Budget, error) {
	return s.queryBudgets(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE tenant_id = ? AND active = 1 ORDER BY id ASC`, tenantID)
}

// AllBudgets returns the whole collection for export, ordered by id.
func (s *Store) AllBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.queryBudgets(ctx, `SELECT `+budgetColumns+` FROM budgets ORDER BY id ASC`)
}

// ClearBudgets empties the collection.
func (s *Store) ClearBudgets(ctx context.Context) error {
	return s.clearTable(ctx, "budgets")
}

func (s *Store) queryBudgets(ctx context.Context, query string, args ...any) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b        core.Budget
		amount   string
		period   string
		start    sql.NullTime
		end      sql.NullTime
		tenantID sql.NullInt64
	)
	err := row.Scan(&b.ID, &b.Category, &amount, &period, &start, &end,
		&b.Active, &tenantID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return core.Budget{}, err
	}
	b.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	b.Period = core.Period(period)
	if start.Valid {
		b.StartDate = &start.Time
	}
	if end.Valid {
		b.EndDate = &end.Time
	}
	b.Owner = ownerFrom(tenantID)
	return b, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
