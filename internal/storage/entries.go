package storage

import (
	"context"
	"database/sql"
	"fmt"

	"budgetbook/internal/core"

	"github.com/shopspring/decimal"
)

const entryColumns = "id, description, amount, type, category, entry_date, tags, notes, tenant_id, budget_rule_id, created_at, updated_at"

// CreateEntry inserts a new entry for its owner and stamps both timestamps.
func (s *Store) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	ts := now()
	e.CreatedAt, e.UpdatedAt = ts, ts

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (description, amount, type, category, entry_date, tags, notes, tenant_id, budget_rule_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Description, e.Amount.String(), string(e.Type), e.Category, e.Date,
		joinTags(e.Tags), e.Notes, ownerValue(e.Owner), nullableID(e.BudgetRuleID),
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return core.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return core.Entry{}, fmt.Errorf("create entry id: %w", err)
	}
	return e, nil
}

// PutEntry inserts an entry preserving its id and timestamps. Used by the
// import path to replay an export payload verbatim.
func (s *Store) PutEntry(ctx context.Context, e core.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount.String(), string(e.Type), e.Category, e.Date,
		joinTags(e.Tags), e.Notes, ownerValue(e.Owner), nullableID(e.BudgetRuleID),
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put entry %d: %w", e.ID, err)
	}
	return nil
}

// GetEntry loads one entry owned by the given tenant.
func (s *Store) GetEntry(ctx context.Context, id, tenantID int64) (core.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ? AND tenant_id = ?`, id, tenantID)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return core.Entry{}, &core.NotFoundError{Kind: "entry", ID: id}
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry %d: %w", id, err)
	}
	return e, nil
}

// UpdateEntry rewrites a tenant-owned entry and refreshes updated_at.
func (s *Store) UpdateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	tenantID, ok := e.Owner.TenantID()
	if !ok {
		return core.Entry{}, core.ErrNoTenant
	}
	e.UpdatedAt = now()

	res, err := s.db.ExecContext(ctx,
		`UPDATE entries SET description = ?, amount = ?, type = ?, category = ?, entry_date = ?,
		 tags = ?, notes = ?, budget_rule_id = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ?`,
		e.Description, e.Amount.String(), string(e.Type), e.Category, e.Date,
		joinTags(e.Tags), e.Notes, nullableID(e.BudgetRuleID), e.UpdatedAt,
		e.ID, tenantID)
	if err != nil {
		return core.Entry{}, fmt.Errorf("update entry %d: %w", e.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Entry{}, &core.NotFoundError{Kind: "entry", ID: e.ID}
	}
	return e, nil
}

// DeleteEntry hard-deletes a tenant-owned entry.
func (s *Store) DeleteEntry(ctx context.Context, id, tenantID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Kind: "entry", ID: id}
	}
	return nil
}

// ListEntries returns every entry owned by the tenant, newest first.
func (s *Store) ListEntries(ctx context.Context, tenantID int64) ([]core.Entry, error) {
	return s.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE tenant_id = ? ORDER BY entry_date DESC, id DESC`,
		tenantID)
}

// ListEntriesInWindow returns the tenant's entries inside [w.Start, w.End).
func (s *Store) ListEntriesInWindow(ctx context.Context, tenantID int64, w core.Window) ([]core.Entry, error) {
	return s.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM entries
		 WHERE tenant_id = ? AND entry_date >= ? AND entry_date < ?
		 ORDER BY entry_date ASC, id ASC`,
		tenantID, w.Start, w.End)
}

// ListEntriesByCategory returns the tenant's entries for one category.
func (s *Store) ListEntriesByCategory(ctx context.Context, tenantID int64, category string) ([]core.Entry, error) {
	return s.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM entries
		 WHERE tenant_id = ? AND category = ?
		 ORDER BY entry_date DESC, id DESC`,
		tenantID, category)
}

// AllEntries returns the whole collection for export, ordered by id.
func (s *Store) AllEntries(ctx context.Context) ([]core.Entry, error) {
	return s.queryEntries(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY id ASC`)
}

// ClearEntries empties the collection.
func (s *Store) ClearEntries(ctx context.Context) error {
	return s.clearTable(ctx, "entries")
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]core.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []core.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (core.Entry, error) {
	var (
		e        core.Entry
		amount   string
		typ      string
		tags     string
		tenantID sql.NullInt64
		ruleID   sql.NullInt64
	)
	err := row.Scan(&e.ID, &e.Description, &amount, &typ, &e.Category, &e.Date,
		&tags, &e.Notes, &tenantID, &ruleID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return core.Entry{}, err
	}
	e.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Entry{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	e.Type = core.EntryType(typ)
	e.Tags = splitTags(tags)
	e.Owner = ownerFrom(tenantID)
	if ruleID.Valid {
		e.BudgetRuleID = &ruleID.Int64
	}
	return e, nil
}

func ownerValue(o core.Owner) any {
	if id, ok := o.TenantID(); ok {
		return id
	}
	return nil
}

func ownerFrom(n sql.NullInt64) core.Owner {
	if n.Valid {
		return core.TenantOwner(n.Int64)
	}
	return core.SharedOwner()
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
