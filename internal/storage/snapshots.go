package storage

import (
	"context"
	"database/sql"
	"fmt"

	"budgetbook/internal/core"
)

const snapshotColumns = "id, name, description, payload, version, created_at"

// CreateSnapshot persists a named backup. Snapshots never auto-expire.
func (s *Store) CreateSnapshot(ctx context.Context, sn core.Snapshot) (core.Snapshot, error) {
	sn.CreatedAt = now()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (name, description, payload, version, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sn.Name, sn.Description, string(sn.Payload), sn.Version, sn.CreatedAt)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("create snapshot: %w", err)
	}
	sn.ID, err = res.LastInsertId()
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("create snapshot id: %w", err)
	}
	return sn, nil
}

// GetSnapshot loads one snapshot with its payload.
func (s *Store) GetSnapshot(ctx context.Context, id int64) (core.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)
	sn, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return core.Snapshot{}, &core.NotFoundError{Kind: "snapshot", ID: id}
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("get snapshot %d: %w", id, err)
	}
	return sn, nil
}

// ListSnapshots returns every snapshot, newest first, without payloads.
func (s *Store) ListSnapshots(ctx context.Context) ([]core.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, '', version, created_at FROM snapshots ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []core.Snapshot
	for rows.Next() {
		sn, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		sn.Payload = nil
		out = append(out, sn)
	}
	return out, rows.Err()
}

// DeleteSnapshot hard-deletes one snapshot.
func (s *Store) DeleteSnapshot(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Kind: "snapshot", ID: id}
	}
	return nil
}

// ClearSnapshots empties the collection.
func (s *Store) ClearSnapshots(ctx context.Context) error {
	return s.clearTable(ctx, "snapshots")
}

func scanSnapshot(row rowScanner) (core.Snapshot, error) {
	var (
		sn      core.Snapshot
		payload string
	)
	err := row.Scan(&sn.ID, &sn.Name, &sn.Description, &payload, &sn.Version, &sn.CreatedAt)
	if err != nil {
		return core.Snapshot{}, err
	}
	sn.Payload = []byte(payload)
	return sn, nil
}
