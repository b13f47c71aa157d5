package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgetbook/internal/core"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ExportFormatVersion tags every export payload and snapshot.
const ExportFormatVersion = "1.0"

// ExportPayload is the whole-store export document. Import accepts this
// exact shape and treats missing sub-arrays as empty.
type ExportPayload struct {
	Version     string            `json:"version"`
	ExportDate  time.Time         `json:"exportDate"`
	Entries     []core.Entry      `json:"entries"`
	Budgets     []core.Budget     `json:"budgets"`
	Categories  []core.Category   `json:"categories"`
	BudgetRules []core.BudgetRule `json:"budgetRules"`
	Settings    []core.Setting    `json:"settings"`
	Tenants     []core.Tenant     `json:"tenants"`
}

// ExportAll produces a full copy of every collection. Collections are
// loaded concurrently; any failure aborts the export (an incomplete export
// is worse than none).
func (s *LedgerService) ExportAll(ctx context.Context) (ExportPayload, error) {
	p := ExportPayload{
		Version:    ExportFormatVersion,
		ExportDate: s.now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { p.Entries, err = s.store.AllEntries(gctx); return })
	g.Go(func() (err error) { p.Budgets, err = s.store.AllBudgets(gctx); return })
	g.Go(func() (err error) { p.Categories, err = s.store.AllCategories(gctx); return })
	g.Go(func() (err error) { p.BudgetRules, err = s.store.AllBudgetRules(gctx); return })
	g.Go(func() (err error) { p.Settings, err = s.store.AllSettings(gctx); return })
	g.Go(func() (err error) { p.Tenants, err = s.store.AllTenants(gctx); return })
	if err := g.Wait(); err != nil {
		return ExportPayload{}, fmt.Errorf("export: %w", err)
	}
	return p, nil
}

// CreateBackup persists a named snapshot of the whole store. When a backup
// directory is configured a JSON copy is also written there, best effort.
func (s *LedgerService) CreateBackup(ctx context.Context, name, description string) (core.Snapshot, error) {
	sn := core.Snapshot{Name: name, Description: description, Version: ExportFormatVersion}
	if err := core.ValidateSnapshot(sn); err != nil {
		return core.Snapshot{}, err
	}

	payload, err := s.ExportAll(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("serialize backup: %w", err)
	}
	sn.Payload = raw

	created, err := s.store.CreateSnapshot(ctx, sn)
	if err != nil {
		return core.Snapshot{}, err
	}

	if s.backupDir != "" {
		s.writeBackupFile(ctx, raw)
	}
	return created, nil
}

func (s *LedgerService) writeBackupFile(ctx context.Context, raw []byte) {
	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		slog.WarnContext(ctx, "Backup file copy skipped", "error", err)
		return
	}
	path := filepath.Join(s.backupDir, fmt.Sprintf("backup-%s.json", uuid.New().String()))
	if err := os.WriteFile(path, raw, 0600); err != nil {
		slog.WarnContext(ctx, "Backup file copy failed", "path", path, "error", err)
		return
	}
	slog.InfoContext(ctx, "Backup file written", "path", path)
}

// ListBackups returns every snapshot, newest first, without payloads.
func (s *LedgerService) ListBackups(ctx context.Context) ([]core.Snapshot, error) {
	return s.store.ListSnapshots(ctx)
}

// DeleteBackup removes one snapshot.
func (s *LedgerService) DeleteBackup(ctx context.Context, id int64) error {
	return s.store.DeleteSnapshot(ctx, id)
}

// RestoreBackup replaces the whole store with a stored snapshot's payload.
func (s *LedgerService) RestoreBackup(ctx context.Context, id int64) error {
	sn, err := s.store.GetSnapshot(ctx, id)
	if err != nil {
		return err
	}
	var payload ExportPayload
	if err := json.Unmarshal(sn.Payload, &payload); err != nil {
		return fmt.Errorf("parse snapshot %d payload: %w", id, err)
	}
	return s.ImportAll(ctx, payload)
}

// ImportAll replaces every entity collection with the payload's records —
// a full replace, never a merge. Each collection is cleared and refilled
// independently: one collection failing does not stop the others, and the
// aggregated BulkOperationError names every collection that failed. Once a
// clear has run, that collection's prior contents are gone.
func (s *LedgerService) ImportAll(ctx context.Context, p ExportPayload) error {
	steps := []bulkStep{
		{"tenants", s.store.ClearTenants, putAll(p.Tenants, s.store.PutTenant)},
		{"categories", s.store.ClearCategories, putAll(p.Categories, s.store.PutCategory)},
		{"budgetRules", s.store.ClearBudgetRules, putAll(p.BudgetRules, s.store.PutBudgetRule)},
		{"entries", s.store.ClearEntries, putAll(p.Entries, s.store.PutEntry)},
		{"budgets", s.store.ClearBudgets, putAll(p.Budgets, s.store.PutBudget)},
		{"settings", s.store.ClearSettings, putAll(p.Settings, func(ctx context.Context, st core.Setting) error {
			return s.store.SetSetting(ctx, st.Key, st.Value)
		})},
	}
	err := s.runBulk(ctx, "import", steps)
	s.categories.Purge()
	return err
}

// ResetAll clears every collection — snapshots and tenants included — then
// re-runs only the default seeding. Sample data is never recreated here.
func (s *LedgerService) ResetAll(ctx context.Context) error {
	steps := []bulkStep{
		{"entries", s.store.ClearEntries, nil},
		{"budgets", s.store.ClearBudgets, nil},
		{"categories", s.store.ClearCategories, nil},
		{"budgetRules", s.store.ClearBudgetRules, nil},
		{"settings", s.store.ClearSettings, nil},
		{"snapshots", s.store.ClearSnapshots, nil},
		{"tenants", s.store.ClearTenants, nil},
	}
	err := s.runBulk(ctx, "reset", steps)
	s.categories.Purge()

	report := s.store.SeedDefaults(ctx)
	for _, st := range report.Failed() {
		err = multierr.Append(err, st.Err)
	}
	return err
}

type bulkStep struct {
	name  string
	clear func(context.Context) error
	fill  func(context.Context) error
}

func putAll[T any](records []T, put func(context.Context, T) error) func(context.Context) error {
	return func(ctx context.Context) error {
		for i := range records {
			if err := put(ctx, records[i]); err != nil {
				return err
			}
		}
		return nil
	}
}

// runBulk executes every step even when earlier ones fail, retrying each
// clear a couple of times before giving up on it.
func (s *LedgerService) runBulk(ctx context.Context, op string, steps []bulkStep) error {
	var (
		failed []string
		errs   error
	)
	for _, step := range steps {
		backoff := retry.WithMaxRetries(2, retry.NewConstant(50*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if cerr := step.clear(ctx); cerr != nil {
				return retry.RetryableError(cerr)
			}
			return nil
		})
		if err == nil && step.fill != nil {
			err = step.fill(ctx)
		}
		if err != nil {
			slog.ErrorContext(ctx, "Bulk step failed", "op", op, "collection", step.name, "error", err)
			failed = append(failed, step.name)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	if errs == nil {
		return nil
	}
	return &core.BulkOperationError{Op: op, Collections: failed, Err: errs}
}
