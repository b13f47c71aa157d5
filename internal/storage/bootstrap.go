package storage

import (
	"context"
	"fmt"
	"log/slog"

	"budgetbook/internal/core"
)

// StepResult is the outcome of one bootstrap step.
type StepResult struct {
	Name     string
	Affected int64
	Err      error
}

// StartupReport collects every bootstrap step outcome. A failed step never
// stops the remaining steps; the report makes the failures inspectable
// instead of only appearing in logs.
type StartupReport struct {
	Steps []StepResult
}

// Failed returns the steps that reported an error.
func (r StartupReport) Failed() []StepResult {
	var failed []StepResult
	for _, st := range r.Steps {
		if st.Err != nil {
			failed = append(failed, st)
		}
	}
	return failed
}

// OK reports whether every step succeeded.
func (r StartupReport) OK() bool { return len(r.Failed()) == 0 }

// Bootstrap brings a freshly opened store to a consistent, seeded state.
// It is idempotent: every step is guarded so repeated opens never duplicate
// seed data or delete anything twice.
func (s *Store) Bootstrap(ctx context.Context) StartupReport {
	report := s.runSteps(ctx, []bootstrapStep{
		{"reconcile_duplicate_categories", s.reconcileDuplicateCategories},
		{"seed_default_categories", s.seedDefaultCategories},
		{"seed_default_tenants", s.seedDefaultTenants},
		{"seed_default_budget_rules", s.seedDefaultBudgetRules},
		{"seed_default_settings", s.seedDefaultSettings},
		{"seed_sample_data", s.seedSampleData},
		{"migrate_legacy_ownership", s.migrateLegacyOwnership},
	})
	return report
}

// SeedDefaults runs only the default-seeding steps. Reset uses this: sample
// data is seeded at first initialization but never re-created by Reset.
func (s *Store) SeedDefaults(ctx context.Context) StartupReport {
	return s.runSteps(ctx, []bootstrapStep{
		{"seed_default_categories", s.seedDefaultCategories},
		{"seed_default_tenants", s.seedDefaultTenants},
		{"seed_default_budget_rules", s.seedDefaultBudgetRules},
		{"seed_default_settings", s.seedDefaultSettings},
	})
}

type bootstrapStep struct {
	name string
	fn   func(context.Context) (int64, error)
}

func (s *Store) runSteps(ctx context.Context, steps []bootstrapStep) StartupReport {
	var report StartupReport
	for _, step := range steps {
		affected, err := step.fn(ctx)
		if err != nil {
			err = &core.MigrationError{Step: step.name, Err: err}
			slog.ErrorContext(ctx, "Bootstrap step failed", "step", step.name, "error", err)
		} else if affected > 0 {
			slog.InfoContext(ctx, "Bootstrap step applied", "step", step.name, "affected", affected)
		}
		report.Steps = append(report.Steps, StepResult{Name: step.name, Affected: affected, Err: err})
	}
	return report
}

// reconcileDuplicateCategories deletes every category after the first in
// each (name, type, visibility scope) group. Running it twice deletes
// nothing the second time.
func (s *Store) reconcileDuplicateCategories(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id NOT IN (
		     SELECT MIN(id) FROM categories
		     GROUP BY name, type, IFNULL(tenant_id, 0)
		 )`)
	if err != nil {
		return 0, fmt.Errorf("reconcile duplicate categories: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) seedDefaultCategories(ctx context.Context) (int64, error) {
	empty, err := s.collectionEmpty(ctx, "categories")
	if err != nil || !empty {
		return 0, err
	}
	var seeded int64
	for _, c := range defaultCategories() {
		if _, err := s.CreateCategory(ctx, c); err != nil {
			return seeded, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		seeded++
	}
	return seeded, nil
}

func (s *Store) seedDefaultTenants(ctx context.Context) (int64, error) {
	empty, err := s.collectionEmpty(ctx, "tenants")
	if err != nil || !empty {
		return 0, err
	}
	var seeded int64
	for _, t := range defaultTenants() {
		if _, err := s.CreateTenant(ctx, t); err != nil {
			return seeded, fmt.Errorf("seed tenant %q: %w", t.Email, err)
		}
		seeded++
	}
	return seeded, nil
}

func (s *Store) seedDefaultBudgetRules(ctx context.Context) (int64, error) {
	empty, err := s.collectionEmpty(ctx, "budget_rules")
	if err != nil || !empty {
		return 0, err
	}
	var seeded int64
	for _, r := range defaultBudgetRules() {
		if _, err := s.CreateBudgetRule(ctx, r); err != nil {
			return seeded, fmt.Errorf("seed budget rule %q: %w", r.Name, err)
		}
		seeded++
	}
	return seeded, nil
}

func (s *Store) seedDefaultSettings(ctx context.Context) (int64, error) {
	empty, err := s.collectionEmpty(ctx, "settings")
	if err != nil || !empty {
		return 0, err
	}
	var seeded int64
	for _, st := range defaultSettings() {
		if err := s.SetSetting(ctx, st.Key, st.Value); err != nil {
			return seeded, fmt.Errorf("seed setting %q: %w", st.Key, err)
		}
		seeded++
	}
	return seeded, nil
}

// seedSampleData gives the demo tenant a handful of entries and one budget
// on first initialization. Reset deliberately never re-runs this step.
func (s *Store) seedSampleData(ctx context.Context) (int64, error) {
	empty, err := s.collectionEmpty(ctx, "entries")
	if err != nil || !empty {
		return 0, err
	}
	demo, err := s.FindTenantByEmail(ctx, LegacyTenantEmail)
	if err != nil {
		return 0, err
	}
	if demo == nil {
		return 0, fmt.Errorf("demo tenant %q not seeded", LegacyTenantEmail)
	}

	var seeded int64
	for _, e := range sampleEntries(demo.ID) {
		if _, err := s.CreateEntry(ctx, e); err != nil {
			return seeded, fmt.Errorf("seed sample entry %q: %w", e.Description, err)
		}
		seeded++
	}
	for _, b := range sampleBudgets(demo.ID) {
		if _, err := s.CreateBudget(ctx, b); err != nil {
			return seeded, fmt.Errorf("seed sample budget %q: %w", b.Category, err)
		}
		seeded++
	}
	return seeded, nil
}

// migrateLegacyOwnership assigns pre-multi-tenancy records (owner missing)
// to the designated legacy tenant. Once every record has an owner this is
// a no-op.
func (s *Store) migrateLegacyOwnership(ctx context.Context) (int64, error) {
	var orphans int64
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM entries WHERE tenant_id IS NULL)
		      + (SELECT COUNT(*) FROM budgets WHERE tenant_id IS NULL)
		      + (SELECT COUNT(*) FROM categories WHERE tenant_id IS NULL AND is_default = 0)`).Scan(&orphans)
	if err != nil {
		return 0, fmt.Errorf("count legacy records: %w", err)
	}
	if orphans == 0 {
		return 0, nil
	}

	legacy, err := s.FindTenantByEmail(ctx, LegacyTenantEmail)
	if err != nil {
		return 0, err
	}
	if legacy == nil {
		return 0, fmt.Errorf("legacy tenant %q not found", LegacyTenantEmail)
	}

	var migrated int64
	for _, q := range []string{
		`UPDATE entries SET tenant_id = ? WHERE tenant_id IS NULL`,
		`UPDATE budgets SET tenant_id = ? WHERE tenant_id IS NULL`,
		`UPDATE categories SET tenant_id = ? WHERE tenant_id IS NULL AND is_default = 0`,
	} {
		res, err := s.db.ExecContext(ctx, q, legacy.ID)
		if err != nil {
			return migrated, fmt.Errorf("assign legacy owner: %w", err)
		}
		n, _ := res.RowsAffected()
		migrated += n
	}
	return migrated, nil
}

func (s *Store) collectionEmpty(ctx context.Context, table string) (bool, error) {
	n, err := s.count(ctx, table)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
