// Package services exposes the ledger's collaborator surface: tenant-scoped
// CRUD, budget aggregation, insight generation, and the backup lifecycle.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"budgetbook/internal/cache"
	"budgetbook/internal/core"
	"budgetbook/internal/storage"
)

// TenantResolver supplies the requesting tenant for every scoped call. It
// is implemented by the excluded auth layer; StaticTenant serves tests and
// single-user deployments.
type TenantResolver interface {
	CurrentTenant(ctx context.Context) (*core.Tenant, error)
}

// StaticTenant resolves to one fixed tenant (or none, when nil).
type StaticTenant struct {
	Tenant *core.Tenant
}

func (s StaticTenant) CurrentTenant(context.Context) (*core.Tenant, error) {
	return s.Tenant, nil
}

// LedgerService is the facade the UI layer talks to. All state lives in the
// store handle it wraps; the service itself only caches category reads.
type LedgerService struct {
	store      *storage.Store
	resolver   TenantResolver
	categories *cache.LRU[[]core.Category]
	backupDir  string
	now        func() time.Time
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithBackupDir enables best-effort JSON file copies of named backups.
func WithBackupDir(dir string) Option {
	return func(s *LedgerService) { s.backupDir = dir }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithCategoryCacheTTL overrides the category cache lifetime.
func WithCategoryCacheTTL(ttl time.Duration) Option {
	return func(s *LedgerService) {
		if ttl > 0 {
			s.categories = cache.New[[]core.Category](64, ttl)
		}
	}
}

// NewLedgerService wraps an open store.
func NewLedgerService(store *storage.Store, resolver TenantResolver, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:      store,
		resolver:   resolver,
		categories: cache.New[[]core.Category](64, time.Minute),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tenant resolves the requesting tenant. A missing resolver, an unresolved
// tenant, or an inactive tenant all count as "no tenant": scoped reads then
// return empty collections and writes are rejected.
func (s *LedgerService) tenant(ctx context.Context) (*core.Tenant, error) {
	if s.resolver == nil {
		return nil, nil
	}
	t, err := s.resolver.CurrentTenant(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant: %w", err)
	}
	if t == nil || !t.Active {
		return nil, nil
	}
	return t, nil
}

func (s *LedgerService) requireTenant(ctx context.Context) (*core.Tenant, error) {
	t, err := s.tenant(ctx)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, core.ErrNoTenant
	}
	return t, nil
}

// GetStats counts every collection for display.
func (s *LedgerService) GetStats(ctx context.Context) (storage.Stats, error) {
	return s.store.Stats(ctx)
}

// --- Entries ---

// AddEntry validates and stores a new entry for the requesting tenant. The
// category must exist (own or shared) with a type matching the entry's.
func (s *LedgerService) AddEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.Entry{}, err
	}
	if err := core.ValidateEntry(e); err != nil {
		return core.Entry{}, err
	}
	if err := s.checkCategoryRef(ctx, t.ID, e); err != nil {
		return core.Entry{}, err
	}
	e.Owner = core.TenantOwner(t.ID)
	return s.store.CreateEntry(ctx, e)
}

// UpdateEntry rewrites one of the tenant's entries.
func (s *LedgerService) UpdateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.Entry{}, err
	}
	if err := core.ValidateEntry(e); err != nil {
		return core.Entry{}, err
	}
	if err := s.checkCategoryRef(ctx, t.ID, e); err != nil {
		return core.Entry{}, err
	}
	e.Owner = core.TenantOwner(t.ID)
	return s.store.UpdateEntry(ctx, e)
}

// GetEntry loads one of the tenant's entries.
func (s *LedgerService) GetEntry(ctx context.Context, id int64) (core.Entry, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.Entry{}, err
	}
	return s.store.GetEntry(ctx, id, t.ID)
}

// DeleteEntry removes one of the tenant's entries.
func (s *LedgerService) DeleteEntry(ctx context.Context, id int64) error {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return err
	}
	return s.store.DeleteEntry(ctx, id, t.ID)
}

// ListEntries returns the tenant's entries, newest first.
func (s *LedgerService) ListEntries(ctx context.Context) ([]core.Entry, error) {
	t, err := s.tenant(ctx)
	if err != nil || t == nil {
		return nil, err
	}
	return s.store.ListEntries(ctx, t.ID)
}

// ListEntriesInRange returns the tenant's entries with date in [from, to).
func (s *LedgerService) ListEntriesInRange(ctx context.Context, from, to time.Time) ([]core.Entry, error) {
	t, err := s.tenant(ctx)
	if err != nil || t == nil {
		return nil, err
	}
	return s.store.ListEntriesInWindow(ctx, t.ID, core.Window{Start: from, End: to})
}

// ListEntriesByCategory returns the tenant's entries for one category.
func (s *LedgerService) ListEntriesByCategory(ctx context.Context, category string) ([]core.Entry, error) {
	t, err := s.tenant(ctx)
	if err != nil || t == nil {
		return nil, err
	}
	return s.store.ListEntriesByCategory(ctx, t.ID, category)
}

func (s *LedgerService) checkCategoryRef(ctx context.Context, tenantID int64, e core.Entry) error {
	cat, err := s.store.FindVisibleCategory(ctx, tenantID, e.Category, e.Type)
	if err != nil {
		return err
	}
	if cat == nil {
		return &core.ValidationError{Violations: []core.FieldViolation{
			{Field: "category", Reason: fmt.Sprintf("no %s category named %q", e.Type, e.Category)},
		}}
	}
	return nil
}

// --- Budgets ---

// AddBudget validates and stores a new budget. At most one active budget
// may exist per (category, period) for a tenant; a second one is a
// ConflictError, never a silent overwrite.
func (s *LedgerService) AddBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.Budget{}, err
	}
	if err := core.ValidateBudget(b); err != nil {
		return core.Budget{}, err
	}
	if b.Active {
		existing, err := s.store.FindActiveBudget(ctx, t.ID, b.Category, b.Period)
		if err != nil {
			return core.Budget{}, err
		}
		if existing != nil {
			return core.Budget{}, &core.ConflictError{Category: b.Category, Period: b.Period}
		}
	}
	b.Owner = core.TenantOwner(t.ID)
	return s.store.CreateBudget(ctx, b)
}

// UpdateBudget rewrites one of the tenant's budgets, keeping the
// one-active-per-category-and-period invariant.
func (s *LedgerService) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.Budget{}, err
	}
	if err := core.ValidateBudget(b); err != nil {
		return core.Budget{}, err
	}
	if b.Active {
		existing, err := s.store.FindActiveBudget(ctx, t.ID, b.Category, b.Period)
		if err != nil {
			return core.Budget{}, err
		}
		if existing != nil && existing.ID != b.ID {
			return core.Budget{}, &core.ConflictError{Category: b.Category, Period: b.Period}
		}
	}
	b.Owner = core.TenantOwner(t.ID)
	return s.store.UpdateBudget(ctx, b)
}

// GetBudget loads one of the tenant's budgets.
func (s *LedgerService) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.Budget{}, err
	}
	return s.store.GetBudget(ctx, id, t.ID)
}

// DeleteBudget removes one of the tenant's budgets.
func (s *LedgerService) DeleteBudget(ctx context.Context, id int64) error {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return err
	}
	return s.store.DeleteBudget(ctx, id, t.ID)
}

// ListBudgets returns the tenant's budgets.
func (s *LedgerService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	t, err := s.tenant(ctx)
	if err != nil || t == nil {
		return nil, err
	}
	return s.store.ListBudgets(ctx, t.ID)
}

// --- Categories ---

// AddCategory validates and stores a tenant-private category.
func (s *LedgerService) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.Category{}, err
	}
	if err := core.ValidateCategory(c); err != nil {
		return core.Category{}, err
	}
	c.Owner = core.TenantOwner(t.ID)
	c.IsDefault = false
	created, err := s.store.CreateCategory(ctx, c)
	if err == nil {
		s.categories.Delete(categoryCacheKey(t.ID))
	}
	return created, err
}

// UpdateCategory rewrites one of the tenant's own categories. Shared
// defaults cannot be edited.
func (s *LedgerService) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.Category{}, err
	}
	if err := core.ValidateCategory(c); err != nil {
		return core.Category{}, err
	}
	c.Owner = core.TenantOwner(t.ID)
	updated, err := s.store.UpdateCategory(ctx, c)
	if err == nil {
		s.categories.Delete(categoryCacheKey(t.ID))
	}
	return updated, err
}

// GetCategory loads one category from the tenant's visible union.
func (s *LedgerService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.Category{}, err
	}
	return s.store.GetVisibleCategory(ctx, id, t.ID)
}

// DeleteCategory removes one of the tenant's own categories. Entries keep
// their category name; the reference is soft and never cascades.
func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, id, t.ID); err != nil {
		return err
	}
	s.categories.Delete(categoryCacheKey(t.ID))
	return nil
}

// ListCategories returns the tenant's own categories plus the shared
// defaults. Results are briefly cached per tenant.
func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	t, err := s.tenant(ctx)
	if err != nil || t == nil {
		return nil, err
	}
	key := categoryCacheKey(t.ID)
	if cached, ok := s.categories.Get(key); ok {
		return cached, nil
	}
	cats, err := s.store.ListCategories(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	s.categories.Set(key, cats)
	return cats, nil
}

// ListCategoriesByType narrows the visible union to one entry type.
func (s *LedgerService) ListCategoriesByType(ctx context.Context, typ core.EntryType) ([]core.Category, error) {
	t, err := s.tenant(ctx)
	if err != nil || t == nil {
		return nil, err
	}
	return s.store.ListCategoriesByType(ctx, t.ID, typ)
}

func categoryCacheKey(tenantID int64) string {
	return "categories:" + strconv.FormatInt(tenantID, 10)
}

// --- Budget rules ---

// AddBudgetRule validates and stores a tenant-private allocation rule. The
// effective rules not summing to 100 is only worth a warning.
func (s *LedgerService) AddBudgetRule(ctx context.Context, r core.BudgetRule) (core.BudgetRule, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.BudgetRule{}, err
	}
	if err := core.ValidateBudgetRule(r); err != nil {
		return core.BudgetRule{}, err
	}
	r.Owner = core.TenantOwner(t.ID)
	created, err := s.store.CreateBudgetRule(ctx, r)
	if err == nil {
		s.warnRulePercentages(ctx, t.ID)
	}
	return created, err
}

// UpdateBudgetRule rewrites one of the tenant's own rules.
func (s *LedgerService) UpdateBudgetRule(ctx context.Context, r core.BudgetRule) (core.BudgetRule, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.BudgetRule{}, err
	}
	if err := core.ValidateBudgetRule(r); err != nil {
		return core.BudgetRule{}, err
	}
	r.Owner = core.TenantOwner(t.ID)
	updated, err := s.store.UpdateBudgetRule(ctx, r)
	if err == nil {
		s.warnRulePercentages(ctx, t.ID)
	}
	return updated, err
}

// GetBudgetRule loads one rule from the tenant's visible union.
func (s *LedgerService) GetBudgetRule(ctx context.Context, id int64) (core.BudgetRule, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return core.BudgetRule{}, err
	}
	return s.store.GetVisibleBudgetRule(ctx, id, t.ID)
}

// DeleteBudgetRule removes one of the tenant's own rules.
func (s *LedgerService) DeleteBudgetRule(ctx context.Context, id int64) error {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return err
	}
	return s.store.DeleteBudgetRule(ctx, id, t.ID)
}

// ListBudgetRules returns the tenant's own rules plus the shared defaults.
func (s *LedgerService) ListBudgetRules(ctx context.Context) ([]core.BudgetRule, error) {
	t, err := s.tenant(ctx)
	if err != nil || t == nil {
		return nil, err
	}
	return s.store.ListBudgetRules(ctx, t.ID)
}

func (s *LedgerService) warnRulePercentages(ctx context.Context, tenantID int64) {
	rules, err := s.store.ListBudgetRules(ctx, tenantID)
	if err != nil {
		return
	}
	var sum float64
	for _, r := range rules {
		sum += r.Percentage
	}
	if sum != 100 {
		slog.WarnContext(ctx, "Budget rule percentages do not sum to 100",
			"tenant_id", tenantID, "sum", sum)
	}
}

// --- Settings ---

// SetSetting upserts an application-level key/value pair.
func (s *LedgerService) SetSetting(ctx context.Context, key, value string) error {
	return s.store.SetSetting(ctx, key, value)
}

// GetSetting returns the value for key and whether it exists.
func (s *LedgerService) GetSetting(ctx context.Context, key string) (string, bool, error) {
	return s.store.GetSetting(ctx, key)
}
