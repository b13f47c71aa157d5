package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/storage"

	"github.com/shopspring/decimal"
)

// testNow is the fixed clock for every service test: mid-August 2026, a
// Saturday.
var testNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *LedgerService
	store  *storage.Store
	tenant core.Tenant
}

// newFixture opens a fresh store with one active tenant and the minimal
// shared categories the tests reference.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tenant, err := store.CreateTenant(ctx, core.Tenant{
		Email: "user@test.local", Password: "pw", DisplayName: "User", Active: true,
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	for _, c := range []core.Category{
		{Name: "Food", Color: "#F00", Type: core.Expense, IsDefault: true, Owner: core.SharedOwner()},
		{Name: "Transport", Color: "#0F0", Type: core.Expense, IsDefault: true, Owner: core.SharedOwner()},
		{Name: "Salary", Color: "#00F", Type: core.Income, IsDefault: true, Owner: core.SharedOwner()},
	} {
		if _, err := store.CreateCategory(ctx, c); err != nil {
			t.Fatalf("create category: %v", err)
		}
	}

	svc := NewLedgerService(store, StaticTenant{Tenant: &tenant},
		WithClock(func() time.Time { return testNow }))
	return &fixture{svc: svc, store: store, tenant: tenant}
}

func (f *fixture) addExpense(t *testing.T, desc string, amount int64, date time.Time) core.Entry {
	t.Helper()
	e, err := f.svc.AddEntry(context.Background(), core.Entry{
		Description: desc,
		Amount:      decimal.NewFromInt(amount),
		Type:        core.Expense,
		Category:    "Food",
		Date:        date,
	})
	if err != nil {
		t.Fatalf("add expense %s: %v", desc, err)
	}
	return e
}

func TestAddEntryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry core.Entry
	}{
		{"blank description", core.Entry{
			Description: "  ", Amount: decimal.NewFromInt(-5), Type: core.Expense,
			Category: "Food", Date: testNow,
		}},
		{"zero amount", core.Entry{
			Description: "x", Amount: decimal.Zero, Type: core.Expense,
			Category: "Food", Date: testNow,
		}},
		{"expense with positive amount", core.Entry{
			Description: "x", Amount: decimal.NewFromInt(5), Type: core.Expense,
			Category: "Food", Date: testNow,
		}},
		{"income with negative amount", core.Entry{
			Description: "x", Amount: decimal.NewFromInt(-5), Type: core.Income,
			Category: "Salary", Date: testNow,
		}},
		{"unknown category", core.Entry{
			Description: "x", Amount: decimal.NewFromInt(-5), Type: core.Expense,
			Category: "Nonexistent", Date: testNow,
		}},
		{"category of wrong type", core.Entry{
			Description: "x", Amount: decimal.NewFromInt(-5), Type: core.Expense,
			Category: "Salary", Date: testNow,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddEntry(ctx, tt.entry)
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}

	// Nothing was written by any rejected attempt.
	entries, err := f.svc.ListEntries(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("store has %d entries after rejected writes", len(entries))
	}
}

func TestNoTenantBehavior(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addExpense(t, "before", -10, testNow)

	tests := []struct {
		name     string
		resolver TenantResolver
	}{
		{"nil resolver", nil},
		{"unresolved tenant", StaticTenant{}},
		{"inactive tenant", StaticTenant{Tenant: &core.Tenant{ID: f.tenant.ID, Active: false}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewLedgerService(f.store, tt.resolver)

			entries, err := svc.ListEntries(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("scoped read returned %d entries without a tenant", len(entries))
			}

			_, err = svc.AddEntry(ctx, core.Entry{
				Description: "x", Amount: decimal.NewFromInt(-5), Type: core.Expense,
				Category: "Food", Date: testNow,
			})
			if !errors.Is(err, core.ErrNoTenant) {
				t.Errorf("write err = %v, want ErrNoTenant", err)
			}
		})
	}
}

func TestBudgetConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	original, err := f.svc.AddBudget(ctx, core.Budget{
		Category: "Food", Amount: decimal.NewFromInt(500), Period: core.Monthly, Active: true,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err = f.svc.AddBudget(ctx, core.Budget{
		Category: "Food", Amount: decimal.NewFromInt(300), Period: core.Monthly, Active: true,
	})
	var ce *core.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ConflictError", err)
	}

	// The original is untouched.
	budgets, err := f.svc.ListBudgets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(budgets) != 1 || !budgets[0].Amount.Equal(original.Amount) {
		t.Errorf("budgets = %+v, want only the original", budgets)
	}

	// Same category, different period is fine.
	if _, err := f.svc.AddBudget(ctx, core.Budget{
		Category: "Food", Amount: decimal.NewFromInt(100), Period: core.Weekly, Active: true,
	}); err != nil {
		t.Errorf("different period rejected: %v", err)
	}

	// An inactive duplicate is fine too.
	if _, err := f.svc.AddBudget(ctx, core.Budget{
		Category: "Food", Amount: decimal.NewFromInt(200), Period: core.Monthly, Active: false,
	}); err != nil {
		t.Errorf("inactive duplicate rejected: %v", err)
	}
}

func TestUpdateBudgetKeepsConflictInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.AddBudget(ctx, core.Budget{
		Category: "Food", Amount: decimal.NewFromInt(500), Period: core.Monthly, Active: true,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := f.svc.AddBudget(ctx, core.Budget{
		Category: "Transport", Amount: decimal.NewFromInt(100), Period: core.Monthly, Active: true,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// Updating a budget onto another's (category, period) slot conflicts.
	second.Category = "Food"
	var ce *core.ConflictError
	if _, err := f.svc.UpdateBudget(ctx, second); !errors.As(err, &ce) {
		t.Errorf("err = %v, want ConflictError", err)
	}

	// Updating a budget in place does not conflict with itself.
	first.Amount = decimal.NewFromInt(600)
	if _, err := f.svc.UpdateBudget(ctx, first); err != nil {
		t.Errorf("self update: %v", err)
	}
}

func TestCategoryCacheInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.svc.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if _, err := f.svc.AddCategory(ctx, core.Category{
		Name: "Books", Color: "#ABC", Type: core.Expense,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	after, err := f.svc.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Errorf("cached list not invalidated: %d -> %d", len(before), len(after))
	}
}

func TestAddCategoryNeverDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.AddCategory(ctx, core.Category{
		Name: "Books", Color: "#ABC", Type: core.Expense, IsDefault: true,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if created.IsDefault {
		t.Error("tenant-created category marked as default")
	}
	if id, ok := created.Owner.TenantID(); !ok || id != f.tenant.ID {
		t.Errorf("owner = %+v, want tenant %d", created.Owner, f.tenant.ID)
	}
}

func TestSettingsThroughFacade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.SetSetting(ctx, "debts.total", "1200.50"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := f.svc.GetSetting(ctx, "debts.total")
	if err != nil || !ok || v != "1200.50" {
		t.Errorf("get = %q, %v, %v", v, ok, err)
	}
}
