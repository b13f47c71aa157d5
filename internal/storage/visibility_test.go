package storage

import (
	"context"
	"testing"

	"budgetbook/internal/core"

	"github.com/shopspring/decimal"
)

func TestCategoryVisibilityUnion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateTenant(t, s, "alice@test.local")
	bob := mustCreateTenant(t, s, "bob@test.local")

	shared, err := s.CreateCategory(ctx, core.Category{
		Name: "Food", Color: "#FF6B6B", Type: core.Expense,
		IsDefault: true, Owner: core.SharedOwner(),
	})
	if err != nil {
		t.Fatalf("create shared: %v", err)
	}
	if _, err := s.CreateCategory(ctx, core.Category{
		Name: "Crafts", Color: "#112233", Type: core.Expense,
		Owner: core.TenantOwner(alice),
	}); err != nil {
		t.Fatalf("create private: %v", err)
	}

	aliceSees, err := s.ListCategories(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(aliceSees) != 2 {
		t.Errorf("alice sees %d categories, want shared + own = 2", len(aliceSees))
	}

	bobSees, err := s.ListCategories(ctx, bob)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bobSees) != 1 || bobSees[0].ID != shared.ID {
		t.Errorf("bob sees %+v, want only the shared category", bobSees)
	}

	// FindVisibleCategory follows the same union.
	if cat, err := s.FindVisibleCategory(ctx, bob, "Crafts", core.Expense); err != nil || cat != nil {
		t.Errorf("bob found alice's category: %+v, %v", cat, err)
	}
	if cat, err := s.FindVisibleCategory(ctx, bob, "Food", core.Expense); err != nil || cat == nil {
		t.Errorf("bob cannot find shared category: %v", err)
	}
}

func TestCategoryTypeFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tenantID := mustCreateTenant(t, s, "a@test.local")

	for _, c := range []core.Category{
		{Name: "Food", Color: "#1", Type: core.Expense, Owner: core.SharedOwner()},
		{Name: "Salary", Color: "#2", Type: core.Income, Owner: core.SharedOwner()},
	} {
		if _, err := s.CreateCategory(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	income, err := s.ListCategoriesByType(ctx, tenantID, core.Income)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(income) != 1 || income[0].Name != "Salary" {
		t.Errorf("income categories = %+v", income)
	}
}

func TestSharedCategoryNotEditable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tenantID := mustCreateTenant(t, s, "a@test.local")

	shared, err := s.CreateCategory(ctx, core.Category{
		Name: "Food", Color: "#FF6B6B", Type: core.Expense,
		IsDefault: true, Owner: core.SharedOwner(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	shared.Owner = core.TenantOwner(tenantID)
	shared.Name = "Hijacked"
	if _, err := s.UpdateCategory(ctx, shared); err == nil {
		t.Error("updating a shared category as tenant-owned must fail")
	}
	if err := s.DeleteCategory(ctx, shared.ID, tenantID); err == nil {
		t.Error("deleting a shared category as tenant must fail")
	}
}

func TestBudgetRuleVisibilityUnion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateTenant(t, s, "alice@test.local")
	bob := mustCreateTenant(t, s, "bob@test.local")

	if _, err := s.CreateBudgetRule(ctx, core.BudgetRule{
		Name: "Needs", Percentage: 50, Owner: core.SharedOwner(),
	}); err != nil {
		t.Fatalf("create shared: %v", err)
	}
	private, err := s.CreateBudgetRule(ctx, core.BudgetRule{
		Name: "Vacation", Percentage: 10, Owner: core.TenantOwner(alice),
	})
	if err != nil {
		t.Fatalf("create private: %v", err)
	}

	aliceSees, err := s.ListBudgetRules(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(aliceSees) != 2 {
		t.Errorf("alice sees %d rules, want 2", len(aliceSees))
	}

	if _, err := s.GetVisibleBudgetRule(ctx, private.ID, bob); err == nil {
		t.Error("bob resolved alice's private rule")
	}
}

func TestFindActiveBudget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tenantID := mustCreateTenant(t, s, "a@test.local")

	if _, err := s.CreateBudget(ctx, core.Budget{
		Category: "Food", Amount: decimal.NewFromInt(500), Period: core.Monthly,
		Active: true, Owner: core.TenantOwner(tenantID),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Inactive budgets never count.
	if _, err := s.CreateBudget(ctx, core.Budget{
		Category: "Transport", Amount: decimal.NewFromInt(100), Period: core.Monthly,
		Active: false, Owner: core.TenantOwner(tenantID),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name     string
		category string
		period   core.Period
		found    bool
	}{
		{"match", "Food", core.Monthly, true},
		{"different period", "Food", core.Weekly, false},
		{"different category", "Housing", core.Monthly, false},
		{"inactive excluded", "Transport", core.Monthly, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindActiveBudget(ctx, tenantID, tt.category, tt.period)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if (got != nil) != tt.found {
				t.Errorf("found = %v, want %v", got != nil, tt.found)
			}
		})
	}
}
