package storage

import (
	"time"

	"budgetbook/internal/core"

	"github.com/shopspring/decimal"
)

// LegacyTenantEmail identifies both the seeded demo tenant and the tenant
// that pre-multi-tenancy records are assigned to during the legacy
// ownership migration.
const LegacyTenantEmail = "demo@budgetbook.local"

func defaultCategories() []core.Category {
	expense := []struct{ name, color, icon string }{
		{"Food", "#FF6B6B", "utensils"},
		{"Transport", "#4ECDC4", "car"},
		{"Housing", "#45B7D1", "home"},
		{"Utilities", "#FFA07A", "bolt"},
		{"Entertainment", "#98D8C8", "film"},
		{"Shopping", "#F7DC6F", "shopping-bag"},
		{"Healthcare", "#BB8FCE", "heart"},
		{"Education", "#85C1E9", "book"},
		{"Other", "#BDC3C7", "ellipsis"},
	}
	income := []struct{ name, color, icon string }{
		{"Salary", "#2ECC71", "briefcase"},
		{"Freelance", "#27AE60", "laptop"},
		{"Investments", "#16A085", "trending-up"},
		{"Gifts", "#F39C12", "gift"},
		{"Other Income", "#95A5A6", "plus"},
	}

	out := make([]core.Category, 0, len(expense)+len(income))
	for _, c := range expense {
		out = append(out, core.Category{
			Name: c.name, Color: c.color, Icon: c.icon,
			Type: core.Expense, IsDefault: true, Owner: core.SharedOwner(),
		})
	}
	for _, c := range income {
		out = append(out, core.Category{
			Name: c.name, Color: c.color, Icon: c.icon,
			Type: core.Income, IsDefault: true, Owner: core.SharedOwner(),
		})
	}
	return out
}

// DefaultCategoryCount is the number of categories seeded into an empty store.
func DefaultCategoryCount() int { return len(defaultCategories()) }

func defaultBudgetRules() []core.BudgetRule {
	return []core.BudgetRule{
		{Name: "Needs", Percentage: 50, Color: "#E74C3C", Icon: "home", Owner: core.SharedOwner()},
		{Name: "Wants", Percentage: 30, Color: "#3498DB", Icon: "smile", Owner: core.SharedOwner()},
		{Name: "Savings", Percentage: 20, Color: "#2ECC71", Icon: "piggy-bank", Owner: core.SharedOwner()},
	}
}

// DefaultBudgetRuleCount is the number of rules seeded into an empty store.
func DefaultBudgetRuleCount() int { return len(defaultBudgetRules()) }

func defaultTenants() []core.Tenant {
	// Credential stored in clear text, matching the original system.
	return []core.Tenant{
		{Email: LegacyTenantEmail, Password: "demo", DisplayName: "Demo", Active: true},
	}
}

// DefaultTenantCount is the number of tenants seeded into an empty store.
func DefaultTenantCount() int { return len(defaultTenants()) }

func defaultSettings() []core.Setting {
	return []core.Setting{
		{Key: "currency", Value: "EUR"},
		{Key: "locale", Value: "en"},
		{Key: "theme", Value: "light"},
	}
}

func sampleEntries(tenantID int64) []core.Entry {
	owner := core.TenantOwner(tenantID)
	month := time.Now().UTC()
	day := func(d int) time.Time {
		return time.Date(month.Year(), month.Month(), d, 12, 0, 0, 0, time.UTC)
	}
	return []core.Entry{
		{Description: "Monthly salary", Amount: decimal.NewFromInt(2400), Type: core.Income, Category: "Salary", Date: day(1), Owner: owner},
		{Description: "Groceries", Amount: decimal.NewFromInt(-85), Type: core.Expense, Category: "Food", Date: day(2), Owner: owner},
		{Description: "Bus pass", Amount: decimal.NewFromInt(-40), Type: core.Expense, Category: "Transport", Date: day(3), Owner: owner},
		{Description: "Electricity bill", Amount: decimal.NewFromInt(-60), Type: core.Expense, Category: "Utilities", Date: day(5), Owner: owner},
		{Description: "Cinema night", Amount: decimal.NewFromInt(-18), Type: core.Expense, Category: "Entertainment", Date: day(6), Owner: owner},
	}
}

func sampleBudgets(tenantID int64) []core.Budget {
	return []core.Budget{
		{Category: "Food", Amount: decimal.NewFromInt(500), Period: core.Monthly, Active: true, Owner: core.TenantOwner(tenantID)},
	}
}
