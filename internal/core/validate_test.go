package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validEntry() Entry {
	return Entry{
		Description: "groceries",
		Amount:      decimal.NewFromInt(-25),
		Type:        Expense,
		Category:    "Food",
		Date:        time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestValidateEntry(t *testing.T) {
	if err := ValidateEntry(validEntry()); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}
}

func TestValidateEntryListsEveryViolation(t *testing.T) {
	e := Entry{
		Description: "   ",
		Amount:      decimal.Zero,
		Type:        "transfer",
		Category:    "",
	}
	err := ValidateEntry(e)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	want := map[string]bool{
		"description": false,
		"type":        false,
		"category":    false,
		"date":        false,
		"amount":      false,
	}
	for _, f := range verr.Fields() {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for f, seen := range want {
		if !seen {
			t.Errorf("violation for field %q missing, got %v", f, verr.Fields())
		}
	}
}

func TestValidateEntrySignMustAgreeWithType(t *testing.T) {
	cases := []struct {
		name   string
		typ    EntryType
		amount decimal.Decimal
		ok     bool
	}{
		{"expense negative", Expense, decimal.NewFromInt(-10), true},
		{"income positive", Income, decimal.NewFromInt(10), true},
		{"expense positive", Expense, decimal.NewFromInt(10), false},
		{"income negative", Income, decimal.NewFromInt(-10), false},
		{"zero amount", Expense, decimal.Zero, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validEntry()
			e.Type = tc.typ
			e.Amount = tc.amount
			err := ValidateEntry(e)
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateBudget(t *testing.T) {
	b := Budget{Category: "Food", Amount: decimal.NewFromInt(500), Period: Monthly}
	if err := ValidateBudget(b); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}

	b.Amount = decimal.NewFromInt(-1)
	b.Period = "daily"
	err := ValidateBudget(b)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", verr.Fields())
	}
}

func TestValidateBudgetRulePercentageRange(t *testing.T) {
	r := BudgetRule{Name: "Needs", Percentage: 50}
	if err := ValidateBudgetRule(r); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}
	r.Percentage = 120
	if err := ValidateBudgetRule(r); err == nil {
		t.Fatal("expected validation error for percentage > 100")
	}
}

func TestValidateTenantEmail(t *testing.T) {
	tn := Tenant{Email: "not-an-email", Password: "x"}
	if err := ValidateTenant(tn); err == nil {
		t.Fatal("expected validation error for bad email")
	}
}
