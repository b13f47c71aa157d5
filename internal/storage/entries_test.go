package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetbook/internal/core"

	"github.com/shopspring/decimal"
)

func mustCreateTenant(t *testing.T, s *Store, email string) int64 {
	t.Helper()
	tn, err := s.CreateTenant(context.Background(), core.Tenant{
		Email: email, Password: "pw", DisplayName: email, Active: true,
	})
	if err != nil {
		t.Fatalf("create tenant %s: %v", email, err)
	}
	return tn.ID
}

func testEntry(tenantID int64, desc string, amount int64, date time.Time) core.Entry {
	typ := core.Expense
	if amount > 0 {
		typ = core.Income
	}
	return core.Entry{
		Description: desc,
		Amount:      decimal.NewFromInt(amount),
		Type:        typ,
		Category:    "Food",
		Date:        date,
		Owner:       core.TenantOwner(tenantID),
	}
}

func TestEntryCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tenantID := mustCreateTenant(t, s, "a@test.local")

	created, err := s.CreateEntry(ctx, core.Entry{
		Description: "Groceries",
		Amount:      decimal.NewFromInt(-42),
		Type:        core.Expense,
		Category:    "Food",
		Date:        time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC),
		Tags:        []string{"weekly", "market"},
		Notes:       "farmers market",
		Owner:       core.TenantOwner(tenantID),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("no id assigned")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped")
	}

	got, err := s.GetEntry(ctx, created.ID, tenantID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "Groceries" || !got.Amount.Equal(decimal.NewFromInt(-42)) {
		t.Errorf("got %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "weekly" {
		t.Errorf("tags = %v", got.Tags)
	}

	got.Description = "Groceries (market)"
	updated, err := s.UpdateEntry(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "Groceries (market)" {
		t.Errorf("description = %q", updated.Description)
	}

	if err := s.DeleteEntry(ctx, created.ID, tenantID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var nf *core.NotFoundError
	if _, err := s.GetEntry(ctx, created.ID, tenantID); !errors.As(err, &nf) {
		t.Errorf("get after delete: %v, want NotFoundError", err)
	}
}

func TestEntryTenantScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateTenant(t, s, "alice@test.local")
	bob := mustCreateTenant(t, s, "bob@test.local")

	mine, err := s.CreateEntry(ctx, testEntry(alice, "alice expense", -10, time.Now().UTC()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another tenant can neither read, update, nor delete it.
	var nf *core.NotFoundError
	if _, err := s.GetEntry(ctx, mine.ID, bob); !errors.As(err, &nf) {
		t.Errorf("cross-tenant get: %v, want NotFoundError", err)
	}
	stolen := mine
	stolen.Owner = core.TenantOwner(bob)
	if _, err := s.UpdateEntry(ctx, stolen); !errors.As(err, &nf) {
		t.Errorf("cross-tenant update: %v, want NotFoundError", err)
	}
	if err := s.DeleteEntry(ctx, mine.ID, bob); !errors.As(err, &nf) {
		t.Errorf("cross-tenant delete: %v, want NotFoundError", err)
	}

	bobs, err := s.ListEntries(ctx, bob)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bobs) != 0 {
		t.Errorf("bob sees %d entries, want 0", len(bobs))
	}
	alices, err := s.ListEntries(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(alices) != 1 {
		t.Errorf("alice sees %d entries, want 1", len(alices))
	}
}

func TestListEntriesInWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tenantID := mustCreateTenant(t, s, "a@test.local")

	for day := 1; day <= 5; day++ {
		date := time.Date(2026, 8, day, 10, 0, 0, 0, time.UTC)
		if _, err := s.CreateEntry(ctx, testEntry(tenantID, "e", -1, date)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// Half-open: day 2 in, day 4 out.
	w := core.Window{
		Start: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	}
	got, err := s.ListEntriesInWindow(ctx, tenantID, w)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("entries in window = %d, want 2", len(got))
	}
}

func TestListEntriesByCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tenantID := mustCreateTenant(t, s, "a@test.local")

	e := testEntry(tenantID, "food", -5, time.Now().UTC())
	if _, err := s.CreateEntry(ctx, e); err != nil {
		t.Fatalf("create: %v", err)
	}
	e.Category = "Transport"
	if _, err := s.CreateEntry(ctx, e); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.ListEntriesByCategory(ctx, tenantID, "Food")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Category != "Food" {
		t.Errorf("got %+v", got)
	}
}

func TestPutEntryPreservesIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tenantID := mustCreateTenant(t, s, "a@test.local")

	stamp := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	in := core.Entry{
		ID:          77,
		Description: "replayed",
		Amount:      decimal.NewFromInt(-9),
		Type:        core.Expense,
		Category:    "Food",
		Date:        stamp,
		Owner:       core.TenantOwner(tenantID),
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
	if err := s.PutEntry(ctx, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetEntry(ctx, 77, tenantID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.Equal(stamp) || !got.UpdatedAt.Equal(stamp) {
		t.Errorf("timestamps not preserved: %+v", got)
	}
}
