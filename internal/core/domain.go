package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

type (
	// EntryType discriminates income from expense. It is redundant with the
	// sign of the amount and must always agree with it.
	EntryType string

	// Period is the recurrence of a budget window.
	Period string

	// Entry is a single financial transaction. A negative amount is an
	// expense, a positive amount is income.
	Entry struct {
		ID           int64           `json:"id"`
		Description  string          `json:"description" validate:"required,notblank"`
		Amount       decimal.Decimal `json:"amount"`
		Type         EntryType       `json:"type" validate:"required,oneof=income expense"`
		Category     string          `json:"category" validate:"required,notblank"`
		Date         time.Time       `json:"date" validate:"required"`
		Tags         []string        `json:"tags,omitempty"`
		Notes        string          `json:"notes,omitempty"`
		Owner        Owner           `json:"tenantId"`
		BudgetRuleID *int64          `json:"budgetRuleId,omitempty"`
		CreatedAt    time.Time       `json:"createdAt"`
		UpdatedAt    time.Time       `json:"updatedAt"`
	}

	// Budget is a spending ceiling for one category over a recurring period.
	Budget struct {
		ID        int64           `json:"id"`
		Category  string          `json:"category" validate:"required,notblank"`
		Amount    decimal.Decimal `json:"amount"`
		Period    Period          `json:"period" validate:"required,oneof=weekly monthly yearly"`
		StartDate *time.Time      `json:"startDate,omitempty"`
		EndDate   *time.Time      `json:"endDate,omitempty"`
		Active    bool            `json:"active"`
		Owner     Owner           `json:"tenantId"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	// Category classifies entries. A shared-owner category is visible to
	// every tenant; color and icon are opaque display tokens.
	Category struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name" validate:"required,notblank"`
		Color     string    `json:"color" validate:"required,notblank"`
		Icon      string    `json:"icon"`
		Type      EntryType `json:"type" validate:"required,oneof=income expense"`
		IsDefault bool      `json:"isDefault"`
		Owner     Owner     `json:"tenantId"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// BudgetRule is a percentage-of-income allocation bucket, independent of
	// category. The percentages of a tenant's rules need not sum to 100.
	BudgetRule struct {
		ID         int64     `json:"id"`
		Name       string    `json:"name" validate:"required,notblank"`
		Percentage float64   `json:"percentage" validate:"gte=0,lte=100"`
		Color      string    `json:"color"`
		Icon       string    `json:"icon"`
		Owner      Owner     `json:"tenantId"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}

	// Tenant is an account whose private records are isolated from other
	// tenants. The credential is stored and compared verbatim; the original
	// system never hashed it and this port keeps the observed behavior.
	Tenant struct {
		ID          int64     `json:"id"`
		Email       string    `json:"email" validate:"required,email"`
		Password    string    `json:"password" validate:"required"`
		DisplayName string    `json:"displayName"`
		Active      bool      `json:"active"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// Snapshot is a named, persisted full-store backup.
	Snapshot struct {
		ID          int64     `json:"id"`
		Name        string    `json:"name" validate:"required,notblank"`
		Description string    `json:"description,omitempty"`
		Payload     []byte    `json:"payload"`
		Version     string    `json:"version"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// Setting is one application-level key/value pair. The debt-tracking
	// area lives here under the "debts." key prefix.
	Setting struct {
		Key   string `json:"key" validate:"required,notblank"`
		Value string `json:"value"`
	}
)

var (
	ErrNoTenant = errors.New("no tenant resolved")
)

// ParsePeriod normalizes a period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	default:
		return "", errors.New("unknown period " + s)
	}
}

// Magnitude returns the absolute value of the entry amount.
func (e Entry) Magnitude() decimal.Decimal {
	return e.Amount.Abs()
}

// IsExpense reports whether the entry is an expense by sign.
func (e Entry) IsExpense() bool {
	return e.Amount.Sign() < 0
}
