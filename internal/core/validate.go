package core

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Not empty and not only whitespace.
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ValidateEntry checks every field of an entry write request and returns a
// ValidationError listing all violations, or nil.
func ValidateEntry(e Entry) error {
	violations := structViolations(e)

	switch {
	case e.Amount.IsZero():
		violations = append(violations, FieldViolation{Field: "amount", Reason: "must be non-zero"})
	case e.Type == Expense && e.Amount.Sign() > 0:
		violations = append(violations, FieldViolation{Field: "amount", Reason: "expense amount must be negative"})
	case e.Type == Income && e.Amount.Sign() < 0:
		violations = append(violations, FieldViolation{Field: "amount", Reason: "income amount must be positive"})
	}

	return asValidationError(violations)
}

// ValidateBudget checks a budget write request.
func ValidateBudget(b Budget) error {
	violations := structViolations(b)

	if b.Amount.Sign() <= 0 {
		violations = append(violations, FieldViolation{Field: "amount", Reason: "must be positive"})
	}
	if b.StartDate != nil && b.EndDate != nil && b.EndDate.Before(*b.StartDate) {
		violations = append(violations, FieldViolation{Field: "endDate", Reason: "must not be before start date"})
	}

	return asValidationError(violations)
}

// ValidateCategory checks a category write request. Color only needs to be
// non-empty; icon is an opaque identifier and is not validated.
func ValidateCategory(c Category) error {
	return asValidationError(structViolations(c))
}

// ValidateBudgetRule checks a budget rule write request.
func ValidateBudgetRule(r BudgetRule) error {
	return asValidationError(structViolations(r))
}

// ValidateTenant checks a tenant write request.
func ValidateTenant(t Tenant) error {
	return asValidationError(structViolations(t))
}

// ValidateSnapshot checks a snapshot write request.
func ValidateSnapshot(s Snapshot) error {
	return asValidationError(structViolations(s))
}

func structViolations(v any) []FieldViolation {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldViolation{{Field: "_", Reason: err.Error()}}
	}
	violations := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, FieldViolation{
			Field:  strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
			Reason: reasonFor(fe),
		})
	}
	return violations
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func asValidationError(violations []FieldViolation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}
