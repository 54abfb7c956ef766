package models

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"
)

// Rule names reported in a Violation.
const (
	RuleRequired  = "required"
	RuleMaxLength = "max_length"
	RuleRange     = "range"
	RuleEnum      = "enum"
	RuleNonEmpty  = "non_empty"
	RuleOrder     = "order"
	RuleFuture    = "not_in_future"
	RuleUnique    = "unique"
)

// Violation is a single failed validation rule.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries every rule a record violated, never just the first.
type ValidationError struct {
	Entity     string      `json:"entity"`
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Field + ": " + v.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(msgs, "; "))
}

// Has reports whether field failed rule. An empty rule matches any rule.
func (e *ValidationError) Has(field, rule string) bool {
	for _, v := range e.Violations {
		if v.Field == field && (rule == "" || v.Rule == rule) {
			return true
		}
	}
	return false
}

// Violations extracts the violations carried by err, if it is a ValidationError.
func Violations(err error) []Violation {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Violations
	}
	return nil
}

// validator accumulates violations for one record.
type validator struct {
	entity     string
	violations []Violation
}

func newValidator(entity string) *validator {
	return &validator{entity: entity}
}

func (v *validator) add(field, rule, format string, args ...any) {
	v.violations = append(v.violations, Violation{
		Field:   field,
		Rule:    rule,
		Message: fmt.Sprintf(format, args...),
	})
}

// name checks a required, length-bounded text field.
func (v *validator) name(field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		v.add(field, RuleRequired, "is required")
		return
	}
	v.maxLen(field, value, max)
}

// maxLen counts characters as entered. Stored text is escaped, so a value
// read back from the store is unescaped before it is measured.
func (v *validator) maxLen(field, value string, max int) {
	if n := utf8.RuneCountInString(html.UnescapeString(strings.TrimSpace(value))); n > max {
		v.add(field, RuleMaxLength, "must be at most %d characters (got %d)", max, n)
	}
}

func (v *validator) intRange(field string, value, min, max int) {
	if value < min || value > max {
		v.add(field, RuleRange, "must be between %d and %d (got %d)", min, max, value)
	}
}

func (v *validator) enum(field string, valid bool, value string, allowed []string) {
	if !valid {
		v.add(field, RuleEnum, "%q is not one of %s", value, strings.Join(allowed, ", "))
	}
}

func (v *validator) err() error {
	if len(v.violations) == 0 {
		return nil
	}
	return &ValidationError{Entity: v.entity, Violations: v.violations}
}
