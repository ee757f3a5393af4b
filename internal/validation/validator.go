// Package validation provides accumulating validation results for toggle definitions.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MinPercentage is the minimum rollout percentage
	MinPercentage = 0
	// MaxPercentage is the maximum rollout percentage
	MaxPercentage = 100
)

// FieldError is a single violation tied to the field that caused it.
type FieldError struct {
	Field   string
	Message string
}

// ValidationResult collects every violation found; it is never fail-fast.
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// NewValidationResult creates a new validation result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// AddError adds a field error and marks the result as invalid
func (v *ValidationResult) AddError(field, message string) {
	v.Valid = false
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

// Merge appends another result's errors, keeping their order
func (v *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for _, e := range other.Errors {
		v.AddError(e.Field, e.Message)
	}
}

// Messages returns the error messages in the order they were added
func (v *ValidationResult) Messages() []string {
	messages := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		messages = append(messages, e.Message)
	}
	return messages
}

// Err joins all messages into one error, or returns nil when valid
func (v *ValidationResult) Err() error {
	if v.Valid {
		return nil
	}
	return errors.New(strings.Join(v.Messages(), "; "))
}

// RequireNonBlank fails when value is empty after trimming
func RequireNonBlank(field, label, value string) *ValidationResult {
	result := NewValidationResult()
	if strings.TrimSpace(value) == "" {
		result.AddError(field, label+" is required")
	}
	return result
}

// RequirePresent fails when value is the empty string
func RequirePresent(field, label, value string) *ValidationResult {
	result := NewValidationResult()
	if value == "" {
		result.AddError(field, label+" is required")
	}
	return result
}

// ValidatePercentage validates a rollout percentage
func ValidatePercentage(field string, percentage int) *ValidationResult {
	result := NewValidationResult()
	if percentage < MinPercentage || percentage > MaxPercentage {
		result.AddError(field, fmt.Sprintf("Rollout percentage must be between %d and %d", MinPercentage, MaxPercentage))
	}
	return result
}
