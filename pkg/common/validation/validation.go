// Package validation provides common validation utilities for the taskloop library.
package validation

import (
	"fmt"
	"reflect"
	"time"

	tlerrors "github.com/vnykmshr/taskloop/pkg/common/errors"
)

// ValidateNonNegative validates that an integer value is zero or greater.
func ValidateNonNegative(module, field string, value int) error {
	if value < 0 {
		return tlerrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("use 0 for the default")
	}
	return nil
}

// ValidatePositiveDuration validates that a duration is positive (> 0).
func ValidatePositiveDuration(module, field string, value time.Duration) error {
	if value <= 0 {
		return tlerrors.NewValidationError(module, field, value, "must be positive").
			WithHint("use a duration greater than 0")
	}
	return nil
}

// ValidateDurationRange validates that min <= value <= max.
func ValidateDurationRange(module, field string, value, min, max time.Duration) error {
	if value < min || value > max {
		return tlerrors.NewValidationError(module, field, value, "out of range").
			WithHint(fmt.Sprintf("use a value between %v and %v", min, max))
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil.
// A typed nil pointer, func, map, slice or channel stored in the interface
// is treated as nil as well.
func ValidateNotNil(module, field string, value interface{}) error {
	if isNil(value) {
		return tlerrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ValidationError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return tlerrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
