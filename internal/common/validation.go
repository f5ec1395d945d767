package common

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
			// first failing rule per field is enough
			break
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Required - Common validation rules
func Required(fieldName string, value interface{}) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case *string:
		if v == nil || strings.TrimSpace(*v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	}
	return nil
}

// AbsoluteURL requires an http(s) URL with a host.
func AbsoluteURL(fieldName string, value interface{}) *ValidationError {
	str, ok := value.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
	}
	u, err := url.Parse(strings.TrimSpace(str))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be an absolute http(s) URL"}
	}
	return nil
}

// PositiveDuration rejects zero and negative durations.
func PositiveDuration(fieldName string, value interface{}) *ValidationError {
	d, ok := value.(time.Duration)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a duration"}
	}
	if d <= 0 {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be greater than zero"}
	}
	return nil
}

// MinDuration requires a duration of at least floor.
func MinDuration(floor time.Duration) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		d, ok := value.(time.Duration)
		if !ok {
			return &ValidationError{Field: fieldName, Value: value, Message: "must be a duration"}
		}
		if d < floor {
			return &ValidationError{Field: fieldName, Value: value, Message: "must be at least " + floor.String()}
		}
		return nil
	}
}

// ValidateAndReturnError validates and returns a CONFIG_ERROR if validation fails
func ValidateAndReturnError(validator *Validator) error {
	if validator.HasErrors() {
		return NewAppError(CodeConfig, validator.ErrorMessage(), ErrConfig)
	}
	return nil
}
