// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate accumulates field failures for request input and reports
// them as one VALIDATION_ERROR.
//
//	validator := &validate.Validator{}
//	validator.Required("name", input.Name).MaxLen("name", input.Name, 120)
//	if err := validator.Err(); err != nil { ... }
//
// A Validator is single use and not safe for concurrent use.
package validate

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/pkg/slug"
)

const failedMessage = "Validation failed"

// ErrInvalidJSON is returned when a request body is not decodable JSON.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// Validator collects [apperr.FieldError] values through chained rules.
type Validator struct {
	failures []apperr.FieldError
}

// # Presence and Length

// Required fails on an empty or whitespace-only value.
func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(field, strings.TrimSpace(value) == "", "This field is required")
}

// MaxLen fails when value has more than max runes.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	return v.Custom(field, utf8.RuneCountInString(value) > max, fmt.Sprintf("Maximum %d characters", max))
}

// MinLen fails when value has fewer than min runes.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	return v.Custom(field, utf8.RuneCountInString(value) < min, fmt.Sprintf("Minimum %d characters", min))
}

// # Format

// Email fails unless value parses as a single bare address.
func (v *Validator) Email(field, value string) *Validator {
	address, err := mail.ParseAddress(value)
	return v.Custom(field, err != nil || address.Address != strings.TrimSpace(value), "Must be a valid email address")
}

// Slug fails unless value is lowercase kebab-case.
func (v *Validator) Slug(field, value string) *Validator {
	return v.Custom(field, !slug.Valid(value), "Must be lowercase letters, digits, and single hyphens")
}

// OneOf fails unless value is one of allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	return v.Custom(field, !slices.Contains(allowed, value), "Must be one of: "+strings.Join(allowed, ", "))
}

// Custom records message against field when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.failures = append(v.failures, apperr.FieldError{Field: field, Message: message})
	}
	return v
}

// # Result

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.failures) > 0
}

// Err returns the accumulated failures as one error, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return apperr.ValidationError(failedMessage, v.failures...)
}

// RequiredError builds a single-field validation failure outside a chain,
// for example an unknown query filter value.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError(failedMessage, apperr.FieldError{Field: field, Message: message})
}
