// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr is the error vocabulary shared by services, stores, and the
HTTP layer.

Services return an [*AppError] whenever the caller can act on the failure.
[respond.Error] turns it into the JSON envelope:

	{"error": "Forbidden", "code": "FORBIDDEN"}

Anything else that reaches the edge is reported as [Internal], so database
text and stack details stay in the logs.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine readable codes carried in the "code" field.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeValidation      = "VALIDATION_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
	CodeUnprocessable   = "UNPROCESSABLE"
	CodeInternal        = "INTERNAL_ERROR"
	internalMessageText = "An unexpected error occurred"
)

// AppError pairs a client safe message with the status it maps to.
// Cause is only ever logged.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError is one failed input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

func build(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # Caller Errors

// NotFound reports a missing resource, e.g. NotFound("Assistant") yields
// "Assistant not found". Cross-organization reads use it too.
func NotFound(resource string) *AppError {
	return build(http.StatusNotFound, CodeNotFound, resource+" not found")
}

// BadRequest reports required input that is absent outside of body
// validation, such as an organization id no source supplied.
func BadRequest(message string) *AppError {
	return build(http.StatusBadRequest, CodeBadRequest, message)
}

// Unauthorized reports a request without a live session.
func Unauthorized(message string) *AppError {
	return build(http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden reports an authenticated caller lacking the role or membership.
func Forbidden(message string) *AppError {
	return build(http.StatusForbidden, CodeForbidden, message)
}

// Conflict reports a duplicate, typically a unique constraint.
func Conflict(message string) *AppError {
	return build(http.StatusConflict, CodeConflict, message)
}

// ValidationError reports malformed input with optional per-field details.
func ValidationError(message string, details ...FieldError) *AppError {
	failure := build(http.StatusBadRequest, CodeValidation, message)
	failure.Details = details
	return failure
}

// RateLimited reports a throttled client.
func RateLimited(retryAfterSeconds int) *AppError {
	return build(http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// Unprocessable reports well formed input that breaks a business rule,
// such as removing the last owner of an organization.
func Unprocessable(message string) *AppError {
	return build(http.StatusUnprocessableEntity, CodeUnprocessable, message)
}

// # Server Errors

// Internal wraps an unexpected failure behind a generic message.
func Internal(cause error) *AppError {
	failure := build(http.StatusInternalServerError, CodeInternal, internalMessageText)
	failure.Cause = cause
	return failure
}

// # Inspection

// IsAppError reports whether err's chain holds an [*AppError].
func IsAppError(err error) bool {
	return As(err) != nil
}

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var target *AppError
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// HasCode reports whether err carries the given machine readable code.
func HasCode(err error, code string) bool {
	if target := As(err); target != nil {
		return target.Code == code
	}
	return false
}
