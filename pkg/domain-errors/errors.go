// Package domainerrors provides coded errors for the assembly engine.
//
// Services return these so transport adapters can translate business
// rejections into precise responses without string matching. Infrastructure
// layers return pkg/platform/sentinel errors instead; services translate at
// the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	// CodeInvalidState marks transitions that are not reachable from the
	// entity's current state (e.g. closing a meeting that is still Created).
	CodeInvalidState Code = "invalid_state"
	// CodeQuorumNotMet marks a refused meeting open; details carry the
	// computed percentage and the configured threshold.
	CodeQuorumNotMet Code = "quorum_not_met"
	// CodeEligibilityRejected marks a refused vote; details carry the single
	// first-failing eligibility reason.
	CodeEligibilityRejected Code = "eligibility_rejected"
	CodeInvariantViolation  Code = "invariant_violation"
	CodeUnavailable         Code = "unavailable"
	CodeInternal            Code = "internal"
)

// Error is a coded domain error with optional structured details.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As chains.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetails returns a copy of the error carrying structured detail values
// for the transport layer to render (quorum percentages, rejection reasons).
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in the domain.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// DetailsOf extracts structured details from err, or nil.
func DetailsOf(err error) map[string]any {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}
