// Package lexerr defines the stable error taxonomy for the version-diff
// and graph-analytics engine. Every failure that crosses the engine
// boundary carries one of these codes; no raw internal error leaves the
// engine unclassified.
package lexerr

import "fmt"

// Code is a stable error code for a failure mode.
type Code string

const (
	// ProvisionNotFound indicates the requested root or seed id is absent
	// for the requested year. Distinct from "exists as a textless
	// container", which is not an error.
	ProvisionNotFound Code = "PROVISION_NOT_FOUND"
	// InvalidYearRange indicates yearOld >= yearNew (or start >= end).
	InvalidYearRange Code = "INVALID_YEAR_RANGE"
	// InvalidDepth indicates a traversal depth outside 1..3.
	InvalidDepth Code = "INVALID_DEPTH"
	// InvalidGranularity indicates an unknown inline-diff granularity.
	InvalidGranularity Code = "INVALID_GRANULARITY"
	// Cancelled indicates the caller's deadline expired mid-computation.
	Cancelled Code = "CANCELLED"
	// TreeTooLarge indicates the subtree exceeded the configured diff
	// budget; callers should narrow the root before retrying.
	TreeTooLarge Code = "TREE_TOO_LARGE"
	// StoreUnavailable indicates the provision store could not be reached.
	StoreUnavailable Code = "STORE_UNAVAILABLE"
	// Internal indicates an unexpected engine failure.
	Internal Code = "INTERNAL_ERROR"
)

// Error is an engine error with a stable code, a human message, and an
// optional wrapped cause.
type Error struct {
	Code    Code        `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates an Error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails attaches structured details and returns e.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf extracts the stable code from err, walking the wrap chain.
// Unclassified errors report Internal.
func CodeOf(err error) Code {
	for err != nil {
		if le, ok := err.(*Error); ok {
			return le.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return Internal
}

// IsCallerError reports whether code identifies a caller mistake that
// must surface immediately with no retry and no partial result.
func IsCallerError(code Code) bool {
	switch code {
	case ProvisionNotFound, InvalidYearRange, InvalidDepth, InvalidGranularity, TreeTooLarge:
		return true
	}
	return false
}
