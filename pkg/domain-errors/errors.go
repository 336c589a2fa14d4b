// Package domainerrors defines the error taxonomy shared by services and the
// HTTP boundary. Services return coded errors; the transport layer maps codes
// to statuses without inspecting messages.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for transport mapping and logging.
type Code string

const (
	// CodeBadRequest covers malformed request bodies and unusable parameters.
	CodeBadRequest Code = "bad_request"

	// CodeValidation covers well-formed requests that fail field validation.
	CodeValidation Code = "validation_error"

	// CodeNotFound covers lookups of ids that do not exist.
	CodeNotFound Code = "not_found"

	// CodeConflict covers lost races, e.g. a ledger append that exhausted its
	// compare-and-append retries.
	CodeConflict Code = "conflict"

	// CodeCorruptRecord flags a stored record that no longer has the shape it
	// was written with. This is an integrity problem, never a caller mistake.
	CodeCorruptRecord Code = "corrupt_record"

	// CodeInternal is the fallback for everything else.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Message is safe to log; whether it is safe to
// return to the caller is decided by the HTTP layer based on the code.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error preserving an underlying cause for errors.Is/As.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, wrapped: cause}
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.wrapped.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps an error code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeCorruptRecord, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
