package usecase

import (
	"errors"
	"fmt"

	"woodeoo-auth/pkg/utils"
)

// Application error codes
const (
	EINVALID      = "invalid"      // Invalid input or validation failure
	EUNAUTHORIZED = "unauthorized" // Authentication required or failed
	EFORBIDDEN    = "forbidden"    // Permission denied
	ENOTFOUND     = "not_found"    // Resource not found
	ECONFLICT     = "conflict"     // Resource conflict (e.g., duplicate)
	ERATELIMIT    = "rate_limit"   // Too many requests or attempts
	EINTERNAL     = "internal"     // Internal server error
)

const internalMessage = "An internal error occurred. Please try again later."

// Error is returned by every service method. Handlers turn Code into an HTTP
// status and show Message to the client.
type Error struct {
	Code    string
	Op      string
	Message string
	// Fields holds per-field validation messages for EINVALID.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of the root error, or EINTERNAL if none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the client-facing text. Internal failures never leak details.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Code != EINTERNAL {
		return e.Message
	}
	return internalMessage
}

// ErrorFields returns validation details, if any.
func ErrorFields(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

func invalid(op, message string) *Error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

// invalidFields lists every field problem in Message so clients that only
// read the error text still see them.
func invalidFields(op string, fields map[string]string) *Error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: "Validation failed: " + utils.FormatValidationErrors(fields),
		Fields:  fields,
	}
}

func unauthorized(op, message string) *Error {
	return &Error{Code: EUNAUTHORIZED, Op: op, Message: message}
}

func forbidden(op, message string) *Error {
	return &Error{Code: EFORBIDDEN, Op: op, Message: message}
}

func notFound(op, message string) *Error {
	return &Error{Code: ENOTFOUND, Op: op, Message: message}
}

func conflict(op, message string) *Error {
	return &Error{Code: ECONFLICT, Op: op, Message: message}
}

func rateLimited(op, message string) *Error {
	return &Error{Code: ERATELIMIT, Op: op, Message: message}
}

func internal(op string, err error) *Error {
	return &Error{Code: EINTERNAL, Op: op, Message: internalMessage, Err: err}
}
