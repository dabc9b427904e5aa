// File: secret/errors.go

package secret

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrorCode identifies the class of a secret error.
type ErrorCode string

const (
	CodeAllocation       ErrorCode = "ALLOCATION_FAILED"
	CodeRandomSource     ErrorCode = "RANDOM_SOURCE_UNAVAILABLE"
	CodeState            ErrorCode = "INVALID_STATE"
	CodeConcurrentAccess ErrorCode = "CONCURRENT_ACCESS"
	CodeDerivation       ErrorCode = "DERIVATION_FAILED"
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrAllocation       = &Error{Code: CodeAllocation, Message: "backing store cannot obtain or protect memory"}
	ErrRandomSource     = &Error{Code: CodeRandomSource, Message: "entropy source unavailable"}
	ErrState            = &Error{Code: CodeState, Message: "illegal access state transition"}
	ErrConcurrentAccess = &Error{Code: CodeConcurrentAccess, Message: "unsynchronized concurrent access"}
	ErrDerivation       = &Error{Code: CodeDerivation, Message: "key derivation failed"}
)

// Error is returned by every operation in this package. It never carries
// secret content: Details and Message describe the operation, not the data.
type Error struct {
	Code    ErrorCode
	Op      string
	Variant string
	Message string
	Details string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// ToSlogAttrs converts the error into slog attributes.
func (e *Error) ToSlogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("error_code", string(e.Code)),
		slog.String("error_message", e.Message),
	}
	if e.Op != "" {
		attrs = append(attrs, slog.String("op", e.Op))
	}
	if e.Variant != "" {
		attrs = append(attrs, slog.String("variant", e.Variant))
	}
	if e.Details != "" {
		attrs = append(attrs, slog.String("details", e.Details))
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	return attrs
}

func newError(code ErrorCode, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message}
}

func wrapError(code ErrorCode, op, message string, cause error) *Error {
	return &Error{Code: code, Op: op, Message: message, Cause: cause}
}

func stateErrorf(op, format string, args ...any) *Error {
	return newError(CodeState, op, fmt.Sprintf(format, args...))
}

// CodeOf extracts the code of err, or "" if err is not a secret error.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
