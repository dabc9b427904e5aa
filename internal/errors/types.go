// File: internal/errors/types.go
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigLoad       ErrorCode = "CONFIG_LOAD_FAILED"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION_FAILED"

	// Input validation errors
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidMnemonic ErrorCode = "INVALID_MNEMONIC"
	ErrCodeMismatch        ErrorCode = "SECRETS_DIFFER"

	// Secret handling errors
	ErrCodeSecret     ErrorCode = "SECRET_ERROR"
	ErrCodeDerivation ErrorCode = "DERIVATION_FAILED"

	// System errors
	ErrCodeClipboard  ErrorCode = "CLIPBOARD_ERROR"
	ErrCodeTerminal   ErrorCode = "TERMINAL_ERROR"
	ErrCodeFileSystem ErrorCode = "FILESYSTEM_ERROR"
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "INFO"
	SeverityWarning  ErrorSeverity = "WARNING"
	SeverityError    ErrorSeverity = "ERROR"
	SeverityCritical ErrorSeverity = "CRITICAL"
)

// AppError is the error type of the command line layer.
type AppError struct {
	Code     ErrorCode      `json:"code"`
	Message  string         `json:"message"`
	Details  string         `json:"details,omitempty"`
	Severity ErrorSeverity  `json:"severity"`
	Context  map[string]any `json:"context,omitempty"`
	Cause    error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a specific code
func (e *AppError) Is(target error) bool {
	if targetErr, ok := target.(*AppError); ok {
		return e.Code == targetErr.Code
	}
	return false
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the severity level
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithDetails adds detailed information
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// ToSlogAttrs converts error context to slog attributes
func (e *AppError) ToSlogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("error_code", string(e.Code)),
		slog.String("error_message", e.Message),
		slog.String("severity", string(e.Severity)),
	}
	if e.Details != "" {
		attrs = append(attrs, slog.String("details", e.Details))
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}

	keys := make([]string, 0, len(e.Context))
	for key := range e.Context {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		attrs = append(attrs, slog.Any("ctx_"+key, e.Context[key]))
	}
	return attrs
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Severity: SeverityError}
}

// Newf creates a new AppError with formatted message
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Severity: SeverityError, Cause: cause}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(code ErrorCode, cause error, format string, args ...any) *AppError {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error, target **AppError) bool {
	return errors.As(err, target)
}

// IsCode checks if err carries code
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return AsAppError(err, &appErr) && appErr.Code == code
}

// GetCode extracts error code from error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if AsAppError(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// GetSeverity extracts severity from error
func GetSeverity(err error) ErrorSeverity {
	var appErr *AppError
	if AsAppError(err, &appErr) {
		return appErr.Severity
	}
	return SeverityError
}
