// File: internal/errors/builders.go
package errors

import (
	"fmt"

	"secret.module/secret"
)

// Configuration Error Builders
func NewConfigLoadError(path string, cause error) *AppError {
	return Wrap(ErrCodeConfigLoad, "failed to load configuration", cause).
		WithContext("config_path", path)
}

func NewConfigValidationError(field, value, message string) *AppError {
	return New(ErrCodeConfigValidation, "configuration validation failed").
		WithDetails(fmt.Sprintf("field '%s' with value '%s': %s", field, value, message)).
		WithContext("field", field).
		WithContext("value", value)
}

// Input Error Builders
func NewInvalidInputError(field, message string) *AppError {
	return Newf(ErrCodeInvalidInput, "invalid %s", field).
		WithDetails(message).
		WithContext("field", field).
		WithSeverity(SeverityWarning)
}

func NewInvalidMnemonicError() *AppError {
	return New(ErrCodeInvalidMnemonic, "the provided mnemonic phrase is invalid").
		WithSeverity(SeverityWarning)
}

func NewMismatchError() *AppError {
	return New(ErrCodeMismatch, "the values do not match").
		WithSeverity(SeverityInfo)
}

// System Error Builders
func NewClipboardError(operation string, cause error) *AppError {
	return Wrapf(ErrCodeClipboard, cause, "clipboard %s failed", operation).
		WithContext("operation", operation).
		WithSeverity(SeverityWarning)
}

func NewTerminalError(cause error) *AppError {
	return Wrap(ErrCodeTerminal, "failed to read from terminal", cause)
}

func NewFileSystemError(operation, path string, cause error) *AppError {
	return Wrap(ErrCodeFileSystem, fmt.Sprintf("filesystem operation '%s' failed", operation), cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

func NewInternalError(message string, cause error) *AppError {
	return Wrap(ErrCodeInternal, message, cause).
		WithSeverity(SeverityCritical)
}

// FromSecret translates a secret library error. Errors of other kinds are
// returned unchanged.
func FromSecret(err error) error {
	if err == nil {
		return nil
	}
	code := secret.CodeOf(err)
	if code == "" {
		return err
	}

	appErr := Wrap(ErrCodeSecret, "secret operation failed", err).
		WithContext("secret_code", string(code))
	switch code {
	case secret.CodeAllocation:
		appErr.Message = "secure memory could not be allocated"
		appErr.Details = "raise the locked memory limit (ulimit -l) or disable the strict policy"
		appErr.Severity = SeverityCritical
	case secret.CodeConcurrentAccess:
		appErr.Message = "secret was accessed concurrently"
		appErr.Severity = SeverityCritical
	case secret.CodeRandomSource:
		appErr.Message = "system entropy source is unavailable"
		appErr.Severity = SeverityCritical
	case secret.CodeDerivation:
		appErr.Code = ErrCodeDerivation
		appErr.Message = "key derivation failed"
	case secret.CodeState:
		appErr.Message = "secret is not accessible in its current state"
	}
	return appErr
}
