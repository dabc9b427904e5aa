// File: internal/errors/handler.go
package errors

import (
	"context"
	"log/slog"

	"secret.module/internal/audit"
	"secret.module/internal/colors"
)

// Handler provides centralized error handling functionality
type Handler struct {
	logger *slog.Logger
}

// DefaultHandler is the global error handler instance
var DefaultHandler *Handler

// InitHandler initializes the global error handler
func InitHandler(logger *slog.Logger) {
	DefaultHandler = NewHandler(logger)
}

// NewHandler returns a handler logging to logger.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// normalize returns err as an AppError, translating secret errors and
// wrapping anything else as internal.
func normalize(err error) *AppError {
	var appErr *AppError
	if AsAppError(FromSecret(err), &appErr) {
		return appErr
	}
	return Wrap(ErrCodeInternal, "unexpected error occurred", err)
}

// Handle processes an error with logging
func (h *Handler) Handle(err error) {
	if err == nil {
		return
	}
	h.logError(normalize(err))
}

// logError logs the error with appropriate level based on severity
func (h *Handler) logError(appErr *AppError) {
	attrs := appErr.ToSlogAttrs()
	ctx := context.Background()

	switch appErr.Severity {
	case SeverityInfo:
		h.logger.LogAttrs(ctx, slog.LevelInfo, "Operation info", attrs...)
	case SeverityWarning:
		h.logger.LogAttrs(ctx, slog.LevelWarn, "Operation warning", attrs...)
	case SeverityCritical:
		h.logger.LogAttrs(ctx, slog.LevelError, "Critical error", attrs...)
	default:
		h.logger.LogAttrs(ctx, slog.LevelError, "Operation error", attrs...)
	}
}

// FormatForUser formats error for user display
func (h *Handler) FormatForUser(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if !AsAppError(FromSecret(err), &appErr) {
		return colors.SafeColor(err.Error(), colors.Error)
	}

	var colorFunc func(string) string
	switch appErr.Severity {
	case SeverityInfo:
		colorFunc = colors.Info
	case SeverityWarning:
		colorFunc = colors.Warning
	default:
		colorFunc = colors.Error
	}

	message := appErr.Message
	if appErr.Details != "" {
		message += " (" + appErr.Details + ")"
	}
	return colors.SafeColor(message, colorFunc)
}

// HandleAndFormat handles error and returns formatted message for user
func (h *Handler) HandleAndFormat(err error) string {
	if err == nil {
		return ""
	}
	h.Handle(err)
	return h.FormatForUser(err)
}

// Global convenience functions
func Handle(err error) {
	if DefaultHandler != nil {
		DefaultHandler.Handle(err)
	}
}

func FormatForUser(err error) string {
	if DefaultHandler != nil {
		return DefaultHandler.FormatForUser(err)
	}
	return colors.SafeColor(err.Error(), colors.Error)
}

func HandleAndFormat(err error) string {
	if DefaultHandler != nil {
		return DefaultHandler.HandleAndFormat(err)
	}
	return FormatForUser(err)
}

// WrapCommand runs fn, turning a panic into a critical internal error.
func WrapCommand(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = New(ErrCodeInternal, "unexpected panic occurred").
				WithSeverity(SeverityCritical).
				WithDetails("panic recovered in command execution")
			Handle(err)
		}
	}()

	if err := fn(); err != nil {
		Handle(err)
		return err
	}
	return nil
}

// InitWithAuditLogger initializes error handler with audit logger
func InitWithAuditLogger() error {
	if audit.Logger == nil {
		return New(ErrCodeInternal, "audit logger not initialized")
	}
	InitHandler(audit.Logger)
	return nil
}
