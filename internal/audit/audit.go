// File: internal/audit/audit.go
package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"secret.module/secret"
)

// DefaultPath is used when no audit path is configured.
const DefaultPath = "audit.log"

var Logger *slog.Logger

// InitLogger initializes the logger for auditing purposes. The file is
// created with mode 0600 and appended to.
func InitLogger(path string) error {
	if path == "" {
		path = DefaultPath
	}
	logFile, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	Logger = NewLogger(logFile)
	return nil
}

// NewLogger returns a JSON logger writing to w.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, nil))
}

// Disable routes audit output nowhere.
func Disable() {
	Logger = NewLogger(io.Discard)
}

// Observer writes secret lifecycle events to an audit logger. Events carry
// variant, size and mode, never content.
type Observer struct {
	logger *slog.Logger
}

// NewObserver returns an Observer writing to logger, or to Logger when
// logger is nil.
func NewObserver(logger *slog.Logger) *Observer {
	if logger == nil {
		logger = Logger
	}
	return &Observer{logger: logger}
}

func (o *Observer) Observe(ev secret.Event) {
	if o.logger == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("event", ev.Kind.String()),
		slog.String("op", ev.Op),
		slog.String("variant", ev.Variant),
		slog.Int("size", ev.Size),
	}
	if ev.Kind == secret.EventAccessed {
		attrs = append(attrs, slog.String("mode", ev.Mode.String()))
	}
	if ev.Err == nil {
		o.logger.LogAttrs(context.Background(), slog.LevelInfo, "secret lifecycle", attrs...)
		return
	}

	var se *secret.Error
	if errors.As(ev.Err, &se) {
		attrs = append(attrs, se.ToSlogAttrs()...)
	} else {
		attrs = append(attrs, slog.String("error", ev.Err.Error()))
	}
	o.logger.LogAttrs(context.Background(), slog.LevelWarn, "secret operation failed", attrs...)
}
