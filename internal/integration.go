// File: internal/integration.go
package internal

import (
	"log/slog"

	"secret.module/internal/audit"
	"secret.module/internal/metrics"
	"secret.module/internal/security"
	"secret.module/internal/shutdown"
	"secret.module/secret"
)

// Options selects the optional observers.
type Options struct {
	// AuditLogger receives lifecycle events when set.
	AuditLogger *slog.Logger
	// Metrics receives lifecycle events when set.
	Metrics *metrics.Observer
}

// InitializeIntegration sets up cross-package integrations: every secret
// registers with the shutdown manager, lifecycle events go to the enabled
// observers, and the shutdown manager can shred temp files and clear the
// clipboard. It returns the shutdown manager.
func InitializeIntegration(opts Options) *shutdown.GracefulShutdownManager {
	shutdown.SetSecurityFunctions(
		security.SecureDeleteFile,
		security.ClearClipboard,
	)

	manager := shutdown.GetManager()
	security.SetResourceManager(manager)
	secret.SetRegistry(manager)

	var observers []secret.Observer
	if opts.AuditLogger != nil {
		observers = append(observers, audit.NewObserver(opts.AuditLogger))
	}
	if opts.Metrics != nil {
		observers = append(observers, opts.Metrics)
	}
	if len(observers) > 0 {
		secret.SetObserver(secret.Observers(observers...))
	} else {
		secret.SetObserver(nil)
	}
	return manager
}
