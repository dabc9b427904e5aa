// File: internal/shutdown/manager.go
package shutdown

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/awnumar/memguard"

	"secret.module/secret"
)

// CleanupResource represents a resource that needs cleanup during shutdown
type CleanupResource interface {
	Cleanup() error
	Description() string
}

// SecretResource destroys a live secret.
type SecretResource struct {
	s *secret.Secret
}

func (r *SecretResource) Cleanup() error {
	return r.s.Destroy()
}

func (r *SecretResource) Description() string {
	return fmt.Sprintf("%s secret (%d bytes)", r.s.Variant(), r.s.Len())
}

// TempFileResource represents a temporary file that contains sensitive data
type TempFileResource struct {
	filePath    string
	description string
}

func (r *TempFileResource) Cleanup() error {
	if _, err := os.Stat(r.filePath); err == nil {
		if err := secureFileDeleteFunc(r.filePath); err != nil {
			return fmt.Errorf("failed to securely delete %s: %v", r.filePath, err)
		}
	}
	return nil
}

func (r *TempFileResource) Description() string {
	return r.description
}

// ClipboardResource handles clipboard cleanup
type ClipboardResource struct {
	description string
}

func (r *ClipboardResource) Cleanup() error {
	return clearClipboardFunc()
}

func (r *ClipboardResource) Description() string {
	return r.description
}

// GracefulShutdownManager destroys live secrets and other sensitive
// resources on shutdown. It implements secret.Registry.
type GracefulShutdownManager struct {
	resources    []CleanupResource
	secrets      map[*secret.Secret]struct{}
	mu           sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
	isShutdown   bool
	signals      chan os.Signal
	out          io.Writer
	purge        func()
	exit         func(code int)
	timeout      time.Duration
}

var _ secret.Registry = (*GracefulShutdownManager)(nil)

var (
	// Global instance
	globalManager *GracefulShutdownManager
	managerOnce   sync.Once
)

// GetManager returns the global shutdown manager instance
func GetManager() *GracefulShutdownManager {
	managerOnce.Do(func() {
		globalManager = newManager(true)
	})
	return globalManager
}

// newManager creates a new shutdown manager. With watchSignals it shuts
// down and exits on SIGINT, SIGTERM and SIGQUIT.
func newManager(watchSignals bool) *GracefulShutdownManager {
	initSecurityIntegration()
	ctx, cancel := context.WithCancel(context.Background())

	manager := &GracefulShutdownManager{
		resources: make([]CleanupResource, 0),
		secrets:   make(map[*secret.Secret]struct{}),
		ctx:       ctx,
		cancel:    cancel,
		signals:   make(chan os.Signal, 1),
		out:       os.Stderr,
		purge:     memguard.Purge,
		exit:      os.Exit,
		timeout:   30 * time.Second,
	}

	if watchSignals {
		signal.Notify(manager.signals,
			syscall.SIGINT,  // Ctrl+C
			syscall.SIGTERM, // Termination request
			syscall.SIGQUIT, // Quit request
		)
		go manager.signalHandler()
	}

	return manager
}

// signalHandler handles incoming shutdown signals
func (m *GracefulShutdownManager) signalHandler() {
	select {
	case sig := <-m.signals:
		fmt.Fprintf(m.out, "\nReceived signal %v, initiating graceful shutdown...\n", sig)
		m.Shutdown()
		code := 1
		if s, ok := sig.(syscall.Signal); ok {
			code = 128 + int(s)
		}
		m.exit(code)
	case <-m.ctx.Done():
		return
	}
}

// Register tracks s until it is erased. A secret constructed while the
// manager is shutting down is destroyed right away, and its constructor
// fails with INVALID_STATE.
func (m *GracefulShutdownManager) Register(s *secret.Secret) {
	if s == nil {
		return
	}

	m.mu.Lock()
	if m.isShutdown {
		m.mu.Unlock()
		// Destroy unregisters, so it runs without the lock held.
		_ = s.Destroy()
		return
	}
	m.secrets[s] = struct{}{}
	m.mu.Unlock()
}

// Unregister stops tracking s.
func (m *GracefulShutdownManager) Unregister(s *secret.Secret) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, s)
}

// RegisterTempFile registers a temporary file for secure cleanup
func (m *GracefulShutdownManager) RegisterTempFile(filePath string, description string) {
	if filePath == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isShutdown {
		_ = secureFileDeleteFunc(filePath)
		return
	}

	m.resources = append(m.resources, &TempFileResource{
		filePath:    filePath,
		description: description,
	})
}

// UnregisterTempFile removes a temporary file from cleanup registry, for
// files that were renamed into place or deleted by their owner.
func (m *GracefulShutdownManager) UnregisterTempFile(filePath string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, resource := range m.resources {
		if tf, ok := resource.(*TempFileResource); ok && tf.filePath == filePath {
			m.resources = append(m.resources[:i], m.resources[i+1:]...)
			break
		}
	}
}

// RegisterClipboard registers clipboard for cleanup
func (m *GracefulShutdownManager) RegisterClipboard(description string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isShutdown {
		_ = clearClipboardFunc()
		return
	}

	for _, resource := range m.resources {
		if _, ok := resource.(*ClipboardResource); ok {
			return
		}
	}
	m.resources = append(m.resources, &ClipboardResource{description: description})
}

// RegisterCustomResource registers a custom cleanup resource
func (m *GracefulShutdownManager) RegisterCustomResource(resource CleanupResource) {
	if resource == nil {
		return
	}

	m.mu.Lock()
	if m.isShutdown {
		m.mu.Unlock()
		_ = resource.Cleanup()
		return
	}
	m.resources = append(m.resources, resource)
	m.mu.Unlock()
}

// Shutdown destroys every live secret, cleans up the other resources, and
// purges the memguard session. It runs once.
func (m *GracefulShutdownManager) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.mu.Lock()
		m.isShutdown = true
		m.mu.Unlock()

		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), m.timeout)
		defer cleanupCancel()

		m.cleanupResources(cleanupCtx)
		m.purge()
		m.cancel()
	})
}

// snapshot returns the pending resources, secrets first.
func (m *GracefulShutdownManager) snapshot() []CleanupResource {
	m.mu.Lock()
	defer m.mu.Unlock()

	resources := make([]CleanupResource, 0, len(m.secrets)+len(m.resources))
	for s := range m.secrets {
		resources = append(resources, &SecretResource{s: s})
	}
	resources = append(resources, m.resources...)
	m.resources = m.resources[:0]
	return resources
}

// cleanupResources cleans up all registered resources
func (m *GracefulShutdownManager) cleanupResources(ctx context.Context) {
	resources := m.snapshot()
	if len(resources) == 0 {
		return
	}

	// Create a worker pool for concurrent cleanup
	const maxWorkers = 10
	workers := min(len(resources), maxWorkers)

	resourceChan := make(chan CleanupResource, len(resources))
	resultChan := make(chan error, len(resources))

	for i := 0; i < workers; i++ {
		go func() {
			for resource := range resourceChan {
				select {
				case <-ctx.Done():
					resultChan <- fmt.Errorf("cleanup timeout for %s", resource.Description())
				default:
					if err := resource.Cleanup(); err != nil {
						resultChan <- fmt.Errorf("failed to cleanup %s: %v", resource.Description(), err)
					} else {
						resultChan <- nil
					}
				}
			}
		}()
	}

	for _, resource := range resources {
		resourceChan <- resource
	}
	close(resourceChan)

	cleanupErrors := 0
	for i := 0; i < len(resources); i++ {
		select {
		case err := <-resultChan:
			if err != nil {
				cleanupErrors++
				fmt.Fprintf(m.out, "Cleanup error: %v\n", err)
			}
		case <-ctx.Done():
			fmt.Fprintf(m.out, "Cleanup timeout reached, forcing exit\n")
			return
		}
	}

	if cleanupErrors > 0 {
		fmt.Fprintf(m.out, "Completed cleanup with %d errors\n", cleanupErrors)
	}
}

// GetResourceCount returns the number of registered resources, live
// secrets included.
func (m *GracefulShutdownManager) GetResourceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.resources) + len(m.secrets)
}

// LiveSecrets returns the number of registered secrets.
func (m *GracefulShutdownManager) LiveSecrets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.secrets)
}

// IsShutdown returns true if shutdown has been initiated
func (m *GracefulShutdownManager) IsShutdown() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isShutdown
}

// Context returns the shutdown context
func (m *GracefulShutdownManager) Context() context.Context {
	return m.ctx
}

// --- Dependency Injection for Security Functions ---

var (
	secureFileDeleteFunc func(string) error
	clearClipboardFunc   func() error
)

// SetSecurityFunctions sets the dependency injection functions for security operations
func SetSecurityFunctions(
	secureFileDelete func(string) error,
	clearClipboard func() error,
) {
	secureFileDeleteFunc = secureFileDelete
	clearClipboardFunc = clearClipboard
}

// initSecurityIntegration installs fallbacks for functions not injected yet
func initSecurityIntegration() {
	if secureFileDeleteFunc == nil {
		secureFileDeleteFunc = os.Remove
	}
	if clearClipboardFunc == nil {
		clearClipboardFunc = func() error { return nil }
	}
}
