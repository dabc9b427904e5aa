// File: internal/security/resource_manager.go
package security

// ResourceManager tracks temporary files that must be shredded if the
// process is interrupted before they are renamed into place.
type ResourceManager interface {
	// RegisterTempFile registers a temporary file for secure cleanup
	RegisterTempFile(filePath string, description string)

	// UnregisterTempFile removes a temporary file from cleanup registry
	UnregisterTempFile(filePath string)

	// RegisterClipboard registers clipboard for cleanup
	RegisterClipboard(description string)
}

// Global resource manager instance
var globalResourceManager ResourceManager

// SetResourceManager sets the global resource manager instance
func SetResourceManager(manager ResourceManager) {
	globalResourceManager = manager
}

// GetResourceManager returns the global resource manager instance
func GetResourceManager() ResourceManager {
	return globalResourceManager
}
