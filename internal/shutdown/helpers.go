// File: internal/shutdown/helpers.go
package shutdown

// RegisterTempFileGlobal registers a temporary file for secure cleanup
func RegisterTempFileGlobal(filePath string, description string) {
	GetManager().RegisterTempFile(filePath, description)
}

// UnregisterTempFileGlobal removes a temporary file from cleanup registry
func UnregisterTempFileGlobal(filePath string) {
	GetManager().UnregisterTempFile(filePath)
}

// RegisterClipboardGlobal registers clipboard for cleanup
func RegisterClipboardGlobal(description string) {
	GetManager().RegisterClipboard(description)
}

// IsShuttingDown returns true if shutdown has been initiated
func IsShuttingDown() bool {
	return GetManager().IsShutdown()
}

// GetResourceCount returns the number of registered resources
func GetResourceCount() int {
	return GetManager().GetResourceCount()
}
