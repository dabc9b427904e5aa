package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"secret.module/internal/constants"
)

// MaxClipboardTimeout bounds clipboard.timeout, in seconds.
const MaxClipboardTimeout = 3600

// NormalizeVariant converts a variant name to lowercase for case-insensitive comparison
func NormalizeVariant(variant string) string {
	return strings.ToLower(strings.TrimSpace(variant))
}

// Variants lists the selectable allocator variants.
func Variants() []string {
	return []string{
		constants.VariantFast,
		constants.VariantProtected,
		constants.VariantProtectedStrict,
		constants.VariantSealed,
		constants.VariantInsecure,
	}
}

// ValidateVariant checks if the variant is supported
func ValidateVariant(variant string) error {
	normalized := NormalizeVariant(variant)
	for _, v := range Variants() {
		if v == normalized {
			return nil
		}
	}
	return NewConfigError("default_variant", variant, "must be one of: "+strings.Join(Variants(), ", "))
}

// ValidateConfig checks the configuration. Failures are *ConfigError.
func ValidateConfig(cfg *Config) error {
	if err := ValidateVariant(cfg.DefaultVariant); err != nil {
		return err
	}
	if cfg.Clipboard.Timeout < 0 || cfg.Clipboard.Timeout > MaxClipboardTimeout {
		return NewConfigError("clipboard.timeout", fmt.Sprint(cfg.Clipboard.Timeout),
			fmt.Sprintf("must be between 0 and %d seconds", MaxClipboardTimeout))
	}
	if cfg.Audit.Enabled {
		if err := ValidateFilePath(cfg.Audit.Path, "audit log"); err != nil {
			return NewConfigError("audit.path", cfg.Audit.Path, err.Error())
		}
	}
	return nil
}

// ValidateFilePath validates a file path that may not exist yet: no path
// traversal, an existing parent directory, and a regular file if present.
func ValidateFilePath(filePath string, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	cleanPath := filepath.Clean(filePath)
	for _, elem := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if elem == ".." {
			return fmt.Errorf("%s path contains invalid path traversal elements", description)
		}
	}

	realPath, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		// The file might not exist yet, so check the directory
		dirPath := filepath.Dir(cleanPath)
		stat, dirErr := os.Stat(dirPath)
		if dirErr != nil {
			return fmt.Errorf("%s directory does not exist: %s", description, dirPath)
		}
		if !stat.IsDir() {
			return fmt.Errorf("%s parent is not a directory: %s", description, dirPath)
		}
		return nil
	}

	stat, err := os.Stat(realPath)
	if err != nil {
		return fmt.Errorf("cannot access %s file: %v", description, err)
	}
	if stat.IsDir() {
		return fmt.Errorf("%s path points to a directory, not a file: %s", description, realPath)
	}
	return nil
}

func LoadConfigWithValidation() error {
	if err := LoadConfig(); err != nil {
		return NewConfigError("load", ConfigFileUsed(), err.Error())
	}
	if err := ValidateConfig(&Cfg); err != nil {
		return err
	}
	return nil
}
