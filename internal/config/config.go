// File: internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"secret.module/internal/constants"
	"secret.module/secret"
)

// ProtectedConfig tunes the protected variant.
type ProtectedConfig struct {
	Strict bool `mapstructure:"strict" json:"strict" yaml:"strict"`
}

// AuditConfig controls the lifecycle audit log.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" json:"path" yaml:"path"`
}

// ClipboardConfig controls clipboard handling. Timeout is in seconds; 0
// leaves the clipboard alone.
type ClipboardConfig struct {
	Timeout int `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// MetricsConfig controls the metrics dump after each command.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
}

// Config defines the structure of the configuration file.
type Config struct {
	DefaultVariant string          `mapstructure:"default_variant" json:"default_variant" yaml:"default_variant"`
	Protected      ProtectedConfig `mapstructure:"protected" json:"protected" yaml:"protected"`
	Audit          AuditConfig     `mapstructure:"audit" json:"audit" yaml:"audit"`
	Clipboard      ClipboardConfig `mapstructure:"clipboard" json:"clipboard" yaml:"clipboard"`
	Metrics        MetricsConfig   `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
}

// Cfg is a global variable that holds the loaded configuration.
var Cfg = Default()

// Default returns the configuration used when nothing is configured.
func Default() Config {
	return Config{
		DefaultVariant: constants.VariantProtected,
		Audit:          AuditConfig{Enabled: false, Path: "audit.log"},
		Clipboard:      ClipboardConfig{Timeout: 30},
	}
}

// ClipboardTimeout returns the clipboard timeout as a duration.
func (c Config) ClipboardTimeout() time.Duration {
	return time.Duration(c.Clipboard.Timeout) * time.Second
}

// Allocator resolves the configured variant.
func (c Config) Allocator() (secret.Allocator, error) {
	return AllocatorFor(c.DefaultVariant, c.Protected.Strict)
}

// AllocatorFor resolves a variant name. strict only affects the protected
// variant.
func AllocatorFor(variant string, strict bool) (secret.Allocator, error) {
	switch NormalizeVariant(variant) {
	case constants.VariantFast:
		return secret.Fast, nil
	case constants.VariantProtected:
		return secret.Protected(secret.ProtectPolicy{Strict: strict}), nil
	case constants.VariantProtectedStrict:
		return secret.Protected(secret.ProtectPolicy{Strict: true}), nil
	case constants.VariantSealed:
		return secret.Sealed, nil
	case constants.VariantInsecure:
		return secret.Insecure, nil
	default:
		return nil, NewConfigError("default_variant", variant, "must be one of: "+strings.Join(Variants(), ", "))
	}
}

// Paths returns the directories searched for a config file.
func Paths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".secret.module"))
	}
	return paths
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("default_variant", d.DefaultVariant)
	v.SetDefault("protected.strict", d.Protected.Strict)
	v.SetDefault("audit.enabled", d.Audit.Enabled)
	v.SetDefault("audit.path", d.Audit.Path)
	v.SetDefault("clipboard.timeout", d.Clipboard.Timeout)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
}

// Load reads config.{yaml,json} from paths and SECRET_* environment
// variables into v. A missing config file is not an error.
func Load(v *viper.Viper, paths ...string) (Config, error) {
	setDefaults(v)
	v.SetConfigName("config")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("SECRET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.DefaultVariant = NormalizeVariant(cfg.DefaultVariant)
	return cfg, nil
}

// LoadConfig loads the configuration from a file and environment variables.
func LoadConfig() error {
	cfg, err := Load(viper.GetViper(), Paths()...)
	if err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// ConfigFileUsed returns the file the global configuration was read from.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// SaveConfig writes the current configuration to path. The format follows
// the file extension.
func SaveConfig(path string) error {
	v := viper.New()
	v.Set("default_variant", Cfg.DefaultVariant)
	v.Set("protected.strict", Cfg.Protected.Strict)
	v.Set("audit.enabled", Cfg.Audit.Enabled)
	v.Set("audit.path", Cfg.Audit.Path)
	v.Set("clipboard.timeout", Cfg.Clipboard.Timeout)
	v.Set("metrics.enabled", Cfg.Metrics.Enabled)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return v.WriteConfigAs(path)
}

// Keys lists the configuration keys.
func Keys() []string {
	return []string{
		"default_variant",
		"protected.strict",
		"audit.enabled",
		"audit.path",
		"clipboard.timeout",
		"metrics.enabled",
	}
}

// Set changes one key of the global configuration, validates the result
// and writes it to path.
func Set(key, value, path string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	known := false
	for _, k := range Keys() {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return NewConfigError(key, value, "unknown key (known: "+strings.Join(Keys(), ", ")+")")
	}

	v := viper.GetViper()
	previous := v.Get(key)
	v.Set(key, value)
	var cfg Config
	err := v.Unmarshal(&cfg)
	if err != nil {
		err = NewConfigError(key, value, err.Error())
	} else {
		cfg.DefaultVariant = NormalizeVariant(cfg.DefaultVariant)
		err = ValidateConfig(&cfg)
	}
	if err != nil {
		v.Set(key, previous)
		return err
	}
	Cfg = cfg
	return SaveConfig(path)
}
