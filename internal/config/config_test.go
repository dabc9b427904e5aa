package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secret.module/internal/constants"
	"secret.module/secret"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
default_variant: Sealed
protected:
  strict: true
audit:
  enabled: true
  path: /tmp/secret-audit.log
clipboard:
  timeout: 10
metrics:
  enabled: true
`)

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, constants.VariantSealed, cfg.DefaultVariant)
	assert.True(t, cfg.Protected.Strict)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, "/tmp/secret-audit.log", cfg.Audit.Path)
	assert.Equal(t, 10, cfg.Clipboard.Timeout)
	assert.Equal(t, int64(10e9), int64(cfg.ClipboardTimeout()))
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadJSONAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{"default_variant": "fast", "clipboard": {"timeout": 5}}`)
	t.Setenv("SECRET_PROTECTED_STRICT", "true")
	t.Setenv("SECRET_CLIPBOARD_TIMEOUT", "7")

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, constants.VariantFast, cfg.DefaultVariant)
	assert.True(t, cfg.Protected.Strict)
	assert.Equal(t, 7, cfg.Clipboard.Timeout)
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{"default_variant": `)
	_, err := Load(viper.New(), dir)
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown variant", func(c *Config) { c.DefaultVariant = "mmap" }, "default_variant"},
		{"negative timeout", func(c *Config) { c.Clipboard.Timeout = -1 }, "clipboard.timeout"},
		{"timeout too long", func(c *Config) { c.Clipboard.Timeout = MaxClipboardTimeout + 1 }, "clipboard.timeout"},
		{"audit path ok", func(c *Config) { c.Audit = AuditConfig{Enabled: true, Path: filepath.Join(dir, "audit.log")} }, ""},
		{"audit path empty", func(c *Config) { c.Audit = AuditConfig{Enabled: true} }, "audit.path"},
		{"audit dir missing", func(c *Config) { c.Audit = AuditConfig{Enabled: true, Path: filepath.Join(dir, "nope", "a.log")} }, "audit.path"},
		{"audit traversal", func(c *Config) { c.Audit = AuditConfig{Enabled: true, Path: "../audit.log"} }, "audit.path"},
		{"audit is dir", func(c *Config) { c.Audit = AuditConfig{Enabled: true, Path: dir} }, "audit.path"},
		{"audit disabled ignores path", func(c *Config) { c.Audit = AuditConfig{Path: "../x"} }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(&cfg)
			err := ValidateConfig(&cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestAllocatorFor(t *testing.T) {
	tests := []struct {
		variant string
		strict  bool
		want    string
	}{
		{"fast", false, "fast"},
		{" FAST ", false, "fast"},
		{"insecure", false, "insecure"},
		{"sealed", false, "sealed"},
		{"protected", false, "protected"},
		{"protected", true, "protected-strict"},
		{"protected-strict", false, "protected-strict"},
	}
	for _, tt := range tests {
		a, err := AllocatorFor(tt.variant, tt.strict)
		require.NoError(t, err, tt.variant)
		assert.Equal(t, tt.want, a.Name())
	}

	_, err := AllocatorFor("plain", false)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	a, err := Config{DefaultVariant: "insecure"}.Allocator()
	require.NoError(t, err)
	assert.Equal(t, secret.Insecure.Name(), a.Name())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	saved := Cfg
	t.Cleanup(func() { Cfg = saved })

	dir := t.TempDir()
	Cfg = Default()
	Cfg.DefaultVariant = constants.VariantSealed
	Cfg.Clipboard.Timeout = 12
	require.NoError(t, SaveConfig(filepath.Join(dir, "config.yaml")))

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, Cfg, cfg)
}

func TestSet(t *testing.T) {
	saved := Cfg
	viper.Reset()
	t.Cleanup(func() {
		Cfg = saved
		viper.Reset()
	})

	dir := t.TempDir()
	_, err := Load(viper.GetViper(), dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, Set("Clipboard.Timeout", "45", path))
	assert.Equal(t, 45, Cfg.Clipboard.Timeout)

	require.NoError(t, Set("protected.strict", "true", path))
	assert.True(t, Cfg.Protected.Strict)

	err = Set("default_variant", "plain", path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, constants.VariantProtected, viper.GetString("default_variant"))

	err = Set("vaults", "x", path)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "vaults", cfgErr.Field)

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Clipboard.Timeout)
	assert.True(t, cfg.Protected.Strict)
}
