package cmd

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/hkdf"

	"secret.module/internal/audit"
	"secret.module/internal/errors"
	"secret.module/secret"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes secretctl with args in an empty working directory and home,
// feeding stdin to the secret prompts.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	oldwd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	t.Setenv("PWD", dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SECRET_DEFAULT_VARIANT", "fast")
	t.Setenv("SECRET_AUDIT_ENABLED", "false")
	t.Setenv("SECRET_METRICS_ENABLED", "false")
	t.Setenv("NO_COLOR", "1")
	viper.Reset()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRandomRedactedByDefault(t *testing.T) {
	out, err := run(t, "", "random", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "(***SECRET***)")
	assert.Contains(t, out, "Variant:      fast")
	assert.Contains(t, out, "Size:         16 bytes")
	assert.Contains(t, out, "secure-erase")
	assert.NotRegexp(t, `[0-9a-f]{32}`, out)
}

func TestRandomReveal(t *testing.T) {
	out, err := run(t, "", "random", "--reveal", "16")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`(?m)^[0-9a-f]{32}$`), out)
}

func TestRandomVariantFlag(t *testing.T) {
	out, err := run(t, "", "--variant", "insecure", "random")
	require.NoError(t, err)
	assert.Contains(t, out, "Variant:      insecure")
	assert.Contains(t, out, "Size:         32 bytes")
}

func TestRandomInvalidSize(t *testing.T) {
	for _, arg := range []string{"0", "abc", "1048577"} {
		_, err := run(t, "", "random", arg)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput), arg)
	}
}

func TestRandomOutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.hex")
	out, err := run(t, "", "random", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Written to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{64}\n$`, string(data))
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestUnknownVariant(t *testing.T) {
	_, err := run(t, "", "--variant", "plain", "random")
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigValidation))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		code  errors.ErrorCode
	}{
		{"match", "hunter2\nhunter2\n", ""},
		{"match ignores surrounding space", "  hunter2\r\nhunter2", ""},
		{"differ", "hunter2\nhunter3\n", errors.ErrCodeMismatch},
		{"differ in length", "hunter2\nhunter22\n", errors.ErrCodeMismatch},
		{"empty second", "hunter2\n\n", errors.ErrCodeInvalidInput},
		{"missing second", "hunter2\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, "compare")
			if tt.code == "" {
				require.NoError(t, err)
				assert.Contains(t, out, "The values match.")
				return
			}
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestDeriveEVM(t *testing.T) {
	out, err := run(t, testMnemonic+"\n", "derive", "evm")
	require.NoError(t, err)
	assert.Contains(t, out, "Path:    m/44'/60'/0'/0/0")
	assert.Contains(t, out, "Address: 0x9858EfFD232B4033E47d90003D41EC34EcaEda94")
	assert.NotContains(t, out, "Key:")

	out, err = run(t, testMnemonic+"\n", "derive", "evm", "--reveal")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^Key:     [0-9a-f]{64}$`, out)
}

func TestDeriveEVMIndexChangesAddress(t *testing.T) {
	out, err := run(t, testMnemonic+"\n", "derive", "evm", "--index", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Path:    m/44'/60'/0'/0/1")
	assert.NotContains(t, out, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94")
}

func TestDeriveCosmos(t *testing.T) {
	out, err := run(t, testMnemonic+"\n", "derive", "cosmos")
	require.NoError(t, err)
	assert.Contains(t, out, "Path:    m/44'/118'/0'/0/0")
	assert.Regexp(t, `Address: [0-9A-F]{40}`, out)
}

func TestDeriveInvalidMnemonic(t *testing.T) {
	_, err := run(t, "abandon abandon abandon\n", "derive", "evm")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidMnemonic))
}

func TestDeriveHKDF(t *testing.T) {
	want := make([]byte, 16)
	_, err := io.ReadFull(hkdf.New(sha256.New, []byte("master-key"), []byte("salt"), []byte("ctx")), want)
	require.NoError(t, err)

	out, err := run(t, "master-key\n", "derive", "hkdf", "--salt", "salt", "--info", "ctx", "--size", "16", "--reveal")
	require.NoError(t, err)
	assert.Contains(t, out, "stateless")
	assert.Contains(t, out, hex.EncodeToString(want)+"\n")
}

func TestDeriveHKDFSizeLimit(t *testing.T) {
	_, err := run(t, "master-key\n", "derive", "hkdf", "--size", "9000")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
}

func TestDerivePassphraseNeedsSalt(t *testing.T) {
	_, err := run(t, "correct horse\n", "derive", "passphrase")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
}

func TestCapabilities(t *testing.T) {
	out, err := run(t, "", "capabilities", "--format", "json")
	require.NoError(t, err)

	var reports []capabilityReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	byVariant := make(map[string]capabilityReport)
	for _, r := range reports {
		byVariant[r.Variant] = r
	}
	assert.Equal(t, []string{"secure-erase"}, byVariant["fast"].Capabilities)
	assert.Empty(t, byVariant["insecure"].Capabilities)
	assert.Contains(t, byVariant["stateless"].Capabilities, "stateless")
	assert.Contains(t, byVariant["sealed"].Capabilities, "encrypted-at-rest")
	assert.Contains(t, byVariant, "protected")
	assert.Contains(t, byVariant, "protected-strict")

	out, err = run(t, "", "capabilities", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "- variant: fast")

	out, err = run(t, "", "capabilities")
	require.NoError(t, err)
	assert.Contains(t, out, "VARIANT")
	assert.Contains(t, out, "secure-erase")

	_, err = run(t, "", "capabilities", "--format", "xml")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
}

func TestConfigShow(t *testing.T) {
	out, err := run(t, "", "config", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"default_variant": "fast"`)

	out, err = run(t, "", "config", "get", "default_variant")
	require.NoError(t, err)
	assert.Equal(t, "default_variant: fast\n", out)

	_, err = run(t, "", "config", "get", "vaults")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
}

func TestConfigSet(t *testing.T) {
	_, err := run(t, "", "config", "set", "clipboard.timeout", "5")
	require.NoError(t, err)
	data, err := os.ReadFile("config.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 5")

	_, err = run(t, "", "config", "set", "--", "clipboard.timeout", "-5")
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigValidation))
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "secretctl")

	_, err = run(t, "", "completion", "tcsh")
	assert.Error(t, err)
}

func TestAuditPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	f, err := os.Create(path)
	require.NoError(t, err)
	obs := audit.NewObserver(audit.NewLogger(f))
	obs.Observe(secret.Event{Kind: secret.EventAllocated, Op: "New", Variant: "fast", Size: 16})
	obs.Observe(secret.Event{Kind: secret.EventFailed, Op: "WithAccess", Variant: "fast", Size: 16, Err: secret.ErrState})
	_, err = f.WriteString("not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, err := run(t, "", "audit", "--plain", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "allocated fast 16B op=New")
	assert.Contains(t, out, "failed fast 16B op=WithAccess INVALID_STATE")
	assert.Contains(t, out, "2 entries")
	assert.Contains(t, out, "1 unreadable lines skipped")

	out, err = run(t, "", "audit", "--plain", "--failures", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 entries")
	assert.NotContains(t, out, "allocated")

	_, err = run(t, "", "audit", "--plain", "--file", filepath.Join(t.TempDir(), "missing.log"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeFileSystem))
}
