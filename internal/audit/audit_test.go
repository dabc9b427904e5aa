package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secret.module/secret"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestObserverRecordsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	secret.SetObserver(NewObserver(NewLogger(&buf)))
	defer secret.SetObserver(nil)

	s, err := secret.CopyFrom(secret.Fast, []byte("do-not-log-me"))
	require.NoError(t, err)
	require.NoError(t, s.ReadOnly(func(v secret.ByteView) error { return nil }))
	require.Error(t, s.WithAccess(secret.Erased, nil))
	require.NoError(t, s.Destroy())

	assert.NotContains(t, buf.String(), "do-not-log-me")
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 5)

	assert.Equal(t, "allocated", lines[0]["event"])
	assert.Equal(t, "fast", lines[0]["variant"])
	assert.EqualValues(t, 13, lines[0]["size"])

	assert.Equal(t, "accessed", lines[1]["event"])
	assert.Equal(t, "readwrite", lines[1]["mode"])
	assert.Equal(t, "readonly", lines[2]["mode"])

	assert.Equal(t, "WARN", lines[3]["level"])
	assert.Equal(t, "INVALID_STATE", lines[3]["error_code"])
	assert.Equal(t, "erased", lines[4]["event"])
}

func TestInitLoggerCreatesPrivateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	require.NoError(t, InitLogger(path))
	Logger.Info("started")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"started"`)
}

func TestNilLoggerObserverIsSilent(t *testing.T) {
	Logger = nil
	o := NewObserver(nil)
	assert.NotPanics(t, func() { o.Observe(secret.Event{Kind: secret.EventErased}) })

	Disable()
	assert.NotNil(t, Logger)
}

func TestReadEntriesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	o := NewObserver(logger)
	logger.Info("Command executed", "command", "secretctl random", "variant", "fast")
	o.Observe(secret.Event{Kind: secret.EventAccessed, Op: "WithAccess", Variant: "sealed", Size: 32, Mode: secret.ReadOnly})
	o.Observe(secret.Event{Kind: secret.EventFailed, Op: "Destroy", Variant: "fast", Size: 8, Err: secret.ErrConcurrentAccess})
	buf.WriteString("\n{\"broken\":\ngarbage\n")

	entries, skipped, err := ReadEntries(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, entries, 3)

	assert.Equal(t, "Command executed secretctl random", entries[0].Summary())
	assert.False(t, entries[0].Failed())
	assert.Equal(t, "accessed readonly sealed 32B op=WithAccess", entries[1].Summary())
	assert.False(t, entries[1].Time.IsZero())

	assert.True(t, entries[2].Failed())
	assert.Equal(t, "CONCURRENT_ACCESS", entries[2].ErrorCode)
	assert.Equal(t, "failed fast 8B op=Destroy CONCURRENT_ACCESS", entries[2].Summary())
}

func TestReadFileMissing(t *testing.T) {
	_, _, err := ReadFile(filepath.Join(t.TempDir(), "absent.log"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
