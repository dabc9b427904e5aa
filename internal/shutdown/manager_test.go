package shutdown

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secret.module/secret"
)

func testManager(t *testing.T) (*GracefulShutdownManager, *bytes.Buffer, *atomic.Int32) {
	t.Helper()
	m := newManager(false)
	var out bytes.Buffer
	var purged atomic.Int32
	m.out = &out
	m.purge = func() { purged.Add(1) }
	secret.SetRegistry(m)
	t.Cleanup(func() { secret.SetRegistry(nil) })
	return m, &out, &purged
}

func TestShutdownDestroysLiveSecrets(t *testing.T) {
	m, _, purged := testManager(t)

	a, err := secret.Random(secret.Fast, 16)
	require.NoError(t, err)
	b, err := secret.New(secret.Insecure, 8)
	require.NoError(t, err)
	c, err := secret.New(secret.Fast, 4)
	require.NoError(t, err)
	require.NoError(t, c.Destroy())

	assert.Equal(t, 2, m.LiveSecrets())

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, secret.Erased, a.State())
	assert.Equal(t, secret.Erased, b.State())
	assert.Equal(t, 0, m.LiveSecrets())
	assert.True(t, m.IsShutdown())
	assert.Equal(t, int32(1), purged.Load())
	assert.Error(t, m.Context().Err())
}

func TestNewAfterShutdownFails(t *testing.T) {
	m, _, _ := testManager(t)
	m.Shutdown()

	s, err := secret.New(secret.Fast, 8)
	require.ErrorIs(t, err, secret.ErrState)
	assert.Nil(t, s)
	assert.Equal(t, 0, m.GetResourceCount())
	assert.Equal(t, 0, m.LiveSecrets())
}

func TestTempFileCleanup(t *testing.T) {
	m, _, _ := testManager(t)
	var deleted []string
	SetSecurityFunctions(func(path string) error {
		deleted = append(deleted, path)
		return os.Remove(path)
	}, func() error { return nil })
	t.Cleanup(func() { SetSecurityFunctions(os.Remove, func() error { return nil }) })

	dir := t.TempDir()
	kept := filepath.Join(dir, "kept")
	gone := filepath.Join(dir, "gone")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0600))
	require.NoError(t, os.WriteFile(gone, []byte("y"), 0600))

	m.RegisterTempFile(kept, "renamed file")
	m.RegisterTempFile(gone, "scratch file")
	m.RegisterTempFile("", "ignored")
	m.UnregisterTempFile(kept)
	assert.Equal(t, 1, m.GetResourceCount())

	m.Shutdown()
	assert.Equal(t, []string{gone}, deleted)
	assert.FileExists(t, kept)
	assert.NoFileExists(t, gone)
}

func TestClipboardRegisteredOnce(t *testing.T) {
	m, out, _ := testManager(t)
	var clears atomic.Int32
	SetSecurityFunctions(os.Remove, func() error {
		clears.Add(1)
		return errors.New("no clipboard")
	})
	t.Cleanup(func() { SetSecurityFunctions(os.Remove, func() error { return nil }) })

	m.RegisterClipboard("clipboard")
	m.RegisterClipboard("clipboard")
	assert.Equal(t, 1, m.GetResourceCount())

	m.Shutdown()
	assert.Equal(t, int32(1), clears.Load())
	assert.Contains(t, out.String(), "failed to cleanup clipboard: no clipboard")
	assert.Contains(t, out.String(), "Completed cleanup with 1 errors")
}

func TestShutdownReportsBusySecret(t *testing.T) {
	m, out, _ := testManager(t)
	s, err := secret.New(secret.Fast, 8)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- s.ReadOnly(func(secret.ByteView) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	m.Shutdown()
	close(release)
	require.NoError(t, <-done)

	assert.Contains(t, out.String(), "failed to cleanup fast secret (8 bytes)")
	require.NoError(t, s.Destroy())
}

func TestSignalTriggersShutdown(t *testing.T) {
	m, _, purged := testManager(t)
	codes := make(chan int, 1)
	m.exit = func(code int) { codes <- code }
	go m.signalHandler()

	m.signals <- syscall.SIGTERM
	select {
	case code := <-codes:
		assert.Equal(t, 128+int(syscall.SIGTERM), code)
	case <-time.After(5 * time.Second):
		t.Fatal("signal was not handled")
	}
	assert.True(t, m.IsShutdown())
	assert.Equal(t, int32(1), purged.Load())
}

func TestCustomResource(t *testing.T) {
	m, _, _ := testManager(t)
	var cleaned atomic.Bool
	m.RegisterCustomResource(resourceFunc(func() error {
		cleaned.Store(true)
		return nil
	}))
	m.RegisterCustomResource(nil)
	m.Shutdown()
	assert.True(t, cleaned.Load())
}

type resourceFunc func() error

func (f resourceFunc) Cleanup() error      { return f() }
func (f resourceFunc) Description() string { return "custom" }
