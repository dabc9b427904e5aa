// File: internal/security/clipboard.go
package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"secret.module/secret"
)

// Backend is the system clipboard.
type Backend interface {
	WriteAll(text string) error
	ReadAll() (string, error)
}

type systemBackend struct{}

func (systemBackend) WriteAll(text string) error { return clipboard.WriteAll(text) }
func (systemBackend) ReadAll() (string, error)   { return clipboard.ReadAll() }

// Clipboard copies secrets to the system clipboard and clears them again.
// It only clears content it wrote itself.
type Clipboard struct {
	backend Backend
	mu      sync.Mutex
	digest  [sha256.Size]byte
	armed   bool
}

var (
	clipboardInstance *Clipboard
	clipboardOnce     sync.Once
)

// GetClipboard returns the process clipboard.
func GetClipboard() *Clipboard {
	clipboardOnce.Do(func() {
		clipboardInstance = NewClipboard(systemBackend{})
	})
	return clipboardInstance
}

// NewClipboard returns a Clipboard writing to backend.
func NewClipboard(backend Backend) *Clipboard {
	return &Clipboard{backend: backend}
}

// Unsupported reports whether the system has no clipboard utility.
func Unsupported() bool {
	return clipboard.Unsupported
}

// CopySecretHex copies the hex encoding of s. The encoded text is built in
// a buffer that is zeroed afterwards; the clipboard API itself needs a Go
// string, which stays in memory until collected.
func (c *Clipboard) CopySecretHex(s *secret.Secret) error {
	return s.ReadOnly(func(v secret.ByteView) error {
		buf := make([]byte, hex.EncodedLen(v.Len()))
		defer secret.Zero(buf)
		hex.Encode(buf, v.Bytes())
		return c.copy(buf)
	})
}

// CopySecret copies s verbatim, for secrets that are already text.
func (c *Clipboard) CopySecret(s *secret.Secret) error {
	return s.ReadOnly(func(v secret.ByteView) error {
		return c.copy(v.Bytes())
	})
}

func (c *Clipboard) copy(text []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.backend.WriteAll(string(text)); err != nil {
		return err
	}
	c.digest = sha256.Sum256(text)
	c.armed = true
	return nil
}

// Clear empties the clipboard if it still holds what was copied last.
func (c *Clipboard) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.armed {
		return nil
	}
	current, err := c.backend.ReadAll()
	if err != nil {
		return err
	}
	sum := sha256.Sum256([]byte(current))
	c.armed = false
	if !secret.ConstantTimeEqual(sum[:], c.digest[:]) {
		return nil
	}
	return c.backend.WriteAll("")
}

// ClearAfter waits for timeout or ctx and then clears the clipboard.
func (c *Clipboard) ClearAfter(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return c.Clear()
}

// ClearClipboard clears the process clipboard (for shutdown cleanup).
func ClearClipboard() error {
	return GetClipboard().Clear()
}
