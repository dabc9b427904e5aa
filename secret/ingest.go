// File: secret/ingest.go

package secret

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxIngestSize bounds ReadFrom when no explicit limit is given.
const MaxIngestSize = 64 << 10

// ReadFrom reads at most limit bytes from r into a new secret, trimming
// leading and trailing whitespace. Every intermediate buffer is zeroed
// before returning. A limit of zero or less means MaxIngestSize. Input that
// is empty after trimming, or longer than limit, is rejected.
func ReadFrom(a Allocator, r io.Reader, limit int) (*Secret, error) {
	if limit <= 0 {
		limit = MaxIngestSize
	}
	// One buffer, never grown, so no stale copies are left behind.
	buf := make([]byte, limit+1)
	defer Zero(buf)

	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("secret: reading input: %w", err)
	}
	if n > limit {
		return nil, fmt.Errorf("secret: input exceeds %d bytes", limit)
	}

	trimmed := bytes.TrimSpace(buf[:n])
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret: input is empty")
	}
	return MoveFrom(a, trimmed)
}

// ReadFile reads a secret from path, or from stdin if path is "-".
func ReadFile(a Allocator, path string) (*Secret, error) {
	if path == "-" {
		return ReadFrom(a, os.Stdin, 0)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFrom(a, f, 0)
}
