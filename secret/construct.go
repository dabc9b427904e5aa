// File: secret/construct.go

package secret

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// New allocates a zero-filled secret of size bytes with a. A size of zero
// is valid. When the installed Registry destroys the secret on
// registration, as a registry that is shutting down does, New fails with
// INVALID_STATE.
func New(a Allocator, size int) (*Secret, error) {
	const op = "New"
	if a == nil {
		return nil, newError(CodeAllocation, op, "nil allocator")
	}
	if size < 0 {
		e := newError(CodeAllocation, op, fmt.Sprintf("negative size %d", size))
		e.Variant = a.Name()
		return nil, e
	}
	st, err := a.Allocate(size)
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			e = wrapError(CodeAllocation, op, "allocate backing store", err)
		}
		if e.Variant == "" {
			e.Variant = a.Name()
		}
		emit(Event{Kind: EventFailed, Op: op, Variant: a.Name(), Size: size, Err: e})
		return nil, e
	}
	return newSecret(op, a, st)
}

// Random returns a secret of size bytes filled from crypto/rand.
func Random(a Allocator, size int) (*Secret, error) {
	return RandomFrom(a, size, rand.Reader)
}

// RandomFrom returns a secret of size bytes filled from r. If r cannot
// supply size bytes the partially filled secret is destroyed and a
// RANDOM_SOURCE_UNAVAILABLE error is returned.
func RandomFrom(a Allocator, size int, r io.Reader) (*Secret, error) {
	const op = "Random"
	s, err := New(a, size)
	if err != nil {
		return nil, err
	}
	err = s.ReadWrite(func(v ByteView) error {
		if _, err := io.ReadFull(r, v.Bytes()); err != nil {
			return wrapError(CodeRandomSource, op, "read entropy", err)
		}
		return nil
	})
	if err != nil {
		_ = s.Destroy()
		return nil, s.fail(op, ReadWrite, err)
	}
	return s, nil
}

// MoveFrom copies src into a new secret and zeros src, whether or not the
// copy succeeds.
func MoveFrom(a Allocator, src []byte) (*Secret, error) {
	defer Zero(src)
	return CopyFrom(a, src)
}

// CopyFrom copies src into a new secret. src is left untouched and remains
// the caller's to erase.
func CopyFrom(a Allocator, src []byte) (*Secret, error) {
	s, err := New(a, len(src))
	if err != nil {
		return nil, err
	}
	err = s.ReadWrite(func(v ByteView) error {
		v.CopyFrom(src)
		return nil
	})
	if err != nil {
		_ = s.Destroy()
		return nil, err
	}
	return s, nil
}
