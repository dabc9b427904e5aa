// File: secret/sealed.go

package secret

import (
	"fmt"

	"github.com/awnumar/memguard"
)

// Sealed keeps each secret in a memguard enclave: encrypted while in
// NoAccess, decrypted into a guarded, locked buffer for the duration of an
// access scope and sealed again when the outermost scope ends.
var Sealed Allocator = sealedAllocator{}

const sealedCaps = CapSecureErase | CapLocked | CapGuardPages | CapAccessControl | CapEncryptedAtRest

type sealedAllocator struct{}

func (sealedAllocator) Name() string {
	return "sealed"
}

func (sealedAllocator) Allocate(size int) (Store, error) {
	st := &sealedStore{size: size}
	if size == 0 {
		return st, nil
	}
	err := guarded("Sealed.Allocate", func() error {
		st.enclave = memguard.NewEnclave(make([]byte, size))
		if st.enclave == nil {
			return fmt.Errorf("enclave of %d bytes not created", size)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

type sealedStore struct {
	size    int
	enclave *memguard.Enclave
	buf     *memguard.LockedBuffer
}

func (s *sealedStore) Len() int {
	return s.size
}

func (s *sealedStore) Capabilities() Capability {
	return sealedCaps
}

func (s *sealedStore) Open(mode, prev State) ([]byte, error) {
	if s.size == 0 {
		return []byte{}, nil
	}
	err := guarded("Sealed.Open", func() error {
		if prev == NoAccess {
			buf, err := s.enclave.Open()
			if err != nil {
				return err
			}
			s.buf = buf
		}
		s.protect(mode)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.buf.Bytes(), nil
}

func (s *sealedStore) Close(region []byte, mode, prev State) error {
	if s.size == 0 || s.buf == nil {
		return nil
	}
	return guarded("Sealed.Close", func() error {
		if prev == NoAccess {
			// Seal destroys the plaintext buffer.
			s.enclave = s.buf.Seal()
			s.buf = nil
			return nil
		}
		s.protect(prev)
		return nil
	})
}

func (s *sealedStore) protect(mode State) {
	if mode == ReadOnly {
		s.buf.Freeze()
	} else {
		s.buf.Melt()
	}
}

func (s *sealedStore) Erase() {
	if s.buf != nil {
		s.buf.Destroy()
		s.buf = nil
	}
	// The ciphertext is unreadable once dropped; Purge rotates the key.
	s.enclave = nil
}

func (s *sealedStore) Free() error {
	return nil
}

// guarded runs f and converts memguard panics into allocation errors.
func guarded(op string, f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapError(CodeAllocation, op, "memguard failure", fmt.Errorf("%v", r))
		}
	}()
	if err := f(); err != nil {
		return wrapError(CodeAllocation, op, "memguard failure", err)
	}
	return nil
}
