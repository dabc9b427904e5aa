// File: secret/protected.go

package secret

import (
	"errors"
	"fmt"
	"runtime"
)

// ProtectPolicy configures the Protected variant.
type ProtectPolicy struct {
	// Strict turns a failure to lock the region, or to set up guard pages
	// and page protection, into an allocation error. Without it the store
	// is returned with the corresponding capability flags unset, and
	// platforms without page protection fall back to heap memory.
	Strict bool
}

// Protected returns an allocator that places each secret in its own
// mapping outside the Go heap: one guard page on each side, the region
// flush against the trailing guard page so an overrun faults, locked
// against swap, excluded from core dumps where the OS allows it, and with
// NoAccess and ReadOnly enforced by page protection.
func Protected(p ProtectPolicy) Allocator {
	return protectedAllocator{policy: p}
}

var errUnsupported = errors.New("not supported on " + runtime.GOOS)

type protectedAllocator struct {
	policy ProtectPolicy
}

func (a protectedAllocator) Name() string {
	if a.policy.Strict {
		return "protected-strict"
	}
	return "protected"
}

func (a protectedAllocator) Allocate(size int) (Store, error) {
	const op = "Protected.Allocate"
	if !protectSupported {
		if a.policy.Strict {
			return nil, wrapError(CodeAllocation, op, "page protection unavailable", errUnsupported)
		}
		return &heapStore{buf: make([]byte, size), caps: CapSecureErase, erase: Zero}, nil
	}

	ps := pageSize()
	innerLen := (size + ps - 1) / ps * ps
	if innerLen == 0 {
		innerLen = ps
	}
	mem, err := mapPages(innerLen + 2*ps)
	if err != nil {
		return nil, wrapError(CodeAllocation, op, fmt.Sprintf("map %d bytes", innerLen+2*ps), err)
	}

	st := &pageStore{
		mem:   mem,
		inner: mem[ps : ps+innerLen : ps+innerLen],
		caps:  CapSecureErase,
	}
	st.region = st.inner[innerLen-size:]

	fail := func(msg string, cause error) (Store, error) {
		if st.caps.Has(CapLocked) {
			_ = unlockPages(st.inner)
		}
		_ = unmapPages(mem)
		return nil, wrapError(CodeAllocation, op, msg, cause)
	}

	if err := errors.Join(protectPages(mem[:ps], NoAccess), protectPages(mem[ps+innerLen:], NoAccess)); err == nil {
		st.caps |= CapGuardPages
	} else if a.policy.Strict {
		return fail("protect guard pages", err)
	}

	if err := lockPages(st.inner); err == nil {
		st.caps |= CapLocked
	} else if a.policy.Strict {
		return fail("lock region", err)
	}

	if err := noDump(st.inner); err == nil {
		st.caps |= CapNoDump
	}

	if err := protectPages(st.inner, NoAccess); err == nil {
		st.caps |= CapAccessControl
	} else if a.policy.Strict {
		return fail("protect region", err)
	}
	return st, nil
}

// pageStore is a region inside a private mapping.
type pageStore struct {
	mem    []byte // whole mapping, guard pages included
	inner  []byte // page-aligned span between the guard pages
	region []byte // tail of inner handed out to views
	caps   Capability
}

func (s *pageStore) Len() int {
	return len(s.region)
}

func (s *pageStore) Capabilities() Capability {
	return s.caps
}

func (s *pageStore) Open(mode, prev State) ([]byte, error) {
	if s.caps.Has(CapAccessControl) && mode != prev {
		if err := protectPages(s.inner, mode); err != nil {
			return nil, wrapError(CodeAllocation, "Protected.Open", "protect region "+mode.String(), err)
		}
	}
	return s.region, nil
}

func (s *pageStore) Close(region []byte, mode, prev State) error {
	if s.caps.Has(CapAccessControl) && mode != prev {
		if err := protectPages(s.inner, prev); err != nil {
			return wrapError(CodeAllocation, "Protected.Close", "protect region "+prev.String(), err)
		}
	}
	return nil
}

// Erase panics if the region cannot be made writable: a region that was not
// zeroed must not be reported as erased.
func (s *pageStore) Erase() {
	if s.caps.Has(CapAccessControl) {
		if err := protectPages(s.inner, ReadWrite); err != nil {
			panic(wrapError(CodeAllocation, "Protected.Erase", "unprotect region for erase", err))
		}
	}
	Zero(s.inner)
}

func (s *pageStore) Free() error {
	var errs []error
	if s.caps.Has(CapLocked) {
		errs = append(errs, unlockPages(s.inner))
	}
	errs = append(errs, unmapPages(s.mem))
	s.mem, s.inner, s.region = nil, nil, nil
	return errors.Join(errs...)
}
