// File: secret/secret.go

package secret

import (
	"errors"
	"runtime"
	"sync"

	"github.com/petermattis/goid"
)

// Secret owns one backing store and mediates every access to it.
//
// A Secret starts in NoAccess. WithAccess is the only way to reach its bytes,
// and the prior state is restored when the callback returns, fails or
// panics. Wipe and Destroy zero and release the store and leave the secret
// Erased for good.
//
// Access is meant for one goroutine at a time. An access that overlaps with
// an open scope owned by another goroutine fails with CONCURRENT_ACCESS.
// Stateless secrets and secrets fixed to ReadOnly may be read from many
// goroutines at once; writes to a secret fixed to ReadWrite need external
// synchronization.
type Secret struct {
	mu      sync.Mutex
	store   Store
	alloc   Allocator
	variant string
	size    int
	caps    Capability

	state  State
	owner  int64
	depth  int
	scopes []*scope

	fixed  bool
	region []byte
	// shared holds the open scopes of fixed and stateless secrets, which
	// are not stacked, keyed to the goroutine that opened them.
	shared map[*scope]int64
}

func newSecret(op string, a Allocator, st Store) (*Secret, error) {
	s := &Secret{
		store:   st,
		alloc:   a,
		variant: a.Name(),
		size:    st.Len(),
		caps:    st.Capabilities(),
		shared:  make(map[*scope]int64),
	}
	runtime.SetFinalizer(s, (*Secret).finalize)
	emit(Event{Kind: EventAllocated, Op: op, Variant: s.variant, Size: s.size})
	register(s)
	// A registry that is shutting down destroys what it is handed.
	if s.State() == Erased {
		return nil, s.fail(op, NoAccess, stateErrorf(op, "registry refused the secret"))
	}
	return s, nil
}

// Len returns the size of the secret. It is valid in every state.
func (s *Secret) Len() int {
	return s.size
}

// State returns the current access state.
func (s *Secret) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Capabilities returns the protections of the backing store.
func (s *Secret) Capabilities() Capability {
	return s.caps
}

// Variant names the allocator that produced the secret.
func (s *Secret) Variant() string {
	return s.variant
}

// Fixed reports whether the state was switched permanently with Fix.
func (s *Secret) Fixed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fixed
}

// ReadOnly is WithAccess(ReadOnly, fn).
func (s *Secret) ReadOnly(fn func(ByteView) error) error {
	return s.WithAccess(ReadOnly, fn)
}

// ReadWrite is WithAccess(ReadWrite, fn).
func (s *Secret) ReadWrite(fn func(ByteView) error) error {
	return s.WithAccess(ReadWrite, fn)
}

// WithAccess switches the secret to mode, calls fn with a view of the region
// and restores the previous state on every exit path. The view must not be
// used after fn returns.
//
// A read-write scope may nest read-only and read-write scopes. A read-only
// scope may only nest read-only scopes.
func (s *Secret) WithAccess(mode State, fn func(ByteView) error) (err error) {
	const op = "WithAccess"
	if !mode.accessMode() {
		return s.fail(op, mode, stateErrorf(op, "mode %s cannot be requested", mode))
	}
	if s.caps.Has(CapStateless) {
		return s.deriveAccess(op, mode, fn)
	}

	sc, prev, err := s.enter(op, mode)
	if err != nil {
		return s.fail(op, mode, err)
	}
	emit(Event{Kind: EventAccessed, Op: op, Variant: s.variant, Size: s.size, Mode: mode})

	defer func() {
		// A scope closed by Wipe no longer has a region to check.
		if sc.live.Load() {
			if verr := sc.verify(op); verr != nil && err == nil {
				err = s.fail(op, mode, verr)
			}
		}
		sc.close()
		if cerr := s.exit(op, mode, prev, sc); cerr != nil && err == nil {
			err = s.fail(op, mode, cerr)
		}
	}()
	return fn(ByteView{buf: sc.region, mode: mode, scope: sc})
}

func (s *Secret) enter(op string, mode State) (*scope, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Erased {
		return nil, 0, stateErrorf(op, "secret has been erased")
	}
	if s.fixed {
		if !s.state.permits(mode) {
			return nil, 0, stateErrorf(op, "secret is fixed to %s, %s requested", s.state, mode)
		}
		sc := newScope(s.region, mode)
		s.shared[sc] = goid.Get()
		return sc, s.state, nil
	}

	id := goid.Get()
	if s.depth > 0 {
		if s.owner != id {
			return nil, 0, newError(CodeConcurrentAccess, op, "secret is in use by another goroutine")
		}
		if !s.state.permits(mode) {
			return nil, 0, stateErrorf(op, "%s scope cannot be opened inside a %s scope", mode, s.state)
		}
	}

	prev := s.state
	region, err := s.store.Open(mode, prev)
	if err != nil {
		return nil, 0, s.storeError(op, err)
	}
	sc := newScope(region, mode)
	s.state = mode
	s.owner = id
	s.depth++
	s.scopes = append(s.scopes, sc)
	return sc, prev, nil
}

func (s *Secret) exit(op string, mode, prev State, sc *scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fixed {
		delete(s.shared, sc)
		return nil
	}
	// Wiped from inside the scope: the store is already gone.
	if s.state == Erased {
		return nil
	}
	s.depth--
	s.scopes = s.scopes[:s.depth]
	s.state = prev
	if s.depth == 0 {
		s.owner = 0
	}
	if err := s.store.Close(sc.region, mode, prev); err != nil {
		return s.storeError(op, err)
	}
	return nil
}

// deriveAccess serves stateless stores. Each call gets its own scratch
// region, so no state is tracked and calls may run concurrently. The scope
// is still recorded so that Wipe ends it.
func (s *Secret) deriveAccess(op string, mode State, fn func(ByteView) error) (err error) {
	if mode != ReadOnly {
		return s.fail(op, mode, stateErrorf(op, "stateless secrets are read-only"))
	}
	s.mu.Lock()
	st, state := s.store, s.state
	s.mu.Unlock()
	if state == Erased {
		return s.fail(op, mode, stateErrorf(op, "secret has been erased"))
	}

	region, err := st.Open(ReadOnly, NoAccess)
	if err != nil {
		return s.fail(op, mode, s.storeError(op, err))
	}
	sc := newScope(region, ReadOnly)
	s.mu.Lock()
	erased := s.state == Erased
	if !erased {
		s.shared[sc] = goid.Get()
	}
	s.mu.Unlock()
	if erased {
		Zero(region)
		return s.fail(op, mode, stateErrorf(op, "secret has been erased"))
	}
	emit(Event{Kind: EventAccessed, Op: op, Variant: s.variant, Size: s.size, Mode: mode})

	defer func() {
		if sc.live.Load() {
			if verr := sc.verify(op); verr != nil && err == nil {
				err = s.fail(op, mode, verr)
			}
		}
		sc.close()
		s.mu.Lock()
		delete(s.shared, sc)
		s.mu.Unlock()
		if cerr := st.Close(region, ReadOnly, NoAccess); cerr != nil && err == nil {
			err = s.fail(op, mode, s.storeError(op, cerr))
		}
	}()
	return fn(ByteView{buf: region, mode: ReadOnly, scope: sc})
}

// Fix switches the secret permanently to mode. Later WithAccess calls must
// be compatible with it and no longer transition the store, which lets
// several goroutines read at once. Writes through a secret fixed to
// ReadWrite still need external synchronization.
//
// Wipe and Destroy on a fixed secret fail with CONCURRENT_ACCESS while a
// goroutine other than the caller has a scope open. Scopes of the caller
// itself are ended, as for secrets that are not fixed.
func (s *Secret) Fix(mode State) error {
	const op = "Fix"
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == Erased:
		return stateErrorf(op, "secret has been erased")
	case !mode.accessMode():
		return stateErrorf(op, "cannot fix to %s", mode)
	case s.fixed:
		return stateErrorf(op, "secret is already fixed to %s", s.state)
	case s.depth > 0:
		return stateErrorf(op, "cannot fix inside an access scope")
	}

	if s.caps.Has(CapStateless) {
		if mode != ReadOnly {
			return stateErrorf(op, "stateless secrets are read-only")
		}
		s.fixed = true
		s.state = ReadOnly
		return nil
	}

	region, err := s.store.Open(mode, NoAccess)
	if err != nil {
		return s.storeError(op, err)
	}
	s.region = region
	s.state = mode
	s.fixed = true
	return nil
}

// Wipe runs fn, which may be nil, and then zeros and releases the backing
// store and leaves the secret Erased. The erase happens on every exit path
// of fn, including panics. Wipe may be called from inside an access scope
// of the same goroutine; the enclosing scope then ends without touching the
// store. Views of a stateless secret stop working on Wipe whichever
// goroutine opened them.
func (s *Secret) Wipe(fn func() error) (err error) {
	if fn == nil {
		return s.erase("Wipe")
	}
	defer func() {
		if werr := s.erase("Wipe"); werr != nil && err == nil {
			err = werr
		}
	}()
	return fn()
}

// Destroy is Wipe(nil). Destroying an erased secret does nothing.
func (s *Secret) Destroy() error {
	return s.erase("Destroy")
}

func (s *Secret) erase(op string) error {
	erased, ferr, err := s.release(op)
	if err != nil {
		return s.fail(op, NoAccess, err)
	}
	if !erased {
		return nil
	}

	runtime.SetFinalizer(s, nil)
	unregister(s)
	emit(Event{Kind: EventErased, Op: op, Variant: s.variant, Size: s.size})
	if ferr != nil {
		return s.fail(op, NoAccess, s.storeError(op, ferr))
	}
	return nil
}

// release zeros and frees the store under the lock. The secret is marked
// Erased before the store is touched, so a panicking Erase leaves it
// unusable rather than locked.
func (s *Secret) release(op string) (erased bool, ferr, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Erased {
		return false, nil, nil
	}
	me := goid.Get()
	if s.depth > 0 && s.owner != me {
		return false, nil, newError(CodeConcurrentAccess, op, "secret is in use by another goroutine")
	}
	if s.fixed && !s.caps.Has(CapStateless) {
		for _, id := range s.shared {
			if id != me {
				return false, nil, newError(CodeConcurrentAccess, op, "fixed secret has open readers")
			}
		}
	}

	// Views of scopes still open stop working before the region goes away.
	for _, sc := range s.scopes {
		sc.close()
	}
	for sc := range s.shared {
		sc.close()
	}
	st := s.store
	s.state = Erased
	s.region = nil
	s.scopes = nil
	s.shared = nil
	s.depth = 0
	s.owner = 0

	st.Erase()
	return true, st.Free(), nil
}

func (s *Secret) finalize() {
	_ = s.erase("finalize")
}

// Compare reports in constant time whether s and other hold the same bytes.
// Nil operands and operands of different sizes are unequal. An erased
// operand yields an INVALID_STATE error and an operand with a scope open on
// another goroutine a CONCURRENT_ACCESS error.
func (s *Secret) Compare(other *Secret) (bool, error) {
	if s == nil || other == nil || s.size != other.size {
		return false, nil
	}
	equal := false
	err := s.ReadOnly(func(a ByteView) error {
		return other.ReadOnly(func(b ByteView) error {
			equal = a.EqualView(b)
			return nil
		})
	})
	if err != nil {
		return false, err
	}
	return equal, nil
}

// Equal is Compare with every error reported as false, except
// CONCURRENT_ACCESS, which panics.
func (s *Secret) Equal(other *Secret) bool {
	equal, err := s.Compare(other)
	if errors.Is(err, ErrConcurrentAccess) {
		panic(err)
	}
	return equal
}

// Dup returns an independent copy allocated by the same strategy. The state
// of s is the same afterwards.
func (s *Secret) Dup() (*Secret, error) {
	const op = "Dup"
	s.mu.Lock()
	st, state := s.store, s.state
	s.mu.Unlock()
	if state == Erased {
		return nil, stateErrorf(op, "secret has been erased")
	}

	if c, ok := st.(Cloner); ok {
		clone, err := c.Clone()
		if err != nil {
			return nil, s.fail(op, NoAccess, s.storeError(op, err))
		}
		return newSecret(op, s.alloc, clone)
	}

	var dup *Secret
	err := s.ReadOnly(func(src ByteView) error {
		d, err := New(s.alloc, s.size)
		if err != nil {
			return err
		}
		if err := d.ReadWrite(func(dst ByteView) error {
			src.CopyTo(dst.Bytes())
			return nil
		}); err != nil {
			_ = d.Destroy()
			return err
		}
		dup = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dup, nil
}

// storeError passes *Error values from a store through and wraps anything
// else as an allocation failure.
func (s *Secret) storeError(op string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		if se.Variant == "" {
			se.Variant = s.variant
		}
		return err
	}
	e := wrapError(CodeAllocation, op, "backing store failed", err)
	e.Variant = s.variant
	return e
}

func (s *Secret) fail(op string, mode State, err error) error {
	var se *Error
	if errors.As(err, &se) && se.Variant == "" {
		se.Variant = s.variant
	}
	emit(Event{Kind: EventFailed, Op: op, Variant: s.variant, Size: s.size, Mode: mode, Err: err})
	return err
}
