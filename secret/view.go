// File: secret/view.go

package secret

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/blake2b"
)

// scope marks the lifetime of one WithAccess call. Views created by the call
// hold a pointer to it and stop working once it is closed.
//
// A read-only scope whose raw bytes were handed out through Bytes keeps a
// keyed digest of the region, checked again when the scope ends.
type scope struct {
	live   atomic.Bool
	region []byte
	mode   State

	mu     sync.Mutex
	digest []byte
}

func newScope(region []byte, mode State) *scope {
	s := &scope{region: region, mode: mode}
	s.live.Store(true)
	return s
}

func (s *scope) close() {
	s.live.Store(false)
}

func (s *scope) expose() {
	if s.mode != ReadOnly {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.digest == nil {
		s.digest = regionDigest(s.region)
	}
}

func (s *scope) verify(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.digest == nil {
		return nil
	}
	now := regionDigest(s.region)
	same := subtle.ConstantTimeCompare(s.digest, now) == 1
	ZeroMultiple(s.digest, now)
	s.digest = nil
	if !same {
		return stateErrorf(op, "read-only region was written through Bytes")
	}
	return nil
}

var digestKey = sync.OnceValue(func() []byte {
	key := make([]byte, 32)
	_, _ = rand.Read(key)
	return key
})

func regionDigest(region []byte) []byte {
	h, err := blake2b.New256(digestKey())
	if err != nil {
		panic(err)
	}
	h.Write(region)
	return h.Sum(nil)
}

// ByteView is a bounds-checked window onto a secret's region, valid only
// inside the WithAccess call that produced it. It does not own the memory.
//
// Every accessor panics with an INVALID_STATE *Error when called after the
// scope has ended, and every mutator panics when the view is read-only.
type ByteView struct {
	buf   []byte
	mode  State
	scope *scope
}

func (v ByteView) check(op string) {
	if v.scope == nil || !v.scope.live.Load() {
		panic(stateErrorf(op, "view used outside its access scope"))
	}
}

func (v ByteView) checkWrite(op string) {
	v.check(op)
	if v.mode != ReadWrite {
		panic(stateErrorf(op, "write through a %s view", v.mode))
	}
}

// Len returns the number of bytes in the view.
func (v ByteView) Len() int {
	return len(v.buf)
}

// Mode returns ReadOnly or ReadWrite.
func (v ByteView) Mode() State {
	return v.mode
}

// At returns the byte at index i.
func (v ByteView) At(i int) byte {
	v.check("ByteView.At")
	return v.buf[i]
}

// Set stores b at index i.
func (v ByteView) Set(i int, b byte) {
	v.checkWrite("ByteView.Set")
	v.buf[i] = b
}

// CopyTo copies the view into dst and returns the number of bytes copied.
// The caller owns dst and is responsible for erasing it.
func (v ByteView) CopyTo(dst []byte) int {
	v.check("ByteView.CopyTo")
	return copy(dst, v.buf)
}

// CopyFrom copies src into the view and returns the number of bytes copied.
func (v ByteView) CopyFrom(src []byte) int {
	v.checkWrite("ByteView.CopyFrom")
	return copy(v.buf, src)
}

// Fill sets every byte of the view to b.
func (v ByteView) Fill(b byte) {
	v.checkWrite("ByteView.Fill")
	for i := range v.buf {
		v.buf[i] = b
	}
}

// Equal compares the view against b in constant time.
func (v ByteView) Equal(b []byte) bool {
	v.check("ByteView.Equal")
	return ConstantTimeEqual(v.buf, b)
}

// EqualView compares two views in constant time.
func (v ByteView) EqualView(o ByteView) bool {
	v.check("ByteView.EqualView")
	o.check("ByteView.EqualView")
	return ConstantTimeEqual(v.buf, o.buf)
}

// Slice returns the sub-view [from:to) sharing this view's scope and mode.
func (v ByteView) Slice(from, to int) ByteView {
	v.check("ByteView.Slice")
	return ByteView{buf: v.buf[from:to:to], mode: v.mode, scope: v.scope}
}

// Bytes exposes the region for APIs that need a []byte, such as cipher
// constructors. The slice aliases secret memory: it must not be retained
// past the scope, and must not be written when Mode is ReadOnly. Stores with
// CapAccessControl map read-only regions without write permission, so such
// a write faults. On the others the scope compares a digest of the region
// on exit and WithAccess fails with INVALID_STATE if it changed.
func (v ByteView) Bytes() []byte {
	v.check("ByteView.Bytes")
	v.scope.expose()
	return v.buf
}

func (v ByteView) String() string {
	return redacted
}

func (v ByteView) GoString() string {
	return redacted
}

func (v ByteView) Format(f fmt.State, verb rune) {
	fmt.Fprint(f, redacted)
}
