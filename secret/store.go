// File: secret/store.go

package secret

import "strings"

// Capability is a bitset of protections a backing store provides. It is
// fixed when the store is allocated.
type Capability uint32

const (
	// CapSecureErase: the region is zeroed with a write the compiler cannot elide.
	CapSecureErase Capability = 1 << iota
	// CapLocked: the region is locked against swapping.
	CapLocked
	// CapGuardPages: inaccessible pages surround the region.
	CapGuardPages
	// CapNoDump: the region is excluded from core dumps.
	CapNoDump
	// CapAccessControl: NoAccess and ReadOnly are enforced by page protection.
	CapAccessControl
	// CapEncryptedAtRest: the region is held encrypted while in NoAccess.
	CapEncryptedAtRest
	// CapStateless: no plaintext is held between accesses.
	CapStateless
	// CapConcurrentRead: read-only access from several goroutines is safe.
	CapConcurrentRead
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CapSecureErase, "secure-erase"},
	{CapLocked, "locked"},
	{CapGuardPages, "guard-pages"},
	{CapNoDump, "no-dump"},
	{CapAccessControl, "access-control"},
	{CapEncryptedAtRest, "encrypted-at-rest"},
	{CapStateless, "stateless"},
	{CapConcurrentRead, "concurrent-read"},
}

// Has reports whether every flag in want is set.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// Names lists the set flags in declaration order.
func (c Capability) Names() []string {
	var names []string
	for _, n := range capabilityNames {
		if c&n.c != 0 {
			names = append(names, n.name)
		}
	}
	return names
}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	return strings.Join(c.Names(), "|")
}

// Store is a backing region for one secret. A *Secret serializes every call
// to its store, except for stores announcing CapConcurrentRead, whose Open and
// Close may run concurrently for ReadOnly.
type Store interface {
	// Len is the size of the region in bytes.
	Len() int
	// Capabilities reports the protections in effect.
	Capabilities() Capability
	// Open makes the region accessible in mode (ReadOnly or ReadWrite) and
	// returns it. prev is the state of the enclosing scope, NoAccess for the
	// outermost one.
	Open(mode, prev State) ([]byte, error)
	// Close ends the scope opened with mode, restoring the protection of
	// prev. NoAccess means the outermost scope has ended.
	Close(region []byte, mode, prev State) error
	// Erase zeros the region. It must not fail; stores that cannot make the
	// region writable panic.
	Erase()
	// Free releases the region. Erase has already been called.
	Free() error
}

// Cloner is implemented by stores that duplicate without a writable
// destination, such as stateless stores.
type Cloner interface {
	Clone() (Store, error)
}

// Allocator is a backing-store strategy.
type Allocator interface {
	// Name identifies the variant in errors, logs and metrics.
	Name() string
	// Allocate returns a zero-filled store of size bytes.
	Allocate(size int) (Store, error)
}

// Deriver fills dst with key material bound to info. It must fill all of
// dst or return an error.
type Deriver interface {
	Derive(info, dst []byte) error
}

// DeriverFunc adapts a function to Deriver.
type DeriverFunc func(info, dst []byte) error

func (f DeriverFunc) Derive(info, dst []byte) error {
	return f(info, dst)
}
