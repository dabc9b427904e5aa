// File: secret/heap.go

package secret

// Fast keeps secrets on the Go heap and erases them with Zero. It provides
// no OS-level protection.
var Fast Allocator = heapAllocator{name: "fast", caps: CapSecureErase, erase: Zero}

// Insecure keeps secrets on the Go heap and erases them with a plain clear
// the compiler is free to drop. Formatting and comparison behave as for
// every other variant. Meant for tests and benchmarks.
var Insecure Allocator = heapAllocator{name: "insecure", erase: func(b []byte) { clear(b) }}

type heapAllocator struct {
	name  string
	caps  Capability
	erase func([]byte)
}

func (a heapAllocator) Name() string {
	return a.name
}

func (a heapAllocator) Allocate(size int) (Store, error) {
	return &heapStore{buf: make([]byte, size), caps: a.caps, erase: a.erase}, nil
}

type heapStore struct {
	buf   []byte
	caps  Capability
	erase func([]byte)
}

func (s *heapStore) Len() int                                    { return len(s.buf) }
func (s *heapStore) Capabilities() Capability                    { return s.caps }
func (s *heapStore) Open(mode, prev State) ([]byte, error)       { return s.buf, nil }
func (s *heapStore) Close(region []byte, mode, prev State) error { return nil }

func (s *heapStore) Erase() {
	s.erase(s.buf)
}

func (s *heapStore) Free() error {
	s.buf = nil
	return nil
}
