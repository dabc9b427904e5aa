// File: secret/stateless.go

package secret

// Stateless returns an allocator whose secrets hold no plaintext between
// accesses. Every ReadOnly access derives the bytes with d, bound to info,
// into a fresh buffer that is zeroed when the scope ends. ReadWrite access
// is refused. d must be safe for concurrent use: reads are not serialized.
func Stateless(d Deriver, info []byte) Allocator {
	return statelessAllocator{deriver: d, info: append([]byte(nil), info...)}
}

const statelessCaps = CapStateless | CapConcurrentRead | CapSecureErase

type statelessAllocator struct {
	deriver Deriver
	info    []byte
}

func (statelessAllocator) Name() string {
	return "stateless"
}

func (a statelessAllocator) Allocate(size int) (Store, error) {
	if a.deriver == nil {
		return nil, newError(CodeDerivation, "Stateless.Allocate", "no deriver configured")
	}
	return &derivedStore{deriver: a.deriver, info: a.info, size: size}, nil
}

// derivedStore is immutable after allocation, so Open and Close may run
// concurrently.
type derivedStore struct {
	deriver Deriver
	info    []byte
	size    int
}

func (s *derivedStore) Len() int {
	return s.size
}

func (s *derivedStore) Capabilities() Capability {
	return statelessCaps
}

func (s *derivedStore) Open(mode, prev State) ([]byte, error) {
	const op = "Stateless.Open"
	if mode != ReadOnly {
		return nil, stateErrorf(op, "stateless secrets are read-only")
	}
	dst := make([]byte, s.size)
	if err := s.deriver.Derive(s.info, dst); err != nil {
		Zero(dst)
		return nil, wrapError(CodeDerivation, op, "derive key material", err)
	}
	return dst, nil
}

func (s *derivedStore) Close(region []byte, mode, prev State) error {
	Zero(region)
	return nil
}

func (s *derivedStore) Erase() {}

func (s *derivedStore) Free() error {
	return nil
}

func (s *derivedStore) Clone() (Store, error) {
	return &derivedStore{deriver: s.deriver, info: s.info, size: s.size}, nil
}
