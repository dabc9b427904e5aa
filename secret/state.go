// File: secret/state.go

package secret

import "strconv"

// State is the access state of a secret's region.
type State uint8

const (
	// NoAccess: the region exists but no view may be produced.
	NoAccess State = iota
	// ReadOnly: views may be read but not written.
	ReadOnly
	// ReadWrite: views may be read and written.
	ReadWrite
	// Erased is terminal. The region has been zeroed and released.
	Erased
)

func (s State) String() string {
	switch s {
	case NoAccess:
		return "noaccess"
	case ReadOnly:
		return "readonly"
	case ReadWrite:
		return "readwrite"
	case Erased:
		return "erased"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// accessMode reports whether s may be requested from WithAccess.
func (s State) accessMode() bool {
	return s == ReadOnly || s == ReadWrite
}

// permits reports whether a scope in state s may open a nested scope in mode.
// A read-write scope may nest a read-only one; a read-only scope may not
// escalate.
func (s State) permits(mode State) bool {
	switch s {
	case ReadWrite:
		return mode.accessMode()
	case ReadOnly:
		return mode == ReadOnly
	default:
		return false
	}
}
