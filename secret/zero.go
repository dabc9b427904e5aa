// File: secret/zero.go

package secret

import (
	"crypto/subtle"
	"runtime"
)

// memclr is called through a variable so the compiler cannot prove the
// stores are dead and drop them.
var memclr = func(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Zero overwrites b with zeros. The writes are kept alive past the call so
// they survive even when b is about to be released.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	memclr(b)
	runtime.KeepAlive(b)
}

// ZeroMultiple zeros every slice in order.
func ZeroMultiple(slices ...[]byte) {
	for _, b := range slices {
		Zero(b)
	}
}

// ConstantTimeEqual compares a and b in time that depends only on their
// lengths, never on the position of the first differing byte.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
