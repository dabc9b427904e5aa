package secret_test

import (
	"testing"

	"secret.module/secret"
	"secret.module/secret/secrettest"
)

// counting fills dst with a pattern bound to info; safe for concurrent use.
var counting = secret.DeriverFunc(func(info, dst []byte) error {
	for i := range dst {
		dst[i] = byte(i*7+3) ^ info[0]
	}
	return nil
})

func countingWant(size int) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(i*7+3) ^ 'k'
	}
	return out
}

func TestContractFast(t *testing.T) {
	secrettest.Run(t, secrettest.Factory{Allocator: secret.Fast})
}

func TestContractInsecure(t *testing.T) {
	secrettest.Run(t, secrettest.Factory{Allocator: secret.Insecure})
}

func TestContractProtected(t *testing.T) {
	secrettest.Run(t, secrettest.Factory{Allocator: secret.Protected(secret.ProtectPolicy{})})
}

func TestContractSealed(t *testing.T) {
	secrettest.Run(t, secrettest.Factory{Allocator: secret.Sealed})
}

func TestContractStateless(t *testing.T) {
	secrettest.Run(t, secrettest.Factory{
		Allocator: secret.Stateless(counting, []byte("k")),
		ReadOnly:  true,
		Want:      countingWant,
	})
}
