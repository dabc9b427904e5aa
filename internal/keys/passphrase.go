// File: internal/keys/passphrase.go
package keys

import (
	"golang.org/x/crypto/argon2"

	"secret.module/secret"
)

// Argon2Params tunes Argon2id.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultArgon2 follows the RFC 9106 second recommended option.
var DefaultArgon2 = Argon2Params{Time: 3, Memory: 64 * 1024, Threads: 4}

// Passphrase stretches a passphrase with Argon2id. The salt is followed by
// the stateless info so different infos give different keys.
func Passphrase(passphrase *secret.Secret, salt []byte, p Argon2Params) secret.Deriver {
	salt = append([]byte(nil), salt...)
	return secret.DeriverFunc(func(info, dst []byte) error {
		fullSalt := append(append(make([]byte, 0, len(salt)+len(info)), salt...), info...)
		return withMaster(passphrase, func(pass []byte) error {
			key := argon2.IDKey(pass, fullSalt, p.Time, p.Memory, p.Threads, uint32(len(dst)))
			return fill(dst, key)
		})
	})
}
