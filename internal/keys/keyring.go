// File: internal/keys/keyring.go
package keys

import (
	"encoding/hex"
	"fmt"

	"github.com/zalando/go-keyring"

	"secret.module/secret"
)

// Keyring expands a master key kept in the OS keyring (hex encoded) with
// HKDF-SHA256. The entry is read on every derivation and never cached.
//
// The keyring API returns the entry as a Go string, which cannot be
// erased; only the decoded key bytes are zeroed.
func Keyring(service, user string, salt []byte) secret.Deriver {
	salt = append([]byte(nil), salt...)
	return secret.DeriverFunc(func(info, dst []byte) error {
		encoded, err := keyring.Get(service, user)
		if err != nil {
			return fmt.Errorf("keyring %s/%s: %w", service, user, err)
		}
		ikm, err := hex.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("keyring %s/%s: entry is not hex encoded", service, user)
		}
		defer secret.Zero(ikm)
		return expand(ikm, salt, info, dst)
	})
}

// StoreMaster writes master to the OS keyring in the format Keyring reads.
func StoreMaster(service, user string, master *secret.Secret) error {
	return withMaster(master, func(b []byte) error {
		buf := make([]byte, hex.EncodedLen(len(b)))
		defer secret.Zero(buf)
		hex.Encode(buf, b)
		if err := keyring.Set(service, user, string(buf)); err != nil {
			return fmt.Errorf("keyring %s/%s: %w", service, user, err)
		}
		return nil
	})
}

// DeleteMaster removes the keyring entry.
func DeleteMaster(service, user string) error {
	return keyring.Delete(service, user)
}
