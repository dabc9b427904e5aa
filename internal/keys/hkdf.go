// File: internal/keys/hkdf.go
package keys

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"secret.module/secret"
)

// HKDF expands master with HKDF-SHA256. info from the stateless secret is
// the HKDF info parameter, so one master yields independent subkeys.
func HKDF(master *secret.Secret, salt []byte) secret.Deriver {
	salt = append([]byte(nil), salt...)
	return secret.DeriverFunc(func(info, dst []byte) error {
		return withMaster(master, func(ikm []byte) error {
			return expand(ikm, salt, info, dst)
		})
	})
}

func expand(ikm, salt, info, dst []byte) error {
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, info), dst); err != nil {
		return fmt.Errorf("hkdf expand: %w", err)
	}
	return nil
}
