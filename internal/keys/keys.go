// File: internal/keys/keys.go
package keys

import (
	"fmt"
	"strings"

	"secret.module/internal/constants"
	"secret.module/secret"
)

// Params carries the inputs a deriver kind may need. Unused fields are
// ignored.
type Params struct {
	// Master is the mnemonic for evm and cosmos, the input keying material
	// for hkdf and the passphrase for passphrase.
	Master *secret.Secret
	// Path is the BIP-32 path for evm and cosmos.
	Path string
	// Salt is used by hkdf, passphrase and keyring.
	Salt []byte
	// Service and User locate the keyring entry.
	Service, User string
}

// Get returns the deriver for kind.
func Get(kind string, p Params) (secret.Deriver, error) {
	normalized := strings.ToLower(strings.TrimSpace(kind))
	needsMaster := normalized != constants.DeriveKeyring
	if needsMaster && p.Master == nil {
		return nil, fmt.Errorf("%s derivation needs a master secret", normalized)
	}

	switch normalized {
	case constants.DeriveEVM:
		return EVM(p.Master, p.Path), nil
	case constants.DeriveCosmos:
		return Cosmos(p.Master, p.Path), nil
	case constants.DeriveHKDF:
		return HKDF(p.Master, p.Salt), nil
	case constants.DerivePassphrase:
		return Passphrase(p.Master, p.Salt, DefaultArgon2), nil
	case constants.DeriveKeyring:
		return Keyring(p.Service, p.User, p.Salt), nil
	default:
		return nil, fmt.Errorf("unsupported derivation kind: %s (supported: %s)", kind, strings.Join(Kinds(), ", "))
	}
}

// Kinds lists the supported derivation kinds.
func Kinds() []string {
	return []string{
		constants.DeriveEVM,
		constants.DeriveCosmos,
		constants.DeriveHKDF,
		constants.DerivePassphrase,
		constants.DeriveKeyring,
	}
}

// withMaster runs fn with a read-only view of master.
func withMaster(master *secret.Secret, fn func(b []byte) error) error {
	return master.ReadOnly(func(v secret.ByteView) error {
		return fn(v.Bytes())
	})
}

// fill copies key into dst after checking the length, then zeros key.
func fill(dst, key []byte) error {
	defer secret.Zero(key)
	if len(key) != len(dst) {
		return fmt.Errorf("derived %d bytes, %d requested", len(key), len(dst))
	}
	copy(dst, key)
	return nil
}
