// File: internal/keys/cosmos.go
package keys

import (
	"fmt"

	"github.com/cosmos/cosmos-sdk/crypto/hd"
	"github.com/cosmos/go-bip39"
	"github.com/tendermint/tendermint/crypto/secp256k1"

	"secret.module/secret"
)

const (
	// CosmosDerivationPath is a standard derivation path for Cosmos.
	CosmosDerivationPath = "m/44'/118'/0'/0"
)

// Cosmos derives secp256k1 private keys from a BIP-39 mnemonic using the
// Cosmos SDK HD scheme. Like EVM, a non-empty info overrides path, and
// each Derive leaves an unerasable string copy of the mnemonic on the heap.
func Cosmos(mnemonic *secret.Secret, path string) secret.Deriver {
	if path == "" {
		path = CosmosDerivationPath + "/0"
	}
	return secret.DeriverFunc(func(info, dst []byte) error {
		p := path
		if len(info) > 0 {
			p = string(info)
		}
		return withMaster(mnemonic, func(phrase []byte) error {
			return deriveCosmosPrivateKey(string(phrase), p, dst)
		})
	})
}

func deriveCosmosPrivateKey(mnemonic, path string, dst []byte) error {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return fmt.Errorf("invalid mnemonic: %w", err)
	}
	defer secret.Zero(seed)

	master, ch := hd.ComputeMastersFromSeed(seed)
	defer secret.ZeroMultiple(master[:], ch[:])

	derived, err := hd.DerivePrivateKeyForPath(master, ch, path)
	if err != nil {
		return fmt.Errorf("failed to derive %s: %w", path, err)
	}
	return fill(dst, derived)
}

// CosmosAddress returns the hex account address of the private key in key.
func CosmosAddress(key secret.ByteView) string {
	return secp256k1.PrivKey(key.Bytes()).PubKey().Address().String()
}
