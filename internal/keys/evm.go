// File: internal/keys/evm.go
package keys

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	"github.com/tyler-smith/go-bip39"

	"secret.module/secret"
)

const (
	// EVMDerivationPath is the standard derivation path for EVM.
	EVMDerivationPath = "m/44'/60'/0'/0"
)

// EVM derives secp256k1 private keys from a BIP-39 mnemonic held in
// mnemonic. A non-empty info passed to Derive overrides path, so one
// deriver serves several accounts. dst must be 32 bytes.
//
// The BIP-39 libraries take the phrase as a Go string, so every Derive
// leaves a copy of the mnemonic on the heap that cannot be erased. The
// hdwallet also keeps its master key in Go heap memory that is released to
// the garbage collector when Derive returns.
func EVM(mnemonic *secret.Secret, path string) secret.Deriver {
	if path == "" {
		path = EVMDerivationPath + "/0"
	}
	return secret.DeriverFunc(func(info, dst []byte) error {
		p := path
		if len(info) > 0 {
			p = string(info)
		}
		return withMaster(mnemonic, func(phrase []byte) error {
			return deriveEVMPrivateKey(string(phrase), p, dst)
		})
	})
}

func deriveEVMPrivateKey(mnemonic, path string, dst []byte) error {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return fmt.Errorf("invalid mnemonic: %w", err)
	}
	defer secret.Zero(seed)

	wallet, err := hdwallet.NewFromSeed(seed)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	derivationPath, err := hdwallet.ParseDerivationPath(path)
	if err != nil {
		return fmt.Errorf("invalid derivation path %q: %w", path, err)
	}
	account, err := wallet.Derive(derivationPath, false)
	if err != nil {
		return fmt.Errorf("failed to derive %s: %w", path, err)
	}
	key, err := wallet.PrivateKeyBytes(account)
	if err != nil {
		return fmt.Errorf("failed to derive private key: %w", err)
	}
	return fill(dst, key)
}

// EVMAddress returns the checksummed address of the private key in key.
func EVMAddress(key secret.ByteView) (string, error) {
	privateKey, err := crypto.ToECDSA(key.Bytes())
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	return crypto.PubkeyToAddress(privateKey.PublicKey).Hex(), nil
}

// ValidateMnemonic checks a mnemonic phrase against the BIP-39 word list
// and checksum. Like Derive, it copies the phrase into a string that cannot
// be erased.
func ValidateMnemonic(mnemonic secret.ByteView) bool {
	return bip39.IsMnemonicValid(string(mnemonic.Bytes()))
}
