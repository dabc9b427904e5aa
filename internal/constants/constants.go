// File: internal/constants/constants.go
package constants

// Allocator variants selectable from config and flags
const (
	VariantFast            = "fast"
	VariantProtected       = "protected"
	VariantProtectedStrict = "protected-strict"
	VariantSealed          = "sealed"
	VariantInsecure        = "insecure"
)

// Derivation kinds
const (
	DeriveEVM        = "evm"
	DeriveCosmos     = "cosmos"
	DeriveHKDF       = "hkdf"
	DerivePassphrase = "passphrase"
	DeriveKeyring    = "keyring"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Limits
const (
	DefaultKeySize  = 32
	MaxRandomSize   = 1 << 20
	MnemonicMaxSize = 1024
)

// Keyring defaults
const (
	KeyringService = "secret.module"
	KeyringUser    = "master"
)
