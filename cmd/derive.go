// File: cmd/derive.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"secret.module/internal/colors"
	"secret.module/internal/constants"
	"secret.module/internal/errors"
	"secret.module/internal/keys"
	"secret.module/secret"
)

var (
	derivePath    string
	deriveIndex   int
	deriveSalt    string
	deriveInfo    string
	deriveSize    int
	deriveReveal  bool
	deriveService string
	deriveUser    string
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derives keys on demand without keeping them in memory.",
	Long: `Derives a key from a master secret into a stateless secret. The master
is read without echo into the configured variant; the derived key only
exists inside each read scope and is erased when the scope ends.`,
}

var deriveEVMCmd = &cobra.Command{
	Use:   "evm",
	Short: "Derives an EVM private key from a BIP-39 mnemonic and prints its address.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return deriveWallet(cmd, constants.DeriveEVM, keys.EVMDerivationPath)
	},
}

var deriveCosmosCmd = &cobra.Command{
	Use:   "cosmos",
	Short: "Derives a Cosmos private key from a BIP-39 mnemonic and prints its address.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return deriveWallet(cmd, constants.DeriveCosmos, keys.CosmosDerivationPath)
	},
}

var deriveHKDFCmd = &cobra.Command{
	Use:   "hkdf",
	Short: "Expands a master key with HKDF-SHA256.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		master, err := newSecretReader(cmd, allocator).Read("Master key")
		if err != nil {
			return err
		}
		defer master.Destroy()
		return deriveBytes(cmd, constants.DeriveHKDF, keys.Params{Master: master, Salt: []byte(deriveSalt)})
	},
}

var derivePassphraseCmd = &cobra.Command{
	Use:   "passphrase",
	Short: "Stretches a passphrase into a key with Argon2id.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deriveSalt == "" {
			return errors.NewInvalidInputError("salt", "--salt is required for passphrase derivation")
		}
		pass, err := newSecretReader(cmd, allocator).Read("Passphrase")
		if err != nil {
			return err
		}
		defer pass.Destroy()
		return deriveBytes(cmd, constants.DerivePassphrase, keys.Params{Master: pass, Salt: []byte(deriveSalt)})
	},
}

var deriveKeyringCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Expands the master key stored in the OS keyring.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return deriveBytes(cmd, constants.DeriveKeyring, keys.Params{
			Salt:    []byte(deriveSalt),
			Service: deriveService,
			User:    deriveUser,
		})
	},
}

// deriveWallet reads a mnemonic, checks it and prints the address of the
// key at the chosen path.
func deriveWallet(cmd *cobra.Command, kind, basePath string) error {
	mnemonic, err := newSecretReader(cmd, allocator).Read("Mnemonic")
	if err != nil {
		return err
	}
	defer mnemonic.Destroy()

	valid := false
	if err := mnemonic.ReadOnly(func(v secret.ByteView) error {
		valid = keys.ValidateMnemonic(v)
		return nil
	}); err != nil {
		return errors.FromSecret(err)
	}
	if !valid {
		return errors.NewInvalidMnemonicError()
	}

	path := derivePath
	if path == "" {
		path = fmt.Sprintf("%s/%d", basePath, deriveIndex)
	}
	d, err := keys.Get(kind, keys.Params{Master: mnemonic, Path: path})
	if err != nil {
		return errors.NewInvalidInputError("derivation", err.Error())
	}
	key, err := secret.New(secret.Stateless(d, nil), 32)
	if err != nil {
		return errors.FromSecret(err)
	}
	defer key.Destroy()

	out := cmd.OutOrStdout()
	err = key.ReadOnly(func(v secret.ByteView) error {
		var address string
		switch kind {
		case constants.DeriveEVM:
			a, err := keys.EVMAddress(v)
			if err != nil {
				return err
			}
			address = a
		default:
			address = keys.CosmosAddress(v)
		}
		fmt.Fprintf(out, "Path:    %s\n", path)
		fmt.Fprintf(out, "Address: %s\n", colors.SafeColor(address, colors.Cyan))
		if deriveReveal {
			fmt.Fprint(out, "Key:     ")
			return writeHex(out, v)
		}
		return nil
	})
	if err != nil {
		if secret.CodeOf(err) != "" {
			return errors.FromSecret(err)
		}
		return errors.Wrap(errors.ErrCodeDerivation, "key derivation failed", err)
	}
	return nil
}

// deriveBytes builds a stateless secret of deriveSize bytes and prints its
// description, and the hex form with --reveal.
func deriveBytes(cmd *cobra.Command, kind string, p keys.Params) error {
	if deriveSize <= 0 || deriveSize > 255*32 {
		return errors.NewInvalidInputError("size", "must be between 1 and 8160 bytes")
	}
	d, err := keys.Get(kind, p)
	if err != nil {
		return errors.NewInvalidInputError("derivation", err.Error())
	}
	key, err := secret.New(secret.Stateless(d, []byte(deriveInfo)), deriveSize)
	if err != nil {
		return errors.FromSecret(err)
	}
	defer key.Destroy()

	out := cmd.OutOrStdout()
	describe(out, key)
	if !deriveReveal {
		// One read confirms the derivation works.
		return errors.FromSecret(key.ReadOnly(func(secret.ByteView) error { return nil }))
	}
	return errors.FromSecret(printSecret(out, key))
}

func init() {
	for _, c := range []*cobra.Command{deriveEVMCmd, deriveCosmosCmd} {
		c.Flags().StringVar(&derivePath, "path", "", "full BIP-32 derivation path (overrides --index)")
		c.Flags().IntVar(&deriveIndex, "index", 0, "address index on the standard path")
		c.Flags().BoolVar(&deriveReveal, "reveal", false, "also print the private key as hex")
	}
	for _, c := range []*cobra.Command{deriveHKDFCmd, derivePassphraseCmd, deriveKeyringCmd} {
		c.Flags().StringVar(&deriveSalt, "salt", "", "salt")
		c.Flags().StringVar(&deriveInfo, "info", "", "context string bound into the derived key")
		c.Flags().IntVar(&deriveSize, "size", constants.DefaultKeySize, "number of bytes to derive")
		c.Flags().BoolVar(&deriveReveal, "reveal", false, "print the derived key as hex")
	}
	deriveKeyringCmd.Flags().StringVar(&deriveService, "service", constants.KeyringService, "keyring service name")
	deriveKeyringCmd.Flags().StringVar(&deriveUser, "user", constants.KeyringUser, "keyring user name")

	deriveCmd.AddCommand(deriveEVMCmd, deriveCosmosCmd, deriveHKDFCmd, derivePassphraseCmd, deriveKeyringCmd)
	rootCmd.AddCommand(deriveCmd)
}
