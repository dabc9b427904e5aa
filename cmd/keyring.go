// File: cmd/keyring.go
package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"secret.module/internal/colors"
	"secret.module/internal/constants"
	"secret.module/internal/errors"
	"secret.module/internal/keys"
	"secret.module/secret"
)

var keyringCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Manages the master key kept in the OS keyring.",
}

var keyringInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generates a random master key and stores it in the OS keyring.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		master, err := randomSecret(constants.DefaultKeySize)
		if err != nil {
			return err
		}
		defer master.Destroy()

		if err := keys.StoreMaster(deriveService, deriveUser, master); err != nil {
			return errors.NewInternalError("failed to store master key", err).
				WithSeverity(errors.SeverityError)
		}

		var fp string
		if err := master.ReadOnly(func(v secret.ByteView) error {
			fp = fingerprint(v)
			return nil
		}); err != nil {
			return errors.FromSecret(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), colors.SafeColor(
			fmt.Sprintf("Master key stored in keyring %s/%s (fingerprint %s).", deriveService, deriveUser, fp),
			colors.Success))
		return nil
	},
}

var keyringDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Removes the master key from the OS keyring.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keys.DeleteMaster(deriveService, deriveUser); err != nil {
			return errors.NewInternalError("failed to delete master key", err).
				WithSeverity(errors.SeverityError)
		}
		fmt.Fprintln(cmd.OutOrStdout(), colors.SafeColor(
			fmt.Sprintf("Master key removed from keyring %s/%s.", deriveService, deriveUser),
			colors.Success))
		return nil
	},
}

// fingerprint is the hex of the first bytes of a view, enough to tell
// master keys apart.
func fingerprint(v secret.ByteView) string {
	b := make([]byte, min(4, v.Len()))
	defer secret.Zero(b)
	v.CopyTo(b)
	return hex.EncodeToString(b)
}

func init() {
	for _, c := range []*cobra.Command{keyringInitCmd, keyringDeleteCmd} {
		c.Flags().StringVar(&deriveService, "service", constants.KeyringService, "keyring service name")
		c.Flags().StringVar(&deriveUser, "user", constants.KeyringUser, "keyring user name")
	}
	keyringCmd.AddCommand(keyringInitCmd, keyringDeleteCmd)
	rootCmd.AddCommand(keyringCmd)
}
