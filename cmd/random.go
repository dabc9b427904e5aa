// File: cmd/random.go
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"secret.module/internal/colors"
	"secret.module/internal/constants"
	"secret.module/internal/errors"
	"secret.module/internal/security"
)

var (
	randomReveal bool
	randomClip   bool
	randomOut    string
	randomRaw    bool
)

var randomCmd = &cobra.Command{
	Use:   "random [SIZE]",
	Short: "Generates a random secret in the configured variant.",
	Long: `Generates SIZE random bytes (default 32) from the system entropy source
into a secret of the configured variant.

Without flags only the redacted form and the capabilities are printed.
--reveal prints the hex encoding, --clip copies it to the clipboard and
--out writes it to a file created with mode 0600.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size := constants.DefaultKeySize
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 || n > constants.MaxRandomSize {
				return errors.NewInvalidInputError("size",
					fmt.Sprintf("must be a number between 1 and %d", constants.MaxRandomSize))
			}
			size = n
		}

		s, err := randomSecret(size)
		if err != nil {
			return err
		}
		defer s.Destroy()

		out := cmd.OutOrStdout()
		describe(out, s)

		if randomOut != "" {
			if err := security.WriteSecretFile(randomOut, s, !randomRaw); err != nil {
				return errors.NewInternalError("failed to write secret file", err).
					WithContext("path", randomOut)
			}
			fmt.Fprintln(out, colors.SafeColor("Written to "+randomOut, colors.Success))
		}
		if randomReveal {
			if err := printSecret(out, s); err != nil {
				return errors.FromSecret(err)
			}
		}
		if randomClip {
			return copyToClipboard(cmd, s)
		}
		return nil
	},
}

func init() {
	randomCmd.Flags().BoolVar(&randomReveal, "reveal", false, "print the secret as hex")
	randomCmd.Flags().BoolVar(&randomClip, "clip", false, "copy the secret as hex to the clipboard")
	randomCmd.Flags().StringVarP(&randomOut, "out", "o", "", "write the secret to `FILE` (mode 0600)")
	randomCmd.Flags().BoolVar(&randomRaw, "raw", false, "write raw bytes instead of hex with --out")
	rootCmd.AddCommand(randomCmd)
}
