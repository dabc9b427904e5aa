// File: cmd/compare.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"secret.module/internal/colors"
	"secret.module/internal/errors"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compares two secret values in constant time.",
	Long: `Reads two values without echo and compares them in constant time.
The exit status is 1 when they differ.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := newSecretReader(cmd, allocator)
		first, err := r.Read("First value")
		if err != nil {
			return err
		}
		defer first.Destroy()

		second, err := r.Read("Second value")
		if err != nil {
			return err
		}
		defer second.Destroy()

		equal, err := first.Compare(second)
		if err != nil {
			return errors.FromSecret(err)
		}
		if !equal {
			return errors.NewMismatchError()
		}
		fmt.Fprintln(cmd.OutOrStdout(), colors.SafeColor("The values match.", colors.Success))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
