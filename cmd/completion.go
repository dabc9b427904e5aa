// File: cmd/completion.go
package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate autocompletion script for the specified shell",
	Long: `To load completions:

Bash:
  $ source <(secretctl completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ secretctl completion bash > /etc/bash_completion.d/secretctl
  # macOS:
  $ secretctl completion bash > /usr/local/etc/bash_completion.d/secretctl

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ secretctl completion zsh > "${fpath[1]}/_secretctl"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ secretctl completion fish | source

  # To load completions for each session, execute once:
  $ secretctl completion fish > ~/.config/fish/completions/secretctl.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
