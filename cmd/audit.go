// File: cmd/audit.go
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"secret.module/internal/audit"
	"secret.module/internal/colors"
	"secret.module/internal/config"
	"secret.module/internal/errors"
	"secret.module/internal/tui"
)

var (
	auditFile     string
	auditPlain    bool
	auditFailures bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browses the audit log.",
	Long: `Opens the audit log in an interactive viewer. The log records secret
lifecycle events and executed commands, never secret content.

Output that is not a terminal, or --plain, prints one entry per line instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := auditFile
		if path == "" {
			path = config.Cfg.Audit.Path
		}
		entries, skipped, err := audit.ReadFile(path)
		if err != nil {
			return errors.NewFileSystemError("read", path, err)
		}

		out := cmd.OutOrStdout()
		if !auditPlain && isTerminal(cmd.InOrStdin()) && isTerminal(out) {
			return tui.RunAuditViewer(entries, skipped, cmd.InOrStdin(), out)
		}
		printAuditEntries(out, entries, skipped, auditFailures)
		return nil
	},
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printAuditEntries(w io.Writer, entries []audit.Entry, skipped int, failuresOnly bool) {
	shown := 0
	for _, e := range entries {
		if failuresOnly && !e.Failed() {
			continue
		}
		level := colors.SafeColor(fmt.Sprintf("%-5s", e.Level), colors.Info)
		if e.Failed() {
			level = colors.SafeColor(fmt.Sprintf("%-5s", e.Level), colors.Warning)
		}
		fmt.Fprintf(w, "%s %s %s\n", e.Time.Format("2006-01-02 15:04:05"), level, e.Summary())
		shown++
	}
	fmt.Fprintln(w, colors.SafeColor(fmt.Sprintf("%d entries", shown), colors.Dim))
	if skipped > 0 {
		fmt.Fprintln(w, colors.SafeColor(fmt.Sprintf("%d unreadable lines skipped", skipped), colors.Warning))
	}
}

func init() {
	auditCmd.Flags().StringVar(&auditFile, "file", "", "audit log to read (default: audit.path from config)")
	auditCmd.Flags().BoolVar(&auditPlain, "plain", false, "print entries instead of opening the viewer")
	auditCmd.Flags().BoolVar(&auditFailures, "failures", false, "with --plain, list failed operations only")
	rootCmd.AddCommand(auditCmd)
}
