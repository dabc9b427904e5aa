// File: cmd/capabilities.go
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"secret.module/internal/colors"
	"secret.module/internal/config"
	"secret.module/internal/constants"
	"secret.module/internal/errors"
	"secret.module/secret"
)

var capabilitiesFormat string

// capabilityReport is the probe result for one variant.
type capabilityReport struct {
	Variant      string   `json:"variant" yaml:"variant"`
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
	Error        string   `json:"error,omitempty" yaml:"error,omitempty"`
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Reports which protections each variant provides on this system.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reports := probeVariants()
		out := cmd.OutOrStdout()

		switch strings.ToLower(capabilitiesFormat) {
		case constants.FormatTable:
			return writeCapabilityTable(out, reports)
		case constants.FormatJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(reports)
		case constants.FormatYAML:
			enc := yaml.NewEncoder(out)
			defer enc.Close()
			return enc.Encode(reports)
		default:
			return errors.NewInvalidInputError("format",
				fmt.Sprintf("must be one of: %s, %s, %s", constants.FormatTable, constants.FormatJSON, constants.FormatYAML))
		}
	},
}

// probeVariants allocates a small secret with every variant, the stateless
// one included, and records the capabilities it announces.
func probeVariants() []capabilityReport {
	allocators := make([]secret.Allocator, 0, len(config.Variants())+1)
	for _, v := range config.Variants() {
		a, err := config.AllocatorFor(v, false)
		if err != nil {
			continue
		}
		allocators = append(allocators, a)
	}
	allocators = append(allocators, secret.Stateless(secret.DeriverFunc(func(_, dst []byte) error {
		clear(dst)
		return nil
	}), nil))

	reports := make([]capabilityReport, 0, len(allocators))
	for _, a := range allocators {
		report := capabilityReport{Variant: a.Name(), Capabilities: []string{}}
		s, err := secret.New(a, constants.DefaultKeySize)
		if err != nil {
			report.Error = err.Error()
			reports = append(reports, report)
			continue
		}
		if names := s.Capabilities().Names(); names != nil {
			report.Capabilities = names
		}
		_ = s.Destroy()
		reports = append(reports, report)
	}
	return reports
}

func writeCapabilityTable(w io.Writer, reports []capabilityReport) error {
	width := len("VARIANT")
	for _, r := range reports {
		width = max(width, len(r.Variant))
	}
	cell := lipgloss.NewStyle().Width(width + 2)

	fmt.Fprintln(w, cell.Render(colors.SafeColor("VARIANT", colors.Header))+colors.SafeColor("CAPABILITIES", colors.Header))
	for _, r := range reports {
		caps := strings.Join(r.Capabilities, ", ")
		if r.Error != "" {
			caps = colors.SafeColor("unavailable: "+r.Error, colors.Warning)
		} else if caps == "" {
			caps = colors.SafeColor("none", colors.Dim)
		}
		if _, err := fmt.Fprintln(w, cell.Render(r.Variant)+caps); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	capabilitiesCmd.Flags().StringVarP(&capabilitiesFormat, "format", "f", constants.FormatTable,
		"output format (table, json, yaml)")
	_ = capabilitiesCmd.RegisterFlagCompletionFunc("format",
		func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return []string{constants.FormatTable, constants.FormatJSON, constants.FormatYAML}, cobra.ShellCompDirectiveNoFileComp
		})
	rootCmd.AddCommand(capabilitiesCmd)
}
