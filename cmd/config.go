// File: cmd/config.go
package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"secret.module/internal/colors"
	"secret.module/internal/config"
	"secret.module/internal/constants"
	"secret.module/internal/errors"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Shows and manages the application settings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch strings.ToLower(configFormat) {
		case constants.FormatJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(config.Cfg)
		case constants.FormatYAML, constants.FormatTable:
			if file := config.ConfigFileUsed(); file != "" {
				fmt.Fprintln(out, colors.SafeColor("# "+file, colors.Dim))
			}
			enc := yaml.NewEncoder(out)
			defer enc.Close()
			return enc.Encode(config.Cfg)
		default:
			return errors.NewInvalidInputError("format",
				fmt.Sprintf("must be one of: %s, %s", constants.FormatYAML, constants.FormatJSON))
		}
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <KEY> <VALUE>",
	Short:     "Sets a value for a configuration key.",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigFileUsed()
		if path == "" {
			path = "config.yaml"
		}
		if err := config.Set(args[0], args[1], path); err != nil {
			if cfgErr, ok := err.(*config.ConfigError); ok {
				return errors.NewConfigValidationError(cfgErr.Field, cfgErr.Value, cfgErr.Message)
			}
			return errors.NewConfigLoadError(path, err).WithDetails("failed to save configuration")
		}
		fmt.Fprintln(cmd.OutOrStdout(), colors.SafeColor(
			fmt.Sprintf("Configuration updated: %s = %s", args[0], args[1]), colors.Success))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:       "get <KEY>",
	Short:     "Shows the value of a configuration key.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		for _, k := range config.Keys() {
			if k == key {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", key, configValue(key))
				return nil
			}
		}
		return errors.NewInvalidInputError("key", fmt.Sprintf("'%s' not found in configuration", args[0]))
	},
}

// configValue returns the effective value of key, flags included.
func configValue(key string) any {
	c := config.Cfg
	switch key {
	case "default_variant":
		return c.DefaultVariant
	case "protected.strict":
		return c.Protected.Strict
	case "audit.enabled":
		return c.Audit.Enabled
	case "audit.path":
		return c.Audit.Path
	case "clipboard.timeout":
		return c.Clipboard.Timeout
	case "metrics.enabled":
		return c.Metrics.Enabled
	}
	return nil
}

func init() {
	configCmd.Flags().StringVarP(&configFormat, "format", "f", constants.FormatYAML, "output format (yaml, json)")
	configCmd.AddCommand(configSetCmd, configGetCmd)
	rootCmd.AddCommand(configCmd)
}
