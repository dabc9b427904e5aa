// File: cmd/root.go
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"secret.module/internal"
	"secret.module/internal/audit"
	"secret.module/internal/config"
	"secret.module/internal/errors"
	"secret.module/internal/metrics"
	"secret.module/secret"
)

var (
	variantFlag string
	strictFlag  bool
	metricsFlag bool

	// allocator is resolved from config and flags before each command.
	allocator secret.Allocator
)

var rootCmd = &cobra.Command{
	Use:           "secretctl",
	Short:         "Generate, derive and compare secrets held in protected memory.",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Show help if no subcommand is provided
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadConfigWithValidation(); err != nil {
			return errors.NewConfigLoadError(config.ConfigFileUsed(), err)
		}
		applyFlags(cmd)
		if err := config.ValidateConfig(&config.Cfg); err != nil {
			return errors.Wrap(errors.ErrCodeConfigValidation, "invalid command line override", err)
		}

		a, err := config.Cfg.Allocator()
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfigValidation, "invalid variant", err)
		}
		allocator = a

		opts := internal.Options{}
		if config.Cfg.Audit.Enabled {
			if err := audit.InitLogger(config.Cfg.Audit.Path); err != nil {
				return errors.NewConfigLoadError(config.Cfg.Audit.Path, err).
					WithDetails("failed to open audit log")
			}
			opts.AuditLogger = audit.Logger
		} else {
			audit.Disable()
		}
		if err := errors.InitWithAuditLogger(); err != nil {
			return err
		}
		if config.Cfg.Metrics.Enabled {
			_, opts.Metrics = metrics.Default()
		}
		internal.InitializeIntegration(opts)

		audit.Logger.Info("Command executed",
			slog.String("command", cmd.CommandPath()),
			slog.String("variant", allocator.Name()))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if !config.Cfg.Metrics.Enabled {
			return nil
		}
		reg, _ := metrics.Default()
		return metrics.WriteText(cmd.ErrOrStderr(), reg)
	},
}

// applyFlags overrides the loaded configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("variant") {
		config.Cfg.DefaultVariant = config.NormalizeVariant(variantFlag)
	}
	if flags.Changed("strict") {
		config.Cfg.Protected.Strict = strictFlag
	}
	if flags.Changed("metrics") {
		config.Cfg.Metrics.Enabled = metricsFlag
	}
}

func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&variantFlag, "variant", "",
		fmt.Sprintf("backing store variant (%s)", joinVariants()))
	rootCmd.PersistentFlags().BoolVar(&strictFlag, "strict", false,
		"fail instead of degrading when memory cannot be locked or protected")
	rootCmd.PersistentFlags().BoolVar(&metricsFlag, "metrics", false,
		"print secret lifecycle metrics to stderr after the command")

	_ = rootCmd.RegisterFlagCompletionFunc("variant",
		func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return config.Variants(), cobra.ShellCompDirectiveNoFileComp
		})
}
