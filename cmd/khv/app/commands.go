// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the khv command-line application.
package app

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/kernelhive/pkg/config"
	"github.com/stacklok/kernelhive/pkg/logger"
)

const envPrefix = "KHV"

// NewRootCmd creates a new root command for the khv CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "khv",
		DisableAutoGenTag: true,
		Short:             "kernelhive - manage remote Jupyter servers",
		Long: `kernelhive (khv) keeps a list of remote Jupyter servers in your OS keyring.

Adding a server walks through the same checks an editor would make: the URL is
validated, passwords are negotiated, plain HTTP connections need consent and
the server must list its kernel specs before it is saved.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				logger.Errorf("Error displaying help: %v", err)
			}
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Initialize()
		},
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "Enable debug mode")
	flags.StringP("config", "c", "", "Path to the khv configuration file")
	flags.String(config.KeyCABundle, "", "Path to a PEM bundle of extra CA certificates")
	flags.Duration(config.KeyTimeout, 0, "Timeout for requests to Jupyter servers")
	flags.String(config.KeySecretsProvider, "", "Secrets backend: keyring or memory")
	flags.Bool(config.KeyTelemetry, false, "Record usage metrics")

	for _, name := range []string{"debug", "config", config.KeyCABundle, config.KeyTimeout,
		config.KeySecretsProvider, config.KeyTelemetry} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			logger.Errorf("Error binding %s flag: %v", name, err)
		}
	}

	rootCmd.AddCommand(newServerCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}
