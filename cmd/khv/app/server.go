// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/kernelhive/cmd/khv/app/ui"
	"github.com/stacklok/kernelhive/pkg/logger"
	"github.com/stacklok/kernelhive/pkg/servers/provider"
)

const redacted = "<redacted>"

func newServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Manage remote Jupyter servers",
		Long:  `Add, list, select, resolve and remove the remote Jupyter servers known to khv.`,
	}

	cmd.PersistentFlags().Bool(allowSelfSignedKey, false, "Trust self-signed server certificates")
	if err := viper.BindPFlag(allowSelfSignedKey, cmd.PersistentFlags().Lookup(allowSelfSignedKey)); err != nil {
		logger.Errorf("Error binding %s flag: %v", allowSelfSignedKey, err)
	}

	cmd.AddCommand(newServerAddCmd())
	cmd.AddCommand(newServerListCmd())
	cmd.AddCommand(newServerSelectCmd())
	cmd.AddCommand(newServerResolveCmd())
	cmd.AddCommand(newServerRmCmd())
	cmd.AddCommand(newServerClearCacheCmd())

	return cmd
}

// withServices builds the services for one command run and closes them when
// fn returns.
func withServices(cmd *cobra.Command, fn func(*services) error) error {
	svc, err := newServices(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc)
}

// printCommandResult reports the server an interactive command produced.
// Leaving the wizard is not a failure.
func printCommandResult(cmd *cobra.Command, server *provider.Server, err error, verb string) error {
	if errors.Is(err, provider.ErrCancelled) {
		cmd.Println("No server selected.")
		return nil
	}
	if err != nil {
		return err
	}
	cmd.Printf("%s %s (%s)\n", verb, server.Label, server.ID)
	return nil
}

func newServerAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [url]",
		Short: "Add a remote Jupyter server",
		Long: `Add a remote Jupyter server. Without a URL you are asked for one.

The URL may carry a token (http://host:8888/?token=...) or point at a
notebook deep link; servers that need a password ask for it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			return withServices(cmd, func(svc *services) error {
				server, err := svc.provider.HandleCommand(cmd.Context(), provider.Command{
					Kind: provider.CommandAdd,
					URL:  url,
				})
				return printCommandResult(cmd, server, err, "Added")
			})
		},
	}
}

func newServerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List remote Jupyter servers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(svc *services) error {
				list, err := svc.provider.ListServers(cmd.Context())
				if err != nil {
					return err
				}
				return ui.RenderServerTable(cmd.OutOrStdout(), list)
			})
		},
	}
}

func newServerSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Pick a stored server or add a new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(svc *services) error {
				server, err := svc.provider.HandleCommand(cmd.Context(), provider.Command{Kind: provider.CommandSelect})
				return printCommandResult(cmd, server, err, "Selected")
			})
		},
	}
}

// connectionOutput is the JSON shape printed by `khv server resolve`.
type connectionOutput struct {
	ID                      string            `json:"id"`
	DisplayName             string            `json:"displayName"`
	BaseURL                 string            `json:"baseUrl"`
	Token                   string            `json:"token,omitempty"`
	Headers                 map[string]string `json:"headers,omitempty"`
	MappedRemoteNotebookDir string            `json:"mappedRemoteNotebookDir,omitempty"`
}

func newServerResolveCmd() *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Negotiate fresh credentials for a stored server",
		Long: `Resolve a stored server into the connection details a client needs.

Credentials are negotiated again on every run and are redacted unless
--show-secrets is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(svc *services) error {
				conn, err := svc.provider.ResolveConnection(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(toConnectionOutput(conn, showSecrets))
			})
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print tokens and auth headers in clear text")

	return cmd
}

func toConnectionOutput(conn *provider.Connection, showSecrets bool) connectionOutput {
	out := connectionOutput{
		ID:                      conn.ID,
		DisplayName:             conn.DisplayName,
		BaseURL:                 conn.BaseURL,
		Token:                   conn.Token,
		Headers:                 maps.Clone(conn.Headers),
		MappedRemoteNotebookDir: conn.MappedRemoteNotebookDir,
	}
	if showSecrets {
		return out
	}
	if out.Token != "" {
		out.Token = redacted
	}
	for k := range out.Headers {
		out.Headers[k] = redacted
	}
	return out
}

func newServerRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Forget a stored server",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(svc *services) error {
				if err := svc.provider.RemoveServer(cmd.Context(), args[0]); err != nil {
					return err
				}
				cmd.Printf("Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newServerClearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Forget every stored server and delete cached kernel specs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(svc *services) error {
				if err := svc.provider.ClearCache(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear the server cache: %w", err)
				}
				cmd.Println("Cleared all stored servers.")
				return nil
			})
		},
	}
}
