// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	khverrors "github.com/stacklok/kernelhive/pkg/errors"
	"github.com/stacklok/kernelhive/pkg/servers/provider"
	"github.com/stacklok/kernelhive/pkg/versions"
)

// runKhv executes the root command with args. Commands share the global
// viper instance, so these tests do not run in parallel.
func runKhv(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func isolatedArgs(t *testing.T, args ...string) []string {
	t.Helper()
	return append([]string{
		"--config", filepath.Join(t.TempDir(), "config.yaml"),
		"--secrets-provider", "memory",
	}, args...)
}

func TestVersionCmd_JSON(t *testing.T) { //nolint:paralleltest // Uses global viper state
	out, err := runKhv(t, "version", "--json")
	require.NoError(t, err)

	var got versions.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, versions.GetVersionInfo(), got)
}

func TestVersionCmd_Text(t *testing.T) { //nolint:paralleltest // Uses global viper state
	out, err := runKhv(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "khv ")
	assert.Contains(t, out, "Platform: ")
}

func TestServerListCmd_Empty(t *testing.T) { //nolint:paralleltest // Uses global viper state
	out, err := runKhv(t, isolatedArgs(t, "server", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No remote Jupyter servers found")
}

func TestServerResolveCmd_UnknownServer(t *testing.T) { //nolint:paralleltest // Uses global viper state
	_, err := runKhv(t, isolatedArgs(t, "server", "resolve", "does-not-exist")...)
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrServerNotFound)
	assert.True(t, khverrors.IsNotFound(err))
}

func TestServerCmd_RejectsBadSecretsProvider(t *testing.T) { //nolint:paralleltest // Uses global viper state
	_, err := runKhv(t,
		"--config", filepath.Join(t.TempDir(), "config.yaml"),
		"--secrets-provider", "vault",
		"server", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown secrets provider type")
}

func TestToConnectionOutput(t *testing.T) {
	t.Parallel()

	conn := &provider.Connection{
		ID:          "4f1c",
		DisplayName: "Lab",
		BaseURL:     "https://lab.example.com/",
		Token:       "secret",
		Headers:     map[string]string{"Authorization": "token secret"},
	}

	hidden := toConnectionOutput(conn, false)
	assert.Equal(t, redacted, hidden.Token)
	assert.Equal(t, map[string]string{"Authorization": redacted}, hidden.Headers)
	assert.Equal(t, "token secret", conn.Headers["Authorization"], "the connection itself is untouched")

	shown := toConnectionOutput(conn, true)
	assert.Equal(t, "secret", shown.Token)
	assert.Equal(t, conn.Headers, shown.Headers)

	noToken := toConnectionOutput(&provider.Connection{ID: "x"}, false)
	assert.Empty(t, noToken.Token)
	assert.Nil(t, noToken.Headers)
}
