// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_LoadCreatesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	store := NewLocalStore(path)

	c, err := store.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, NewDefault(), c)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config is written on first load")
}

func TestLocalStore_LoadFillsMissingFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("insecure_connections_allowed: true\nnetwork:\n  timeout: 2m\n"), 0o600))

	c, err := NewLocalStore(path).Load(t.Context())
	require.NoError(t, err)
	assert.True(t, c.InsecureConnectionsAllowed)
	assert.Equal(t, 2*time.Minute, c.Network.Timeout)
	assert.Equal(t, "kernelhive", c.Secrets.Service)
	assert.Equal(t, "jupyter.remoteServers", c.Secrets.StorageKey)
}

func TestLocalStore_LoadRejectsBadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: [unterminated"), 0o600))

	_, err := NewLocalStore(path).Load(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file yaml")
}

func TestLocalStore_SaveAndReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	store := NewLocalStore(path)
	ctx := t.Context()

	c := NewDefault()
	c.Network.CABundle = "/etc/ssl/corp.pem"
	c.Telemetry.Enabled = true
	require.NoError(t, store.Save(ctx, c))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLocalStore_Update(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	store := NewLocalStore(path)
	ctx := t.Context()

	require.NoError(t, store.Update(ctx, func(c *Config) {
		c.InsecureConnectionsAllowed = true
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.InsecureConnectionsAllowed)
}

func TestLocalStore_ConcurrentUpdatesSerialize(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	ctx := t.Context()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, NewLocalStore(path).Update(ctx, func(c *Config) {
			c.InsecureConnectionsAllowed = true
		}))
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, NewLocalStore(path).Update(ctx, func(c *Config) {
			c.Telemetry.Enabled = true
		}))
	}()
	wg.Wait()

	got, err := NewLocalStore(path).Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.InsecureConnectionsAllowed)
	assert.True(t, got.Telemetry.Enabled)
}
