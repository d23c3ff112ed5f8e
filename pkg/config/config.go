// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config contains the definition of the kernelhive config file and
// the logic required to load and update it.
package config

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const (
	defaultService        = "kernelhive"
	defaultStorageKey     = "jupyter.remoteServers"
	defaultNetworkTimeout = 30 * time.Second
)

// Config represents the configuration of the application.
type Config struct {
	// InsecureConnectionsAllowed is the remembered "do not ask again" answer
	// to the plain-HTTP warning.
	InsecureConnectionsAllowed bool      `yaml:"insecure_connections_allowed"`
	Secrets                    Secrets   `yaml:"secrets"`
	Network                    Network   `yaml:"network"`
	Telemetry                  Telemetry `yaml:"telemetry"`
}

// Secrets selects where the server list is kept.
type Secrets struct {
	ProviderType string `yaml:"provider_type,omitempty"`
	Service      string `yaml:"service"`
	StorageKey   string `yaml:"storage_key"`
}

// Network holds HTTP client settings for talking to Jupyter servers.
type Network struct {
	Timeout  time.Duration `yaml:"timeout"`
	CABundle string        `yaml:"ca_bundle,omitempty"`
}

// Telemetry toggles usage metrics. With an empty Endpoint, metrics are
// recorded but never exported.
type Telemetry struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`
}

// defaultPathGenerator generates the default config path using xdg
var defaultPathGenerator = func() (string, error) {
	return xdg.ConfigFile("kernelhive/config.yaml")
}

// getConfigPath is the current path generator, can be replaced in tests
var getConfigPath = defaultPathGenerator

// DefaultPath returns $XDG_CONFIG_HOME/kernelhive/config.yaml.
func DefaultPath() (string, error) {
	return getConfigPath()
}

// NewDefault returns a Config with every default applied.
func NewDefault() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills zero values left by older or hand-edited files.
func (c *Config) applyDefaults() {
	if c.Secrets.Service == "" {
		c.Secrets.Service = defaultService
	}
	if c.Secrets.StorageKey == "" {
		c.Secrets.StorageKey = defaultStorageKey
	}
	if c.Network.Timeout == 0 {
		c.Network.Timeout = defaultNetworkTimeout
	}
}

// Validate checks values the loader cannot default.
func (c *Config) Validate() error {
	var errs []error
	if c.Network.Timeout < 0 {
		errs = append(errs, fmt.Errorf("network.timeout must not be negative, got %s", c.Network.Timeout))
	}
	if c.Network.CABundle != "" {
		if err := ValidateCABundle(c.Network.CABundle); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateCABundle checks that path names a readable PEM file with at least
// one certificate.
func ValidateCABundle(path string) error {
	path = filepath.Clean(path)
	// #nosec G304: path is supplied by the user on purpose.
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("CA bundle %s not found or not accessible: %w", path, err)
	}
	if !x509.NewCertPool().AppendCertsFromPEM(content) {
		return fmt.Errorf("CA bundle %s contains no PEM certificates", path)
	}
	return nil
}
