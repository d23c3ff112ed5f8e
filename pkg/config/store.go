// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/kernelhive/pkg/logger"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

// lockTimeout is the maximum time to wait for a file lock
const lockTimeout = 1 * time.Second

// Store defines the interface for configuration storage operations
type Store interface {
	// Load reads the configuration, creating it with defaults if missing.
	Load(ctx context.Context) (*Config, error)
	// Save writes the configuration.
	Save(ctx context.Context, cfg *Config) error
	// Update performs a locked read-modify-write of the configuration.
	Update(ctx context.Context, updateFn func(*Config)) error
}

// LocalStore implements Store using a YAML file on the local file system.
type LocalStore struct {
	configPath string
}

// NewLocalStore creates a store for configPath. An empty path uses
// DefaultPath.
func NewLocalStore(configPath string) *LocalStore {
	return &LocalStore{configPath: configPath}
}

func (s *LocalStore) path() (string, error) {
	if s.configPath != "" {
		return filepath.Clean(s.configPath), nil
	}
	p, err := getConfigPath()
	if err != nil {
		return "", fmt.Errorf("unable to fetch config path: %w", err)
	}
	return p, nil
}

// Load loads configuration from the local file.
func (s *LocalStore) Load(_ context.Context) (*Config, error) {
	configPath, err := s.path()
	if err != nil {
		return nil, err
	}

	// #nosec G304: the config path is chosen by the user.
	content, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		config := NewDefault()
		logger.Debugf("initializing configuration file at %s", configPath)
		if err := writeFile(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read config file %s: %w", configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file yaml: %w", err)
	}
	config.applyDefaults()
	return &config, nil
}

// Save saves configuration to the local file.
func (s *LocalStore) Save(_ context.Context, config *Config) error {
	configPath, err := s.path()
	if err != nil {
		return err
	}
	return writeFile(configPath, config)
}

// Update performs a locked update operation on the configuration
func (s *LocalStore) Update(ctx context.Context, updateFn func(*Config)) error {
	configPath, err := s.path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use a separate lock file for cross-platform compatibility
	fileLock := flock.New(configPath + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock: timeout after %v", lockTimeout)
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			logger.Warnf("failed to release config lock: %v", err)
		}
	}()

	// Load the config after acquiring the lock to avoid race conditions
	config, err := s.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	updateFn(config)
	if err := s.Save(ctx, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func writeFile(configPath string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config file: %w", err)
	}
	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}
