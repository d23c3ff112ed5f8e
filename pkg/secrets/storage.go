// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package secrets adapts keyring backends to the string key-value store the
// server list is persisted in.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stacklok/toolhive-core/env"
	"github.com/stacklok/toolhive-core/httperr"

	"github.com/stacklok/kernelhive/pkg/logger"
	"github.com/stacklok/kernelhive/pkg/secrets/keyring"
)

const (
	// DefaultService is the keyring service name entries are filed under.
	DefaultService = "kernelhive"

	// ProviderEnvVar selects the backend when no flag or config value does.
	ProviderEnvVar = "KHV_SECRETS_PROVIDER"

	// EnvVarPrefix prefixes read-only fallback values, e.g.
	// KHV_SECRET_JUPYTER_REMOTESERVERS for the key jupyter.remoteServers.
	EnvVarPrefix = "KHV_SECRET_"
)

// ProviderType names a keyring backend.
type ProviderType string

const (
	// KeyringType uses the OS keyring with a keyctl fallback on Linux.
	KeyringType ProviderType = "keyring"
	// MemoryType keeps everything in process memory.
	MemoryType ProviderType = "memory"
)

// ErrUnknownProviderType is returned for an unrecognised ProviderType.
var ErrUnknownProviderType = httperr.WithCode(
	errors.New("unknown secrets provider type"),
	http.StatusBadRequest,
)

// NewProvider builds the keyring backend for providerType. An empty type
// falls back to ProviderEnvVar and then to KeyringType.
func NewProvider(providerType ProviderType, envReader env.Reader) (keyring.Provider, error) {
	if providerType == "" && envReader != nil {
		providerType = ProviderType(strings.TrimSpace(envReader.Getenv(ProviderEnvVar)))
	}
	switch providerType {
	case "", KeyringType:
		return keyring.NewDefaultProvider(), nil
	case MemoryType:
		return keyring.NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProviderType, providerType)
	}
}

// KeyringStorage stores string values under one keyring service. An empty
// value deletes the key and a missing key reads as empty.
type KeyringStorage struct {
	provider keyring.Provider
	service  string
	env      env.Reader
}

// StorageOption configures a KeyringStorage.
type StorageOption func(*KeyringStorage)

// WithService overrides DefaultService.
func WithService(service string) StorageOption {
	return func(s *KeyringStorage) {
		if service != "" {
			s.service = service
		}
	}
}

// WithEnvFallback makes Get consult EnvVarPrefix variables for keys the
// keyring does not hold. Set and Delete never touch the environment.
func WithEnvFallback(reader env.Reader) StorageOption {
	return func(s *KeyringStorage) {
		s.env = reader
	}
}

// NewKeyringStorage wraps provider.
func NewKeyringStorage(provider keyring.Provider, opts ...StorageOption) *KeyringStorage {
	s := &KeyringStorage{provider: provider, service: DefaultService}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value stored under key, or "" when there is none.
func (s *KeyringStorage) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, err := s.provider.Get(s.service, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("failed to read %q from %s: %w", key, s.provider.Name(), err)
	}
	if s.env != nil {
		if v := s.env.Getenv(EnvVarName(key)); v != "" {
			logger.Debugf("secret %q read from environment fallback", key)
			return v, nil
		}
	}
	return "", nil
}

// Set stores value under key. An empty value deletes the key.
func (s *KeyringStorage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if value == "" {
		if err := s.provider.Delete(s.service, key); err != nil {
			return fmt.Errorf("failed to delete %q from %s: %w", key, s.provider.Name(), err)
		}
		return nil
	}
	if err := s.provider.Set(s.service, key, value); err != nil {
		return fmt.Errorf("failed to write %q to %s: %w", key, s.provider.Name(), err)
	}
	return nil
}

// Backend names the keyring in use.
func (s *KeyringStorage) Backend() string {
	return s.provider.Name()
}

// EnvVarName maps a storage key to its fallback variable name.
func EnvVarName(key string) string {
	upper := strings.ToUpper(key)
	return EnvVarPrefix + strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, upper)
}
