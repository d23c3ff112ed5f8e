// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"

	gokeyring "github.com/zalando/go-keyring"
)

const probeService = "kernelhive-probe"

// systemProvider talks to the desktop keyring: Secret Service over D-Bus on
// Linux, Keychain on macOS and Credential Manager on Windows.
type systemProvider struct{}

// NewSystemProvider returns the platform keyring provider.
func NewSystemProvider() Provider {
	return &systemProvider{}
}

func (*systemProvider) Set(service, key, value string) error {
	if err := gokeyring.Set(service, key, value); err != nil {
		return fmt.Errorf("failed to store %s/%s in system keyring: %w", service, key, err)
	}
	return nil
}

func (*systemProvider) Get(service, key string) (string, error) {
	value, err := gokeyring.Get(service, key)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s/%s from system keyring: %w", service, key, err)
	}
	return value, nil
}

func (*systemProvider) Delete(service, key string) error {
	err := gokeyring.Delete(service, key)
	if err == nil || errors.Is(err, gokeyring.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("failed to delete %s/%s from system keyring: %w", service, key, err)
}

func (*systemProvider) DeleteAll(service string) error {
	if err := gokeyring.DeleteAll(service); err != nil {
		return fmt.Errorf("failed to clear %s from system keyring: %w", service, err)
	}
	return nil
}

func (p *systemProvider) IsAvailable() bool {
	key := probeKey()
	if err := p.Set(probeService, key, "probe"); err != nil {
		return false
	}
	_ = p.Delete(probeService, key)
	return true
}

func (*systemProvider) Name() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS Keychain"
	case "windows":
		return "Windows Credential Manager"
	default:
		return "Secret Service (D-Bus)"
	}
}

// probeKey is unique per call so concurrent availability checks do not
// delete each other's entries.
func probeKey() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "probe"
	}
	return "probe-" + hex.EncodeToString(buf)
}
