// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package keyring

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// keyctl payloads are capped well above a realistic server list.
const keyctlReadBuffer = 1 << 16

// keyctlProvider stores secrets in the kernel user keyring. It works on
// headless hosts where no Secret Service daemon is running.
type keyctlProvider struct {
	ringID int

	mu    sync.Mutex
	names map[string]map[string]struct{}
}

// NewKeyctlProvider links the user keyring into the thread keyring and
// returns a provider backed by it.
func NewKeyctlProvider() (Provider, error) {
	ringID, err := unix.KeyctlGetKeyringID(unix.KEY_SPEC_USER_KEYRING, false)
	if err != nil {
		return nil, fmt.Errorf("could not get user keyring: %w", err)
	}
	if _, err := unix.KeyctlInt(unix.KEYCTL_LINK, ringID, unix.KEY_SPEC_THREAD_KEYRING, 0, 0); err != nil {
		return nil, fmt.Errorf("unable to link user keyring to thread keyring: %w", err)
	}
	return &keyctlProvider{ringID: ringID, names: make(map[string]map[string]struct{})}, nil
}

func keyctlName(service, key string) string {
	return service + ":" + key
}

func (k *keyctlProvider) Set(service, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	name := keyctlName(service, key)
	if _, err := unix.AddKey("user", name, []byte(value), k.ringID); err != nil {
		return fmt.Errorf("failed to set key %q in user keyring: %w", name, err)
	}
	if k.names[service] == nil {
		k.names[service] = make(map[string]struct{})
	}
	k.names[service][key] = struct{}{}
	return nil
}

func (k *keyctlProvider) Get(service, key string) (string, error) {
	name := keyctlName(service, key)
	id, err := unix.KeyctlSearch(k.ringID, "user", name, 0)
	if err != nil {
		return "", ErrNotFound
	}

	buf := make([]byte, keyctlReadBuffer)
	n, err := unix.KeyctlBuffer(unix.KEYCTL_READ, id, buf, len(buf))
	if err != nil {
		return "", fmt.Errorf("read of key %q failed: %w", name, err)
	}
	if n > len(buf) {
		return "", errors.New("keyring payload exceeds read buffer")
	}
	return string(buf[:n]), nil
}

func (k *keyctlProvider) Delete(service, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.deleteLocked(service, key)
}

func (k *keyctlProvider) deleteLocked(service, key string) error {
	name := keyctlName(service, key)
	id, err := unix.KeyctlSearch(k.ringID, "user", name, 0)
	if err != nil {
		return nil
	}
	if _, err := unix.KeyctlInt(unix.KEYCTL_REVOKE, id, 0, 0, 0); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", name, err)
	}
	if keys, ok := k.names[service]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(k.names, service)
		}
	}
	return nil
}

// DeleteAll only reaches keys written by this process; the kernel keyring
// has no per-service listing.
func (k *keyctlProvider) DeleteAll(service string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var errs []error
	for key := range k.names[service] {
		if err := k.deleteLocked(service, key); err != nil {
			errs = append(errs, err)
		}
	}
	delete(k.names, service)
	return errors.Join(errs...)
}

func (k *keyctlProvider) IsAvailable() bool {
	key := probeKey()
	if err := k.Set(probeService, key, "probe"); err != nil {
		return false
	}
	_ = k.Delete(probeService, key)
	return true
}

func (*keyctlProvider) Name() string {
	return "Linux Keyctl"
}
