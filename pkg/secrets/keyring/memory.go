// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package keyring

import "sync"

// MemoryProvider keeps secrets in process memory. It backs --ephemeral runs
// and tests.
type MemoryProvider struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemoryProvider returns an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{values: make(map[string]map[string]string)}
}

// Set implements Provider.
func (m *MemoryProvider) Set(service, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[service] == nil {
		m.values[service] = make(map[string]string)
	}
	m.values[service][key] = value
	return nil
}

// Get implements Provider.
func (m *MemoryProvider) Get(service, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[service][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Delete implements Provider.
func (m *MemoryProvider) Delete(service, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values[service], key)
	return nil
}

// DeleteAll implements Provider.
func (m *MemoryProvider) DeleteAll(service string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, service)
	return nil
}

// IsAvailable implements Provider.
func (*MemoryProvider) IsAvailable() bool { return true }

// Name implements Provider.
func (*MemoryProvider) Name() string { return "In-memory" }
